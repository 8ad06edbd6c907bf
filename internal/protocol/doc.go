// Package protocol converts trees and parse errors to and from JSON.
//
// The tree document looks like:
//
//	{
//	  "empty": false,
//	  "size": 3,
//	  "root": {
//	    "id": 1,
//	    "value": 5,
//	    "left":  {"id": 2, "value": 3},
//	    "right": {"id": 3, "value": 8}
//	  }
//	}
//
// Absent children are omitted, not null. Node ids survive the round
// trip, so a decoded tree keeps the identities the encoder saw.
//
// Parse errors encode as:
//
//	{"line": 4, "category": "bad_indentation", "message": "...", "raw": "..."}
package protocol
