// Package config loads the optional treestorm configuration file.
//
// Configuration is a single TOML file with [log], [engine], [repl], and
// [script] sections. A missing file is not an error: Load returns (nil, nil)
// and callers fall back to Default(). Syntax failures are reported as a
// *ParseError carrying the file path; bad values are rejected during
// validation with ErrInvalidValue.
//
// The loader reads through a FileSystem so tests can use in-memory files.
// No environment variables are consulted.
package config
