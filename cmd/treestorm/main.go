// Package main is the entry point for the treestorm tree editor.
package main

import "os"

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCommand().Execute(); err != nil {
		return 1
	}
	return 0
}
