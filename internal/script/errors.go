package script

import "errors"

var (
	// ErrHostClosed is returned when running code on a closed host.
	ErrHostClosed = errors.New("script: host is closed")

	// ErrScriptFailed wraps Lua runtime and syntax errors raised while
	// executing a script.
	ErrScriptFailed = errors.New("script: execution failed")
)
