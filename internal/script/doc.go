// Package script embeds a sandboxed Lua interpreter for automating tree
// edits. A Host owns a single Lua state with only the base, table, string,
// and math libraries opened; io, os, and debug are never available to
// scripts.
//
// Scripts drive the engine through a global "tree" module. Each Run is
// wrapped in a history group, so one undo reverts everything a script did.
// Execution is bounded by a configurable timeout.
package script
