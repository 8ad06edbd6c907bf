// Package dispatcher routes named actions to handlers bound to an
// engine.
//
// Actions are small value objects (name, arguments, source). The
// dispatcher looks the name up in a priority-sorted registry, runs
// pre-dispatch hooks, executes the handler with panic recovery, runs
// post-dispatch hooks, and records per-action metrics. Built-in
// handlers cover the tree.*, notation.*, and history.* namespaces.
package dispatcher
