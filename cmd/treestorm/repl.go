package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/treestorm/internal/bst"
	"github.com/dshills/treestorm/internal/config"
	"github.com/dshills/treestorm/internal/dispatcher"
	"github.com/dshills/treestorm/internal/engine"
	"github.com/dshills/treestorm/internal/engine/tracking"
	"github.com/dshills/treestorm/internal/script"
)

func newReplCommand(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive tree editing session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newReplSession(st.cfg, st.log, st.newEngine(), cmd.InOrStdin(), cmd.OutOrStdout())
			defer s.host.Close()
			return s.loop()
		},
	}
}

// replSession drives one interactive session. Commands map onto dispatcher
// actions; file and script commands reach the engine through the host.
type replSession struct {
	id   string
	cfg  *config.Config
	disp *dispatcher.Dispatcher
	eng  *engine.Engine
	host *script.Host
	in   *bufio.Scanner
	out  io.Writer
	log  zerolog.Logger
}

func newReplSession(cfg *config.Config, log zerolog.Logger, eng *engine.Engine, in io.Reader, out io.Writer) *replSession {
	id := uuid.NewString()
	return &replSession{
		id:   id,
		cfg:  cfg,
		disp: dispatcher.New(eng, dispatcher.WithLogger(log)),
		eng:  eng,
		host: script.NewHost(eng, script.WithTimeout(cfg.ScriptTimeout()), script.WithLogger(log)),
		in:   bufio.NewScanner(in),
		out:  out,
		log:  log.With().Str("session", id).Logger(),
	}
}

func (s *replSession) loop() error {
	fmt.Fprintf(s.out, "treestorm %s (session %s)\n", version, s.id)
	fmt.Fprintln(s.out, `Type "help" for commands, "quit" to leave.`)
	s.log.Debug().Msg("session started")

	for {
		fmt.Fprint(s.out, s.cfg.REPL.Prompt)
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}

		done, err := s.execute(line)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if done {
			s.log.Debug().Msg("session ended")
			return nil
		}
	}
}

// execute runs one input line. The returned bool reports that the session
// is over.
func (s *replSession) execute(line string) (bool, error) {
	fields := strings.Fields(line)
	verb, rest := fields[0], fields[1:]

	switch verb {
	case "quit", "exit":
		return true, nil
	case "help":
		s.printHelp()
		return false, nil
	case "insert":
		return false, s.valueCommand("tree.insert", rest)
	case "delete":
		return false, s.valueCommand("tree.delete", rest)
	case "edit":
		return false, s.edit(rest)
	case "clear":
		return false, s.printMessage(s.dispatch("tree.clear", dispatcher.Args{}))
	case "find":
		return false, s.valueCommand("tree.find", rest)
	case "traverse":
		return false, s.traverse(rest)
	case "range":
		return false, s.rangeQuery(rest)
	case "show":
		return false, s.show()
	case "export":
		return false, s.printText(s.dispatch("notation.export", dispatcher.Args{}))
	case "undo":
		return false, s.printMessage(s.dispatch("history.undo", dispatcher.Args{}))
	case "redo":
		return false, s.printMessage(s.dispatch("history.redo", dispatcher.Args{}))
	case "snapshot":
		return false, s.snapshot(rest)
	case "restore":
		return false, s.restore(rest)
	case "snapshots":
		return false, s.snapshots()
	case "changes":
		return false, s.changes(rest)
	case "stats":
		return false, s.stats()
	case "load":
		return false, s.load(rest)
	case "save":
		return false, s.save(rest)
	case "script":
		return false, s.script(rest)
	default:
		return false, fmt.Errorf("unknown command %q (try \"help\")", verb)
	}
}

func (s *replSession) dispatch(name string, args dispatcher.Args) dispatcher.Result {
	return s.disp.Dispatch(dispatcher.Action{Name: name, Args: args, Source: dispatcher.SourceREPL})
}

// valueCommand handles the single-integer commands insert, delete, and find.
func (s *replSession) valueCommand(action string, rest []string) error {
	if len(rest) != 1 {
		return fmt.Errorf("usage: %s <value>", strings.TrimPrefix(action, "tree."))
	}
	v, err := parseValue(rest[0])
	if err != nil {
		return err
	}
	return s.printMessage(s.dispatch(action, dispatcher.Args{Value: v}))
}

func (s *replSession) edit(rest []string) error {
	if len(rest) != 2 {
		return errors.New("usage: edit <id> <value>")
	}
	id, err := strconv.ParseUint(rest[0], 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("bad node id %q", rest[0])
	}
	v, err := parseValue(rest[1])
	if err != nil {
		return err
	}
	return s.printMessage(s.dispatch("tree.edit", dispatcher.Args{NodeID: bst.NodeID(id), Value: v}))
}

func (s *replSession) traverse(rest []string) error {
	order := ""
	if len(rest) > 0 {
		order = rest[0]
	}
	res := s.dispatch("tree.traverse", dispatcher.Args{Order: order})
	if res.IsError() {
		return res.Err
	}
	fmt.Fprintln(s.out, formatValues(res.Values))
	return nil
}

func (s *replSession) rangeQuery(rest []string) error {
	if len(rest) != 2 {
		return errors.New("usage: range <min> <max>")
	}
	min, err := parseValue(rest[0])
	if err != nil {
		return err
	}
	max, err := parseValue(rest[1])
	if err != nil {
		return err
	}
	res := s.dispatch("tree.range", dispatcher.Args{Min: min, Max: max})
	if res.IsError() {
		return res.Err
	}
	fmt.Fprintln(s.out, formatValues(res.Values))
	return nil
}

func (s *replSession) show() error {
	res := s.dispatch("notation.show", dispatcher.Args{})
	if res.IsError() {
		return res.Err
	}
	if res.Text == "" {
		fmt.Fprintln(s.out, "(empty tree)")
		return nil
	}
	fmt.Fprintln(s.out, res.Text)
	return nil
}

func (s *replSession) snapshot(rest []string) error {
	name := ""
	if len(rest) > 0 {
		name = rest[0]
	}
	return s.printMessage(s.dispatch("history.snapshot", dispatcher.Args{Name: name}))
}

func (s *replSession) restore(rest []string) error {
	if len(rest) != 1 {
		return errors.New("usage: restore <name|id>")
	}
	return s.printMessage(s.dispatch("history.restore", dispatcher.Args{Name: rest[0]}))
}

func (s *replSession) snapshots() error {
	res := s.dispatch("history.snapshots", dispatcher.Args{})
	if res.IsError() {
		return res.Err
	}
	raw, _ := res.GetData("snapshots")
	snaps, _ := raw.([]tracking.Snapshot)
	if len(snaps) == 0 {
		fmt.Fprintln(s.out, "no snapshots")
		return nil
	}
	for _, snap := range snaps {
		name := snap.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(s.out, "%4d  %-20s %s nodes, revision %d, %s\n",
			snap.ID, name, humanize.Comma(int64(snap.Tree.Size())), snap.Revision,
			humanize.Time(snap.Time))
	}
	return nil
}

func (s *replSession) changes(rest []string) error {
	count := s.cfg.REPL.HistoryDisplayLimit
	if len(rest) > 0 {
		n, err := strconv.Atoi(rest[0])
		if err != nil || n < 1 {
			return fmt.Errorf("bad count %q", rest[0])
		}
		count = n
	}
	res := s.dispatch("history.changes", dispatcher.Args{Count: count})
	if res.IsError() {
		return res.Err
	}
	raw, _ := res.GetData("changes")
	changes, _ := raw.([]tracking.Change)
	if len(changes) == 0 {
		fmt.Fprintln(s.out, "no changes")
		return nil
	}
	for _, c := range changes {
		fmt.Fprintf(s.out, "%6d  %-8s value %d", c.Revision, c.Op, c.Value)
		if c.NodeID != 0 {
			fmt.Fprintf(s.out, " (node %d)", c.NodeID)
		}
		fmt.Fprintf(s.out, "  %s\n", humanize.Time(c.Time))
	}
	return nil
}

func (s *replSession) stats() error {
	res := s.dispatch("tree.stats", dispatcher.Args{})
	if res.IsError() {
		return res.Err
	}

	rows := []struct{ label, key string }{
		{"nodes", "size"},
		{"height", "height"},
		{"revision", "revision"},
		{"undo depth", "undo_depth"},
		{"redo depth", "redo_depth"},
		{"changes", "changes"},
		{"snapshots", "snapshots"},
	}
	for _, row := range rows {
		raw, _ := res.GetData(row.key)
		fmt.Fprintf(s.out, "%-12s %s\n", row.label, humanize.Comma(asInt64(raw)))
	}

	m := s.disp.Metrics()
	fmt.Fprintf(s.out, "%-12s %s (%s errors)\n", "dispatches",
		humanize.Comma(int64(m.TotalDispatches())), humanize.Comma(int64(m.TotalErrors())))
	return nil
}

func (s *replSession) load(rest []string) error {
	if len(rest) != 1 {
		return errors.New("usage: load <path>")
	}
	data, err := os.ReadFile(rest[0])
	if err != nil {
		return err
	}
	return s.printMessage(s.dispatch("notation.parse", dispatcher.Args{Text: string(data)}))
}

func (s *replSession) save(rest []string) error {
	if len(rest) != 1 {
		return errors.New("usage: save <path>")
	}
	text := s.eng.Notation()
	if text != "" {
		text += "\n"
	}
	if err := os.WriteFile(rest[0], []byte(text), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "saved %s (%s)\n", rest[0], humanize.Bytes(uint64(len(text))))
	return nil
}

func (s *replSession) script(rest []string) error {
	if len(rest) != 1 {
		return errors.New("usage: script <path>")
	}
	code, err := os.ReadFile(rest[0])
	if err != nil {
		return err
	}
	if err := s.host.Run(string(code)); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "script ok, tree has %d nodes\n", s.eng.Size())
	return nil
}

// printMessage reports a dispatcher result's message, or its error.
func (s *replSession) printMessage(res dispatcher.Result) error {
	if res.IsError() {
		return res.Err
	}
	if res.Message != "" {
		fmt.Fprintln(s.out, res.Message)
	}
	return nil
}

// printText reports a dispatcher result's text payload, or its error.
func (s *replSession) printText(res dispatcher.Result) error {
	if res.IsError() {
		return res.Err
	}
	fmt.Fprintln(s.out, res.Text)
	return nil
}

func (s *replSession) printHelp() {
	fmt.Fprint(s.out, `commands:
  insert <v>          add a value
  delete <v>          remove a value
  edit <id> <v>       change the value held by a node
  clear               empty the tree
  find <v>            report which node holds a value
  traverse [order]    list values (inorder, preorder, postorder)
  range <min> <max>   list values within bounds
  show                print the tree in notation
  export              print the tree as JSON
  undo / redo         step through history
  snapshot [name]     record the current tree
  restore <name|id>   return to a snapshot
  snapshots           list snapshots
  changes [n]         list recent changes
  stats               tree and session counters
  load <path>         parse a notation file into the tree
  save <path>         write the tree's notation to a file
  script <path>       run a Lua script against the tree
  help                this text
  quit                leave the session
`)
}

func parseValue(s string) (bst.Value, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad value %q", s)
	}
	return bst.Value(v), nil
}

func formatValues(values []bst.Value) string {
	if len(values) == 0 {
		return "(none)"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(int64(v), 10)
	}
	return strings.Join(parts, " ")
}

// asInt64 widens the mixed integer types carried in result data.
func asInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case uint64:
		return int64(n)
	default:
		return 0
	}
}
