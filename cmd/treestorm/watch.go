package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dshills/treestorm/internal/notation"
)

func newWatchCommand(st *cliState) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-parse a notation file on every write",
		Long: `Watch re-parses the file whenever it changes and prints the canonical
rendering, or the parse error when the text is malformed. Rapid writes
within the debounce interval collapse into one re-parse.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchFile(cmd, st, args[0], interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 200*time.Millisecond, "debounce window for rapid writes")
	return cmd
}

func watchFile(cmd *cobra.Command, st *cliState, path string, debounce time.Duration) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Editors replace files by renaming over them, which kills a direct
	// file watch. Watching the directory and filtering by name survives it.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st.log.Info().Str("file", abs).Dur("interval", debounce).Msg("watching")
	renderFile(cmd, abs)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				fire = timer.C
				continue
			}
			if !timer.Stop() {
				select {
				case <-fire:
				default:
				}
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			st.log.Error().Err(err).Msg("watch error")

		case <-fire:
			timer, fire = nil, nil
			renderFile(cmd, abs)
		}
	}
}

// renderFile parses the file and prints its canonical rendering, or the
// positioned parse error when the text is malformed.
func renderFile(cmd *cobra.Command, path string) {
	out := cmd.OutOrStdout()
	stamp := time.Now().Format("15:04:05")

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "--- %s %s\n%v\n", stamp, path, err)
		return
	}

	tree, err := notation.Parse(string(data))
	if err != nil {
		var perr *notation.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintf(out, "--- %s %s\nline %d [%s]: %s\n", stamp, path, perr.Line, perr.Category, perr.Message)
			return
		}
		fmt.Fprintf(out, "--- %s %s\n%v\n", stamp, path, err)
		return
	}

	fmt.Fprintf(out, "--- %s %s (%d nodes)\n", stamp, path, tree.Size())
	if text := notation.Marshal(tree); text != "" {
		fmt.Fprintln(out, text)
	}
}
