package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/treestorm/internal/config"
	"github.com/dshills/treestorm/internal/engine"
)

// cliState carries the loaded configuration and logger shared by all
// subcommands. PersistentPreRunE fills it in before any RunE fires.
type cliState struct {
	cfg *config.Config
	log zerolog.Logger
}

func newRootCommand() *cobra.Command {
	st := &cliState{}
	var (
		configPath string
		logLevel   string
	)

	root := &cobra.Command{
		Use:   "treestorm",
		Short: "Edit binary search trees written in indentation notation",
		Long: `Treestorm edits binary search trees expressed in an indentation-based
notation. Every mutation builds a fresh tree, so undo, redo, and
snapshots restore earlier states exactly, node identities included.`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.init(configPath, logLevel)
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newReplCommand(st),
		newCheckCommand(st),
		newFmtCommand(st),
		newExportCommand(st),
		newRunCommand(st),
		newWatchCommand(st),
	)
	return root
}

// init loads the configuration file and builds the logger. An unnamed or
// missing config file falls back to defaults.
func (st *cliState) init(configPath, logLevel string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.NewLoader().Load(configPath)
		if err != nil {
			return err
		}
		if loaded != nil {
			cfg = loaded
		}
	}
	st.cfg = cfg

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", level, err)
	}
	st.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(lvl)
	return nil
}

// newEngine builds an engine sized from the loaded configuration.
func (st *cliState) newEngine() *engine.Engine {
	return engine.New(
		engine.WithLogger(st.log),
		engine.WithMaxUndoEntries(st.cfg.Engine.MaxUndoEntries),
		engine.WithChangeLogSize(st.cfg.Engine.ChangeLogSize),
	)
}
