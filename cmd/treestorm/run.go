package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/treestorm/internal/script"
)

func newRunCommand(st *cliState) *cobra.Command {
	var loadPath string

	cmd := &cobra.Command{
		Use:   "run <script.lua>",
		Short: "Run a Lua script against a tree",
		Long: `Run executes a Lua script with the tree module in scope and prints the
resulting notation. With --load the engine starts from a notation file
instead of an empty tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			eng := st.newEngine()
			if loadPath != "" {
				data, err := os.ReadFile(loadPath)
				if err != nil {
					return err
				}
				if err := eng.ParseNotation(string(data)); err != nil {
					return fmt.Errorf("%s: %w", loadPath, err)
				}
			}

			host := script.NewHost(eng,
				script.WithTimeout(st.cfg.ScriptTimeout()),
				script.WithLogger(st.log))
			defer host.Close()

			if err := host.Run(string(code)); err != nil {
				return err
			}

			if text := eng.Notation(); text != "" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&loadPath, "load", "", "notation file to load before running")
	return cmd
}
