package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/treestorm/internal/notation"
	"github.com/dshills/treestorm/internal/protocol"
)

func newCheckCommand(st *cliState) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a notation file",
		Long: `Check parses a notation file and reports the first error with its line
number and category as JSON on stdout. With --repair the indentation is
normalized before parsing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			text := string(data)
			if repair {
				text = notation.Repair(text)
			}

			tree, err := notation.Parse(text)
			if err != nil {
				var perr *notation.ParseError
				if errors.As(err, &perr) {
					if out, merr := protocol.MarshalParseError(perr); merr == nil {
						fmt.Fprintln(cmd.OutOrStdout(), string(out))
					}
				}
				return fmt.Errorf("%s: %w", path, err)
			}

			st.log.Debug().Str("file", path).Int("nodes", tree.Size()).Msg("check passed")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d nodes)\n", path, tree.Size())
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "normalize indentation before parsing")
	return cmd
}
