package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/treestorm/internal/notation"
)

func newFmtCommand(st *cliState) *cobra.Command {
	var (
		write  bool
		repair bool
	)

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Rewrite a notation file in canonical form",
		Long: `Fmt parses a notation file and prints its canonical serialization: two
spaces per level, left block before right. With -w the file is rewritten
in place; with --repair the indentation is normalized before parsing.`,
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
				return fmt.Errorf("%s: %w", path, err)
			}

			canon := notation.Marshal(tree)
			if canon != "" {
				canon += "\n"
			}

			if write {
				if string(data) == canon {
					return nil
				}
				return os.WriteFile(path, []byte(canon), 0o644)
			}
			fmt.Fprint(cmd.OutOrStdout(), canon)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file")
	cmd.Flags().BoolVar(&repair, "repair", false, "normalize indentation before parsing")
	return cmd
}
