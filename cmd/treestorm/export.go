package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/dshills/treestorm/internal/notation"
	"github.com/dshills/treestorm/internal/protocol"
)

func newExportCommand(st *cliState) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Convert a notation file to its JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			tree, err := notation.Parse(string(data))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			doc, err := protocol.MarshalTree(tree)
			if err != nil {
				return err
			}
			out := string(doc)
			if pretty {
				out = strings.TrimRight(gjson.GetBytes(doc, "@pretty").Raw, "\n")
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}
