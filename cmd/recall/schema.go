package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandevgo/recall/internal/storage/supabase"
)

var schemaCmd = &cobra.Command{
	Use:       "schema <backend>",
	Short:     "Print the SQL a remote backend needs before first use",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"supabase"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "supabase":
			_, err := fmt.Fprint(cmd.OutOrStdout(), supabase.Schema)
			return err
		default:
			return fmt.Errorf("no schema for backend %q", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
