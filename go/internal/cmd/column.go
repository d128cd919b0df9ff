package main

import (
	"github.com/spf13/cobra"
)

var columnCmd = &cobra.Command{
	Use:   "column",
	Short: "Edit session columns (facilitator only, collecting phase)",
}

func init() {
	columnCmd.AddCommand(&cobra.Command{
		Use:   "add <session-id> <name>",
		Short: "Add a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd, args[0], []string{"column", "add", args[1]})
		},
	})
	columnCmd.AddCommand(&cobra.Command{
		Use:   "rename <session-id> <column> <name>",
		Short: "Rename a column",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd, args[0], []string{"column", "rename", args[1], args[2]})
		},
	})
	columnCmd.AddCommand(&cobra.Command{
		Use:   "remove <session-id> <column>",
		Short: "Remove a column and its cards",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd, args[0], []string{"column", "remove", args[1]})
		},
	})
}
