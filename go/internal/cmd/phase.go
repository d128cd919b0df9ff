package main

import (
	"github.com/spf13/cobra"
)

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Move a session between phases (facilitator only)",
}

var phaseNextCmd = &cobra.Command{
	Use:     "next <session-id>",
	Aliases: []string{"advance"},
	Short:   "Move to the next phase",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOneShot(cmd, args[0], []string{"next"})
	},
}

var phaseBackCmd = &cobra.Command{
	Use:   "back <session-id>",
	Short: "Return to the previous phase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOneShot(cmd, args[0], []string{"back"})
	},
}

func init() {
	phaseCmd.AddCommand(phaseNextCmd)
	phaseCmd.AddCommand(phaseBackCmd)
}
