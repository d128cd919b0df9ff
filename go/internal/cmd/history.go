package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mcdev12/retrospekt/go/internal/identity"
	"github.com/mcdev12/retrospekt/go/internal/phase"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently joined sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printHistory(cmd.OutOrStdout(), services.Identity.History())
		return nil
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <session-id>",
	Short: "Forget one session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return services.Identity.RemoveFromHistory(args[0])
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return services.Identity.ClearHistory()
	},
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func printHistory(out io.Writer, entries []identity.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No recent sessions; start one with: retrospekt create <name>")
		return
	}

	fmt.Fprintln(out, "Recent sessions")
	for _, e := range entries {
		role := e.ParticipantName
		if e.IsFacilitator {
			role += " (facilitator)"
		}
		fmt.Fprintf(out, "  %-36s  %-24s  %-12s  %s  joined %s\n",
			e.ID, e.Name, phase.Label(e.Phase), role, e.JoinedAt.Local().Format("2006-01-02 15:04"))
	}
}
