package main

import (
	"github.com/spf13/cobra"
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Add, vote on and discuss cards",
	Long: `Card commands act on one session. Cards are referenced by id or by
their #number on the board, columns by name or number.`,
}

// sessionVerb builds a subcommand that forwards its arguments after the
// session id to the board command parser.
func sessionVerb(use, short, verb string, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd, args[0], append([]string{verb}, args[1:]...))
		},
	}
}

func init() {
	cardCmd.AddCommand(sessionVerb("add <session-id> <column> <text>...", "Add a card", "add", cobra.MinimumNArgs(3)))
	cardCmd.AddCommand(sessionVerb("delete <session-id> <card>", "Delete one of your cards", "delete", cobra.ExactArgs(2)))
	cardCmd.AddCommand(sessionVerb("publish <session-id> <card>", "Publish one of your cards", "publish", cobra.ExactArgs(2)))
	cardCmd.AddCommand(sessionVerb("publish-all <session-id> <column>", "Publish all your cards in a column", "publish-all", cobra.ExactArgs(2)))
	cardCmd.AddCommand(sessionVerb("vote <session-id> <card>", "Toggle your vote on a card", "vote", cobra.ExactArgs(2)))
	cardCmd.AddCommand(sessionVerb("react <session-id> <card> <emoji>", "Toggle a reaction on a card", "react", cobra.ExactArgs(3)))
	cardCmd.AddCommand(sessionVerb("assign <session-id> <card> [name]", "Set or clear a card's assignee", "assign", cobra.RangeArgs(2, 3)))
}
