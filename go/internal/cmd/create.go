package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcdev12/retrospekt/go/clients/retro_api_client"
	"github.com/mcdev12/retrospekt/go/internal/identity"
)

var (
	createColumns     []string
	createNoReactions bool
	createWatch       bool
)

var createCmd = &cobra.Command{
	Use:   "create <session-name>",
	Short: "Create a session and become its facilitator",
	Long: `Create starts a new session and stores the facilitator token locally.
The token is only returned once, so keep the state file if you want to
facilitate from another machine.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringSliceVar(&createColumns, "column", nil, "Column name, repeatable (default server columns)")
	createCmd.Flags().BoolVar(&createNoReactions, "no-reactions", false, "Disable emoji reactions")
	createCmd.Flags().BoolVar(&createWatch, "watch", false, "Watch the session after creating it")
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	name := participantName
	if name == "" {
		if !isInteractive() {
			return fmt.Errorf("pass --name to create a session")
		}
		fmt.Fprint(os.Stderr, "Your name: ")
		line, err := readLine()
		if err != nil {
			return err
		}
		name = line
	}
	if name == "" {
		return fmt.Errorf("a participant name is required")
	}

	resp, err := services.API.CreateSession(ctx, retro_api_client.CreateSessionRequest{
		Name:             args[0],
		ParticipantName:  name,
		Columns:          createColumns,
		ReactionsEnabled: !createNoReactions,
	})
	if err != nil {
		return err
	}

	store := services.Identity
	if err := store.SetName(resp.ID, name); err != nil {
		return err
	}
	if err := store.SetFacilitatorToken(resp.ID, resp.FacilitatorToken); err != nil {
		return err
	}
	if err := store.AddOrUpdateHistory(identity.HistoryEntry{
		ID:              resp.ID,
		Name:            resp.Name,
		Phase:           resp.Phase,
		CreatedAt:       resp.CreatedAt.Time,
		ParticipantName: name,
		IsFacilitator:   true,
		JoinedAt:        time.Now().UTC(),
	}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created session %q\n", resp.Name)
	fmt.Fprintf(out, "  id:    %s\n", resp.ID)
	fmt.Fprintf(out, "  share: retrospekt watch %s\n", resp.ID)

	if !createWatch {
		return nil
	}
	watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchSession(watchCtx, out, resp.ID)
}
