package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mcdev12/retrospekt/go/internal/mutation"
	"github.com/mcdev12/retrospekt/go/internal/render"
	"github.com/mcdev12/retrospekt/go/internal/timer"
	"github.com/mcdev12/retrospekt/go/internal/view"
)

var stdin = bufio.NewReader(os.Stdin)

type controllerOptions struct {
	Sync      view.SyncFactory
	Navigator view.Navigator
	Cue       timer.Cue
	OnChange  func(view.Event)
}

func newController(svc *Services, sessionID string, opts controllerOptions) *view.Controller {
	return view.NewController(view.Config{
		SessionID:  sessionID,
		API:        svc.API,
		Identity:   svc.Identity,
		Navigator:  opts.Navigator,
		Dispatcher: mutation.NewAPIDispatcher(svc.API, sessionID, svc.Identity),
		Sync:       opts.Sync,
		Cue:        opts.Cue,
		OnChange:   opts.OnChange,
	})
}

// loadController loads the session and, when no name is stored, joins with
// --name or asks for one on an interactive terminal.
func loadController(ctx context.Context, ctrl *view.Controller) error {
	if err := ctrl.Load(ctx); err != nil {
		return err
	}
	if ctrl.State() != view.StateNamePrompt {
		return nil
	}

	if participantName != "" {
		return ctrl.SubmitName(ctx, participantName)
	}
	if !isInteractive() {
		return fmt.Errorf("%w: pass --name to join this session", view.ErrNoIdentity)
	}

	for ctrl.State() == view.StateNamePrompt {
		fmt.Fprint(os.Stderr, "Your name: ")
		name, err := readLine()
		if err != nil {
			return err
		}
		if err := ctrl.SubmitName(ctx, name); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return nil
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func readLine() (string, error) {
	line, err := stdin.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func frameOf(ctrl *view.Controller, svc *Services) render.Frame {
	return render.Frame{
		Session:   ctrl.Session(),
		Board:     ctrl.View(),
		Viewer:    ctrl.Viewer(),
		Remaining: ctrl.Remaining(),
		Muted:     svc.Identity.Muted(),
		Status:    ctrl.Local().Status(),
	}
}

// drawBoard renders the current board and records its card numbering.
func drawBoard(r *render.Renderer, ctrl *view.Controller, svc *Services) string {
	out, listing := r.Board(frameOf(ctrl, svc))
	ctrl.Local().SetListing(listing)
	return out
}

// runOneShot loads a session, sends one command built from args and exits.
// The server's broadcast is not awaited.
func runOneShot(cmd *cobra.Command, sessionID string, args []string) error {
	ctx := cmd.Context()

	ctrl := newController(services, sessionID, controllerOptions{})
	defer ctrl.Teardown()

	if err := loadController(ctx, ctrl); err != nil {
		return err
	}
	drawBoard(render.New(io.Discard), ctrl, services)

	act, err := parseArgs(args, targetOf(ctrl))
	if err != nil {
		return err
	}
	if act.draft != "" || act.rename != "" {
		return fmt.Errorf("%w: text is required outside watch", errUsage)
	}
	msg, err := perform(ctx, ctrl, services, act)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
