package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mcdev12/retrospekt/go/internal/render"
	"github.com/mcdev12/retrospekt/go/internal/timer"
	"github.com/mcdev12/retrospekt/go/internal/view"
)

const clearScreen = "\033[H\033[2J"

var watchCmd = &cobra.Command{
	Use:   "watch <session-id>",
	Short: "Join a session and follow the live board",
	Long: `Watch loads a session, joins it and redraws the board whenever the
server pushes a new snapshot. On a terminal, commands typed at the prompt
are sent to the server; type help for the list.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchSession(ctx, cmd.OutOrStdout(), args[0])
}

func watchSession(ctx context.Context, out io.Writer, sessionID string) error {
	transport, closeTransport, err := setupTransport(services.Config)
	if err != nil {
		return err
	}
	defer closeTransport()

	tty := isTerminal(out)
	redraw := make(chan struct{}, 1)

	ctrl := newController(services, sessionID, controllerOptions{
		Sync:      view.TransportSync(transport),
		Navigator: view.NavigatorFunc(func(id string, cause error) { redirectHome(out, id) }),
		Cue:       timer.CueFunc(func() { fmt.Fprint(out, "\a") }),
		OnChange: func(e view.Event) {
			// Off a terminal, only redraw for new state, not every second
			if e.Kind == view.EventTick && !tty {
				return
			}
			select {
			case redraw <- struct{}{}:
			default:
			}
		},
	})
	defer ctrl.Teardown()

	if err := loadController(ctx, ctrl); err != nil {
		return err
	}
	log.Debug().
		Str("session_id", sessionID).
		Str("api_url", services.API.BaseURL()).
		Str("transport", services.Config.PushTransport).
		Msg("watching session")

	renderer := render.New(out)
	draw := func() {
		screen := drawBoard(renderer, ctrl, services)
		if tty {
			fmt.Fprint(out, clearScreen)
		}
		fmt.Fprint(out, screen)
		if isInteractive() {
			fmt.Fprint(out, "> ")
		}
	}
	draw()

	var lines <-chan string
	if isInteractive() {
		lines = scanLines(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-redraw:
			draw()

		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			act, err := interpret(line, targetOf(ctrl))
			if err == nil && act.quit {
				return nil
			}
			if err == nil && act == (action{}) {
				draw()
				continue
			}

			msg := ""
			if err == nil {
				msg, err = perform(ctx, ctrl, services, act)
			}
			if err != nil {
				msg = err.Error()
			}
			ctrl.Local().SetStatus(msg)
			draw()
		}
	}
}

// scanLines feeds stdin lines until EOF. The reader goroutine cannot be
// interrupted and exits with the process.
func scanLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := readLine()
			if err != nil {
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// redirectHome replaces the board with the recent sessions list when the
// session cannot be shown.
func redirectHome(out io.Writer, sessionID string) {
	fmt.Fprintf(out, "Session %s is not available.\n\n", sessionID)
	printHistory(out, services.Identity.History())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
