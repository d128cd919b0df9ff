package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mcdev12/retrospekt/go/internal/models"
	"github.com/mcdev12/retrospekt/go/internal/mutation"
	"github.com/mcdev12/retrospekt/go/internal/view"
	"github.com/mcdev12/retrospekt/go/internal/visibility"
)

var (
	errUsage   = errors.New("usage")
	errUnknown = errors.New("unknown command")
)

const helpText = `Commands (cards by #number or id, columns by number or name):
  add <column> [text]          add a card, or open a draft
  delete <card>                delete one of your cards
  publish <card>               publish one of your cards
  publish-all <column>         publish all your cards in a column
  vote <card>                  toggle your vote
  react <card> <emoji>         toggle a reaction
  assign <card> [name]         set or clear the assignee
  next | back                  move the session phase
  timer set <duration>         set the timer (seconds or 5m)
  timer start|pause|reset
  column add <name>
  column rename <column> [name]
  column remove <column>
  mute | unmute                toggle the timer sound
  help | quit`

// target is what an argument list is resolved against.
type target struct {
	session *models.Session
	board   visibility.BoardView
	local   *view.LocalState
}

func targetOf(ctrl *view.Controller) target {
	return target{
		session: ctrl.Session(),
		board:   ctrl.View(),
		local:   ctrl.Local(),
	}
}

type phaseStep int

const (
	stepNone phaseStep = iota
	stepAdvance
	stepBack
)

// action is one parsed request. Exactly one field is set.
type action struct {
	cmd    mutation.Command
	step   phaseStep
	mute   *bool
	draft  string
	rename string
	cancel bool
	help   bool
	quit   bool
}

// interpret parses one prompt line. While a draft or a column edit is open
// the whole line is its text and an empty line cancels it.
func interpret(line string, t target) (action, error) {
	line = strings.TrimSpace(line)

	if col := t.local.DraftColumn(); col != "" {
		t.local.CloseDraft()
		if line == "" {
			return action{cancel: true}, nil
		}
		return action{cmd: mutation.AddCard{Column: col, Text: line}}, nil
	}
	if col := t.local.EditingColumn(); col != "" {
		t.local.EditColumn("")
		if line == "" {
			return action{cancel: true}, nil
		}
		return action{cmd: mutation.RenameColumn{From: col, To: line}}, nil
	}

	if line == "" {
		return action{}, nil
	}
	return parseArgs(strings.Fields(line), t)
}

func parseArgs(args []string, t target) (action, error) {
	if len(args) == 0 {
		return action{}, fmt.Errorf("%w: empty command", errUsage)
	}
	verb, rest := strings.ToLower(args[0]), args[1:]

	switch verb {
	case "help", "?":
		return action{help: true}, nil
	case "quit", "exit", "q":
		return action{quit: true}, nil
	case "next", "advance":
		return action{step: stepAdvance}, nil
	case "back", "previous":
		return action{step: stepBack}, nil
	case "mute", "unmute":
		muted := verb == "mute"
		return action{mute: &muted}, nil

	case "add":
		if len(rest) == 0 {
			return action{}, fmt.Errorf("%w: add <column> <text>", errUsage)
		}
		if len(rest) == 1 {
			return action{draft: resolveColumn(t.session, rest[0])}, nil
		}
		return action{cmd: mutation.AddCard{
			Column: resolveColumn(t.session, rest[0]),
			Text:   strings.Join(rest[1:], " "),
		}}, nil

	case "delete", "rm":
		id, err := cardArg(rest, t, "delete <card>")
		if err != nil {
			return action{}, err
		}
		return action{cmd: mutation.DeleteCard{CardID: id}}, nil

	case "publish":
		id, err := cardArg(rest, t, "publish <card>")
		if err != nil {
			return action{}, err
		}
		return action{cmd: mutation.Publish{CardID: id}}, nil

	case "publish-all":
		if len(rest) != 1 {
			return action{}, fmt.Errorf("%w: publish-all <column>", errUsage)
		}
		return action{cmd: mutation.PublishAll{Column: resolveColumn(t.session, rest[0])}}, nil

	case "vote":
		id, err := cardArg(rest, t, "vote <card>")
		if err != nil {
			return action{}, err
		}
		card, ok := t.board.Card(id)
		if !ok {
			return action{cmd: mutation.Vote{CardID: id}}, nil
		}
		return action{cmd: mutation.ToggleVote(card)}, nil

	case "react":
		if len(rest) != 2 {
			return action{}, fmt.Errorf("%w: react <card> <emoji>", errUsage)
		}
		id, err := resolveCard(t.local, rest[0])
		if err != nil {
			return action{}, err
		}
		card, ok := t.board.Card(id)
		if !ok {
			return action{cmd: mutation.React{CardID: id, Emoji: rest[1]}}, nil
		}
		return action{cmd: mutation.ToggleReaction(card, rest[1])}, nil

	case "assign":
		if len(rest) < 1 {
			return action{}, fmt.Errorf("%w: assign <card> [name]", errUsage)
		}
		id, err := resolveCard(t.local, rest[0])
		if err != nil {
			return action{}, err
		}
		return action{cmd: mutation.Assign{CardID: id, Assignee: strings.Join(rest[1:], " ")}}, nil

	case "timer":
		return parseTimer(rest)

	case "column":
		return parseColumn(rest, t)
	}

	return action{}, fmt.Errorf("%w: %q, try help", errUnknown, verb)
}

func parseTimer(args []string) (action, error) {
	if len(args) == 0 {
		return action{}, fmt.Errorf("%w: timer set|start|pause|reset", errUsage)
	}
	switch strings.ToLower(args[0]) {
	case "set":
		if len(args) != 2 {
			return action{}, fmt.Errorf("%w: timer set <duration>", errUsage)
		}
		seconds, err := parseSeconds(args[1])
		if err != nil {
			return action{}, err
		}
		return action{cmd: mutation.SetTimerDuration{Seconds: seconds}}, nil
	case "start":
		return action{cmd: mutation.StartTimer{}}, nil
	case "pause":
		return action{cmd: mutation.PauseTimer{}}, nil
	case "reset":
		return action{cmd: mutation.ResetTimer{}}, nil
	}
	return action{}, fmt.Errorf("%w: timer %q", errUnknown, args[0])
}

func parseColumn(args []string, t target) (action, error) {
	if len(args) < 2 {
		return action{}, fmt.Errorf("%w: column add|rename|remove", errUsage)
	}
	switch strings.ToLower(args[0]) {
	case "add":
		return action{cmd: mutation.AddColumn{Name: strings.Join(args[1:], " ")}}, nil
	case "rename":
		if len(args) == 2 {
			return action{rename: resolveColumn(t.session, args[1])}, nil
		}
		return action{cmd: mutation.RenameColumn{
			From: resolveColumn(t.session, args[1]),
			To:   strings.Join(args[2:], " "),
		}}, nil
	case "remove", "rm":
		return action{cmd: mutation.RemoveColumn{Name: resolveColumn(t.session, strings.Join(args[1:], " "))}}, nil
	}
	return action{}, fmt.Errorf("%w: column %q", errUnknown, args[0])
}

func cardArg(args []string, t target, usage string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: %s", errUsage, usage)
	}
	return resolveCard(t.local, args[0])
}

// resolveCard maps "#n" or "n" to the card shown at that position. Anything
// else is taken as a card id.
func resolveCard(local *view.LocalState, ref string) (string, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return ref, nil
	}
	id, ok := local.CardAt(n)
	if !ok {
		return "", fmt.Errorf("%w: #%d", mutation.ErrUnknownCard, n)
	}
	return id, nil
}

// resolveColumn accepts a 1-based column number or a case-insensitive name.
// Unmatched references are returned unchanged and rejected by Authorize.
func resolveColumn(session *models.Session, ref string) string {
	if session == nil {
		return ref
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(session.Columns) {
		return session.Columns[n-1]
	}
	for _, name := range session.Columns {
		if strings.EqualFold(name, ref) {
			return name
		}
	}
	return ref
}

// parseSeconds accepts whole seconds or a Go duration such as "5m".
func parseSeconds(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid duration %q", errUsage, s)
	}
	return int(d / time.Second), nil
}

// perform runs a parsed action and returns a short confirmation.
func perform(ctx context.Context, ctrl *view.Controller, svc *Services, act action) (string, error) {
	switch {
	case act.help:
		return helpText, nil
	case act.mute != nil:
		if err := svc.Identity.SetMuted(*act.mute); err != nil {
			return "", err
		}
		if *act.mute {
			return "timer sound off", nil
		}
		return "timer sound on", nil
	case act.cancel:
		return "cancelled", nil
	case act.draft != "":
		if col, ok := ctrl.View().Column(act.draft); !ok || !col.CanAdd {
			return "", fmt.Errorf("%w: add_card in %q", mutation.ErrNotPermitted, act.draft)
		}
		ctrl.Local().OpenDraft(act.draft)
		return fmt.Sprintf("new card in %s: type the text, empty line to cancel", act.draft), nil
	case act.rename != "":
		if col, ok := ctrl.View().Column(act.rename); !ok || !col.CanRenameOrRemove {
			return "", fmt.Errorf("%w: rename_column %q", mutation.ErrNotPermitted, act.rename)
		}
		ctrl.Local().EditColumn(act.rename)
		return fmt.Sprintf("renaming %s: type the new name, empty line to cancel", act.rename), nil
	case act.step == stepAdvance:
		if err := ctrl.Advance(ctx); err != nil {
			return "", err
		}
		return "requested next phase", nil
	case act.step == stepBack:
		if err := ctrl.GoBack(ctx); err != nil {
			return "", err
		}
		return "requested previous phase", nil
	case act.cmd != nil:
		if err := ctrl.Do(ctx, act.cmd); err != nil {
			return "", err
		}
		return "sent " + mutation.Describe(act.cmd), nil
	}
	return "", nil
}
