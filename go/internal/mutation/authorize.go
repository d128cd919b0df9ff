package mutation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mcdev12/retrospekt/go/internal/models"
	"github.com/mcdev12/retrospekt/go/internal/phase"
	"github.com/mcdev12/retrospekt/go/internal/timer"
	"github.com/mcdev12/retrospekt/go/internal/visibility"
)

var (
	ErrNotPermitted    = errors.New("action not permitted")
	ErrUnknownCard     = errors.New("card not visible")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrEmptyText       = errors.New("text must not be empty")
	ErrDuplicateColumn = errors.New("column already exists")
	ErrUnknownCommand  = errors.New("unknown command")
)

// Snapshot is what a command is checked against: the derived view plus the raw
// timer state and wall time the view was derived at.
type Snapshot struct {
	Board visibility.BoardView
	Timer *models.TimerSnapshot
	Now   time.Time
}

// Authorize checks cmd against the affordances the viewer currently has. It
// mirrors what a UI would disable; the server remains the final authority.
func Authorize(cmd Command, s Snapshot) error {
	board := s.Board

	switch c := cmd.(type) {
	case AddCard:
		col, ok := board.Column(c.Column)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c.Column)
		}
		if strings.TrimSpace(c.Text) == "" {
			return ErrEmptyText
		}
		return allow(col.CanAdd, cmd)

	case DeleteCard:
		return cardAllows(board, c.CardID, cmd, func(v visibility.CardView) bool { return v.CanDelete })

	case Vote:
		return cardAllows(board, c.CardID, cmd, func(v visibility.CardView) bool { return v.CanVote && !v.HasVoted })

	case Unvote:
		return cardAllows(board, c.CardID, cmd, func(v visibility.CardView) bool { return v.CanVote && v.HasVoted })

	case Publish:
		return cardAllows(board, c.CardID, cmd, func(v visibility.CardView) bool { return v.CanPublish })

	case PublishAll:
		col, ok := board.Column(c.Column)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c.Column)
		}
		return allow(col.CanPublishAll, cmd)

	case React:
		return cardAllows(board, c.CardID, cmd, func(v visibility.CardView) bool {
			return v.CanReact && visibility.InPalette(c.Emoji)
		})

	case Unreact:
		return cardAllows(board, c.CardID, cmd, func(v visibility.CardView) bool {
			if !v.CanReact {
				return false
			}
			for _, r := range v.Reactions {
				if r.Emoji == c.Emoji {
					return r.Reacted
				}
			}
			return false
		})

	case Assign:
		return cardAllows(board, c.CardID, cmd, func(v visibility.CardView) bool { return v.CanAssign })

	case SetPhase:
		if next, ok := phase.Next(board.Phase); ok && next == c.To {
			return allow(board.CanAdvance, cmd)
		}
		if prev, ok := phase.Previous(board.Phase); ok && prev == c.To {
			return allow(board.CanGoBack, cmd)
		}
		return fmt.Errorf("%w: %s from %s", ErrNotPermitted, c.To, board.Phase)

	case AddColumn:
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return ErrEmptyText
		}
		if _, exists := board.Column(name); exists {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		return allow(board.CanAddColumn, cmd)

	case RenameColumn:
		col, ok := board.Column(c.From)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c.From)
		}
		to := strings.TrimSpace(c.To)
		if to == "" {
			return ErrEmptyText
		}
		if _, exists := board.Column(to); exists && to != c.From {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, to)
		}
		return allow(col.CanRenameOrRemove, cmd)

	case RemoveColumn:
		col, ok := board.Column(c.Name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c.Name)
		}
		return allow(col.CanRenameOrRemove, cmd)

	case SetTimerDuration:
		if err := timer.ValidateDuration(c.Seconds); err != nil {
			return err
		}
		return allow(board.CanManageTimer, cmd)

	case StartTimer:
		remaining := timer.RemainingSeconds(s.Timer, s.Now)
		return allow(board.CanManageTimer && timer.CanStart(s.Timer, remaining), cmd)

	case PauseTimer:
		return allow(board.CanManageTimer && s.Timer.Running(), cmd)

	case ResetTimer:
		return allow(board.CanManageTimer && s.Timer != nil, cmd)
	}

	return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
}

func allow(ok bool, cmd Command) error {
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotPermitted, cmd.Kind())
	}
	return nil
}

func cardAllows(board visibility.BoardView, cardID string, cmd Command, check func(visibility.CardView) bool) error {
	card, ok := board.Card(cardID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	return allow(check(card), cmd)
}
