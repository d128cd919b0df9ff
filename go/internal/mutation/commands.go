// Package mutation turns viewer intents into explicit command values and sends
// them to the server. Commands never touch local session state; their effect is
// only observed through a later snapshot.
package mutation

import (
	"fmt"

	"github.com/mcdev12/retrospekt/go/internal/models"
	"github.com/mcdev12/retrospekt/go/internal/visibility"
)

// Kind names a command for logging.
type Kind string

const (
	KindAddCard          Kind = "add_card"
	KindDeleteCard       Kind = "delete_card"
	KindVote             Kind = "vote"
	KindUnvote           Kind = "unvote"
	KindPublish          Kind = "publish"
	KindPublishAll       Kind = "publish_all"
	KindReact            Kind = "react"
	KindUnreact          Kind = "unreact"
	KindAssign           Kind = "assign"
	KindSetPhase         Kind = "set_phase"
	KindAddColumn        Kind = "add_column"
	KindRenameColumn     Kind = "rename_column"
	KindRemoveColumn     Kind = "remove_column"
	KindSetTimerDuration Kind = "set_timer_duration"
	KindStartTimer       Kind = "start_timer"
	KindPauseTimer       Kind = "pause_timer"
	KindResetTimer       Kind = "reset_timer"
)

// Command is one requested mutation.
type Command interface {
	Kind() Kind
}

type AddCard struct {
	Column string
	Text   string
}

type DeleteCard struct{ CardID string }

type Vote struct{ CardID string }

type Unvote struct{ CardID string }

type Publish struct{ CardID string }

// PublishAll publishes every unpublished card the viewer authored in Column.
type PublishAll struct{ Column string }

type React struct {
	CardID string
	Emoji  string
}

type Unreact struct {
	CardID string
	Emoji  string
}

// Assign sets the card assignee. An empty Assignee clears it.
type Assign struct {
	CardID   string
	Assignee string
}

type SetPhase struct{ To models.Phase }

type AddColumn struct{ Name string }

type RenameColumn struct {
	From string
	To   string
}

type RemoveColumn struct{ Name string }

type SetTimerDuration struct{ Seconds int }

type StartTimer struct{}

type PauseTimer struct{}

type ResetTimer struct{}

func (AddCard) Kind() Kind          { return KindAddCard }
func (DeleteCard) Kind() Kind       { return KindDeleteCard }
func (Vote) Kind() Kind             { return KindVote }
func (Unvote) Kind() Kind           { return KindUnvote }
func (Publish) Kind() Kind          { return KindPublish }
func (PublishAll) Kind() Kind       { return KindPublishAll }
func (React) Kind() Kind            { return KindReact }
func (Unreact) Kind() Kind          { return KindUnreact }
func (Assign) Kind() Kind           { return KindAssign }
func (SetPhase) Kind() Kind         { return KindSetPhase }
func (AddColumn) Kind() Kind        { return KindAddColumn }
func (RenameColumn) Kind() Kind     { return KindRenameColumn }
func (RemoveColumn) Kind() Kind     { return KindRemoveColumn }
func (SetTimerDuration) Kind() Kind { return KindSetTimerDuration }
func (StartTimer) Kind() Kind       { return KindStartTimer }
func (PauseTimer) Kind() Kind       { return KindPauseTimer }
func (ResetTimer) Kind() Kind       { return KindResetTimer }

// ToggleVote returns Unvote when the viewer already voted on the card and Vote otherwise.
func ToggleVote(card visibility.CardView) Command {
	if card.HasVoted {
		return Unvote{CardID: card.ID}
	}
	return Vote{CardID: card.ID}
}

// ToggleReaction returns Unreact when the viewer already reacted with emoji.
func ToggleReaction(card visibility.CardView, emoji string) Command {
	for _, r := range card.Reactions {
		if r.Emoji == emoji && r.Reacted {
			return Unreact{CardID: card.ID, Emoji: emoji}
		}
	}
	return React{CardID: card.ID, Emoji: emoji}
}

// Describe renders a command for logs and CLI output.
func Describe(cmd Command) string {
	switch c := cmd.(type) {
	case AddCard:
		return fmt.Sprintf("%s column=%q", c.Kind(), c.Column)
	case DeleteCard:
		return fmt.Sprintf("%s card=%s", c.Kind(), c.CardID)
	case Vote:
		return fmt.Sprintf("%s card=%s", c.Kind(), c.CardID)
	case Unvote:
		return fmt.Sprintf("%s card=%s", c.Kind(), c.CardID)
	case Publish:
		return fmt.Sprintf("%s card=%s", c.Kind(), c.CardID)
	case PublishAll:
		return fmt.Sprintf("%s column=%q", c.Kind(), c.Column)
	case React:
		return fmt.Sprintf("%s card=%s emoji=%s", c.Kind(), c.CardID, c.Emoji)
	case Unreact:
		return fmt.Sprintf("%s card=%s emoji=%s", c.Kind(), c.CardID, c.Emoji)
	case Assign:
		return fmt.Sprintf("%s card=%s assignee=%q", c.Kind(), c.CardID, c.Assignee)
	case SetPhase:
		return fmt.Sprintf("%s to=%s", c.Kind(), c.To)
	case AddColumn:
		return fmt.Sprintf("%s name=%q", c.Kind(), c.Name)
	case RenameColumn:
		return fmt.Sprintf("%s from=%q to=%q", c.Kind(), c.From, c.To)
	case RemoveColumn:
		return fmt.Sprintf("%s name=%q", c.Kind(), c.Name)
	case SetTimerDuration:
		return fmt.Sprintf("%s seconds=%d", c.Kind(), c.Seconds)
	case nil:
		return "<nil>"
	default:
		return string(cmd.Kind())
	}
}
