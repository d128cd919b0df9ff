package visibility

import "github.com/mcdev12/retrospekt/go/internal/models"

// Viewer is the locally known identity deriving a view. It never lives on the Session.
type Viewer struct {
	Name          string
	IsFacilitator bool
}

// Known reports whether the viewer has a participant name.
func (v Viewer) Known() bool {
	return v.Name != ""
}

// ReactionCount is one reaction affordance on a card.
type ReactionCount struct {
	Emoji   string
	Count   int
	Reacted bool
}

// CardView is a card as seen by one viewer, with the actions that viewer may take.
type CardView struct {
	ID         string
	Column     string
	Text       string
	AuthorName string
	Assignee   string
	Published  bool
	IsOwn      bool
	VoteCount  int
	HasVoted   bool

	CanVote    bool
	CanDelete  bool
	CanPublish bool
	CanReact   bool
	CanAssign  bool

	// Reactions is nil whenever reactions are disabled for the session.
	Reactions []ReactionCount
}

// ColumnView is a column as seen by one viewer.
type ColumnView struct {
	Name              string
	Cards             []CardView
	CanAdd            bool
	CanRenameOrRemove bool
	CanPublishAll     bool
}

// BoardView is the complete derived view of a session for one viewer.
type BoardView struct {
	SessionID        string
	Phase            models.Phase
	Columns          []ColumnView
	ReactionsEnabled bool

	CanAdvance     bool
	CanGoBack      bool
	CanAddColumn   bool
	CanManageTimer bool
}

// Column returns the named column view.
func (v BoardView) Column(name string) (ColumnView, bool) {
	for _, c := range v.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnView{}, false
}

// Card returns the visible card with the given id.
func (v BoardView) Card(id string) (CardView, bool) {
	for _, col := range v.Columns {
		for _, c := range col.Cards {
			if c.ID == id {
				return c, true
			}
		}
	}
	return CardView{}, false
}

// VisibleCardCount returns the number of cards visible across all columns.
func (v BoardView) VisibleCardCount() int {
	n := 0
	for _, col := range v.Columns {
		n += len(col.Cards)
	}
	return n
}
