package visibility

import (
	"sort"

	"github.com/mcdev12/retrospekt/go/internal/models"
	"github.com/mcdev12/retrospekt/go/internal/phase"
)

// Authorizer decides whether a viewer may set or clear a card's assignee.
// It is the source of truth for assignment; the engine never re-derives it.
type Authorizer interface {
	CanAssign(session *models.Session, card *models.Card, viewer Viewer) bool
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(session *models.Session, card *models.Card, viewer Viewer) bool

// CanAssign implements Authorizer.
func (f AuthorizerFunc) CanAssign(session *models.Session, card *models.Card, viewer Viewer) bool {
	return f(session, card, viewer)
}

// FacilitatorOrSelf lets the facilitator assign any card and an author assign
// their own, on published cards while discussing.
var FacilitatorOrSelf = AuthorizerFunc(func(session *models.Session, card *models.Card, viewer Viewer) bool {
	if !phase.AllowsDiscussion(session.Phase) || !card.Published {
		return false
	}
	return viewer.IsFacilitator || card.IsAuthoredBy(viewer.Name)
})

// Engine derives per-viewer board views from session snapshots.
type Engine struct {
	authorizer Authorizer
}

// NewEngine creates a new Engine. A nil authorizer falls back to FacilitatorOrSelf.
func NewEngine(authorizer Authorizer) *Engine {
	if authorizer == nil {
		authorizer = FacilitatorOrSelf
	}
	return &Engine{authorizer: authorizer}
}

var defaultEngine = NewEngine(nil)

// DeriveView derives the view for the named viewer using the default assignment policy.
func DeriveView(session *models.Session, viewerName string, isFacilitator bool) BoardView {
	return defaultEngine.Derive(session, Viewer{Name: viewerName, IsFacilitator: isFacilitator})
}

// Derive computes which cards the viewer sees and which actions are enabled.
// It never mutates the session and never fails; missing optional data reads as absent.
func (e *Engine) Derive(session *models.Session, viewer Viewer) BoardView {
	if session == nil {
		return BoardView{}
	}

	p := session.Phase
	view := BoardView{
		SessionID:        session.ID,
		Phase:            p,
		ReactionsEnabled: session.ReactionsEnabled,
		CanAdvance:       phase.CanAdvance(p, viewer.IsFacilitator),
		CanGoBack:        phase.CanGoBack(p, viewer.IsFacilitator),
		CanAddColumn:     viewer.IsFacilitator && phase.AllowsColumnEdits(p),
		CanManageTimer:   viewer.IsFacilitator && !phase.ReadOnly(p),
	}

	// Group cards by column, keeping snapshot order within each column.
	byColumn := make(map[string][]*models.Card)
	for i := range session.Cards {
		card := &session.Cards[i]
		byColumn[card.Column] = append(byColumn[card.Column], card)
	}

	seen := make(map[string]bool, len(session.Columns))
	for _, name := range session.Columns {
		if seen[name] {
			continue
		}
		seen[name] = true
		view.Columns = append(view.Columns, e.deriveColumn(session, name, byColumn[name], viewer))
	}

	return view
}

func (e *Engine) deriveColumn(session *models.Session, name string, cards []*models.Card, viewer Viewer) ColumnView {
	p := session.Phase
	col := ColumnView{
		Name:              name,
		Cards:             []CardView{},
		CanAdd:            phase.AllowsCardCreation(p) && viewer.Known(),
		CanRenameOrRemove: viewer.IsFacilitator && phase.AllowsColumnEdits(p),
	}

	for _, card := range cards {
		if !visible(p, card, viewer) {
			continue
		}
		cv := e.deriveCard(session, card, viewer)
		if cv.CanPublish {
			col.CanPublishAll = true
		}
		col.Cards = append(col.Cards, cv)
	}

	if p == models.PhaseClosed {
		sort.SliceStable(col.Cards, func(i, j int) bool {
			return col.Cards[i].VoteCount > col.Cards[j].VoteCount
		})
	}

	return col
}

// visible applies the phase visibility rules to a single card.
func visible(p models.Phase, card *models.Card, viewer Viewer) bool {
	own := card.IsAuthoredBy(viewer.Name)
	if p == models.PhaseCollecting {
		// Cards authored by others are hidden entirely while collecting
		return own
	}
	return card.Published || own
}

func (e *Engine) deriveCard(session *models.Session, card *models.Card, viewer Viewer) CardView {
	p := session.Phase
	own := card.IsAuthoredBy(viewer.Name)
	discussing := phase.AllowsDiscussion(p)

	cv := CardView{
		ID:         card.ID,
		Column:     card.Column,
		Text:       card.Text,
		AuthorName: card.AuthorName,
		Assignee:   card.AssigneeName(),
		Published:  card.Published,
		IsOwn:      own,
		VoteCount:  card.VoteCount(),
		HasVoted:   card.HasVoteFrom(viewer.Name),

		// Votes exclude the author, reactions do not
		CanVote:    discussing && card.Published && viewer.Known() && !own,
		CanDelete:  phase.AllowsCardDeletion(p) && own,
		CanPublish: discussing && own && !card.Published,
		CanReact:   session.ReactionsEnabled && discussing && card.Published && viewer.Known(),
		CanAssign:  e.authorizer.CanAssign(session, card, viewer),
	}

	if session.ReactionsEnabled {
		cv.Reactions = reactionCounts(card.Reactions, viewer.Name, cv.CanReact)
	}

	return cv
}
