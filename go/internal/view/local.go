package view

import (
	"sync"

	"github.com/mcdev12/retrospekt/go/internal/visibility"
)

// LocalState holds transient, viewer-only UI state. It is never sent to the
// server and never merged with a session snapshot.
type LocalState struct {
	mu          sync.Mutex
	listing     []string
	draftColumn string
	editColumn  string
	status      string
}

// NewLocalState creates an empty LocalState
func NewLocalState() *LocalState {
	return &LocalState{}
}

// SetListing records the card ids in the order they were last shown, so a
// viewer can refer to cards by position.
func (l *LocalState) SetListing(ids []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listing = append(l.listing[:0], ids...)
}

// CardAt resolves a 1-based position from the last listing.
func (l *LocalState) CardAt(n int) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n < 1 || n > len(l.listing) {
		return "", false
	}
	return l.listing[n-1], true
}

// OpenDraft marks the add-card form for column as open.
func (l *LocalState) OpenDraft(column string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.draftColumn = column
}

func (l *LocalState) DraftColumn() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.draftColumn
}

func (l *LocalState) CloseDraft() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.draftColumn = ""
}

// EditColumn marks a column title as being edited.
func (l *LocalState) EditColumn(column string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.editColumn = column
}

func (l *LocalState) EditingColumn() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.editColumn
}

// SetStatus sets a one-line message for the viewer, e.g. a failed action.
func (l *LocalState) SetStatus(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = msg
}

func (l *LocalState) Status() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Prune drops references that the latest board no longer supports, such as an
// open draft for a column that was removed or a phase that forbids adding.
func (l *LocalState) Prune(board visibility.BoardView) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.draftColumn != "" {
		if col, ok := board.Column(l.draftColumn); !ok || !col.CanAdd {
			l.draftColumn = ""
		}
	}
	if l.editColumn != "" {
		if col, ok := board.Column(l.editColumn); !ok || !col.CanRenameOrRemove {
			l.editColumn = ""
		}
	}
}
