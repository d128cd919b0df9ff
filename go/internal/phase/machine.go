package phase

import (
	"errors"
	"fmt"

	"github.com/mcdev12/retrospekt/go/internal/models"
)

var (
	// ErrNotFacilitator is returned when a non-facilitator requests a transition
	ErrNotFacilitator = errors.New("only the facilitator can change the phase")
	// ErrNoNextPhase is returned when advancing from the final phase
	ErrNoNextPhase = errors.New("session is already closed")
	// ErrNoPreviousPhase is returned when going back from the first phase
	ErrNoPreviousPhase = errors.New("session is already collecting")
)

// sequence is the strictly linear phase order.
var sequence = []models.Phase{
	models.PhaseCollecting,
	models.PhaseDiscussing,
	models.PhaseClosed,
}

// Direction of a requested transition.
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// Intent is a request to move the session to another phase.
// It is sent to the server and only takes effect once a later snapshot reflects it.
type Intent struct {
	From      models.Phase
	To        models.Phase
	Direction Direction
}

func (i Intent) String() string {
	return fmt.Sprintf("%s -> %s", i.From, i.To)
}

// Sequence returns the ordered phases.
func Sequence() []models.Phase {
	out := make([]models.Phase, len(sequence))
	copy(out, sequence)
	return out
}

// Parse converts a string into a Phase.
func Parse(s string) (models.Phase, error) {
	p := models.Phase(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidPhase, s)
	}
	return p, nil
}

func index(p models.Phase) int {
	for i, candidate := range sequence {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Next returns the phase after p, and false when p is last or unknown.
func Next(p models.Phase) (models.Phase, bool) {
	i := index(p)
	if i < 0 || i == len(sequence)-1 {
		return "", false
	}
	return sequence[i+1], true
}

// Previous returns the phase before p, and false when p is first or unknown.
func Previous(p models.Phase) (models.Phase, bool) {
	i := index(p)
	if i <= 0 {
		return "", false
	}
	return sequence[i-1], true
}

// CanAdvance reports whether a forward transition may be requested.
func CanAdvance(current models.Phase, isFacilitator bool) bool {
	_, ok := Next(current)
	return isFacilitator && ok
}

// CanGoBack reports whether a backward transition may be requested.
func CanGoBack(current models.Phase, isFacilitator bool) bool {
	_, ok := Previous(current)
	return isFacilitator && ok
}

// Advance builds a forward intent from the current phase.
func Advance(current models.Phase, isFacilitator bool) (Intent, error) {
	if !isFacilitator {
		return Intent{}, ErrNotFacilitator
	}
	next, ok := Next(current)
	if !ok {
		return Intent{}, ErrNoNextPhase
	}
	return Intent{From: current, To: next, Direction: DirectionForward}, nil
}

// GoBack builds a backward intent from the current phase.
func GoBack(current models.Phase, isFacilitator bool) (Intent, error) {
	if !isFacilitator {
		return Intent{}, ErrNotFacilitator
	}
	prev, ok := Previous(current)
	if !ok {
		return Intent{}, ErrNoPreviousPhase
	}
	return Intent{From: current, To: prev, Direction: DirectionBackward}, nil
}
