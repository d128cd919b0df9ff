package phase

import (
	"errors"
	"testing"

	"github.com/mcdev12/retrospekt/go/internal/models"
)

func TestNextAndPrevious(t *testing.T) {
	tests := []struct {
		phase   models.Phase
		next    models.Phase
		hasNext bool
		prev    models.Phase
		hasPrev bool
	}{
		{models.PhaseCollecting, models.PhaseDiscussing, true, "", false},
		{models.PhaseDiscussing, models.PhaseClosed, true, models.PhaseCollecting, true},
		{models.PhaseClosed, "", false, models.PhaseDiscussing, true},
		{models.Phase("bogus"), "", false, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			next, ok := Next(tt.phase)
			if next != tt.next || ok != tt.hasNext {
				t.Errorf("Next(%q) = (%q, %v), want (%q, %v)", tt.phase, next, ok, tt.next, tt.hasNext)
			}
			prev, ok := Previous(tt.phase)
			if prev != tt.prev || ok != tt.hasPrev {
				t.Errorf("Previous(%q) = (%q, %v), want (%q, %v)", tt.phase, prev, ok, tt.prev, tt.hasPrev)
			}
		})
	}
}

func TestAdvanceRequiresFacilitator(t *testing.T) {
	if _, err := Advance(models.PhaseCollecting, false); !errors.Is(err, ErrNotFacilitator) {
		t.Errorf("Advance as participant error = %v, want ErrNotFacilitator", err)
	}
	if _, err := GoBack(models.PhaseDiscussing, false); !errors.Is(err, ErrNotFacilitator) {
		t.Errorf("GoBack as participant error = %v, want ErrNotFacilitator", err)
	}
}

func TestAdvanceFromCollecting(t *testing.T) {
	intent, err := Advance(models.PhaseCollecting, true)
	if err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if intent.To != models.PhaseDiscussing || intent.Direction != DirectionForward {
		t.Errorf("intent = %+v, want forward to discussing", intent)
	}
}

func TestAdvanceFromClosedIsDisallowed(t *testing.T) {
	if _, err := Advance(models.PhaseClosed, true); !errors.Is(err, ErrNoNextPhase) {
		t.Errorf("Advance(closed) error = %v, want ErrNoNextPhase", err)
	}
	if CanAdvance(models.PhaseClosed, true) {
		t.Error("CanAdvance(closed) should be false")
	}
}

func TestGoBackFromCollectingIsDisallowed(t *testing.T) {
	if _, err := GoBack(models.PhaseCollecting, true); !errors.Is(err, ErrNoPreviousPhase) {
		t.Errorf("GoBack(collecting) error = %v, want ErrNoPreviousPhase", err)
	}
	if CanGoBack(models.PhaseCollecting, true) {
		t.Error("CanGoBack(collecting) should be false")
	}
}

func TestGoBackFromClosed(t *testing.T) {
	intent, err := GoBack(models.PhaseClosed, true)
	if err != nil {
		t.Fatalf("GoBack returned error: %v", err)
	}
	if intent.From != models.PhaseClosed || intent.To != models.PhaseDiscussing {
		t.Errorf("intent = %s, want closed -> discussing", intent)
	}
}

func TestParse(t *testing.T) {
	for _, p := range Sequence() {
		got, err := Parse(string(p))
		if err != nil || got != p {
			t.Errorf("Parse(%q) = (%q, %v)", p, got, err)
		}
	}
	if _, err := Parse("archived"); !errors.Is(err, models.ErrInvalidPhase) {
		t.Errorf("Parse(archived) error = %v, want ErrInvalidPhase", err)
	}
}

func TestGates(t *testing.T) {
	if !AllowsCardCreation(models.PhaseCollecting) || AllowsCardCreation(models.PhaseDiscussing) {
		t.Error("card creation should be allowed only while collecting")
	}
	if !AllowsDiscussion(models.PhaseDiscussing) || AllowsDiscussion(models.PhaseClosed) {
		t.Error("discussion actions should be allowed only while discussing")
	}
	if !ReadOnly(models.PhaseClosed) || ReadOnly(models.PhaseDiscussing) {
		t.Error("only closed should be read-only")
	}
}
