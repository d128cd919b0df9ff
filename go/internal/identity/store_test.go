package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mcdev12/retrospekt/go/internal/models"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.yaml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.SetName("s1", "alice"); err != nil {
		t.Fatalf("SetName() error = %v", err)
	}
	if err := s.SetFacilitatorToken("s1", "tok"); err != nil {
		t.Fatalf("SetFacilitatorToken() error = %v", err)
	}
	if err := s.SetName("s2", "bob"); err != nil {
		t.Fatalf("SetName() error = %v", err)
	}
	if err := s.SetMuted(true); err != nil {
		t.Fatalf("SetMuted() error = %v", err)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("Open() reload error = %v", err)
	}

	if got := reloaded.Name("s1"); got != "alice" {
		t.Errorf("Name(s1) = %q, want alice", got)
	}
	if !reloaded.IsFacilitator("s1") {
		t.Error("IsFacilitator(s1) = false, want true")
	}
	if reloaded.IsFacilitator("s2") {
		t.Error("IsFacilitator(s2) = true, want false")
	}
	if got := reloaded.Name("unknown"); got != "" {
		t.Errorf("Name(unknown) = %q, want empty", got)
	}
	if !reloaded.Muted() {
		t.Error("Muted() = false after reload")
	}
}

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.Muted() || len(s.History()) != 0 {
		t.Error("missing file did not yield an empty store")
	}
}

func TestOpenMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	if err := os.WriteFile(path, []byte("sessions: [not: a map"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(s.History()) != 0 {
		t.Error("malformed file produced history")
	}
	if err := s.SetName("s1", "alice"); err != nil {
		t.Fatalf("SetName() after malformed load error = %v", err)
	}
}

func TestHistoryPreservesJoinedAt(t *testing.T) {
	s := NewMemoryStore()
	first := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	if err := s.AddOrUpdateHistory(HistoryEntry{ID: "s1", Name: "Retro", Phase: models.PhaseCollecting, JoinedAt: first}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddOrUpdateHistory(HistoryEntry{ID: "s2", Name: "Other", Phase: models.PhaseCollecting, JoinedAt: first}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddOrUpdateHistory(HistoryEntry{ID: "s1", Name: "Retro 2", Phase: models.PhaseClosed, JoinedAt: later}); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{
		{ID: "s2", Name: "Other", Phase: models.PhaseCollecting, JoinedAt: first},
		{ID: "s1", Name: "Retro 2", Phase: models.PhaseClosed, JoinedAt: first},
	}
	if diff := cmp.Diff(want, s.History()); diff != "" {
		t.Errorf("History() mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryIsCapped(t *testing.T) {
	s := NewMemoryStore()
	for i := 0; i < MaxHistory+5; i++ {
		if err := s.AddOrUpdateHistory(HistoryEntry{ID: fmt.Sprintf("s%d", i)}); err != nil {
			t.Fatal(err)
		}
	}

	h := s.History()
	if len(h) != MaxHistory {
		t.Fatalf("len(History()) = %d, want %d", len(h), MaxHistory)
	}
	if h[0].ID != fmt.Sprintf("s%d", MaxHistory+4) {
		t.Errorf("newest entry = %s", h[0].ID)
	}
}

func TestHistoryRemoveClearAndPhase(t *testing.T) {
	s := NewMemoryStore()
	for _, id := range []string{"a", "b", "c"} {
		if err := s.AddOrUpdateHistory(HistoryEntry{ID: id, Phase: models.PhaseCollecting}); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.UpdateHistoryPhase("b", models.PhaseDiscussing); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateHistoryPhase("missing", models.PhaseClosed); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveFromHistory("c"); err != nil {
		t.Fatal(err)
	}

	h := s.History()
	if len(h) != 2 || h[0].ID != "b" || h[0].Phase != models.PhaseDiscussing {
		t.Errorf("History() = %+v", h)
	}

	if err := s.ClearHistory(); err != nil {
		t.Fatal(err)
	}
	if len(s.History()) != 0 {
		t.Error("ClearHistory() left entries")
	}
}
