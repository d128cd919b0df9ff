package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/retrospekt/go/clients/retro_api_client"
	"github.com/mcdev12/retrospekt/go/internal/identity"
	"github.com/mcdev12/retrospekt/go/internal/models"
	"github.com/mcdev12/retrospekt/go/internal/mutation"
	"github.com/mcdev12/retrospekt/go/internal/phase"
	"github.com/mcdev12/retrospekt/go/internal/push"
)

type fakeAPI struct {
	mu      sync.Mutex
	session *models.Session
	getErr  error
	joinErr error
	joined  []string
}

func (f *fakeAPI) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.session, nil
}

func (f *fakeAPI) JoinSession(ctx context.Context, sessionID, name string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	f.joined = append(f.joined, name)
	return f.session, nil
}

type fakeSync struct {
	onUpdate    push.UpdateFunc
	connects    int
	disconnects int
}

func (f *fakeSync) Connect(ctx context.Context) error {
	f.connects++
	return nil
}

func (f *fakeSync) Disconnect() {
	f.disconnects++
}

type fakeDispatcher struct {
	mu   sync.Mutex
	cmds []mutation.Command
	err  error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, cmd mutation.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds = append(f.cmds, cmd)
	return f.err
}

type harness struct {
	ctrl      *Controller
	api       *fakeAPI
	store     *identity.Store
	disp      *fakeDispatcher
	clock     *clockwork.FakeClock
	syncs     []*fakeSync
	redirects []error
}

func baseSession(p models.Phase) *models.Session {
	return &models.Session{
		ID:      "s1",
		Name:    "Retro",
		Columns: []string{"Went Well"},
		Phase:   p,
		Cards: []models.Card{
			{ID: "c1", Column: "Went Well", AuthorName: "bob", Published: true},
		},
		ReactionsEnabled: true,
	}
}

func newHarness(t *testing.T, session *models.Session) *harness {
	t.Helper()
	h := &harness{
		api:   &fakeAPI{session: session},
		store: identity.NewMemoryStore(),
		disp:  &fakeDispatcher{},
		clock: clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
	}
	h.ctrl = NewController(Config{
		SessionID: "s1",
		API:       h.api,
		Identity:  h.store,
		Navigator: NavigatorFunc(func(_ string, cause error) {
			h.redirects = append(h.redirects, cause)
		}),
		Dispatcher: h.disp,
		Sync: func(sessionID string, onUpdate push.UpdateFunc) SyncClient {
			s := &fakeSync{onUpdate: onUpdate}
			h.syncs = append(h.syncs, s)
			return s
		},
		Clock: h.clock,
	})
	t.Cleanup(h.ctrl.Teardown)
	return h
}

func TestLoadFailureRedirects(t *testing.T) {
	h := newHarness(t, nil)
	h.api.getErr = &retro_api_client.APIError{StatusCode: 404}

	err := h.ctrl.Load(context.Background())
	if !errors.Is(err, retro_api_client.ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
	if got := h.ctrl.State(); got != StateError {
		t.Errorf("State() = %s, want %s", got, StateError)
	}
	if len(h.redirects) != 1 {
		t.Errorf("redirects = %d, want 1", len(h.redirects))
	}
	if len(h.syncs) != 0 {
		t.Error("push subscription opened after failed load")
	}
}

func TestLoadMalformedSnapshotFails(t *testing.T) {
	h := newHarness(t, &models.Session{ID: "s1", Phase: "voting"})

	if err := h.ctrl.Load(context.Background()); !errors.Is(err, models.ErrInvalidPhase) {
		t.Fatalf("Load() error = %v, want ErrInvalidPhase", err)
	}
	if h.ctrl.State() != StateError {
		t.Errorf("State() = %s", h.ctrl.State())
	}
}

func TestNamePromptFlow(t *testing.T) {
	h := newHarness(t, baseSession(models.PhaseCollecting))

	if err := h.ctrl.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := h.ctrl.State(); got != StateNamePrompt {
		t.Fatalf("State() = %s, want %s", got, StateNamePrompt)
	}
	if len(h.syncs) != 0 {
		t.Fatal("push subscription opened before ready")
	}

	if err := h.ctrl.SubmitName(context.Background(), "   "); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("SubmitName(blank) error = %v, want ErrNoIdentity", err)
	}
	if h.ctrl.State() != StateNamePrompt {
		t.Error("blank name left the prompt")
	}

	if err := h.ctrl.SubmitName(context.Background(), "  alice "); err != nil {
		t.Fatalf("SubmitName() error = %v", err)
	}
	if got := h.ctrl.State(); got != StateReady {
		t.Fatalf("State() = %s, want %s", got, StateReady)
	}
	if len(h.api.joined) != 1 || h.api.joined[0] != "alice" {
		t.Errorf("joined = %v, want [alice]", h.api.joined)
	}
	if got := h.store.Name("s1"); got != "alice" {
		t.Errorf("stored name = %q, want alice", got)
	}
	if len(h.syncs) != 1 || h.syncs[0].connects != 1 {
		t.Fatalf("push subscriptions = %d", len(h.syncs))
	}

	history := h.store.History()
	if len(history) != 1 || history[0].ParticipantName != "alice" || history[0].IsFacilitator {
		t.Errorf("history = %+v", history)
	}
}

func TestSubmitNameJoinFailureKeepsPrompt(t *testing.T) {
	h := newHarness(t, baseSession(models.PhaseCollecting))
	if err := h.ctrl.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	h.api.joinErr = errors.New("connection refused")
	if err := h.ctrl.SubmitName(context.Background(), "alice"); err == nil {
		t.Fatal("SubmitName() error = nil")
	}
	if h.ctrl.State() != StateNamePrompt {
		t.Errorf("State() = %s, want %s", h.ctrl.State(), StateNamePrompt)
	}
	if h.store.Name("s1") != "" {
		t.Error("name stored despite failed join")
	}
}

func TestStoredIdentitySkipsPrompt(t *testing.T) {
	h := newHarness(t, baseSession(models.PhaseCollecting))
	h.store.SetName("s1", "alice")
	h.store.SetFacilitatorToken("s1", "tok")

	if err := h.ctrl.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if h.ctrl.State() != StateReady {
		t.Fatalf("State() = %s, want %s", h.ctrl.State(), StateReady)
	}
	if v := h.ctrl.Viewer(); v.Name != "alice" || !v.IsFacilitator {
		t.Errorf("Viewer() = %+v", v)
	}
	if len(h.api.joined) != 1 {
		t.Errorf("joined = %v", h.api.joined)
	}
}

func TestPushSnapshotsReplaceSession(t *testing.T) {
	h := newHarness(t, baseSession(models.PhaseCollecting))
	h.store.SetName("s1", "alice")
	if err := h.ctrl.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	next := baseSession(models.PhaseDiscussing)
	next.Cards = nil
	h.syncs[0].onUpdate(next)

	if h.ctrl.Session() != next {
		t.Fatal("Session() is not the pushed snapshot")
	}
	if got := h.ctrl.View().VisibleCardCount(); got != 0 {
		t.Errorf("VisibleCardCount() = %d, want 0", got)
	}
	if got := h.store.History()[0].Phase; got != models.PhaseDiscussing {
		t.Errorf("history phase = %s, want discussing", got)
	}
}

func TestTeardownDisconnects(t *testing.T) {
	h := newHarness(t, baseSession(models.PhaseCollecting))
	h.store.SetName("s1", "alice")
	if err := h.ctrl.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	h.ctrl.Teardown()
	h.ctrl.Teardown()

	if got := h.syncs[0].disconnects; got != 1 {
		t.Errorf("disconnects = %d, want 1", got)
	}
	if h.ctrl.State() != StateTornDown {
		t.Errorf("State() = %s", h.ctrl.State())
	}

	before := h.ctrl.Session()
	h.syncs[0].onUpdate(baseSession(models.PhaseClosed))
	if h.ctrl.Session() != before {
		t.Error("snapshot accepted after teardown")
	}
}

type countingTransport struct {
	mu   sync.Mutex
	live int
}

type countingSubscription struct {
	transport *countingTransport
	once      sync.Once
}

func (t *countingTransport) Subscribe(ctx context.Context, sessionID string, onFrame push.FrameHandler) (push.Subscription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live++
	return &countingSubscription{transport: t}, nil
}

func (t *countingTransport) liveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

func (s *countingSubscription) Close() error {
	s.once.Do(func() {
		s.transport.mu.Lock()
		s.transport.live--
		s.transport.mu.Unlock()
	})
	return nil
}

func TestTeardownOnReadyReleasesSubscription(t *testing.T) {
	store := identity.NewMemoryStore()
	store.SetName("s1", "alice")
	transport := &countingTransport{}

	var ctrl *Controller
	ctrl = NewController(Config{
		SessionID: "s1",
		API:       &fakeAPI{session: baseSession(models.PhaseCollecting)},
		Identity:  store,
		Sync:      TransportSync(transport),
		Clock:     clockwork.NewFakeClock(),
		OnChange: func(e Event) {
			if e.Kind == EventState && e.State == StateReady {
				ctrl.Teardown()
			}
		},
	})

	if err := ctrl.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if ctrl.State() != StateTornDown {
		t.Errorf("State() = %s, want %s", ctrl.State(), StateTornDown)
	}
	if got := transport.liveCount(); got != 0 {
		t.Errorf("live subscriptions after teardown = %d, want 0", got)
	}
}

func TestTeardownFromNamePrompt(t *testing.T) {
	h := newHarness(t, baseSession(models.PhaseCollecting))
	if err := h.ctrl.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	h.ctrl.Teardown()

	if h.ctrl.State() != StateTornDown {
		t.Errorf("State() = %s", h.ctrl.State())
	}
	if err := h.ctrl.SubmitName(context.Background(), "alice"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SubmitName() after teardown error = %v", err)
	}
}

func TestDoChecksPermissions(t *testing.T) {
	h := newHarness(t, baseSession(models.PhaseDiscussing))

	if err := h.ctrl.Do(context.Background(), mutation.Vote{CardID: "c1"}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Do() before ready error = %v", err)
	}

	h.store.SetName("s1", "alice")
	if err := h.ctrl.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := h.ctrl.Do(context.Background(), mutation.Vote{CardID: "c1"}); err != nil {
		t.Fatalf("Do(vote) error = %v", err)
	}
	if err := h.ctrl.Do(context.Background(), mutation.DeleteCard{CardID: "c1"}); !errors.Is(err, ErrNotPermitted) {
		t.Errorf("Do(delete) error = %v, want ErrNotPermitted", err)
	}

	if len(h.disp.cmds) != 1 {
		t.Fatalf("dispatched = %v, want one vote", h.disp.cmds)
	}
	if _, ok := h.disp.cmds[0].(mutation.Vote); !ok {
		t.Errorf("dispatched %T, want Vote", h.disp.cmds[0])
	}
}

func TestDoReturnsDispatchFailure(t *testing.T) {
	h := newHarness(t, baseSession(models.PhaseDiscussing))
	h.store.SetName("s1", "alice")
	if err := h.ctrl.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	h.disp.err = errors.New("network down")
	if err := h.ctrl.Do(context.Background(), mutation.Vote{CardID: "c1"}); err == nil {
		t.Error("Do() error = nil, want dispatch failure")
	}
	if h.ctrl.State() != StateReady {
		t.Errorf("State() = %s after failed mutation", h.ctrl.State())
	}
}

func TestAdvanceAndGoBack(t *testing.T) {
	h := newHarness(t, baseSession(models.PhaseDiscussing))
	h.store.SetName("s1", "alice")
	if err := h.ctrl.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := h.ctrl.Advance(context.Background()); !errors.Is(err, phase.ErrNotFacilitator) {
		t.Errorf("Advance() as participant error = %v", err)
	}

	h2 := newHarness(t, baseSession(models.PhaseDiscussing))
	h2.store.SetName("s1", "alice")
	h2.store.SetFacilitatorToken("s1", "tok")
	if err := h2.ctrl.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := h2.ctrl.Advance(context.Background()); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if err := h2.ctrl.GoBack(context.Background()); err != nil {
		t.Fatalf("GoBack() error = %v", err)
	}

	want := []mutation.Command{
		mutation.SetPhase{To: models.PhaseClosed},
		mutation.SetPhase{To: models.PhaseCollecting},
	}
	if len(h2.disp.cmds) != len(want) {
		t.Fatalf("dispatched = %v", h2.disp.cmds)
	}
	for i := range want {
		if h2.disp.cmds[i] != want[i] {
			t.Errorf("cmd[%d] = %v, want %v", i, h2.disp.cmds[i], want[i])
		}
	}
}

func TestCountdownFollowsSnapshotsAndTeardown(t *testing.T) {
	session := baseSession(models.PhaseDiscussing)
	h := newHarness(t, session)
	h.store.SetName("s1", "alice")
	if err := h.ctrl.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h.ctrl.Ticking() {
		t.Fatal("ticking without a timer")
	}

	running := baseSession(models.PhaseDiscussing)
	running.Timer = &models.TimerSnapshot{
		DurationSeconds: 300,
		StartedAt:       models.TimestampPtr(h.clock.Now().Add(-time.Minute)),
	}
	h.syncs[0].onUpdate(running)

	if !h.ctrl.Ticking() {
		t.Fatal("not ticking for a running timer")
	}
	if got := h.ctrl.Remaining(); got != 240 {
		t.Errorf("Remaining() = %d, want 240", got)
	}

	paused := baseSession(models.PhaseDiscussing)
	remaining := 240.0
	paused.Timer = &models.TimerSnapshot{DurationSeconds: 300, PausedRemaining: &remaining}
	h.syncs[0].onUpdate(paused)
	if h.ctrl.Ticking() {
		t.Error("still ticking after pause")
	}

	h.syncs[0].onUpdate(running)
	h.ctrl.Teardown()
	if h.ctrl.Ticking() {
		t.Error("still ticking after teardown")
	}
}

func TestLocalStatePrunedOnSnapshot(t *testing.T) {
	h := newHarness(t, baseSession(models.PhaseCollecting))
	h.store.SetName("s1", "alice")
	if err := h.ctrl.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	h.ctrl.Local().OpenDraft("Went Well")
	h.syncs[0].onUpdate(baseSession(models.PhaseCollecting))
	if got := h.ctrl.Local().DraftColumn(); got != "Went Well" {
		t.Errorf("DraftColumn() = %q, want kept", got)
	}

	h.syncs[0].onUpdate(baseSession(models.PhaseDiscussing))
	if got := h.ctrl.Local().DraftColumn(); got != "" {
		t.Errorf("DraftColumn() = %q, want cleared once adding is disallowed", got)
	}
}
