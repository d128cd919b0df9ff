// Package view orchestrates one viewer's session screen: the initial load, the
// name prompt, the push subscription and the live countdown.
package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/retrospekt/go/internal/identity"
	"github.com/mcdev12/retrospekt/go/internal/models"
	"github.com/mcdev12/retrospekt/go/internal/mutation"
	"github.com/mcdev12/retrospekt/go/internal/phase"
	"github.com/mcdev12/retrospekt/go/internal/timer"
	"github.com/mcdev12/retrospekt/go/internal/visibility"
)

// State is the lifecycle state of a Controller.
type State string

const (
	StateLoading    State = "loading"
	StateNamePrompt State = "name_prompt"
	StateReady      State = "ready"
	StateError      State = "error"
	StateTornDown   State = "torn_down"
)

var (
	// ErrNotPermitted is wrapped by Do when the viewer lacks the affordance.
	ErrNotPermitted = mutation.ErrNotPermitted
	ErrNoIdentity   = errors.New("participant name required")
	ErrInvalidState = errors.New("invalid controller state")
)

// EventKind says what changed.
type EventKind int

const (
	EventState EventKind = iota
	EventSnapshot
	EventTick
)

// Event is delivered to the change listener after the change is visible.
type Event struct {
	Kind      EventKind
	State     State
	Remaining int
}

// Config wires the controller's collaborators.
type Config struct {
	SessionID  string
	API        SessionAPI
	Identity   IdentityStore
	Navigator  Navigator
	Dispatcher mutation.Dispatcher
	Sync       SyncFactory

	// Engine defaults to the FacilitatorOrSelf assignment policy.
	Engine *visibility.Engine
	Clock  clockwork.Clock
	Cue    timer.Cue
	// OnChange is called without locks held, from whichever goroutine caused the change.
	OnChange func(Event)
}

// Controller is safe for concurrent use. Snapshots are replaced wholesale and
// never mutated once stored.
type Controller struct {
	sessionID  string
	api        SessionAPI
	identity   IdentityStore
	navigator  Navigator
	dispatcher mutation.Dispatcher
	newSync    SyncFactory
	engine     *visibility.Engine
	clock      clockwork.Clock
	onChange   func(Event)

	countdown *timer.Countdown
	local     *LocalState

	mu      sync.RWMutex
	state   State
	session *models.Session
	viewer  visibility.Viewer
	loadErr error
	syncer  SyncClient
}

// NewController creates a Controller in the loading state.
func NewController(cfg Config) *Controller {
	if cfg.Engine == nil {
		cfg.Engine = visibility.NewEngine(nil)
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	c := &Controller{
		sessionID:  cfg.SessionID,
		api:        cfg.API,
		identity:   cfg.Identity,
		navigator:  cfg.Navigator,
		dispatcher: cfg.Dispatcher,
		newSync:    cfg.Sync,
		engine:     cfg.Engine,
		clock:      cfg.Clock,
		onChange:   cfg.OnChange,
		local:      NewLocalState(),
		state:      StateLoading,
	}

	opts := []timer.CountdownOption{
		timer.WithClock(cfg.Clock),
		timer.WithTickHandler(c.handleTick),
	}
	if cfg.Cue != nil {
		opts = append(opts, timer.WithCue(cfg.Cue))
	}
	if cfg.Identity != nil {
		opts = append(opts, timer.WithMutePreference(cfg.Identity))
	}
	c.countdown = timer.NewCountdown(opts...)

	return c
}

// Load performs the one-shot read. Failure moves to StateError and redirects.
func (c *Controller) Load(ctx context.Context) error {
	if err := c.expect(StateLoading); err != nil {
		return err
	}

	session, err := c.api.GetSession(ctx, c.sessionID)
	if err == nil {
		err = session.Validate()
	}
	if err != nil {
		return c.fail(fmt.Errorf("load session %s: %w", c.sessionID, err))
	}

	c.replace(session)

	name := c.identity.Name(c.sessionID)
	if name == "" {
		c.setState(StateNamePrompt)
		return nil
	}

	if err := c.join(ctx, name); err != nil {
		return c.fail(fmt.Errorf("join session %s: %w", c.sessionID, err))
	}
	return c.enterReady(ctx)
}

// SubmitName registers the viewer under a trimmed, non-empty name.
func (c *Controller) SubmitName(ctx context.Context, name string) error {
	if err := c.expect(StateNamePrompt); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNoIdentity
	}

	if err := c.join(ctx, name); err != nil {
		return fmt.Errorf("join session %s: %w", c.sessionID, err)
	}
	if err := c.identity.SetName(c.sessionID, name); err != nil {
		log.Warn().Err(err).Str("session_id", c.sessionID).Msg("failed to persist participant name")
	}
	return c.enterReady(ctx)
}

func (c *Controller) join(ctx context.Context, name string) error {
	session, err := c.api.JoinSession(ctx, c.sessionID, name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.viewer = visibility.Viewer{
		Name:          name,
		IsFacilitator: c.identity.FacilitatorToken(c.sessionID) != "",
	}
	c.mu.Unlock()

	if session != nil && session.Validate() == nil {
		c.replace(session)
	}
	return nil
}

func (c *Controller) enterReady(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateTornDown {
		c.mu.Unlock()
		return ErrInvalidState
	}
	c.state = StateReady
	var client SyncClient
	if c.newSync != nil {
		client = c.newSync(c.sessionID, c.replace)
		c.syncer = client
	}
	session := c.session
	viewer := c.viewer
	c.mu.Unlock()

	c.recordHistory(session, viewer)
	c.emit(Event{Kind: EventState, State: StateReady})

	if client == nil {
		return nil
	}
	// Transport errors are tolerated, the view keeps its last snapshot
	if err := client.Connect(ctx); err != nil {
		log.Debug().Err(err).Str("session_id", c.sessionID).Msg("push subscription failed")
	}

	// Teardown may have run before Connect, when Disconnect was still a no-op
	c.mu.RLock()
	tornDown := c.state == StateTornDown
	c.mu.RUnlock()
	if tornDown {
		client.Disconnect()
	}
	return nil
}

func (c *Controller) fail(err error) error {
	c.mu.Lock()
	if c.state == StateTornDown {
		c.mu.Unlock()
		return err
	}
	c.state = StateError
	c.loadErr = err
	c.mu.Unlock()

	log.Error().Err(err).Str("session_id", c.sessionID).Msg("failed to load session")

	if c.navigator != nil {
		c.navigator.RedirectNotFound(c.sessionID, err)
	}
	c.emit(Event{Kind: EventState, State: StateError})
	return err
}

// replace installs a snapshot. It is also the push update callback.
func (c *Controller) replace(session *models.Session) {
	c.mu.Lock()
	if c.state == StateTornDown {
		c.mu.Unlock()
		return
	}
	prev := c.session
	c.session = session
	state := c.state
	viewer := c.viewer
	c.mu.Unlock()

	var prevTimer *models.TimerSnapshot
	if prev != nil {
		prevTimer = prev.Timer
	}
	if prev == nil || !prevTimer.Equal(session.Timer) {
		c.countdown.Sync(session.Timer)
	}

	c.local.Prune(c.engine.Derive(session, viewer))

	if state == StateReady && (prev == nil || prev.Phase != session.Phase) {
		if err := c.identity.UpdateHistoryPhase(session.ID, session.Phase); err != nil {
			log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to update session history")
		}
	}

	c.emit(Event{Kind: EventSnapshot, State: state})
}

func (c *Controller) recordHistory(session *models.Session, viewer visibility.Viewer) {
	if session == nil {
		return
	}
	entry := identity.HistoryEntry{
		ID:              session.ID,
		Name:            session.Name,
		Phase:           session.Phase,
		CreatedAt:       session.CreatedAt.Time,
		ParticipantName: viewer.Name,
		IsFacilitator:   viewer.IsFacilitator,
		JoinedAt:        c.clock.Now().UTC(),
	}
	if err := c.identity.AddOrUpdateHistory(entry); err != nil {
		log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to record session history")
	}
}

func (c *Controller) handleTick(remaining int) {
	c.emit(Event{Kind: EventTick, State: c.State(), Remaining: remaining})
}

// Teardown releases the subscription and the countdown whatever the state.
func (c *Controller) Teardown() {
	c.mu.Lock()
	already := c.state == StateTornDown
	c.state = StateTornDown
	client := c.syncer
	c.syncer = nil
	c.mu.Unlock()

	if client != nil {
		client.Disconnect()
	}
	c.countdown.Stop()

	if !already {
		c.emit(Event{Kind: EventState, State: StateTornDown})
	}
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Err returns the load failure, if any.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// Session returns the current snapshot. Callers must not modify it.
func (c *Controller) Session() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Controller) Viewer() visibility.Viewer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewer
}

// View derives the board for the local viewer from the current snapshot.
func (c *Controller) View() visibility.BoardView {
	c.mu.RLock()
	session, viewer := c.session, c.viewer
	c.mu.RUnlock()
	return c.engine.Derive(session, viewer)
}

// Remaining returns the live countdown value in whole seconds.
func (c *Controller) Remaining() int {
	return c.countdown.Remaining()
}

// Ticking reports whether the countdown has a live ticker.
func (c *Controller) Ticking() bool {
	return c.countdown.Ticking()
}

// Local returns the viewer-only UI state.
func (c *Controller) Local() *LocalState {
	return c.local
}

// Do checks cmd against the current view and sends it. The outcome is observed
// only through a later snapshot.
func (c *Controller) Do(ctx context.Context, cmd mutation.Command) error {
	c.mu.RLock()
	state, session, viewer := c.state, c.session, c.viewer
	c.mu.RUnlock()

	if state != StateReady {
		return fmt.Errorf("%w: %s", ErrInvalidState, state)
	}

	snap := mutation.Snapshot{
		Board: c.engine.Derive(session, viewer),
		Timer: session.Timer,
		Now:   c.clock.Now(),
	}
	if err := mutation.Authorize(cmd, snap); err != nil {
		return err
	}

	if c.dispatcher == nil {
		return nil
	}
	if err := c.dispatcher.Dispatch(ctx, cmd); err != nil {
		log.Warn().
			Err(err).
			Str("session_id", c.sessionID).
			Str("command", mutation.Describe(cmd)).
			Msg("mutation failed")
		return err
	}
	return nil
}

// Advance requests the next phase.
func (c *Controller) Advance(ctx context.Context) error {
	return c.transition(ctx, phase.Advance)
}

// GoBack requests the previous phase.
func (c *Controller) GoBack(ctx context.Context) error {
	return c.transition(ctx, phase.GoBack)
}

func (c *Controller) transition(ctx context.Context, fn func(models.Phase, bool) (phase.Intent, error)) error {
	c.mu.RLock()
	session, viewer := c.session, c.viewer
	c.mu.RUnlock()

	if session == nil {
		return ErrInvalidState
	}
	intent, err := fn(session.Phase, viewer.IsFacilitator)
	if err != nil {
		return err
	}
	return c.Do(ctx, mutation.SetPhase{To: intent.To})
}

func (c *Controller) expect(want State) error {
	if got := c.State(); got != want {
		return fmt.Errorf("%w: %s, want %s", ErrInvalidState, got, want)
	}
	return nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	if c.state == StateTornDown {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()
	c.emit(Event{Kind: EventState, State: s})
}

func (c *Controller) emit(e Event) {
	if c.onChange != nil {
		c.onChange(e)
	}
}
