// Package engine turns a mutable task list into render data.
//
// The task list is the only authoritative state. Classifications, solar
// systems and layouts are caches rebuilt from it: classifications eagerly per
// mutated task, the hierarchy after a debounce. Suggestions run on their own
// timeouts and key on task IDs only, so they tolerate a hierarchy that has not
// caught up yet.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/calvinalkan/orbit/internal/asteroid"
	"github.com/calvinalkan/orbit/internal/classify"
	"github.com/calvinalkan/orbit/internal/clock"
	"github.com/calvinalkan/orbit/internal/compose"
	"github.com/calvinalkan/orbit/internal/layout"
	"github.com/calvinalkan/orbit/internal/sched"
	"github.com/calvinalkan/orbit/internal/task"
)

// Defaults.
const (
	DefaultDebounce           = time.Second
	DefaultTickInterval       = time.Second
	DefaultSuggestionInterval = 20 * time.Second
)

// Scheduler keys owned by the engine.
const (
	keyCompose = "engine/compose"
	keyTick    = "engine/tick"
)

// idleWait bounds how long Run sleeps when nothing is scheduled.
const idleWait = time.Minute

// Options configures an Engine.
type Options struct {
	Clock clock.Clock

	// Debounce coalesces mutation bursts into one rebuild.
	Debounce time.Duration
	// TickInterval drives suggestion bookkeeping.
	TickInterval time.Duration
	// SuggestionInterval is the period of automatic suggestion generation.
	// Negative disables it.
	SuggestionInterval time.Duration
	// SuggestionTTL and MaxActiveSuggestions configure the asteroid manager.
	SuggestionTTL        time.Duration
	MaxActiveSuggestions int

	// GroupingDisabled starts the engine with AI grouping off.
	GroupingDisabled bool

	// OnResolve is invoked after ResolveSuggestion succeeds, outside the
	// engine lock.
	OnResolve asteroid.Callback
	// OnNotify receives alerts and outcome notifications as they are queued,
	// outside the engine lock. Alerts arrive from Poll, so from Run's
	// goroutine when Run is used.
	OnNotify asteroid.NotifyFunc

	Layout layout.Params
	Logger *slog.Logger
}

// Snapshot is everything the renderer needs for one frame.
type Snapshot struct {
	Version       uint64                  `json:"version"`
	Grouping      bool                    `json:"grouping"`
	Systems       []compose.System        `json:"systems"`
	Positions     layout.PositionMap      `json:"positions"`
	Suggestions   []asteroid.View         `json:"suggestions"`
	Notifications []asteroid.Notification `json:"notifications"`
	Pending       bool                    `json:"pending"`
}

// Engine owns the task list and every structure derived from it. All methods
// are safe for concurrent use; state transitions are serialized by one lock.
type Engine struct {
	mu sync.Mutex

	clock  clock.Clock
	opts   Options
	log    *slog.Logger
	sched  *sched.Scheduler
	tasks  *task.List
	rocks  *asteroid.Manager
	wake   chan struct{}
	events []resolved
	notes  []asteroid.Notification

	classes   map[string]classify.Classification
	systems   []compose.System
	positions layout.PositionMap
	index     map[string]Location

	grouping       bool
	composedAt     uint64
	lastGenerated  time.Time
	generateQueued []string
}

type resolved struct {
	taskID  string
	outcome asteroid.Outcome
}

// New returns an engine over tasks. The initial hierarchy is composed
// immediately so the first snapshot is not empty.
func New(tasks []task.Task, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}

	if opts.SuggestionInterval == 0 {
		opts.SuggestionInterval = DefaultSuggestionInterval
	}

	if opts.Layout == (layout.Params{}) {
		opts.Layout = layout.DefaultParams()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		clock:    opts.Clock,
		opts:     opts,
		log:      logger,
		sched:    sched.New(),
		tasks:    task.NewListFrom(tasks),
		wake:     make(chan struct{}, 1),
		classes:  make(map[string]classify.Classification),
		index:    make(map[string]Location),
		grouping: !opts.GroupingDisabled,
	}

	e.rocks = asteroid.NewManager(e.sched, asteroid.Options{
		TTL:       opts.SuggestionTTL,
		MaxActive: opts.MaxActiveSuggestions,
		Lookup:    e.lookupText,
		OnResolve: e.queueResolved,
		OnNotify:  e.queueNotification,
		Logger:    logger,
	})

	now := e.clock.Now()

	e.reclassifyAll(now)
	e.rebuild(now)
	e.lastGenerated = now
	e.scheduleTick(now)

	return e
}

// Tasks returns a copy of the current task list.
func (e *Engine) Tasks() []task.Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tasks.Tasks()
}

// Resolve finds a task by ID or unique ID prefix.
func (e *Engine) Resolve(ref string) (task.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tasks.Resolve(ref)
}

// Classification returns the cached classification of a task.
func (e *Engine) Classification(id string) (classify.Classification, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.classes[id]

	return c, ok
}

// Add creates a task.
func (e *Engine) Add(d task.Draft) task.Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	t := e.tasks.Add(d, now)
	e.afterMutation(now, t.ID, true)

	return t
}

// Update applies a partial update to a task.
func (e *Engine) Update(id string, p task.Patch) (task.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.tasks.Update(id, p)
	if err != nil {
		return task.Task{}, err
	}

	e.afterMutation(e.clock.Now(), t.ID, true)

	return t, nil
}

// Delete removes a task. Suggestions targeting it stay resolvable.
func (e *Engine) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.tasks.Delete(id)
	if err != nil {
		return err
	}

	delete(e.classes, id)
	e.afterMutation(e.clock.Now(), id, false)

	return nil
}

// ToggleComplete flips a task's completed flag.
func (e *Engine) ToggleComplete(id string) (task.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.tasks.ToggleComplete(id)
	if err != nil {
		return task.Task{}, err
	}

	e.afterMutation(e.clock.Now(), t.ID, true)

	return t, nil
}

// ToggleSubTask flips a sub-task's completed flag.
func (e *Engine) ToggleSubTask(id, subRef string) (task.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.tasks.ToggleSubTask(id, subRef)
	if err != nil {
		return task.Task{}, err
	}

	e.afterMutation(e.clock.Now(), t.ID, true)

	return t, nil
}

// SetGrouping enables or disables AI grouping. Disabled, snapshots carry no
// systems; re-enabled, the hierarchy is recomposed from the current tasks.
func (e *Engine) SetGrouping(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.grouping == enabled {
		return
	}

	e.grouping = enabled
	e.log.Debug("grouping toggled", "enabled", enabled)

	if enabled {
		e.sched.Cancel(keyCompose)
		e.rebuild(e.clock.Now())
	}
}

// Grouping reports whether AI grouping is enabled.
func (e *Engine) Grouping() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.grouping
}

// ResolveSuggestion accepts or rejects a suggestion by ID or unique prefix.
// Unknown, resolved and expired suggestions, and outcomes other than accept
// or reject, are no-ops reporting false.
func (e *Engine) ResolveSuggestion(ref string, outcome asteroid.Outcome) bool {
	if !outcome.Valid() {
		return false
	}

	e.mu.Lock()

	ok := false
	if s, found := e.rocks.Find(ref); found {
		ok = e.rocks.Resolve(e.clock.Now(), s.ID, outcome)
	}

	events, notes := e.drainEvents()
	e.mu.Unlock()

	e.dispatch(events, notes)

	return ok
}

// Suggest proposes a suggestion for one task from its first seed.
func (e *Engine) Suggest(taskID string) (asteroid.Suggestion, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.classes[taskID]
	if !ok || len(c.Seeds) == 0 {
		return asteroid.Suggestion{}, false
	}

	return e.rocks.Propose(e.clock.Now(), candidateOf(c))
}

// SuggestNext proposes a suggestion for the most pressing task that has
// none, the same way periodic generation does.
func (e *Engine) SuggestNext() (asteroid.Suggestion, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.rocks.Generate(e.clock.Now(), e.candidates())
}

// Flush runs any pending rebuild immediately.
func (e *Engine) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sched.Cancel(keyCompose) {
		e.rebuild(e.clock.Now())
	}
}

// Poll runs every scheduled timeout that is due at the clock's current time.
func (e *Engine) Poll() int {
	e.mu.Lock()
	ran := e.sched.RunDue(e.clock.Now())
	events, notes := e.drainEvents()
	e.mu.Unlock()

	e.dispatch(events, notes)

	return ran
}

// Run drives Poll until ctx is done. It sleeps until the next scheduled
// timeout and wakes early when a mutation reschedules work.
func (e *Engine) Run(ctx context.Context) error {
	for {
		e.mu.Lock()
		next, ok := e.sched.Next()
		e.mu.Unlock()

		wait := idleWait
		if ok {
			wait = max(next.Sub(e.clock.Now()), 0)
		}

		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()

			return ctx.Err()
		case <-e.wake:
			timer.Stop()
		case <-timer.C:
		}

		e.Poll()
	}
}

// Snapshot returns a copy of the current render data. It never triggers a
// rebuild.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	_, pending := e.sched.Pending(keyCompose)

	s := Snapshot{
		Version:       e.composedAt,
		Grouping:      e.grouping,
		Systems:       []compose.System{},
		Positions:     layout.PositionMap{Anchors: map[string]layout.Anchor{}, Orbits: map[string]layout.Orbit{}},
		Suggestions:   e.rocks.Active(now),
		Notifications: e.rocks.Notifications(now),
		Pending:       pending,
	}

	if e.grouping {
		s.Systems = compose.CloneSystems(e.systems)
		s.Positions = e.positions.Clone()
	}

	return s
}

func (e *Engine) afterMutation(now time.Time, id string, exists bool) {
	if exists {
		if t, ok := e.tasks.Get(id); ok {
			c := classify.Classify(t, classify.Context{Now: now})
			e.classes[id] = c

			if len(c.Seeds) > 0 && !t.Completed {
				e.generateQueued = append(e.generateQueued, id)
			}
		}
	}

	e.sched.Schedule(keyCompose, now.Add(e.opts.Debounce), e.onCompose)
	e.signal()
}

func (e *Engine) onCompose(now time.Time) {
	if !e.grouping {
		return
	}

	e.rebuild(now)
}

// rebuild recomposes the hierarchy, recomputes the layout and swaps both in.
func (e *Engine) rebuild(now time.Time) {
	ctx := classify.Context{Now: now}
	tasks := e.tasks.Tasks()

	// Deadlines drift as time passes; refresh every cached classification.
	e.classifyAll(tasks, ctx)

	systems := compose.Compose(tasks, e.classes, ctx)
	positions := layout.Layout(systems, e.opts.Layout)

	e.systems = systems
	e.positions = positions
	e.index = buildIndex(systems, positions)
	e.composedAt = e.tasks.Version()

	e.log.Debug("hierarchy rebuilt", "version", e.composedAt, "systems", len(systems), "tasks", len(tasks))
}

func (e *Engine) reclassifyAll(now time.Time) {
	e.classifyAll(e.tasks.Tasks(), classify.Context{Now: now})
}

// classifyAll caches a classification per task ID. Only the first task with
// a given ID is classified; later duplicates are the ones Get never returns
// and Compose drops.
func (e *Engine) classifyAll(tasks []task.Task, ctx classify.Context) {
	seen := make(map[string]bool, len(tasks))

	for _, t := range tasks {
		if t.ID == "" || seen[t.ID] {
			continue
		}

		seen[t.ID] = true
		e.classes[t.ID] = classify.Classify(t, ctx)
	}
}

func (e *Engine) scheduleTick(now time.Time) {
	e.sched.Schedule(keyTick, now.Add(e.opts.TickInterval), e.onTick)
}

func (e *Engine) onTick(now time.Time) {
	e.scheduleTick(now)

	for len(e.generateQueued) > 0 {
		id := e.generateQueued[0]
		e.generateQueued = e.generateQueued[1:]

		if c, ok := e.classes[id]; ok && len(c.Seeds) > 0 {
			e.rocks.Propose(now, candidateOf(c))
		}
	}

	if e.opts.SuggestionInterval < 0 || now.Sub(e.lastGenerated) < e.opts.SuggestionInterval {
		return
	}

	e.lastGenerated = now
	e.rocks.Generate(now, e.candidates())
}

func (e *Engine) lookupText(taskID string) (string, bool) {
	t, ok := e.tasks.Get(taskID)
	if !ok {
		return "", false
	}

	return t.Text, true
}

func (e *Engine) queueResolved(taskID string, outcome asteroid.Outcome) {
	e.events = append(e.events, resolved{taskID: taskID, outcome: outcome})
}

func (e *Engine) queueNotification(n asteroid.Notification) {
	e.notes = append(e.notes, n)
}

func (e *Engine) drainEvents() ([]resolved, []asteroid.Notification) {
	events, notes := e.events, e.notes
	e.events, e.notes = nil, nil

	return events, notes
}

func (e *Engine) dispatch(events []resolved, notes []asteroid.Notification) {
	if e.opts.OnResolve != nil {
		for _, ev := range events {
			e.opts.OnResolve(ev.taskID, ev.outcome)
		}
	}

	if e.opts.OnNotify != nil {
		for _, n := range notes {
			e.opts.OnNotify(n)
		}
	}
}

func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}
