package asteroid

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/calvinalkan/orbit/internal/classify"
	"github.com/calvinalkan/orbit/internal/sched"

	"github.com/google/uuid"
)

// Defaults.
const (
	DefaultTTL       = 45 * time.Second
	DefaultMaxActive = 3
)

// Scheduler key prefixes.
const (
	keyExpire  = "asteroid/expire/"
	keyAlert   = "asteroid/alert/"
	keyDismiss = "asteroid/dismiss/"
)

// Callback receives explicit resolutions. Expiry never invokes it.
type Callback func(taskID string, outcome Outcome)

// NotifyFunc receives every notification as it is queued.
type NotifyFunc func(n Notification)

// TaskLookup returns display text for a task ID. ok=false marks an orphaned
// suggestion; it stays resolvable but carries no task text.
type TaskLookup func(taskID string) (text string, ok bool)

// Options configures a Manager.
type Options struct {
	// TTL is the lifetime of a new suggestion. Zero means DefaultTTL.
	TTL time.Duration
	// MaxActive caps concurrently active suggestions. Zero means
	// DefaultMaxActive, negative means unlimited.
	MaxActive int
	OnResolve Callback
	OnNotify  NotifyFunc
	Lookup    TaskLookup
	NewID     func() string
	Logger    *slog.Logger
}

// Candidate is a task that could receive a suggestion.
type Candidate struct {
	TaskID    string
	SystemKey string
	Seed      classify.Seed
	// TTL overrides Options.TTL when positive.
	TTL time.Duration
}

// Manager tracks active suggestions and the notification queue. Its timeouts
// live on a scheduler shared with the caller; RunDue on that scheduler drives
// alerts, expiry and notification dismissal.
//
// Manager is not safe for concurrent use.
type Manager struct {
	sched  *sched.Scheduler
	opts   Options
	log    *slog.Logger
	active map[string]*Suggestion
	byTask map[string]string

	notifications []Notification
	cursor        int
}

// NewManager returns a manager registering its timeouts on s.
func NewManager(s *sched.Scheduler, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	if opts.MaxActive == 0 {
		opts.MaxActive = DefaultMaxActive
	}

	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Manager{
		sched:  s,
		opts:   opts,
		log:    logger,
		active: make(map[string]*Suggestion),
		byTask: make(map[string]string),
	}
}

// Propose creates a suggestion for c.TaskID unless one is already active for
// that task or the active cap is reached.
func (m *Manager) Propose(now time.Time, c Candidate) (Suggestion, bool) {
	if _, busy := m.byTask[c.TaskID]; busy {
		return Suggestion{}, false
	}

	if m.opts.MaxActive > 0 && len(m.active) >= m.opts.MaxActive {
		return Suggestion{}, false
	}

	ttl := m.opts.TTL
	if c.TTL > 0 {
		ttl = c.TTL
	}

	s := &Suggestion{
		ID:          m.opts.NewID(),
		TaskID:      c.TaskID,
		SystemKey:   c.SystemKey,
		Action:      c.Seed.Action,
		Description: c.Seed.Description,
		Impact:      min(max(c.Seed.Impact, MinImpact), MaxImpact),
		CreatedAt:   now,
		TimeLimit:   now.Add(ttl),
		State:       StateProposed,
	}

	m.active[s.ID] = s
	m.byTask[s.TaskID] = s.ID

	id := s.ID
	m.sched.Schedule(keyExpire+id, s.TimeLimit, func(at time.Time) { m.expire(id, at) })
	m.sched.Schedule(keyAlert+id, s.TimeLimit.Add(-CriticalAt), func(at time.Time) { m.alert(id, at) })

	m.log.Debug("suggestion proposed", "id", id, "task", s.TaskID, "time_limit", s.TimeLimit)

	return *s, true
}

// Generate proposes one suggestion from candidates, rotating through them
// across calls. Candidates already targeted by an active suggestion are
// skipped.
func (m *Manager) Generate(now time.Time, candidates []Candidate) (Suggestion, bool) {
	if len(candidates) == 0 {
		return Suggestion{}, false
	}

	start := m.cursor % len(candidates)

	for i := range candidates {
		pos := (start + i) % len(candidates)

		if s, ok := m.Propose(now, candidates[pos]); ok {
			m.cursor = pos + 1

			return s, true
		}
	}

	return Suggestion{}, false
}

// Resolve applies an explicit outcome. It returns false, doing nothing, when
// the outcome is neither Accept nor Reject, the ID is unknown or already
// resolved, or the suggestion's time is up.
func (m *Manager) Resolve(now time.Time, id string, outcome Outcome) bool {
	if !outcome.Valid() {
		return false
	}

	s, ok := m.active[id]
	if !ok {
		return false
	}

	if !now.Before(s.TimeLimit) {
		m.expire(id, now)

		return false
	}

	s.State = outcome.state()
	m.remove(s)
	m.enqueue(now, Notification{
		Kind:         outcomeKind(outcome),
		SuggestionID: s.ID,
		TaskID:       s.TaskID,
		Message:      outcomeMessage(s, outcome),
	}, OutcomeDisplay)

	m.log.Debug("suggestion resolved", "id", id, "task", s.TaskID, "outcome", outcome)

	if m.opts.OnResolve != nil {
		m.opts.OnResolve(s.TaskID, outcome)
	}

	return true
}

// Accept is Resolve with Accept.
func (m *Manager) Accept(now time.Time, id string) bool {
	return m.Resolve(now, id, Accept)
}

// Reject is Resolve with Reject.
func (m *Manager) Reject(now time.Time, id string) bool {
	return m.Resolve(now, id, Reject)
}

// Find returns the active suggestion with the given ID or unique ID prefix.
func (m *Manager) Find(ref string) (Suggestion, bool) {
	if s, ok := m.active[ref]; ok {
		return *s, true
	}

	var found *Suggestion

	for id, s := range m.active {
		if ref == "" || !strings.HasPrefix(id, ref) {
			continue
		}

		if found != nil {
			return Suggestion{}, false
		}

		found = s
	}

	if found == nil {
		return Suggestion{}, false
	}

	return *found, true
}

// ForTask returns the active suggestion targeting taskID.
func (m *Manager) ForTask(taskID string) (Suggestion, bool) {
	id, ok := m.byTask[taskID]
	if !ok {
		return Suggestion{}, false
	}

	return *m.active[id], true
}

// Len returns the number of active suggestions.
func (m *Manager) Len() int {
	return len(m.active)
}

// Active returns views of active suggestions at now, soonest limit first.
// Suggestions whose limit has passed but whose expiry has not run yet are
// left out.
func (m *Manager) Active(now time.Time) []View {
	views := make([]View, 0, len(m.active))

	for _, s := range m.active {
		u := UrgencyAt(s.TimeLimit, now)
		if u == UrgencyExpired {
			continue
		}

		v := View{Suggestion: *s, Urgency: u, Remaining: s.TimeLimit.Sub(now)}

		if m.opts.Lookup != nil {
			if text, ok := m.opts.Lookup(s.TaskID); ok {
				v.TaskText = text
			}
		}

		views = append(views, v)
	}

	slices.SortFunc(views, func(a, b View) int {
		if c := a.TimeLimit.Compare(b.TimeLimit); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})

	return views
}

// Notifications returns the queue at now, oldest first.
func (m *Manager) Notifications(now time.Time) []Notification {
	out := make([]Notification, 0, len(m.notifications))

	for _, n := range m.notifications {
		if now.Before(n.ExpiresAt) {
			out = append(out, n)
		}
	}

	return out
}

func (m *Manager) expire(id string, now time.Time) {
	s, ok := m.active[id]
	if !ok {
		return
	}

	s.State = StateExpired
	m.remove(s)

	m.log.Debug("suggestion expired", "id", id, "task", s.TaskID, "at", now)
}

func (m *Manager) alert(id string, now time.Time) {
	s, ok := m.active[id]
	if !ok || !now.Before(s.TimeLimit) {
		return
	}

	m.enqueue(now, Notification{
		Kind:         KindAlert,
		SuggestionID: s.ID,
		TaskID:       s.TaskID,
		Message:      alertMessage(s, now),
	}, AlertDisplay)
}

func (m *Manager) remove(s *Suggestion) {
	delete(m.active, s.ID)

	if m.byTask[s.TaskID] == s.ID {
		delete(m.byTask, s.TaskID)
	}

	m.sched.Cancel(keyExpire + s.ID)
	m.sched.Cancel(keyAlert + s.ID)
}

func (m *Manager) enqueue(now time.Time, n Notification, display time.Duration) {
	n.ID = m.opts.NewID()
	n.CreatedAt = now
	n.ExpiresAt = now.Add(display)
	m.notifications = append(m.notifications, n)

	if m.opts.OnNotify != nil {
		m.opts.OnNotify(n)
	}

	id := n.ID
	m.sched.Schedule(keyDismiss+id, n.ExpiresAt, func(time.Time) { m.dismiss(id) })
}

func (m *Manager) dismiss(id string) {
	m.notifications = slices.DeleteFunc(m.notifications, func(n Notification) bool {
		return n.ID == id
	})
}
