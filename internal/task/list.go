package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MinRefLength is the shortest prefix accepted by Resolve.
const MinRefLength = 4

// List is the single source of truth for tasks. It keeps insertion order and
// bumps Version on every successful mutation.
//
// List is not safe for concurrent use.
type List struct {
	tasks   []Task
	byID    map[string]int
	nextSeq uint64
	version uint64
	newID   func() string
}

// NewList returns an empty list.
func NewList() *List {
	return &List{
		byID:  make(map[string]int),
		newID: uuid.NewString,
	}
}

// NewListFrom returns a list holding a copy of tasks, in the given order.
// Tasks without an ID receive one. Later duplicates of an ID are kept in the
// slice but are unreachable through Get; the composer omits them.
func NewListFrom(tasks []Task) *List {
	l := NewList()

	for _, t := range tasks {
		t = t.Clone()
		if t.ID == "" {
			t.ID = l.newID()
		}

		l.push(t)
	}

	return l
}

func (l *List) push(t Task) {
	t.seq = l.nextSeq
	l.nextSeq++

	if _, dup := l.byID[t.ID]; !dup {
		l.byID[t.ID] = len(l.tasks)
	}

	l.tasks = append(l.tasks, t)
}

// Version increases on every mutation.
func (l *List) Version() uint64 {
	return l.version
}

// Len returns the number of tasks.
func (l *List) Len() int {
	return len(l.tasks)
}

// Tasks returns deep copies of all tasks in insertion order.
func (l *List) Tasks() []Task {
	out := make([]Task, 0, len(l.tasks))
	for _, t := range l.tasks {
		out = append(out, t.Clone())
	}

	return out
}

// Get returns a copy of the task with the given ID.
func (l *List) Get(id string) (Task, bool) {
	idx, ok := l.byID[id]
	if !ok {
		return Task{}, false
	}

	return l.tasks[idx].Clone(), true
}

// Resolve finds a task by exact ID or by unique ID prefix of at least
// MinRefLength characters.
func (l *List) Resolve(ref string) (Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Task{}, ErrIDRequired
	}

	if t, ok := l.Get(ref); ok {
		return t, nil
	}

	if len(ref) < MinRefLength {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	}

	var match *Task

	for i := range l.tasks {
		if !strings.HasPrefix(l.tasks[i].ID, ref) {
			continue
		}

		if match != nil && match.ID != l.tasks[i].ID {
			return Task{}, fmt.Errorf("%w: %s", ErrAmbiguousID, ref)
		}

		match = &l.tasks[i]
	}

	if match == nil {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	}

	return match.Clone(), nil
}

// Add appends a new task built from d and returns it.
func (l *List) Add(d Draft, now time.Time) Task {
	t := Task{
		ID:        l.newID(),
		Text:      strings.TrimSpace(d.Text),
		Category:  d.Category,
		Priority:  Priority(d.Priority),
		CreatedAt: now,
		Goal:      d.Goal,
		System:    strings.TrimSpace(d.System),
	}

	if d.Deadline != nil && !d.Deadline.IsZero() {
		deadline := *d.Deadline
		t.Deadline = &deadline
	}

	for _, text := range d.SubTasks {
		t.SubTasks = append(t.SubTasks, SubTask{ID: l.newID(), Text: strings.TrimSpace(text)})
	}

	l.push(t)
	l.version++

	return t.Clone()
}

// Update applies p to the task with the given ID.
func (l *List) Update(id string, p Patch) (Task, error) {
	idx, ok := l.byID[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	if p.IsEmpty() {
		return l.tasks[idx].Clone(), nil
	}

	t := &l.tasks[idx]

	if p.Text != nil {
		t.Text = strings.TrimSpace(*p.Text)
	}

	if p.Category != nil {
		t.Category = *p.Category
	}

	if p.Priority != nil {
		t.Priority = Priority(*p.Priority)
	}

	if p.Completed != nil {
		t.Completed = *p.Completed
	}

	if p.Goal != nil {
		t.Goal = *p.Goal
	}

	if p.System != nil {
		t.System = strings.TrimSpace(*p.System)
	}

	switch {
	case p.ClearDeadline:
		t.Deadline = nil
	case p.Deadline != nil && !p.Deadline.IsZero():
		deadline := *p.Deadline
		t.Deadline = &deadline
	}

	for _, text := range p.AddSubTasks {
		t.SubTasks = append(t.SubTasks, SubTask{ID: l.newID(), Text: strings.TrimSpace(text)})
	}

	l.version++

	return t.Clone(), nil
}

// Delete removes the task with the given ID.
func (l *List) Delete(id string) error {
	idx, ok := l.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	l.tasks = append(l.tasks[:idx], l.tasks[idx+1:]...)
	l.reindex()
	l.version++

	return nil
}

// ToggleComplete flips the completed flag of the task.
func (l *List) ToggleComplete(id string) (Task, error) {
	idx, ok := l.byID[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	l.tasks[idx].Completed = !l.tasks[idx].Completed
	l.version++

	return l.tasks[idx].Clone(), nil
}

// ToggleSubTask flips the completed flag of one sub-task. subRef is a
// sub-task ID, a unique ID prefix, or a 1-based position.
func (l *List) ToggleSubTask(id, subRef string) (Task, error) {
	idx, ok := l.byID[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	t := &l.tasks[idx]

	pos, err := findSubTask(t.SubTasks, subRef)
	if err != nil {
		return Task{}, err
	}

	t.SubTasks[pos].Completed = !t.SubTasks[pos].Completed
	l.version++

	return t.Clone(), nil
}

func findSubTask(subs []SubTask, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, ErrSubTaskRequired
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(subs) {
			return 0, fmt.Errorf("%w: %s", ErrSubTaskNotFound, ref)
		}

		return n - 1, nil
	}

	found := -1

	for i, st := range subs {
		if st.ID == ref {
			return i, nil
		}

		if len(ref) >= MinRefLength && strings.HasPrefix(st.ID, ref) {
			if found >= 0 {
				return 0, fmt.Errorf("%w: %s", ErrAmbiguousID, ref)
			}

			found = i
		}
	}

	if found < 0 {
		return 0, fmt.Errorf("%w: %s", ErrSubTaskNotFound, ref)
	}

	return found, nil
}

func (l *List) reindex() {
	clear(l.byID)

	for i, t := range l.tasks {
		if _, dup := l.byID[t.ID]; !dup {
			l.byID[t.ID] = i
		}
	}
}
