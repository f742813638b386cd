// Package store persists the task list as a single JSON file.
//
// Only tasks are stored. Classifications, systems, layouts and suggestions are
// derived state and are rebuilt on load.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/calvinalkan/orbit/internal/task"

	"github.com/natefinch/atomic"
)

// FormatVersion is the version written to new task files.
const FormatVersion = 1

const (
	filePerms = 0o600
	dirPerms  = 0o750
)

// dateOnly is accepted for hand-edited deadlines.
const dateOnly = "2006-01-02"

type file struct {
	Version int          `json:"version"`
	Tasks   []taskRecord `json:"tasks"`
}

type taskRecord struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Category  string          `json:"category,omitempty"`
	Priority  string          `json:"priority,omitempty"`
	Completed bool            `json:"completed,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
	Deadline  string          `json:"deadline,omitempty"`
	SubTasks  []subTaskRecord `json:"sub_tasks,omitempty"`
	Goal      bool            `json:"goal,omitempty"`
	System    string          `json:"system,omitempty"`
}

type subTaskRecord struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed,omitempty"`
}

// Load reads the tasks at path. A missing file is an empty list.
// Unparseable timestamps are dropped rather than rejected; a task whose
// deadline cannot be read simply has none.
func Load(path string) ([]task.Task, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []task.Task{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}

	return Decode(data)
}

// Decode parses task file content.
func Decode(data []byte) ([]task.Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []task.Task{}, nil
	}

	var f file

	err := json.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if f.Version > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}

	tasks := make([]task.Task, 0, len(f.Tasks))
	for _, r := range f.Tasks {
		tasks = append(tasks, r.task())
	}

	return tasks, nil
}

// Encode renders tasks as task file content.
func Encode(tasks []task.Task) ([]byte, error) {
	f := file{Version: FormatVersion, Tasks: make([]taskRecord, 0, len(tasks))}
	for i := range tasks {
		f.Tasks = append(f.Tasks, recordOf(&tasks[i]))
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tasks: %w", err)
	}

	return append(data, '\n'), nil
}

// Save atomically replaces the task file at path.
func Save(path string, tasks []task.Task) error {
	data, err := Encode(tasks)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), dirPerms)
	if err != nil {
		return fmt.Errorf("creating task dir: %w", err)
	}

	err = atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("writing task file: %w", err)
	}

	return nil
}

// Update loads the tasks at path under an exclusive lock and passes them to
// handler. A non-nil result is saved; nil means read-only. Handler errors
// abort without writing.
func Update(path string, handler func(tasks []task.Task) ([]task.Task, error)) error {
	return WithLock(path, func() error {
		tasks, err := Load(path)
		if err != nil {
			return err
		}

		updated, err := handler(tasks)
		if err != nil {
			return err
		}

		if updated == nil {
			return nil
		}

		return Save(path, updated)
	})
}

func (r *taskRecord) task() task.Task {
	t := task.Task{
		ID:        strings.TrimSpace(r.ID),
		Text:      r.Text,
		Category:  r.Category,
		Priority:  task.Priority(r.Priority),
		Completed: r.Completed,
		Goal:      r.Goal,
		System:    r.System,
	}

	if created, ok := ParseTime(r.CreatedAt); ok {
		t.CreatedAt = created
	}

	if deadline, ok := ParseTime(r.Deadline); ok {
		t.Deadline = &deadline
	}

	for _, st := range r.SubTasks {
		t.SubTasks = append(t.SubTasks, task.SubTask{ID: st.ID, Text: st.Text, Completed: st.Completed})
	}

	return t
}

func recordOf(t *task.Task) taskRecord {
	r := taskRecord{
		ID:        t.ID,
		Text:      t.Text,
		Category:  t.Category,
		Priority:  string(t.Priority),
		Completed: t.Completed,
		Goal:      t.Goal,
		System:    t.System,
	}

	if !t.CreatedAt.IsZero() {
		r.CreatedAt = t.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	if t.HasDeadline() {
		r.Deadline = t.Deadline.UTC().Format(time.RFC3339Nano)
	}

	for _, st := range t.SubTasks {
		r.SubTasks = append(r.SubTasks, subTaskRecord(st))
	}

	return r
}

// ParseTime accepts RFC 3339 timestamps and plain dates (midnight UTC).
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}

	if t, err := time.Parse(dateOnly, s); err == nil {
		return t, true
	}

	return time.Time{}, false
}
