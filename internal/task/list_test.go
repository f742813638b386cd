package task

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

var testNow = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

func sequentialIDs(prefix string) func() string {
	n := 0

	return func() string {
		n++

		return fmt.Sprintf("%s%04d", prefix, n)
	}
}

func TestParsePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		want   Priority
		wantOK bool
	}{
		{"low", PriorityLow, true},
		{"MEDIUM", PriorityMedium, true},
		{" high ", PriorityHigh, true},
		{"", PriorityMedium, false},
		{"urgent", PriorityMedium, false},
		{"null", PriorityMedium, false},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%q", tc.input), func(t *testing.T) {
			t.Parallel()

			got, ok := ParsePriority(tc.input)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("ParsePriority(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestPriorityWeightTreatsInvalidAsMedium(t *testing.T) {
	t.Parallel()

	if got, want := Priority("bogus").Weight(), WeightMedium; got != want {
		t.Fatalf("weight=%d, want=%d", got, want)
	}

	if !(PriorityLow.Weight() < PriorityMedium.Weight() && PriorityMedium.Weight() < PriorityHigh.Weight()) {
		t.Fatal("weights must increase with priority")
	}
}

func TestNormalizeCategory(t *testing.T) {
	t.Parallel()

	if got, ok := NormalizeCategory("  Work "); got != "work" || !ok {
		t.Errorf("NormalizeCategory(Work) = (%q, %v)", got, ok)
	}

	if got, ok := NormalizeCategory(""); got != DefaultCategory || ok {
		t.Errorf("NormalizeCategory(\"\") = (%q, %v)", got, ok)
	}
}

func TestListAddAssignsIDsAndBumpsVersion(t *testing.T) {
	t.Parallel()

	l := NewList()
	deadline := testNow.Add(48 * time.Hour)

	added := l.Add(Draft{Text: "  Write report ", Priority: "high", Deadline: &deadline, SubTasks: []string{"outline", "draft"}}, testNow)

	if added.ID == "" {
		t.Fatal("expected generated ID")
	}

	if got, want := added.Text, "Write report"; got != want {
		t.Errorf("text=%q, want=%q", got, want)
	}

	if len(added.SubTasks) != 2 || added.SubTasks[0].ID == "" {
		t.Fatalf("subtasks=%+v, want 2 with IDs", added.SubTasks)
	}

	if got, want := l.Version(), uint64(1); got != want {
		t.Errorf("version=%d, want=%d", got, want)
	}

	// Mutating the caller's deadline must not leak into the list.
	deadline = deadline.Add(time.Hour)

	stored, _ := l.Get(added.ID)
	if !stored.Deadline.Equal(testNow.Add(48 * time.Hour)) {
		t.Errorf("stored deadline=%v, changed through caller pointer", stored.Deadline)
	}
}

func TestListUpdate(t *testing.T) {
	t.Parallel()

	l := NewList()
	added := l.Add(Draft{Text: "a", Category: "work"}, testNow)

	text := "b"
	category := "home"
	deadline := testNow.Add(time.Hour)

	updated, err := l.Update(added.ID, Patch{Text: &text, Category: &category, Deadline: &deadline})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Text != "b" || updated.Category != "home" || updated.Deadline == nil {
		t.Fatalf("updated=%+v", updated)
	}

	cleared, err := l.Update(added.ID, Patch{ClearDeadline: true, Deadline: &deadline})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if cleared.Deadline != nil {
		t.Errorf("ClearDeadline must win, got %v", cleared.Deadline)
	}

	before := l.Version()

	_, err = l.Update(added.ID, Patch{})
	if err != nil {
		t.Fatalf("empty Update: %v", err)
	}

	if l.Version() != before {
		t.Errorf("empty patch bumped version")
	}

	_, err = l.Update("missing", Patch{Text: &text})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("err=%v, want ErrTaskNotFound", err)
	}
}

func TestListDeleteAndToggle(t *testing.T) {
	t.Parallel()

	l := NewList()
	a := l.Add(Draft{Text: "a"}, testNow)
	b := l.Add(Draft{Text: "b"}, testNow)

	toggled, err := l.ToggleComplete(b.ID)
	if err != nil || !toggled.Completed {
		t.Fatalf("ToggleComplete = (%+v, %v)", toggled, err)
	}

	err = l.Delete(a.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, ok := l.Get(a.ID); ok {
		t.Error("deleted task still present")
	}

	got, ok := l.Get(b.ID)
	if !ok || !got.Completed {
		t.Errorf("remaining task lookup broken after delete: %+v %v", got, ok)
	}

	if !errors.Is(l.Delete(a.ID), ErrTaskNotFound) {
		t.Error("second delete should report ErrTaskNotFound")
	}
}

func TestListToggleSubTask(t *testing.T) {
	t.Parallel()

	l := NewList()
	l.newID = sequentialIDs("id")
	added := l.Add(Draft{Text: "parent", SubTasks: []string{"one", "two"}}, testNow)

	got, err := l.ToggleSubTask(added.ID, "2")
	if err != nil {
		t.Fatalf("ToggleSubTask by position: %v", err)
	}

	if !got.SubTasks[1].Completed || got.SubTasks[0].Completed {
		t.Fatalf("subtasks=%+v", got.SubTasks)
	}

	got, err = l.ToggleSubTask(added.ID, got.SubTasks[0].ID)
	if err != nil || !got.SubTasks[0].Completed {
		t.Fatalf("ToggleSubTask by ID = (%+v, %v)", got.SubTasks, err)
	}

	if _, err := l.ToggleSubTask(added.ID, "3"); !errors.Is(err, ErrSubTaskNotFound) {
		t.Errorf("err=%v, want ErrSubTaskNotFound", err)
	}

	if got := len(got.OpenSubTasks()); got != 0 {
		t.Errorf("open subtasks=%d, want 0", got)
	}
}

func TestListResolve(t *testing.T) {
	t.Parallel()

	l := NewList()
	l.newID = sequentialIDs("abcd-")
	first := l.Add(Draft{Text: "a"}, testNow)
	l.Add(Draft{Text: "b"}, testNow)

	got, err := l.Resolve(first.ID)
	if err != nil || got.ID != first.ID {
		t.Fatalf("exact Resolve = (%q, %v)", got.ID, err)
	}

	got, err = l.Resolve("abcd-0001")
	if err != nil || got.ID != first.ID {
		t.Fatalf("prefix Resolve = (%q, %v)", got.ID, err)
	}

	for _, tc := range []struct {
		ref  string
		want error
	}{
		{"", ErrIDRequired},
		{"abcd", ErrAmbiguousID},
		{"ab", ErrTaskNotFound},
		{"zzzz", ErrTaskNotFound},
	} {
		_, err := l.Resolve(tc.ref)
		if !errors.Is(err, tc.want) {
			t.Errorf("Resolve(%q) err=%v, want %v", tc.ref, err, tc.want)
		}
	}
}

func TestNewListFromKeepsOrderAndFillsIDs(t *testing.T) {
	t.Parallel()

	l := NewListFrom([]Task{{ID: "x", Text: "first"}, {Text: "second"}, {ID: "x", Text: "dup"}})

	tasks := l.Tasks()
	if len(tasks) != 3 {
		t.Fatalf("len=%d, want 3", len(tasks))
	}

	if tasks[1].ID == "" {
		t.Error("missing ID was not filled")
	}

	for i, tk := range tasks {
		if tk.Seq() != uint64(i) {
			t.Errorf("task %d seq=%d", i, tk.Seq())
		}
	}

	got, _ := l.Get("x")
	if got.Text != "first" {
		t.Errorf("Get(x)=%q, want first occurrence", got.Text)
	}
}
