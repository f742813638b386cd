package sched_test

import (
	"testing"
	"time"

	"github.com/calvinalkan/orbit/internal/sched"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestRunDueOrdersByTimeThenScheduling(t *testing.T) {
	t.Parallel()

	s := sched.New()

	var order []string

	record := func(name string) sched.Func {
		return func(time.Time) { order = append(order, name) }
	}

	s.Schedule("c", t0.Add(2*time.Second), record("c"))
	s.Schedule("a", t0.Add(time.Second), record("a"))
	s.Schedule("b", t0.Add(time.Second), record("b"))
	s.Schedule("late", t0.Add(time.Hour), record("late"))

	ran := s.RunDue(t0.Add(2 * time.Second))

	require.Equal(t, 3, ran, "three entries due")
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 1, s.Len(), "late entry stays pending")
}

func TestScheduleSameKeyResetsDeadline(t *testing.T) {
	t.Parallel()

	s := sched.New()
	calls := 0
	fn := func(time.Time) { calls++ }

	s.Schedule("compose", t0.Add(time.Second), fn)
	s.Schedule("compose", t0.Add(1500*time.Millisecond), fn)

	require.Equal(t, 1, s.Len(), "same key must not queue twice")

	at, ok := s.Pending("compose")
	require.True(t, ok)
	assert.Equal(t, t0.Add(1500*time.Millisecond), at)

	assert.Zero(t, s.RunDue(t0.Add(time.Second)), "old deadline must not fire")
	assert.Equal(t, 1, s.RunDue(t0.Add(2*time.Second)))
	assert.Equal(t, 1, calls)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	s := sched.New()
	s.Schedule("x", t0, func(time.Time) { t.Fatal("cancelled entry ran") })

	assert.True(t, s.Cancel("x"))
	assert.False(t, s.Cancel("x"), "second cancel is a no-op")
	assert.Zero(t, s.RunDue(t0.Add(time.Hour)))

	_, ok := s.Next()
	assert.False(t, ok)
}

func TestCallbacksCanScheduleDueWork(t *testing.T) {
	t.Parallel()

	s := sched.New()

	var order []string

	s.Schedule("first", t0, func(now time.Time) {
		order = append(order, "first")
		s.Schedule("chained", now, func(time.Time) { order = append(order, "chained") })
		s.Schedule("future", now.Add(time.Second), func(time.Time) { order = append(order, "future") })
	})

	assert.Equal(t, 2, s.RunDue(t0))
	assert.Equal(t, []string{"first", "chained"}, order)

	next, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, t0.Add(time.Second), next)
}

func TestRecurringEntry(t *testing.T) {
	t.Parallel()

	s := sched.New()
	ticks := 0

	var tick sched.Func
	tick = func(now time.Time) {
		ticks++
		s.Schedule("tick", now.Add(time.Second), tick)
	}

	s.Schedule("tick", t0.Add(time.Second), tick)

	for i := 1; i <= 5; i++ {
		s.RunDue(t0.Add(time.Duration(i) * time.Second))
	}

	assert.Equal(t, 5, ticks)
}
