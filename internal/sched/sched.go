// Package sched is a single scheduler of cancellable timeouts keyed by id.
//
// It owns no goroutines and never reads a clock: callers pass "now" into
// RunDue. This keeps debounce, expiry and auto-dismiss logic in one place and
// testable with a fake clock.
package sched

import (
	"container/heap"
	"time"
)

// Func is a scheduled callback. now is the time passed to RunDue.
type Func func(now time.Time)

type entry struct {
	key   string
	at    time.Time
	seq   uint64
	fn    Func
	index int
}

// Scheduler holds pending timeouts.
//
// Scheduler is not safe for concurrent use.
type Scheduler struct {
	queue   entryHeap
	byKey   map[string]*entry
	nextSeq uint64
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{byKey: make(map[string]*entry)}
}

// Schedule registers fn to run at at. A pending entry with the same key is
// replaced, which moves its deadline (debounce reset).
func (s *Scheduler) Schedule(key string, at time.Time, fn Func) {
	seq := s.nextSeq
	s.nextSeq++

	if e, ok := s.byKey[key]; ok {
		e.at = at
		e.seq = seq
		e.fn = fn
		heap.Fix(&s.queue, e.index)

		return
	}

	e := &entry{key: key, at: at, seq: seq, fn: fn}
	s.byKey[key] = e
	heap.Push(&s.queue, e)
}

// Cancel removes a pending entry. It reports whether one existed.
func (s *Scheduler) Cancel(key string) bool {
	e, ok := s.byKey[key]
	if !ok {
		return false
	}

	heap.Remove(&s.queue, e.index)
	delete(s.byKey, key)

	return true
}

// Pending returns the deadline of the entry with the given key.
func (s *Scheduler) Pending(key string) (time.Time, bool) {
	e, ok := s.byKey[key]
	if !ok {
		return time.Time{}, false
	}

	return e.at, true
}

// Next returns the earliest pending deadline.
func (s *Scheduler) Next() (time.Time, bool) {
	if len(s.queue) == 0 {
		return time.Time{}, false
	}

	return s.queue[0].at, true
}

// Len returns the number of pending entries.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// RunDue runs every entry whose deadline is at or before now, earliest first,
// ties in scheduling order. Entries scheduled by callbacks that are already
// due run in the same call. It returns the number of callbacks run.
func (s *Scheduler) RunDue(now time.Time) int {
	ran := 0

	for len(s.queue) > 0 && !s.queue[0].at.After(now) {
		e, _ := heap.Pop(&s.queue).(*entry)
		delete(s.byKey, e.key)

		e.fn(now)
		ran++
	}

	return ran
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if !h[i].at.Equal(h[j].at) {
		return h[i].at.Before(h[j].at)
	}

	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e, _ := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]

	return e
}
