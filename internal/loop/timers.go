package loop

import (
	"container/heap"
	"time"
)

// timerKind names a deferred effect scheduled on the game clock.
type timerKind int

const (
	timerInvulnerability timerKind = iota // Clears invulnerability
	timerSpeedPenalty                     // Restores the speed multiplier
	timerGameOver                         // Ends the dying phase
	timerComboWindow                      // Drops the combo back to 0
	timerComboBanner                      // Hides the combo indicator
)

func (k timerKind) String() string {
	switch k {
	case timerInvulnerability:
		return "invulnerability"
	case timerSpeedPenalty:
		return "speed-penalty"
	case timerGameOver:
		return "game-over"
	case timerComboWindow:
		return "combo-window"
	case timerComboBanner:
		return "combo-banner"
	default:
		return "unknown"
	}
}

type timer struct {
	kind     timerKind
	deadline time.Duration
	seq      uint64 // Insertion order, breaks deadline ties
}

// timerHeap implements heap.Interface ordered by deadline.
type timerHeap []timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)   { *h = append(*h, x.(timer)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}

// timerQueue holds pending deadlines measured on the game clock.
// Nothing fires while the clock is stopped, so paused games keep their timers.
type timerQueue struct {
	items timerHeap
	seq   uint64
}

// Schedule adds a timer. Several timers of one kind may be pending at once.
func (q *timerQueue) Schedule(kind timerKind, deadline time.Duration) {
	q.seq++
	heap.Push(&q.items, timer{kind: kind, deadline: deadline, seq: q.seq})
}

// Cancel drops every pending timer of the given kind.
func (q *timerQueue) Cancel(kind timerKind) {
	kept := q.items[:0]
	for _, t := range q.items {
		if t.kind != kind {
			kept = append(kept, t)
		}
	}
	q.items = kept
	heap.Init(&q.items)
}

// PopDue removes and returns the earliest timer whose deadline is at or
// before now.
func (q *timerQueue) PopDue(now time.Duration) (timer, bool) {
	if len(q.items) == 0 || q.items[0].deadline > now {
		return timer{}, false
	}
	return heap.Pop(&q.items).(timer), true
}

// Pending reports the earliest deadline of the given kind.
func (q *timerQueue) Pending(kind timerKind) (time.Duration, bool) {
	var (
		best  time.Duration
		found bool
	)
	for _, t := range q.items {
		if t.kind == kind && (!found || t.deadline < best) {
			best, found = t.deadline, true
		}
	}
	return best, found
}

// Len returns the number of pending timers.
func (q *timerQueue) Len() int {
	return len(q.items)
}

// Reset drops every pending timer.
func (q *timerQueue) Reset() {
	q.items = q.items[:0]
}
