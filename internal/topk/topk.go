// Package topk implements the capped min-heap used by the response
// builder to keep the top-N scored documents without sorting the full
// result set (§4.10). The heap shape follows container/heap the same
// way the teacher engine's block-merge heap does.
package topk

import "container/heap"

// Entry is one scored document candidate. Seq records insertion order
// so ties can be broken by first-seen order per §4.10/§8 invariant 9.
type Entry struct {
	DocID uint64
	Score float64
	Seq   int
}

func less(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	// equal score: the later-seen entry sorts smaller, so it is the one
	// evicted first and first-seen order survives into the final sort.
	return a.Seq > b.Seq
}

type entryHeap []Entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return less(h[i], h[j]) }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(Entry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Heap is a min-heap capped at a fixed capacity: once full, a new entry
// either replaces the current minimum (if it ranks higher) or is
// dropped.
type Heap struct {
	cap int
	h   entryHeap
}

// New returns a capped heap with the given capacity. Capacity 0
// accepts nothing.
func New(capacity int) *Heap {
	return &Heap{cap: capacity}
}

// Len reports how many entries are currently held.
func (hp *Heap) Len() int { return hp.h.Len() }

// Add inserts e. Below capacity it always accepts and heapifies up;
// at capacity, if e does not outrank the current minimum it is
// rejected, otherwise it replaces the minimum and heapifies down
// (§4.10 capped min-heap contract).
func (hp *Heap) Add(e Entry) {
	if hp.cap <= 0 {
		return
	}
	if hp.h.Len() < hp.cap {
		heap.Push(&hp.h, e)
		return
	}
	root := hp.h[0]
	if !less(root, e) {
		return
	}
	hp.h[0] = e
	heap.Fix(&hp.h, 0)
}

// RemoveMin pops and returns the current minimum, restoring heap
// property. ok is false on an empty heap.
func (hp *Heap) RemoveMin() (e Entry, ok bool) {
	if hp.h.Len() == 0 {
		return e, false
	}
	return heap.Pop(&hp.h).(Entry), true
}

// Sort drains the heap and returns its contents in descending order by
// score (ties broken by first-seen order), per §4.10.
func (hp *Heap) Sort() []Entry {
	n := hp.h.Len()
	out := make([]Entry, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = heap.Pop(&hp.h).(Entry)
	}
	return out
}
