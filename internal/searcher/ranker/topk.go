package ranker

import (
	"container/heap"
	"math/rand/v2"
)

// scoredHeap is a min-heap under the ranking order: the root is the worst
// document currently held.
type scoredHeap []ScoredDoc

func (h scoredHeap) Len() int           { return len(h) }
func (h scoredHeap) Less(i, j int) bool { return better(h[j], h[i]) }
func (h scoredHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *scoredHeap) Push(x any)        { *h = append(*h, x.(ScoredDoc)) }
func (h *scoredHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopK keeps the k best documents offered to it in O(log k) per offer.
// A TopK with k <= 0 keeps everything.
type TopK struct {
	k int
	h scoredHeap
}

func NewTopK(k int) *TopK {
	capacity := k
	if k <= 0 {
		capacity = 16
	}
	return &TopK{k: k, h: make(scoredHeap, 0, capacity)}
}

// Offer considers d for the result set.
func (t *TopK) Offer(d ScoredDoc) {
	if t.k <= 0 || len(t.h) < t.k {
		heap.Push(&t.h, d)
		return
	}
	if better(d, t.h[0]) {
		t.h[0] = d
		heap.Fix(&t.h, 0)
	}
}

func (t *TopK) Len() int { return len(t.h) }

// Sorted drains the buffer and returns its documents best first.
func (t *TopK) Sorted() []ScoredDoc {
	out := make([]ScoredDoc, len(t.h))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&t.h).(ScoredDoc)
	}
	return out
}

// SelectTop reorders docs so its first k entries are the k best, sorts
// only those, and returns them. k <= 0 or k >= len(docs) sorts everything.
func SelectTop(docs []ScoredDoc, k int) []ScoredDoc {
	if k <= 0 || k >= len(docs) {
		sortScored(docs)
		return docs
	}
	lo, hi := 0, len(docs)-1
	for lo < hi {
		p := partition(docs, lo, hi, lo+rand.IntN(hi-lo+1))
		switch {
		case p == k-1:
			lo = hi
		case p < k-1:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
	top := docs[:k]
	sortScored(top)
	return top
}

// partition moves everything better than the pivot to its left and returns
// the pivot's final position.
func partition(docs []ScoredDoc, lo, hi, pivotIdx int) int {
	docs[pivotIdx], docs[hi] = docs[hi], docs[pivotIdx]
	pivot := docs[hi]
	store := lo
	for i := lo; i < hi; i++ {
		if better(docs[i], pivot) {
			docs[i], docs[store] = docs[store], docs[i]
			store++
		}
	}
	docs[store], docs[hi] = docs[hi], docs[store]
	return store
}
