package app

import "sync"

// History keeps the most recent comparisons in a fixed-size ring.
type History struct {
	mu    sync.Mutex
	items []Comparison
	next  int
	full  bool
}

// NewHistory returns a History holding at most size comparisons.
func NewHistory(size int) *History {
	if size <= 0 {
		size = 100
	}
	return &History{items: make([]Comparison, size)}
}

// Add records c, evicting the oldest entry when full.
func (h *History) Add(c Comparison) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items[h.next] = c
	h.next = (h.next + 1) % len(h.items)
	if h.next == 0 {
		h.full = true
	}
}

// Recent returns up to n comparisons, newest first. n <= 0 returns all.
func (h *History) Recent(n int) []Comparison {
	h.mu.Lock()
	defer h.mu.Unlock()
	count := h.next
	if h.full {
		count = len(h.items)
	}
	if n <= 0 || n > count {
		n = count
	}
	out := make([]Comparison, 0, n)
	for i := 1; i <= n; i++ {
		idx := (h.next - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}
