package diag

import "sync"

// Sink is the shared, append-only destination of all validation passes.
// Report is safe for concurrent use; ordering is restored by Drain.
type Sink struct {
	mu    sync.Mutex
	items []*Diagnostic
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Report(d *Diagnostic) {
	if d == nil {
		return
	}
	s.mu.Lock()
	s.items = append(s.items, d)
	s.mu.Unlock()
}

func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Drain moves everything reported so far into a sorted, deduplicated Bag
// bounded by max (0 = unbounded). The limit applies after sorting so the
// surviving prefix does not depend on goroutine scheduling.
func (s *Sink) Drain(max int) *Bag {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.mu.Unlock()

	all := &Bag{items: items}
	all.Sort()
	all.Dedup()

	out := NewBag(max)
	for _, d := range all.items {
		out.Add(d)
	}
	return out
}
