package diag

// DedupReporter wraps another Reporter and suppresses diagnostics sharing
// code, primary span, location and arguments. It is not safe for concurrent
// use; give each producer its own instance.
type DedupReporter struct {
	next Reporter
	seen map[string]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[string]struct{}),
	}
}

func (r *DedupReporter) Report(d *Diagnostic) {
	if r == nil || d == nil {
		return
	}
	key := d.key()
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
