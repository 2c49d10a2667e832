package diag

import (
	"cmp"
	"slices"
	"strings"
)

// Bag is an ordered, bounded collection of diagnostics. Not safe for
// concurrent use; see Sink.
type Bag struct {
	items   []*Diagnostic
	max     int
	dropped int
}

// NewBag returns a bag holding at most max diagnostics (0 = unbounded).
func NewBag(max int) *Bag {
	return &Bag{
		items: make([]*Diagnostic, 0, min(max, 256)),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d *Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// Dropped returns how many diagnostics were rejected by the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors возвращает true, если есть хотя бы одна ошибка.
func (b *Bag) HasErrors() bool {
	return b.Count(SevError) > 0
}

// HasWarnings возвращает true, если есть хотя бы одно предупреждение.
func (b *Bag) HasWarnings() bool {
	return b.Count(SevWarning) > 0
}

// Count returns the number of diagnostics of exactly sev.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for _, d := range b.items {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
func (b *Bag) Items() []*Diagnostic {
	return b.items
}

// Merge объединяет диагностики из другого Bag, игнорируя лимит.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	if b.max > 0 && len(b.items) > b.max {
		b.max = len(b.items)
	}
}

// Filter keeps the diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(*Diagnostic) bool) {
	b.items = slices.DeleteFunc(b.items, func(d *Diagnostic) bool { return !keep(d) })
}

// Sort orders diagnostics by file, start, end, declaration order, code and
// arguments. Span-less diagnostics go last, ordered by location.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, Compare)
}

// Compare is the total order used by Sort.
func Compare(di, dj *Diagnostic) int {
	if c := di.Primary.Compare(dj.Primary); c != 0 {
		return c
	}
	if c := cmp.Compare(di.Location, dj.Location); c != 0 {
		return c
	}
	if c := cmp.Compare(di.Order, dj.Order); c != 0 {
		return c
	}
	if c := cmp.Compare(di.Code, dj.Code); c != 0 {
		return c
	}
	return cmp.Compare(strings.Join(di.Args, "\x00"), strings.Join(dj.Args, "\x00"))
}

// Dedup removes diagnostics sharing code, span, location and arguments.
// The first occurrence wins.
func (b *Bag) Dedup() {
	seen := make(map[string]struct{}, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		key := d.key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	clear(b.items[len(out):])
	b.items = out
}
