package diag

// Policy rewrites severities after validation: warnings can be promoted,
// silenced individually or dropped altogether.
type Policy struct {
	WarningsAsErrors bool
	NoWarnings       bool
	NoWarn           map[Code]struct{}
	// WarnAsError promotes individual warning codes.
	WarnAsError map[Code]struct{}
}

// Apply mutates the bag in place.
func (p Policy) Apply(b *Bag) {
	if b == nil {
		return
	}
	b.Filter(func(d *Diagnostic) bool {
		if d.Severity != SevWarning {
			return true
		}
		if p.NoWarnings {
			return false
		}
		_, muted := p.NoWarn[d.Code]
		return !muted
	})
	for _, d := range b.items {
		if d.Severity != SevWarning {
			continue
		}
		if _, ok := p.WarnAsError[d.Code]; ok || p.WarningsAsErrors {
			d.Severity = SevError
		}
	}
}
