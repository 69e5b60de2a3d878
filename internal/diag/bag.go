package diag

// Bag collects diagnostics in emission order up to a limit. It is a
// Reporter, so validators can write into it directly.
type Bag struct {
	items   []Diagnostic
	limit   int
	dropped int
}

// NewBag creates a Bag holding at most limit diagnostics; limit <= 0
// means no limit.
func NewBag(limit int) *Bag {
	return &Bag{limit: max(limit, 0)}
}

// Add appends d unless the bag is full. Rejected diagnostics are counted
// in Dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if b.limit > 0 && len(b.items) >= b.limit {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Report implements Reporter.
func (b *Bag) Report(d Diagnostic) { b.Add(d) }

// Dropped is the number of diagnostics rejected by the limit.
func (b *Bag) Dropped() int { return b.dropped }

func (b *Bag) Len() int { return len(b.items) }

// Items returns the diagnostics. The slice aliases the bag; do not modify.
func (b *Bag) Items() []Diagnostic { return b.items }

// Count returns the number of diagnostics with exactly the given severity.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for _, d := range b.items {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool {
	return b.Count(SevError) > 0
}

// Filter keeps only the diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	kept := b.items[:0]
	for _, d := range b.items {
		if keep(d) {
			kept = append(kept, d)
		}
	}
	clear(b.items[len(kept):])
	b.items = kept
}
