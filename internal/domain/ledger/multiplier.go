package ledger

// MultiplierTable scales future credits per resource. Factors compose
// multiplicatively from era bonuses, purchased upgrades and achievement
// rewards, and never drop below the 1.0 baseline within a playthrough.
type MultiplierTable struct {
	factors map[Resource]float64
}

// NewMultiplierTable returns a table where every resource sits at baseline.
func NewMultiplierTable() MultiplierTable {
	return MultiplierTable{factors: make(map[Resource]float64)}
}

// Factor returns the effective multiplier for a resource, 1.0 when absent.
func (t MultiplierTable) Factor(r Resource) float64 {
	f, ok := t.factors[r]
	if !ok {
		return 1.0
	}
	return f
}

// Apply composes an additional factor onto a resource. Factors below 1.0 are
// clamped to baseline: sources only ever compound upward.
func (t MultiplierTable) Apply(r Resource, factor float64) MultiplierTable {
	if factor < 1.0 {
		factor = 1.0
	}
	next := MultiplierTable{factors: make(map[Resource]float64, len(t.factors)+1)}
	for res, f := range t.factors {
		next.factors[res] = f
	}
	next.factors[r] = next.Factor(r) * factor
	return next
}

// Factors returns a copy of every factor above baseline.
func (t MultiplierTable) Factors() map[Resource]float64 {
	out := make(map[Resource]float64, len(t.factors))
	for r, f := range t.factors {
		out[r] = f
	}
	return out
}

// FromFactors rebuilds a table from a persisted factor map.
func FromFactors(factors map[Resource]float64) MultiplierTable {
	t := NewMultiplierTable()
	for r, f := range factors {
		t = t.Apply(r, f)
	}
	return t
}
