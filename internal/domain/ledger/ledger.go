// Package ledger holds resource balances and the active multiplier table.
// It is pure arithmetic: affordability, spending, crediting. It knows nothing
// about eras, upgrades or achievements.
package ledger

// Resource names a player-accruable quantity.
type Resource string

const (
	ManipulationPoints Resource = "manipulation_points"
	Credibility        Resource = "credibility"
	Influence          Resource = "influence"
	Networks           Resource = "networks"
)

// Cost maps resources to the amounts a purchase requires.
type Cost map[Resource]float64

// Ledger is an immutable value: Spend and Credit return new ledgers.
type Ledger struct {
	balances map[Resource]float64
}

// New creates a ledger with the given starting balances.
func New(initial map[Resource]float64) Ledger {
	l := Ledger{balances: make(map[Resource]float64, len(initial))}
	for r, v := range initial {
		if v < 0 {
			v = 0
		}
		l.balances[r] = v
	}
	return l
}

// Balance returns the current quantity of a resource, zero when absent.
func (l Ledger) Balance(r Resource) float64 {
	return l.balances[r]
}

// Balances returns a copy of all non-zero balances.
func (l Ledger) Balances() map[Resource]float64 {
	out := make(map[Resource]float64, len(l.balances))
	for r, v := range l.balances {
		out[r] = v
	}
	return out
}

// CanAfford reports whether every listed resource balance covers its cost.
func (l Ledger) CanAfford(cost Cost) bool {
	for r, amount := range cost {
		if l.balances[r] < amount {
			return false
		}
	}
	return true
}

// Spend deducts a multi-resource cost atomically. If any single resource is
// short the whole spend is rejected and the ledger is returned unchanged.
func (l Ledger) Spend(cost Cost) (Ledger, bool) {
	if !l.CanAfford(cost) {
		return l, false
	}
	next := l.copyBalances()
	for r, amount := range cost {
		next.balances[r] -= amount
		if next.balances[r] < 0 {
			// Floating point residue only; balances never go negative.
			next.balances[r] = 0
		}
	}
	return next, true
}

// Credit adds a non-negative amount of a resource, returning a new ledger.
// Negative credits are ignored rather than allowed to drain balances.
func (l Ledger) Credit(r Resource, amount float64) Ledger {
	if amount <= 0 {
		return l
	}
	next := l.copyBalances()
	next.balances[r] += amount
	return next
}

func (l Ledger) copyBalances() Ledger {
	next := Ledger{balances: make(map[Resource]float64, len(l.balances))}
	for r, v := range l.balances {
		next.balances[r] = v
	}
	return next
}
