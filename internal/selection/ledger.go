package selection

import (
	"fertilizer-advisor/internal/models"
)

// epsilon absorbs float residue left after a product closes a nutrient
const epsilon = 1e-9

// Ledger tracks the uncovered part of each nutrient deficiency while the
// selector works through its stages. A ledger belongs to a single run.
type Ledger struct {
	original  map[models.Nutrient]float64
	remaining map[models.Nutrient]float64
	covered   map[models.Nutrient]float64
}

// NewLedger opens a ledger from computed deficiencies. The deficiencies are
// copied and never modified.
func NewLedger(d models.Deficiencies) *Ledger {
	l := &Ledger{
		original:  make(map[models.Nutrient]float64, len(d)),
		remaining: make(map[models.Nutrient]float64, len(d)),
		covered:   make(map[models.Nutrient]float64, len(d)),
	}
	for n, def := range d {
		l.original[n] = def.Amount
		l.remaining[n] = def.Amount
	}
	return l
}

// Remaining returns the uncovered amount of n and whether n is on the ledger
func (l *Ledger) Remaining(n models.Nutrient) (float64, bool) {
	v, ok := l.remaining[n]
	return v, ok
}

// Original returns the deficiency of n before any product was applied
func (l *Ledger) Original(n models.Nutrient) float64 {
	return l.original[n]
}

// Covered returns the total amount of n credited so far
func (l *Ledger) Covered(n models.Nutrient) float64 {
	return l.covered[n]
}

// Deficient reports whether every given nutrient is on the ledger with a
// positive remaining amount.
func (l *Ledger) Deficient(nutrients ...models.Nutrient) bool {
	for _, n := range nutrients {
		if l.remaining[n] <= 0 {
			return false
		}
	}
	return len(nutrients) > 0
}

// OriginallyDeficient reports whether any given nutrient (any nutrient when
// none are given) had a positive deficiency before selection started.
func (l *Ledger) OriginallyDeficient(nutrients ...models.Nutrient) bool {
	if len(nutrients) == 0 {
		for _, v := range l.original {
			if v > 0 {
				return true
			}
		}
		return false
	}
	for _, n := range nutrients {
		if l.original[n] > 0 {
			return true
		}
	}
	return false
}

// Cover credits up to amount of n against the ledger and returns the amount
// actually credited. Credits never exceed what remains, so the total covered
// for a nutrient cannot pass its original deficiency.
func (l *Ledger) Cover(n models.Nutrient, amount float64) float64 {
	rem, ok := l.remaining[n]
	if !ok || rem <= 0 || amount <= 0 {
		return 0
	}

	credit := amount
	if credit > rem || rem-credit < epsilon {
		credit = rem
	}

	l.remaining[n] = rem - credit
	l.covered[n] += credit
	return credit
}

// Snapshot returns a copy of the remaining amounts
func (l *Ledger) Snapshot() map[models.Nutrient]float64 {
	out := make(map[models.Nutrient]float64, len(l.remaining))
	for n, v := range l.remaining {
		out[n] = v
	}
	return out
}

// scratch returns an independent copy for a strategy that must not change
// the ledger
func (l *Ledger) scratch() *Ledger {
	c := &Ledger{
		original:  make(map[models.Nutrient]float64, len(l.original)),
		remaining: l.Snapshot(),
		covered:   make(map[models.Nutrient]float64, len(l.covered)),
	}
	for n, v := range l.original {
		c.original[n] = v
	}
	for n, v := range l.covered {
		c.covered[n] = v
	}
	return c
}
