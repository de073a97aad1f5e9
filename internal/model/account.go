package model

import "slices"

// AccountKind classifies an entry of an AccountSet.
type AccountKind string

const (
	AccountKindChequing AccountKind = "chequing"
	AccountKindSavings  AccountKind = "savings"
	AccountKindLoan     AccountKind = "loan"
)

// AccountSet holds one client's accounts as two index-aligned sequences.
// Balances[0] is the chequing account, non-negative entries after it are
// savings accounts and negative entries are loans, always at the end.
type AccountSet struct {
	Balances      []float64
	InterestRates []float64
}

// Clone returns a deep copy.
func (a AccountSet) Clone() AccountSet {
	return AccountSet{
		Balances:      slices.Clone(a.Balances),
		InterestRates: slices.Clone(a.InterestRates),
	}
}

// Len returns the number of accounts.
func (a AccountSet) Len() int {
	return len(a.Balances)
}

// Kind reports the kind of the account at index i.
func (a AccountSet) Kind(i int) AccountKind {
	switch {
	case i == 0:
		return AccountKindChequing
	case a.Balances[i] >= 0:
		return AccountKindSavings
	default:
		return AccountKindLoan
	}
}

// LoanStart returns the index of the first loan entry, or Len() when the
// client holds no loans.
func (a AccountSet) LoanStart() int {
	for i := 1; i < len(a.Balances); i++ {
		if a.Balances[i] < 0 {
			return i
		}
	}
	return len(a.Balances)
}

// HasLoans reports whether any loan entry exists.
func (a AccountSet) HasLoans() bool {
	return a.LoanStart() < len(a.Balances)
}

// Holding is a (balances, rates) pair for one account category.
type Holding struct {
	Balances      []float64
	InterestRates []float64
}

// Categorized partitions an AccountSet by account kind.
type Categorized struct {
	Chequing Holding
	Savings  Holding
	Loans    Holding
}

// Categorize splits the set into chequing, savings and loans. Every Holding
// is non-nil so empty categories compare equal to empty slices.
func (a AccountSet) Categorize() Categorized {
	c := Categorized{
		Chequing: Holding{Balances: []float64{}, InterestRates: []float64{}},
		Savings:  Holding{Balances: []float64{}, InterestRates: []float64{}},
		Loans:    Holding{Balances: []float64{}, InterestRates: []float64{}},
	}
	for i, b := range a.Balances {
		h := &c.Loans
		switch a.Kind(i) {
		case AccountKindChequing:
			h = &c.Chequing
		case AccountKindSavings:
			h = &c.Savings
		}
		h.Balances = append(h.Balances, b)
		h.InterestRates = append(h.InterestRates, a.InterestRates[i])
	}
	return c
}
