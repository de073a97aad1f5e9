package ledger

import (
	"fmt"
	"math"

	"github.com/abcbank/ledger/internal/model"
)

// Validate checks the structural invariants of an AccountSet:
//  1. a chequing account exists
//  2. balances and interest rates have equal length
//  3. loans (negative entries after chequing) form a trailing suffix
//  4. every value is finite
func Validate(acct model.AccountSet) error {
	if acct.Len() == 0 {
		return fmt.Errorf("%w: missing chequing account", ErrInvariant)
	}
	if len(acct.Balances) != len(acct.InterestRates) {
		return fmt.Errorf("%w: %d balances but %d interest rates", ErrInvariant, len(acct.Balances), len(acct.InterestRates))
	}
	for i := acct.LoanStart(); i < acct.Len(); i++ {
		if acct.Balances[i] >= 0 {
			return fmt.Errorf("%w: account %d (%.2f) follows a loan account", ErrInvariant, i, acct.Balances[i])
		}
	}
	for i := range acct.Balances {
		if !finite(acct.Balances[i]) || !finite(acct.InterestRates[i]) {
			return fmt.Errorf("%w: account %d is not finite", ErrInvariant, i)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkRate(field string, rate float64) error {
	if !finite(rate) || rate < 0 || rate > 100 {
		return ValidationError{Field: field, Reason: fmt.Sprintf("%v is outside [0, 100]", rate)}
	}
	return nil
}

func checkAmount(field string, amount float64) error {
	if !finite(amount) || amount < 0 {
		return ValidationError{Field: field, Reason: fmt.Sprintf("%v must be a non-negative amount", amount)}
	}
	return nil
}
