package ledger

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/abcbank/ledger/internal/model"
	"github.com/abcbank/ledger/internal/sin"
)

// Direction is the sign of a transaction.
type Direction int

const (
	Withdraw Direction = -1
	Deposit  Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Withdraw:
		return "withdraw"
	case Deposit:
		return "deposit"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection maps the menu codes -1 and 1 to a Direction.
func ParseDirection(code int) (Direction, error) {
	switch d := Direction(code); d {
	case Withdraw, Deposit:
		return d, nil
	}
	return 0, ValidationError{Field: "transaction code", Reason: fmt.Sprintf("%d is not -1 (withdraw) or 1 (deposit)", code)}
}

// mutate applies fn to a copy of the client's accounts and stores the copy
// only when fn succeeds and the result passes Validate.
func (s *Store) mutate(c model.ClientIdentity, fn func(acct *model.AccountSet) error) error {
	acct, err := s.get(c)
	if err != nil {
		return err
	}
	next := acct.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := Validate(next); err != nil {
		return err
	}
	*acct = next
	return nil
}

// ApplyTransaction withdraws or deposits amount on the account at index and
// returns the new balance. Overdraft checks belong to the caller; only the
// AccountSet invariants are enforced.
func (s *Store) ApplyTransaction(c model.ClientIdentity, index int, amount float64, dir Direction) (float64, error) {
	if err := checkAmount("amount", amount); err != nil {
		return 0, err
	}
	if _, err := ParseDirection(int(dir)); err != nil {
		return 0, err
	}

	var balance float64
	err := s.mutate(c, func(acct *model.AccountSet) error {
		i, err := resolveIndex(*acct, index)
		if err != nil {
			return err
		}
		acct.Balances[i] += float64(dir) * amount
		balance = acct.Balances[i]
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("transaction applied",
		zap.String("client", c.Name),
		zap.String("sin", sin.Mask(c.Number)),
		zap.Int("account", index),
		zap.Stringer("direction", dir),
		zap.Float64("amount", amount),
		zap.Float64("balance", balance))
	return balance, nil
}

// OpenSavingsAccount inserts a savings account in front of any loans and
// returns its index.
func (s *Store) OpenSavingsAccount(c model.ClientIdentity, balance, rate float64) (int, error) {
	if err := checkAmount("balance", balance); err != nil {
		return 0, err
	}
	if err := checkRate("interest rate", rate); err != nil {
		return 0, err
	}

	var at int
	err := s.mutate(c, func(acct *model.AccountSet) error {
		at = acct.LoanStart()
		acct.Balances = slices.Insert(acct.Balances, at, balance)
		acct.InterestRates = slices.Insert(acct.InterestRates, at, rate)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("savings account opened",
		zap.String("client", c.Name),
		zap.String("sin", sin.Mask(c.Number)),
		zap.Int("account", at),
		zap.Float64("balance", balance),
		zap.Float64("rate", rate))
	return at, nil
}

// IssueLoan credits amount to chequing and appends a loan account of
// -amount at rate.
func (s *Store) IssueLoan(c model.ClientIdentity, amount, rate float64) error {
	if err := checkAmount("loan amount", amount); err != nil {
		return err
	}
	if amount == 0 {
		return ValidationError{Field: "loan amount", Reason: "must be greater than zero"}
	}
	if !finite(rate) || rate < 0 {
		return ValidationError{Field: "loan rate", Reason: fmt.Sprintf("%v must be non-negative", rate)}
	}

	err := s.mutate(c, func(acct *model.AccountSet) error {
		acct.Balances[0] += amount
		acct.Balances = append(acct.Balances, -amount)
		acct.InterestRates = append(acct.InterestRates, rate)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("loan issued",
		zap.String("client", c.Name),
		zap.String("sin", sin.Mask(c.Number)),
		zap.Float64("amount", amount),
		zap.Float64("rate", rate))
	return nil
}
