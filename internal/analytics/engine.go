package analytics

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/abcbank/ledger/internal/ledger"
	"github.com/abcbank/ledger/internal/model"
	"github.com/abcbank/ledger/internal/sin"
)

// ErrGoalUnreachable is returned when a savings goal is not met within
// Policy.MaxGoalYears.
var ErrGoalUnreachable = errors.New("savings goal unreachable")

// Policy holds the loan and projection constants.
type Policy struct {
	ApprovalCutoff    int     // minimum loan score for approval
	BaseRate          float64 // rate of a client's first loan, percent
	RateScale         float64 // multiplier applied to the latest loan rate for repeat borrowers
	ScoreHorizonYears int     // projection horizon used by the loan score
	MaxGoalYears      int     // search bound for YearsToGoal
}

// DefaultPolicy returns the standard bank policy.
func DefaultPolicy() Policy {
	return Policy{
		ApprovalCutoff:    5,
		BaseRate:          2.2,
		RateScale:         1.13,
		ScoreHorizonYears: 5,
		MaxGoalYears:      1000,
	}
}

// Engine computes projections and loan decisions over a ledger.
type Engine struct {
	store  *ledger.Store
	policy Policy
	logger *zap.Logger
}

// NewEngine creates an Engine. A nil logger disables logging.
func NewEngine(store *ledger.Store, policy Policy, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, policy: policy, logger: logger}
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// LoanScore rates a loan request. It never modifies the ledger.
func (e *Engine) LoanScore(c model.ClientIdentity, amount float64) (int, error) {
	if err := checkLoanAmount(amount); err != nil {
		return 0, err
	}
	acct, err := e.store.Lookup(c)
	if err != nil {
		return 0, err
	}

	averages := e.store.AverageBalances()
	mu, sigma := mean(averages), stddev(averages)

	points := 0
	if sum(acct.Balances) >= amount {
		points++
	} else {
		points--
	}

	hasLoans := acct.HasLoans()
	for _, b := range acct.Balances[1:] {
		if b < 0 {
			continue
		}
		switch {
		case b < mu-sigma:
			points -= 2
		case b >= mu+sigma:
			points += 2
		}
		if b > amount && !hasLoans {
			points++
		}
	}

	if sumCompound(acct.Balances[1:], acct.InterestRates[1:], e.policy.ScoreHorizonYears) >= 0 {
		points += 3
	} else {
		points -= 3
	}

	e.logger.Debug("loan scored",
		zap.String("client", c.Name),
		zap.String("sin", sin.Mask(c.Number)),
		zap.Float64("amount", amount),
		zap.Float64("mu", mu),
		zap.Float64("sigma", sigma),
		zap.Int("score", points))
	return points, nil
}

// LoanStatus is the outcome of a loan application.
type LoanStatus string

const (
	LoanApproved LoanStatus = "approved"
	LoanRejected LoanStatus = "rejected"
)

// LoanDecision describes an evaluated loan application.
type LoanDecision struct {
	Status LoanStatus
	Scored bool // false when rejected before scoring
	Score  int
	Rate   float64 // rate of the new loan account, set on approval
	Reason string
}

// Approved reports whether the loan was granted.
func (d LoanDecision) Approved() bool {
	return d.Status == LoanApproved
}

// LoanApproval evaluates a loan request. On approval the amount is credited
// to chequing and a loan account is appended; on rejection nothing changes.
func (e *Engine) LoanApproval(c model.ClientIdentity, amount float64) (LoanDecision, error) {
	if err := checkLoanAmount(amount); err != nil {
		return LoanDecision{}, err
	}
	acct, err := e.store.Lookup(c)
	if err != nil {
		return LoanDecision{}, err
	}
	parts := acct.Categorize()

	decision := LoanDecision{Status: LoanRejected}
	switch {
	case sum(acct.Balances) < 0:
		decision.Reason = "total balance is negative"
	case sum(parts.Savings.Balances) == 0:
		decision.Reason = "no savings balance"
	default:
		score, err := e.LoanScore(c, amount)
		if err != nil {
			return LoanDecision{}, err
		}
		decision.Scored = true
		decision.Score = score
		if score < e.policy.ApprovalCutoff {
			decision.Reason = fmt.Sprintf("score %d is below the cutoff of %d", score, e.policy.ApprovalCutoff)
			break
		}

		rate := e.policy.BaseRate
		if n := len(parts.Loans.InterestRates); n > 0 {
			rate = parts.Loans.InterestRates[n-1] * e.policy.RateScale
		}
		if err := e.store.IssueLoan(c, amount, rate); err != nil {
			return LoanDecision{}, fmt.Errorf("issuing loan: %w", err)
		}
		decision.Status = LoanApproved
		decision.Rate = rate
	}

	e.logger.Info("loan decided",
		zap.String("client", c.Name),
		zap.String("sin", sin.Mask(c.Number)),
		zap.Float64("amount", amount),
		zap.String("status", string(decision.Status)),
		zap.Int("score", decision.Score),
		zap.String("reason", decision.Reason))
	return decision, nil
}

// ProjectedValue is the future value of every account, chequing included,
// each compounded at its own rate.
func (e *Engine) ProjectedValue(c model.ClientIdentity, years int) (float64, error) {
	if err := checkYears(years); err != nil {
		return 0, err
	}
	acct, err := e.store.Lookup(c)
	if err != nil {
		return 0, err
	}
	return sumCompound(acct.Balances, acct.InterestRates, years), nil
}

// YearsToGoal returns the first year n, counting from 0, at which the
// chequing balance plus ProjectedValue(n) reaches goal.
func (e *Engine) YearsToGoal(c model.ClientIdentity, goal float64) (int, error) {
	if math.IsNaN(goal) || math.IsInf(goal, 0) {
		return 0, ledger.ValidationError{Field: "goal", Reason: fmt.Sprintf("%v is not a finite amount", goal)}
	}
	acct, err := e.store.Lookup(c)
	if err != nil {
		return 0, err
	}
	if goal <= 0 {
		return 0, nil
	}

	for n := 0; n <= e.policy.MaxGoalYears; n++ {
		if sumCompound(acct.Balances, acct.InterestRates, n)+acct.Balances[0] >= goal {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %.2f not reached within %d years", ErrGoalUnreachable, goal, e.policy.MaxGoalYears)
}

// IsFutureSecure reports whether the summed savings and loan balances,
// compounded for years at the summed savings and loan rates, stay
// non-negative.
func (e *Engine) IsFutureSecure(c model.ClientIdentity, years int) (bool, error) {
	if err := checkYears(years); err != nil {
		return false, err
	}
	balance, rate, err := e.store.NonChequingTotals(c)
	if err != nil {
		return false, err
	}
	return compound(balance, rate, years) >= 0, nil
}

func checkLoanAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return ledger.ValidationError{Field: "loan amount", Reason: fmt.Sprintf("%v must be greater than zero", amount)}
	}
	return nil
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
