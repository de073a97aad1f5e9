package analytics

import (
	"fmt"
	"math"

	"github.com/abcbank/ledger/internal/ledger"
)

// FutureValue compounds presentValue annually at ratePercent for years.
// ratePercent must lie in [0, 100] and years must be non-negative.
func FutureValue(presentValue, ratePercent float64, years int) (float64, error) {
	if math.IsNaN(ratePercent) || ratePercent < 0 || ratePercent > 100 {
		return 0, ledger.ValidationError{Field: "interest rate", Reason: fmt.Sprintf("%v is outside [0, 100]", ratePercent)}
	}
	if err := checkYears(years); err != nil {
		return 0, err
	}
	return compound(presentValue, ratePercent, years), nil
}

// FutureValueOfAccounts sums the future value of each balance at its own rate.
func FutureValueOfAccounts(balances, rates []float64, years int) (float64, error) {
	if len(balances) != len(rates) {
		return 0, ledger.ValidationError{Field: "accounts", Reason: fmt.Sprintf("%d balances but %d rates", len(balances), len(rates))}
	}
	if err := checkYears(years); err != nil {
		return 0, err
	}
	return sumCompound(balances, rates, years), nil
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ledger.ValidationError{Field: "values", Reason: "mean of an empty list"}
	}
	return mean(values), nil
}

// StandardDeviation returns the population standard deviation of values.
func StandardDeviation(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ledger.ValidationError{Field: "values", Reason: "standard deviation of an empty list"}
	}
	return stddev(values), nil
}

func compound(pv, rate float64, years int) float64 {
	return pv * math.Pow(1+rate/100, float64(years))
}

func sumCompound(balances, rates []float64, years int) float64 {
	var total float64
	for i, b := range balances {
		total += compound(b, rates[i], years)
	}
	return total
}

func mean(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func stddev(values []float64) float64 {
	mu := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - mu) * (v - mu)
	}
	return math.Sqrt(ss / float64(len(values)))
}

func checkYears(years int) error {
	if years < 0 {
		return ledger.ValidationError{Field: "years", Reason: fmt.Sprintf("%d is negative", years)}
	}
	return nil
}
