package records

import (
	"bufio"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/abcbank/ledger/internal/model"
	"github.com/abcbank/ledger/internal/sin"
)

// WriteRecords writes client blocks in the format ReadRecords accepts.
func WriteRecords(w io.Writer, records []model.ClientRecord) error {
	bw := bufio.NewWriter(w)
	for i, rec := range records {
		if i > 0 {
			if _, err := fmt.Fprintln(bw); err != nil {
				return fmt.Errorf("writing separator: %w", err)
			}
		}
		if err := writeRecord(bw, rec); err != nil {
			return fmt.Errorf("writing %s: %w", rec.Identity.Name, err)
		}
	}
	return bw.Flush()
}

func writeRecord(w io.Writer, rec model.ClientRecord) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n", rec.Identity.Name, sin.Format(rec.Identity.Number)); err != nil {
		return err
	}
	acct := rec.Accounts
	for i, b := range acct.Balances {
		if _, err := fmt.Fprintf(w, "%s\n%s: %s\n%s: %s\n",
			HeaderFor(acct, i),
			BalanceLabel, decimal.NewFromFloat(b).String(),
			InterestLabel, decimal.NewFromFloat(acct.InterestRates[i]).String(),
		); err != nil {
			return err
		}
	}
	return nil
}

// HeaderFor returns the display header of account i, e.g. "Savings Account 2".
func HeaderFor(acct model.AccountSet, i int) string {
	switch acct.Kind(i) {
	case model.AccountKindChequing:
		return "Chequing Account"
	case model.AccountKindSavings:
		return fmt.Sprintf("Savings Account %d", i)
	default:
		return "Loan Account"
	}
}
