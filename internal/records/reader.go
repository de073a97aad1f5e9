package records

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/abcbank/ledger/internal/model"
	"github.com/abcbank/ledger/internal/sin"
)

// Labels of the key: value lines inside an account.
const (
	BalanceLabel  = "Balance"
	InterestLabel = "Interest rate per annum"

	interestKeyPrefix = "Interest"
)

type state int

const (
	stateIdentity      state = iota // name lines, then the identification number
	stateChequing                   // next line is the chequing balance
	stateSavingsOrLoan              // next line is a savings or loan balance
	stateInterest                   // next line is the interest rate
	stateAccountHeader              // between accounts: header or blank line
)

type parser struct {
	state   state
	lineNo  int
	text    string
	names   []string
	start   int
	current *model.ClientRecord
	pending model.AccountKind
	last    model.AccountKind
	records []model.ClientRecord
}

// ReadRecords parses client blocks from r. Blocks are separated by blank
// lines. Identities are not deduplicated.
func ReadRecords(r io.Reader) ([]model.ClientRecord, error) {
	p := &parser{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.lineNo++
		p.text = strings.TrimSpace(sc.Text())
		if err := p.feed(); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading client records: %w", err)
	}
	p.text = ""
	if err := p.endBlock(); err != nil {
		return nil, err
	}
	return p.records, nil
}

func (p *parser) fail(reason string, err error) error {
	return &ParseError{Line: p.lineNo, Text: p.text, Reason: reason, Err: err}
}

func (p *parser) feed() error {
	if p.text == "" {
		return p.endBlock()
	}

	switch p.state {
	case stateIdentity:
		if _, ok := accountHeader(p.text); ok {
			return p.fail("account header before identification number", nil)
		}
		if !sin.IsNumber(p.text) {
			if len(p.names) == 0 {
				p.start = p.lineNo
			}
			p.names = append(p.names, p.text)
			return nil
		}
		if len(p.names) == 0 {
			return p.fail("identification number without a name", nil)
		}
		number, err := sin.Parse(p.text)
		if err != nil {
			return p.fail("bad identification number", err)
		}
		p.current = &model.ClientRecord{
			Identity: model.NewClientIdentity(strings.Join(p.names, " "), number),
			Line:     p.start,
		}
		p.state = stateAccountHeader

	case stateAccountHeader:
		kind, ok := accountHeader(p.text)
		if !ok {
			return p.fail("expected Chequing, Savings or Loan header", nil)
		}
		n := p.current.Accounts.Len()
		switch {
		case n == 0 && kind != model.AccountKindChequing:
			return p.fail("first account must be Chequing", nil)
		case n > 0 && kind == model.AccountKindChequing:
			return p.fail("duplicate Chequing account", nil)
		case kind == model.AccountKindSavings && p.last == model.AccountKindLoan:
			return p.fail("savings account after loan account", nil)
		}
		p.pending = kind
		if kind == model.AccountKindChequing {
			p.state = stateChequing
		} else {
			p.state = stateSavingsOrLoan
		}

	case stateChequing, stateSavingsOrLoan:
		v, err := p.value(BalanceLabel)
		if err != nil {
			return err
		}
		if p.pending == model.AccountKindSavings && v < 0 {
			return p.fail("savings balance is negative", nil)
		}
		if p.pending == model.AccountKindLoan && v >= 0 {
			return p.fail("loan balance is not negative", nil)
		}
		p.current.Accounts.Balances = append(p.current.Accounts.Balances, v)
		p.state = stateInterest

	case stateInterest:
		v, err := p.value(interestKeyPrefix)
		if err != nil {
			return err
		}
		p.current.Accounts.InterestRates = append(p.current.Accounts.InterestRates, v)
		p.last = p.pending
		p.state = stateAccountHeader
	}
	return nil
}

func (p *parser) endBlock() error {
	switch p.state {
	case stateIdentity:
		if len(p.names) == 0 {
			return nil
		}
		return p.fail("block ends without identification number", nil)
	case stateChequing, stateSavingsOrLoan:
		return p.fail("block ends before balance line", nil)
	case stateInterest:
		return p.fail("block ends before interest line", nil)
	}

	acct := p.current.Accounts
	if acct.Len() == 0 {
		return p.fail("missing Chequing account for "+p.current.Identity.Name, nil)
	}
	if len(acct.Balances) != len(acct.InterestRates) {
		return p.fail(fmt.Sprintf("%d balances but %d interest rates", len(acct.Balances), len(acct.InterestRates)), nil)
	}

	p.records = append(p.records, *p.current)
	*p = parser{lineNo: p.lineNo, text: p.text, records: p.records}
	return nil
}

// value parses a "<label>: <number>" line whose key starts with prefix.
func (p *parser) value(prefix string) (float64, error) {
	key, raw, ok := strings.Cut(p.text, ":")
	if !ok {
		return 0, p.fail(fmt.Sprintf("expected %q line", prefix+": <value>"), nil)
	}
	key = strings.TrimSpace(key)
	if len(key) < len(prefix) || !strings.EqualFold(key[:len(prefix)], prefix) {
		return 0, p.fail(fmt.Sprintf("expected %q label, got %q", prefix, key), nil)
	}
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "$")
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, p.fail("malformed number", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, p.fail("malformed number", errors.New("value is not finite"))
	}
	return v, nil
}

// accountHeader recognizes "Chequing ...", "Savings ..." and "Loan ..." lines
// by their first word.
func accountHeader(line string) (model.AccountKind, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	switch {
	case strings.EqualFold(fields[0], "Chequing"):
		return model.AccountKindChequing, true
	case strings.EqualFold(fields[0], "Savings"):
		return model.AccountKindSavings, true
	case strings.EqualFold(fields[0], "Loan"):
		return model.AccountKindLoan, true
	}
	return "", false
}
