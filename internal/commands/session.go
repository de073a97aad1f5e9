package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/abcbank/ledger/internal/analytics"
	"github.com/abcbank/ledger/internal/ledger"
	"github.com/abcbank/ledger/internal/model"
	"github.com/abcbank/ledger/internal/records"
	"github.com/abcbank/ledger/internal/sin"
	"github.com/abcbank/ledger/internal/txlog"
)

const (
	optTransaction = iota + 1
	optTotalBalance
	optLoan
	optAccounts
	optSavingsGoal
	optSignOut
)

var menuOptions = []string{
	"Make a transaction",
	"Check total balance",
	"Apply for a loan",
	"Check account balances",
	"Check savings goal",
	"Sign out",
}

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	promptColor  = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
)

// Session runs the interactive banking menu over a text terminal.
type Session struct {
	in       *bufio.Scanner
	out      io.Writer
	store    *ledger.Store
	engine   *analytics.Engine
	recorder *txlog.Recorder
	logger   *zap.Logger
}

// NewSession creates a Session. recorder may be nil.
func NewSession(in io.Reader, out io.Writer, store *ledger.Store, engine *analytics.Engine, recorder *txlog.Recorder, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		in:       bufio.NewScanner(in),
		out:      out,
		store:    store,
		engine:   engine,
		recorder: recorder,
		logger:   logger,
	}
}

// Run signs clients in and serves the menu until input is exhausted.
func (s *Session) Run() error {
	for {
		client, err := s.signIn()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if client == nil {
			continue
		}
		if err := s.serve(*client); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (s *Session) signIn() (*model.ClientIdentity, error) {
	headingColor.Fprintln(s.out, "------ Welcome to ABC's automated banking service. ------")
	name, err := s.prompt("Please enter your name as <Firstname> <Lastname>: ")
	if err != nil {
		return nil, err
	}
	rawSIN, err := s.prompt("For secondary authentication, please enter your SIN as ### ### ###: ")
	if err != nil {
		return nil, err
	}

	number, err := sin.Parse(rawSIN)
	if err != nil || !s.store.Exists(name, number) {
		failColor.Fprintln(s.out, "Your credentials do not match any profiles on record. Goodbye.")
		return nil, nil
	}

	client := model.ClientIdentity{Name: name, Number: number}
	s.record(client, txlog.Entry{Action: txlog.ActionSignIn, Account: -1})
	okColor.Fprintln(s.out, "Your credentials have been successfully validated.")
	return &client, nil
}

func (s *Session) serve(client model.ClientIdentity) error {
	for {
		fmt.Fprint(s.out, "\n\n")
		fmt.Fprintln(s.out, "Please choose from the following banking options:")
		for i, opt := range menuOptions {
			fmt.Fprintf(s.out, "(%d) %s\n", i+1, opt)
		}
		fmt.Fprintln(s.out, "**Indicate the number of the option you would like to select**")

		raw, err := s.prompt(">>>>>>>>>>> ")
		if err != nil {
			return err
		}
		option := 0
		if v, convErr := strconv.Atoi(raw); convErr == nil {
			option = v
		}

		switch option {
		case optTransaction:
			err = s.transaction(client)
		case optTotalBalance:
			err = s.totalBalance(client)
		case optLoan:
			err = s.loan(client)
		case optAccounts:
			fmt.Fprintln(s.out, "Your account balances are:")
			err = s.displayAccounts(client)
		case optSavingsGoal:
			err = s.savingsGoal(client)
		case optSignOut:
			s.record(client, txlog.Entry{Action: txlog.ActionSignOut, Account: -1})
			fmt.Fprintln(s.out, "Thank you for choosing ABC. Goodbye.")
			return nil
		default:
			failColor.Fprintln(s.out, "Invalid option")
		}
		if err != nil {
			return err
		}
	}
}

func (s *Session) transaction(client model.ClientIdentity) error {
	fmt.Fprintln(s.out, "Indicate an account to perform a transaction:")
	if err := s.displayAccounts(client); err != nil {
		return err
	}

	raw, err := s.prompt("**Enter 0 for Chequing, or the Savings Account number**\n>>>>>>>>>>> ")
	if err != nil {
		return err
	}
	count, err := s.store.AccountCount(client)
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 || index >= count {
		failColor.Fprintln(s.out, "Invalid account number. Transaction cancelled.")
		return nil
	}

	balance, err := s.store.AccountBalance(client, index)
	if err != nil {
		return err
	}
	kind := "savings"
	if index == 0 {
		kind = "chequing"
	}
	fmt.Fprintf(s.out, "Your selected %s account has an available balance of %s\n", kind, money(balance))

	raw, err = s.prompt("**Enter 1 to deposit, -1 to withdraw** \n>>>>>>>>>>> ")
	if err != nil {
		return err
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		code = 0
	}
	dir, err := ledger.ParseDirection(code)
	if err != nil {
		failColor.Fprintln(s.out, "Invalid transaction code. Transaction cancelled.")
		return nil
	}

	raw, err = s.prompt(fmt.Sprintf("Enter the amount you would like to %s\n>>>>>>>>>>> ", dir))
	if err != nil {
		return err
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || amount < 0 {
		failColor.Fprintln(s.out, "Invalid amount. Transaction cancelled.")
		return nil
	}
	if dir == ledger.Withdraw && amount > balance {
		failColor.Fprintln(s.out, "Insufficient funds. Transaction cancelled.")
		return nil
	}

	updated, err := s.store.ApplyTransaction(client, index, amount, dir)
	if err != nil {
		if ledger.IsValidation(err) || errors.Is(err, ledger.ErrInvariant) {
			failColor.Fprintf(s.out, "Transaction rejected: %v\n", err)
			return nil
		}
		return err
	}
	s.record(client, txlog.Entry{
		Action:  txlog.ActionTransaction,
		Account: index,
		Amount:  decimal.NewFromFloat(amount),
		Details: dir.String(),
	})
	okColor.Fprintf(s.out, "Your %s account now has a balance of %s.\n", kind, money(updated))
	return nil
}

func (s *Session) totalBalance(client model.ClientIdentity) error {
	total, err := s.store.TotalBalance(client)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Your total balance across all accounts is %s\n", money(total))
	return nil
}

func (s *Session) loan(client model.ClientIdentity) error {
	raw, err := s.prompt("**Enter the required loan amount**\n>>>>>>>>>>> ")
	if err != nil {
		return err
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || amount <= 0 {
		failColor.Fprintln(s.out, "Invalid loan amount.")
		return nil
	}

	decision, err := s.engine.LoanApproval(client, amount)
	if err != nil {
		return err
	}
	if decision.Approved() {
		s.record(client, txlog.Entry{
			Action:  txlog.ActionLoan,
			Account: -1,
			Amount:  decimal.NewFromFloat(amount),
			Details: fmt.Sprintf("rate %s%%", decimal.NewFromFloat(decision.Rate).Round(3)),
		})
		okColor.Fprintf(s.out, "Your loan amount %s was approved!\n", money(amount))
		return nil
	}

	score := decision.Score
	if !decision.Scored {
		if score, err = s.engine.LoanScore(client, amount); err != nil {
			return err
		}
	}
	failColor.Fprintf(s.out, "Your loan score of %d was not sufficient to get approved (min: %d)\n",
		score, s.engine.Policy().ApprovalCutoff)
	return nil
}

func (s *Session) savingsGoal(client model.ClientIdentity) error {
	raw, err := s.prompt("**Enter a desired savings amount**\n>>>>>>>>>>> ")
	if err != nil {
		return err
	}
	goal, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		failColor.Fprintln(s.out, "Invalid savings amount.")
		return nil
	}

	years, err := s.engine.YearsToGoal(client, goal)
	if errors.Is(err, analytics.ErrGoalUnreachable) {
		failColor.Fprintln(s.out, "Your savings goal cannot be reached with your current accounts.")
		return nil
	}
	if err != nil {
		return err
	}
	projected, err := s.engine.ProjectedValue(client, years)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "You will reach your savings goal in %d year(s), with an amount of %s\n", years, money(projected))
	return nil
}

func (s *Session) displayAccounts(client model.ClientIdentity) error {
	acct, err := s.store.Lookup(client)
	if err != nil {
		return err
	}
	for i, b := range acct.Balances {
		promptColor.Fprintln(s.out, records.HeaderFor(acct, i))
		fmt.Fprintf(s.out, "$ %s\n", money(b))
	}
	return nil
}

func (s *Session) prompt(msg string) (string, error) {
	promptColor.Fprint(s.out, msg)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Session) record(client model.ClientIdentity, e txlog.Entry) {
	e.Client = client.Name
	e.SIN = sin.Mask(client.Number)
	if err := s.recorder.Record(e); err != nil {
		s.logger.Warn("writing transaction log", zap.Error(err))
	}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
