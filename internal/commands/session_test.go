package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abcbank/ledger/internal/analytics"
	"github.com/abcbank/ledger/internal/ledger"
	"github.com/abcbank/ledger/internal/model"
	"github.com/abcbank/ledger/internal/txlog"
)

var karla = model.ClientIdentity{Name: "Karla Hurst", Number: 770898021}

const karlaSignIn = "Karla Hurst\n770 898 021\n"

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type sessionRun struct {
	out   string
	store *ledger.Store
	log   string
}

func runSession(t *testing.T, input string) sessionRun {
	t.Helper()
	store, err := ledger.Load(filepath.Join("..", "..", "testdata", "client_data_1.txt"))
	require.NoError(t, err)
	engine := analytics.NewEngine(store, analytics.DefaultPolicy(), nil)

	logPath := filepath.Join(t.TempDir(), "logs", "transactions.csv")
	var out bytes.Buffer
	s := NewSession(strings.NewReader(input), &out, store, engine, txlog.NewRecorder(logPath, "test-session"), nil)
	require.NoError(t, s.Run())
	return sessionRun{out: out.String(), store: store, log: logPath}
}

func TestSession_BadCredentials(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown name", "Nobody Here\n770 898 021\n"},
		{"wrong number", "Karla Hurst\n770 898 022\n"},
		{"malformed number", "Karla Hurst\nseven\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runSession(t, tt.input)
			assert.Contains(t, r.out, "Your credentials do not match any profiles on record. Goodbye.")
			assert.NotContains(t, r.out, "Please choose from the following banking options")
		})
	}
}

func TestSession_SignInAndOut(t *testing.T) {
	r := runSession(t, karlaSignIn+"6\n")

	assert.Contains(t, r.out, "Your credentials have been successfully validated.")
	assert.Contains(t, r.out, "(6) Sign out")
	assert.Contains(t, r.out, "Thank you for choosing ABC. Goodbye.")

	entries, err := txlog.Read(r.log)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, txlog.ActionSignIn, entries[0].Action)
	assert.Equal(t, txlog.ActionSignOut, entries[1].Action)
	assert.Equal(t, "test-session", entries[0].Session)
	assert.Equal(t, "Karla Hurst", entries[0].Client)
	assert.Equal(t, "***-***-021", entries[0].SIN)
}

func TestSession_NextClientAfterSignOut(t *testing.T) {
	r := runSession(t, karlaSignIn+"6\nNobody Here\n1\n")

	// Karla, the unknown client, then the prompt that hits end of input.
	assert.Equal(t, 3, strings.Count(r.out, "Welcome to ABC's automated banking service"))
	assert.Contains(t, r.out, "Your credentials do not match any profiles on record. Goodbye.")
}

func TestSession_TotalBalance(t *testing.T) {
	r := runSession(t, karlaSignIn+"2\n6\n")
	assert.Contains(t, r.out, "Your total balance across all accounts is 2838.00")
}

func TestSession_DisplayAccounts(t *testing.T) {
	r := runSession(t, karlaSignIn+"4\n6\n")
	assert.Contains(t, r.out, "Chequing Account\n$ 768.00\nSavings Account 1\n$ 2070.00\n")
}

func TestSession_InvalidOption(t *testing.T) {
	r := runSession(t, karlaSignIn+"9\nabc\n6\n")
	assert.Equal(t, 2, strings.Count(r.out, "Invalid option"))
	assert.Contains(t, r.out, "Thank you for choosing ABC. Goodbye.")
}

func TestSession_NonNumericOptionKeepsMenu(t *testing.T) {
	r := runSession(t, karlaSignIn+"abc\n2\n6\n")

	assert.Contains(t, r.out, "Invalid option")
	assert.Contains(t, r.out, "Your total balance across all accounts is 2838.00")
	assert.Contains(t, r.out, "Thank you for choosing ABC. Goodbye.")
}

func TestSession_EOFMidMenu(t *testing.T) {
	r := runSession(t, karlaSignIn+"1\n0\n")
	assert.Contains(t, r.out, "Your selected chequing account has an available balance of 768.00")
	assert.NotContains(t, r.out, "Goodbye")
}

func TestSession_Deposit(t *testing.T) {
	r := runSession(t, karlaSignIn+"1\n0\n1\n100\n6\n")

	assert.Contains(t, r.out, "Your chequing account now has a balance of 868.00.")
	bal, err := r.store.AccountBalance(karla, 0)
	require.NoError(t, err)
	assert.InDelta(t, 868.0, bal, 1e-9)

	entries, err := txlog.Read(r.log)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, txlog.ActionTransaction, entries[1].Action)
	assert.Equal(t, 0, entries[1].Account)
	assert.Equal(t, "100.00", entries[1].Amount.StringFixed(2))
	assert.Equal(t, "deposit", entries[1].Details)
}

func TestSession_Withdraw(t *testing.T) {
	r := runSession(t, karlaSignIn+"1\n1\n-1\n70\n6\n")

	assert.Contains(t, r.out, "Your selected savings account has an available balance of 2070.00")
	assert.Contains(t, r.out, "Your savings account now has a balance of 2000.00.")
	bal, err := r.store.AccountBalance(karla, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2000.0, bal, 1e-9)
}

func TestSession_TransactionCancelled(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"account too high", "1\n2\n", "Invalid account number. Transaction cancelled."},
		{"negative account", "1\n-1\n", "Invalid account number. Transaction cancelled."},
		{"account not a number", "1\nx\n", "Invalid account number. Transaction cancelled."},
		{"bad code", "1\n0\n3\n", "Invalid transaction code. Transaction cancelled."},
		{"insufficient funds", "1\n0\n-1\n769\n", "Insufficient funds. Transaction cancelled."},
		{"negative amount", "1\n0\n1\n-5\n", "Invalid amount. Transaction cancelled."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runSession(t, karlaSignIn+tt.input+"6\n")
			assert.Contains(t, r.out, tt.want)

			acct, err := r.store.Lookup(karla)
			require.NoError(t, err)
			assert.Equal(t, []float64{768, 2070}, acct.Balances)

			entries, err := txlog.Read(r.log)
			require.NoError(t, err)
			assert.Len(t, entries, 2, "only sign in and sign out are recorded")
		})
	}
}

func TestSession_LoanApproved(t *testing.T) {
	r := runSession(t, karlaSignIn+"3\n500\n4\n6\n")

	assert.Contains(t, r.out, "Your loan amount 500.00 was approved!")
	assert.Contains(t, r.out, "Chequing Account\n$ 1268.00\n")
	assert.Contains(t, r.out, "Loan Account\n$ -500.00\n")

	entries, err := txlog.Read(r.log)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, txlog.ActionLoan, entries[1].Action)
	assert.Equal(t, "rate 2.2%", entries[1].Details)
}

func TestSession_LoanRejected(t *testing.T) {
	r := runSession(t, karlaSignIn+"3\n10000\n6\n")

	assert.Contains(t, r.out, "Your loan score of 2 was not sufficient to get approved (min: 5)")
	acct, err := r.store.Lookup(karla)
	require.NoError(t, err)
	assert.False(t, acct.HasLoans())
}

func TestSession_LoanInvalidAmount(t *testing.T) {
	r := runSession(t, karlaSignIn+"3\n0\n6\n")
	assert.Contains(t, r.out, "Invalid loan amount.")
}

func TestSession_SavingsGoal(t *testing.T) {
	r := runSession(t, karlaSignIn+"5\n5000\n6\n")
	assert.Contains(t, r.out, "You will reach your savings goal in 30 year(s), with an amount of 4246.41")
}

func TestSession_SavingsGoalAlreadyMet(t *testing.T) {
	r := runSession(t, karlaSignIn+"5\n100\n6\n")
	assert.Contains(t, r.out, "You will reach your savings goal in 0 year(s), with an amount of 2838.00")
}

func TestSession_RecordFailureIsLogged(t *testing.T) {
	store, err := ledger.Load(filepath.Join("..", "..", "testdata", "client_data_1.txt"))
	require.NoError(t, err)
	engine := analytics.NewEngine(store, analytics.DefaultPolicy(), nil)

	// A directory in place of the log file makes every append fail.
	logPath := t.TempDir()
	core, logs := observer.New(zap.WarnLevel)

	var out bytes.Buffer
	s := NewSession(strings.NewReader(karlaSignIn+"6\n"), &out, store, engine, txlog.NewRecorder(logPath, "s"), zap.New(core))
	require.NoError(t, s.Run())

	assert.Contains(t, out.String(), "Thank you for choosing ABC. Goodbye.")
	assert.Equal(t, 2, logs.FilterMessage("writing transaction log").Len())
}
