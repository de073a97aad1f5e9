package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abcbank/ledger/internal/model"
	"github.com/abcbank/ledger/internal/records"
)

var (
	karla  = model.ClientIdentity{Name: "Karla Hurst", Number: 770898021}
	pamela = model.ClientIdentity{Name: "Pamela Dickson", Number: 971875372}
	roland = model.ClientIdentity{Name: "Roland Lozano", Number: 853887123}
)

func loadStore(t *testing.T, name string) *Store {
	t.Helper()
	s, err := Load(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return s
}

func TestLoad(t *testing.T) {
	s := loadStore(t, "client_data_1.txt")
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []model.ClientIdentity{karla, pamela, roland}, s.Clients())

	acct, err := s.Lookup(karla)
	require.NoError(t, err)
	assert.Equal(t, []float64{768, 2070}, acct.Balances)
	assert.Equal(t, []float64{0.92, 1.5}, acct.InterestRates)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	var pe *records.ParseError
	assert.False(t, errors.As(err, &pe))

	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("Karla Hurst\n770 898 021\nChequing Account\nBalance: 76x8\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 4, pe.Line)
}

func TestLookupReturnsCopy(t *testing.T) {
	s := loadStore(t, "client_data_1.txt")
	acct, err := s.Lookup(karla)
	require.NoError(t, err)
	acct.Balances[0] = 0

	bal, err := s.AccountBalance(karla, 0)
	require.NoError(t, err)
	assert.InDelta(t, 768.0, bal, 1e-9)
}

func TestNotFound(t *testing.T) {
	s := loadStore(t, "client_data_1.txt")
	jimmy := model.ClientIdentity{Name: "jimmy", Number: 770898021}

	_, err := s.Lookup(jimmy)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Contains(t, err.Error(), "***-***-021")

	_, err = s.TotalBalance(jimmy)
	assert.True(t, IsNotFound(err))
	_, err = s.ApplyTransaction(jimmy, 0, 1, Deposit)
	assert.True(t, IsNotFound(err))
	_, err = s.OpenSavingsAccount(jimmy, 1, 1)
	assert.True(t, IsNotFound(err))
}

func TestExists(t *testing.T) {
	s := loadStore(t, "client_data_1.txt")
	assert.True(t, s.Exists("Karla Hurst", 770898021))
	assert.False(t, s.Exists("jimmy", 770898021))
	assert.False(t, s.Exists("Karla Hurst", 770898022))
}

func TestTotalsAndAverages(t *testing.T) {
	s := loadStore(t, "client_data_1.txt")

	tests := []struct {
		client  model.ClientIdentity
		total   float64
		average float64
		count   int
	}{
		{karla, 2838.0, 1419.0, 2},
		{pamela, 175705921.0, 19522880.111111112, 9},
		{roland, 7829.0, 1957.25, 4},
	}
	for _, tt := range tests {
		total, err := s.TotalBalance(tt.client)
		require.NoError(t, err)
		assert.InDelta(t, tt.total, total, 1e-6, "%s total", tt.client)

		avg, err := s.AverageBalance(tt.client)
		require.NoError(t, err)
		assert.InDelta(t, tt.average, avg, 1e-6, "%s average", tt.client)

		count, err := s.AccountCount(tt.client)
		require.NoError(t, err)
		assert.Equal(t, tt.count, count, "%s count", tt.client)
	}

	totals := s.TotalBalances()
	require.Len(t, totals, 3)
	assert.Equal(t, karla, totals[0].Client)
	assert.InDelta(t, 2838.0, totals[0].Total, 1e-9)

	avgs := s.AverageBalances()
	require.Len(t, avgs, 3)
	assert.InDelta(t, 1957.25, avgs[2], 1e-9)
}

func TestAccountCountExcludesLoans(t *testing.T) {
	s, err := NewStore([]model.ClientRecord{{
		Identity: karla,
		Accounts: model.AccountSet{Balances: []float64{1268, 2070, -500}, InterestRates: []float64{0.92, 1.5, 2.2}},
	}})
	require.NoError(t, err)

	n, err := s.AccountCount(karla)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, err := s.TotalBalance(karla)
	require.NoError(t, err)
	assert.InDelta(t, 2838.0, total, 1e-9, "loans subtract")
}

func TestAccountBalance(t *testing.T) {
	s := loadStore(t, "client_data_1.txt")

	tests := []struct {
		client model.ClientIdentity
		index  int
		want   float64
	}{
		{pamela, 1, 5395448.0},
		{karla, -1, 2070.0},
		{karla, 0, 768.0},
		{karla, -2, 768.0},
		{roland, 3, 3673.0},
	}
	for _, tt := range tests {
		got, err := s.AccountBalance(tt.client, tt.index)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "%s[%d]", tt.client, tt.index)
	}

	for _, idx := range []int{2, -3, 100} {
		_, err := s.AccountBalance(karla, idx)
		require.Error(t, err, "index %d", idx)
		assert.True(t, IsValidation(err), "index %d", idx)
	}
}

func TestCategorize(t *testing.T) {
	s := loadStore(t, "client_data_1.txt")

	c, err := s.Categorize(karla)
	require.NoError(t, err)
	assert.Equal(t, []float64{768}, c.Chequing.Balances)
	assert.Equal(t, []float64{0.92}, c.Chequing.InterestRates)
	assert.Equal(t, []float64{2070}, c.Savings.Balances)
	assert.Equal(t, []float64{1.5}, c.Savings.InterestRates)
	assert.Empty(t, c.Loans.Balances)
}

func TestNonChequingTotals(t *testing.T) {
	s := loadStore(t, "client_data_1.txt")

	bal, rate, err := s.NonChequingTotals(karla)
	require.NoError(t, err)
	assert.InDelta(t, 2070.0, bal, 1e-9)
	assert.InDelta(t, 1.5, rate, 1e-9)

	bal, rate, err = s.NonChequingTotals(roland)
	require.NoError(t, err)
	assert.InDelta(t, 6244.0, bal, 1e-9)
	assert.InDelta(t, 1.31, rate, 1e-9)
}

func TestTotalsByRange(t *testing.T) {
	ranges := []model.FinancialRange{{Low: 100, High: 5000}, {Low: 0, High: 500}, {Low: 6000, High: 100000}}

	s := loadStore(t, "client_data_1.txt")
	got := s.TotalsByRange(ranges)
	assert.Equal(t, map[model.FinancialRange][]model.ClientIdentity{
		{Low: 100, High: 5000}:    {karla},
		{Low: 6000, High: 100000}: {roland},
	}, got)

	s = loadStore(t, "client_data_2.txt")
	got = s.TotalsByRange(ranges)
	assert.Equal(t, map[model.FinancialRange][]model.ClientIdentity{
		{Low: 100, High: 5000}: {
			{Name: "Alvin Beacom", Number: 521494658},
			{Name: "Karla Hurst", Number: 770898021},
			{Name: "Maurice Daisy", Number: 770898021},
			{Name: "Monica Girard", Number: 521494658},
		},
		{Low: 6000, High: 100000}: {
			{Name: "Louise Revilla", Number: 853887123},
			{Name: "Robert Garza", Number: 133295618},
			{Name: "Roland Lozano", Number: 853887123},
			{Name: "Thomas Strohm", Number: 454554353},
		},
	}, got)
	_, ok := got[model.FinancialRange{Low: 0, High: 500}]
	assert.False(t, ok, "empty buckets are omitted")

	// Order of the ranges does not matter.
	reversed := []model.FinancialRange{ranges[2], ranges[1], ranges[0], ranges[0]}
	assert.Equal(t, got, s.TotalsByRange(reversed))
}

func TestTotalsByRangeBounds(t *testing.T) {
	s := loadStore(t, "client_data_2.txt")
	ranges := []model.FinancialRange{
		{Low: 2838, High: 2838},
		{Low: 0, High: 1e12},
		{Low: 1646, High: 7829},
	}
	got := s.TotalsByRange(ranges)

	totals := make(map[model.ClientIdentity]float64)
	for _, ct := range s.TotalBalances() {
		totals[ct.Client] = ct.Total
	}
	for r, clients := range got {
		for _, c := range clients {
			assert.True(t, r.Contains(totals[c]), "%s assigned to %s", c, r)
		}
	}
	assert.Len(t, got[ranges[0]], 2, "inclusive on both ends")
	assert.Len(t, got[ranges[1]], 10, "overlapping ranges share clients")
	assert.Len(t, got[ranges[2]], 6)
}

func TestDuplicateIdentityKeepsFirst(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	first := model.AccountSet{Balances: []float64{100}, InterestRates: []float64{1}}
	second := model.AccountSet{Balances: []float64{999, 1}, InterestRates: []float64{2, 2}}

	s, err := NewStore([]model.ClientRecord{
		{Identity: karla, Accounts: first, Line: 1},
		{Identity: roland, Accounts: first, Line: 5},
		{Identity: karla, Accounts: second, Line: 9},
	}, WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	acct, err := s.Lookup(karla)
	require.NoError(t, err)
	assert.Equal(t, first, acct)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "duplicate client identity ignored", entry.Message)
	assert.Equal(t, int64(9), entry.ContextMap()["line"])
}

func TestNewStoreRejectsBrokenAccountSets(t *testing.T) {
	tests := []struct {
		name string
		acct model.AccountSet
	}{
		{"empty", model.AccountSet{}},
		{"length mismatch", model.AccountSet{Balances: []float64{1, 2}, InterestRates: []float64{1}}},
		{"savings after loan", model.AccountSet{Balances: []float64{1, -2, 3}, InterestRates: []float64{1, 1, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStore([]model.ClientRecord{{Identity: karla, Accounts: tt.acct}})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvariant)
		})
	}
}

func TestRecordsSnapshot(t *testing.T) {
	s := loadStore(t, "client_data_1.txt")
	recs := s.Records()
	require.Len(t, recs, 3)
	recs[0].Accounts.Balances[0] = 0

	bal, err := s.AccountBalance(karla, 0)
	require.NoError(t, err)
	assert.InDelta(t, 768.0, bal, 1e-9)
}
