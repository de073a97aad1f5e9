package records

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcbank/ledger/internal/model"
)

func TestWriteMatchesFixture(t *testing.T) {
	want, err := os.ReadFile("../../testdata/client_data_1.txt")
	require.NoError(t, err)

	recs, err := ReadRecords(bytes.NewReader(want))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, recs))
	assert.Equal(t, string(want), buf.String())
}

func TestRoundTripGeneratedBlocks(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for n := 1; n <= 12; n++ {
		acct := model.AccountSet{}
		loans := rng.IntN(n)
		for i := 0; i < n; i++ {
			bal := float64(rng.IntN(100000)) / 100
			if i > 0 && i >= n-loans {
				bal = -bal - 1
			}
			acct.Balances = append(acct.Balances, bal)
			acct.InterestRates = append(acct.InterestRates, float64(rng.IntN(500))/100)
		}
		rec := model.ClientRecord{
			Identity: model.ClientIdentity{Name: fmt.Sprintf("Client %d", n), Number: 100000000 + n},
			Accounts: acct,
		}

		var buf bytes.Buffer
		require.NoError(t, WriteRecords(&buf, []model.ClientRecord{rec}))

		got, err := ReadRecords(&buf)
		require.NoError(t, err, "block with %d accounts", n)
		require.Len(t, got, 1)
		assert.Equal(t, rec.Identity, got[0].Identity)
		assert.Len(t, got[0].Accounts.Balances, n)
		assert.Len(t, got[0].Accounts.InterestRates, n)
		assert.Equal(t, acct.Balances, got[0].Accounts.Balances)
		assert.Equal(t, acct.InterestRates, got[0].Accounts.InterestRates)
	}
}

func TestHeaderFor(t *testing.T) {
	acct := model.AccountSet{Balances: []float64{10, 20, 0, -5}, InterestRates: []float64{1, 1, 1, 1}}
	assert.Equal(t, "Chequing Account", HeaderFor(acct, 0))
	assert.Equal(t, "Savings Account 1", HeaderFor(acct, 1))
	assert.Equal(t, "Savings Account 2", HeaderFor(acct, 2))
	assert.Equal(t, "Loan Account", HeaderFor(acct, 3))
}
