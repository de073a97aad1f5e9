package ledger

import (
	"fmt"
	"os"
	"slices"

	"go.uber.org/zap"

	"github.com/abcbank/ledger/internal/model"
	"github.com/abcbank/ledger/internal/records"
	"github.com/abcbank/ledger/internal/sin"
)

// Store is the in-memory ledger: one AccountSet per client identity.
// It is not safe for concurrent use.
type Store struct {
	order   []model.ClientIdentity
	clients map[model.ClientIdentity]*model.AccountSet
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for mutations and load warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore builds a Store from parsed records. When an identity occurs more
// than once, the first occurrence is kept and later ones are dropped.
func NewStore(recs []model.ClientRecord, opts ...Option) (*Store, error) {
	s := &Store{
		clients: make(map[model.ClientIdentity]*model.AccountSet, len(recs)),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, rec := range recs {
		if err := Validate(rec.Accounts); err != nil {
			return nil, fmt.Errorf("client %q at line %d: %w", rec.Identity.Name, rec.Line, err)
		}
		if _, dup := s.clients[rec.Identity]; dup {
			s.logger.Warn("duplicate client identity ignored",
				zap.String("client", rec.Identity.Name),
				zap.String("sin", sin.Mask(rec.Identity.Number)),
				zap.Int("line", rec.Line))
			continue
		}
		acct := rec.Accounts.Clone()
		s.clients[rec.Identity] = &acct
		s.order = append(s.order, rec.Identity)
	}
	return s, nil
}

// Load reads a client data file and returns a Store.
func Load(path string, opts ...Option) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening client data: %w", err)
	}
	defer f.Close()

	recs, err := records.ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("reading client data %s: %w", path, err)
	}
	return NewStore(recs, opts...)
}

// Clients returns every identity in load order.
func (s *Store) Clients() []model.ClientIdentity {
	return slices.Clone(s.order)
}

// Len returns the number of clients.
func (s *Store) Len() int {
	return len(s.order)
}

// Exists reports whether the (name, number) pair is a known identity.
func (s *Store) Exists(name string, number int) bool {
	_, ok := s.clients[model.ClientIdentity{Name: name, Number: number}]
	return ok
}

// Records returns a snapshot of the ledger in load order.
func (s *Store) Records() []model.ClientRecord {
	out := make([]model.ClientRecord, 0, len(s.order))
	for _, c := range s.order {
		out = append(out, model.ClientRecord{Identity: c, Accounts: s.clients[c].Clone()})
	}
	return out
}

func (s *Store) get(c model.ClientIdentity) (*model.AccountSet, error) {
	acct, ok := s.clients[c]
	if !ok {
		return nil, NotFoundError{Client: c}
	}
	return acct, nil
}

// Lookup returns a copy of the client's accounts.
func (s *Store) Lookup(c model.ClientIdentity) (model.AccountSet, error) {
	acct, err := s.get(c)
	if err != nil {
		return model.AccountSet{}, err
	}
	return acct.Clone(), nil
}

// TotalBalance sums every account, loans included.
func (s *Store) TotalBalance(c model.ClientIdentity) (float64, error) {
	acct, err := s.get(c)
	if err != nil {
		return 0, err
	}
	return sum(acct.Balances), nil
}

// AverageBalance is the mean of every account, loans included.
func (s *Store) AverageBalance(c model.ClientIdentity) (float64, error) {
	acct, err := s.get(c)
	if err != nil {
		return 0, err
	}
	return sum(acct.Balances) / float64(acct.Len()), nil
}

// AccountCount counts the non-loan accounts.
func (s *Store) AccountCount(c model.ClientIdentity) (int, error) {
	acct, err := s.get(c)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, b := range acct.Balances {
		if b >= 0 {
			n++
		}
	}
	return n, nil
}

// AccountBalance returns the balance at index. Negative indices count from
// the end: -1 is the last account.
func (s *Store) AccountBalance(c model.ClientIdentity, index int) (float64, error) {
	acct, err := s.get(c)
	if err != nil {
		return 0, err
	}
	i, err := resolveIndex(*acct, index)
	if err != nil {
		return 0, err
	}
	return acct.Balances[i], nil
}

// Categorize partitions the client's accounts into chequing, savings and loans.
func (s *Store) Categorize(c model.ClientIdentity) (model.Categorized, error) {
	acct, err := s.get(c)
	if err != nil {
		return model.Categorized{}, err
	}
	return acct.Categorize(), nil
}

// NonChequingTotals returns the summed balance and the summed interest rate
// of every savings and loan account.
func (s *Store) NonChequingTotals(c model.ClientIdentity) (balance, rate float64, err error) {
	acct, err := s.get(c)
	if err != nil {
		return 0, 0, err
	}
	return sum(acct.Balances[1:]), sum(acct.InterestRates[1:]), nil
}

// ClientTotal pairs a client with its total balance.
type ClientTotal struct {
	Client model.ClientIdentity
	Total  float64
}

// TotalBalances returns every client's total balance in load order.
func (s *Store) TotalBalances() []ClientTotal {
	out := make([]ClientTotal, 0, len(s.order))
	for _, c := range s.order {
		out = append(out, ClientTotal{Client: c, Total: sum(s.clients[c].Balances)})
	}
	return out
}

// AverageBalances returns every client's average balance in load order.
func (s *Store) AverageBalances() []float64 {
	out := make([]float64, 0, len(s.order))
	for _, c := range s.order {
		acct := s.clients[c]
		out = append(out, sum(acct.Balances)/float64(acct.Len()))
	}
	return out
}

// TotalsByRange buckets clients by total balance. A client appears under
// every range containing its total; ranges with no clients are omitted.
// Each bucket is sorted by name, then identification number.
func (s *Store) TotalsByRange(ranges []model.FinancialRange) map[model.FinancialRange][]model.ClientIdentity {
	out := make(map[model.FinancialRange][]model.ClientIdentity)
	totals := s.TotalBalances()
	for _, r := range ranges {
		if _, done := out[r]; done {
			continue
		}
		var bucket []model.ClientIdentity
		for _, ct := range totals {
			if r.Contains(ct.Total) {
				bucket = append(bucket, ct.Client)
			}
		}
		if len(bucket) == 0 {
			continue
		}
		slices.SortFunc(bucket, model.ClientIdentity.Compare)
		out[r] = bucket
	}
	return out
}

func resolveIndex(acct model.AccountSet, index int) (int, error) {
	n := acct.Len()
	i := index
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, ValidationError{Field: "account index", Reason: fmt.Sprintf("%d is out of range for %d accounts", index, n)}
	}
	return i, nil
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
