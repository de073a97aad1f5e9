package txlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Action names a recorded ledger operation.
type Action string

const (
	ActionSignIn      Action = "sign_in"
	ActionTransaction Action = "transaction"
	ActionLoan        Action = "loan"
	ActionSignOut     Action = "sign_out"
)

// Entry is one row of the transaction log.
type Entry struct {
	Timestamp time.Time
	Session   string
	Client    string
	SIN       string // masked, e.g. "***-***-021"
	Action    Action
	Account   int // -1 when the action has no account
	Amount    decimal.Decimal
	Details   string
}

// Header is the CSV header of the transaction log.
const Header = "timestamp,session,client,sin,action,account,amount,details"

const (
	numFields  = 8
	colTime    = 0
	colSession = 1
	colClient  = 2
	colSIN     = 3
	colAction  = 4
	colAccount = 5
	colAmount  = 6
	colDetails = 7
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.Format(time.RFC3339)
	row[colSession] = e.Session
	row[colClient] = e.Client
	row[colSIN] = e.SIN
	row[colAction] = string(e.Action)
	if e.Account >= 0 {
		row[colAccount] = strconv.Itoa(e.Account)
	}
	if !e.Amount.IsZero() {
		row[colAmount] = e.Amount.StringFixed(2)
	}
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}

	account := -1
	if record[colAccount] != "" {
		account, err = strconv.Atoi(record[colAccount])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing account %q: %w", record[colAccount], err)
		}
	}

	var amount decimal.Decimal
	if record[colAmount] != "" {
		amount, err = decimal.NewFromString(record[colAmount])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
		}
	}

	return Entry{
		Timestamp: ts,
		Session:   record[colSession],
		Client:    record[colClient],
		SIN:       record[colSIN],
		Action:    Action(record[colAction]),
		Account:   account,
		Amount:    amount,
		Details:   record[colDetails],
	}, nil
}

// Append writes entries to path, creating the file, its directory and the
// header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening transaction log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries in path, or nil if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening transaction log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transaction log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Recorder stamps entries with a session ID and the current time and appends
// them to a log file. A Recorder with an empty path discards entries.
type Recorder struct {
	path    string
	session string
	now     func() time.Time
}

// NewRecorder creates a Recorder writing to path under session.
func NewRecorder(path, session string) *Recorder {
	return &Recorder{path: path, session: session, now: time.Now}
}

// Session returns the recorder's session ID.
func (r *Recorder) Session() string {
	return r.session
}

// Record appends one entry.
func (r *Recorder) Record(e Entry) error {
	if r == nil || r.path == "" {
		return nil
	}
	e.Session = r.session
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now().UTC()
	}
	return Append(r.path, []Entry{e})
}
