package model

import (
	"cmp"
	"fmt"
	"strings"
)

// ClientIdentity is the (name, identification number) key of a ledger entry.
// Two different people may share an identity; the ledger does not prevent it.
type ClientIdentity struct {
	Name   string
	Number int
}

// NewClientIdentity normalizes the name's whitespace and returns the identity.
func NewClientIdentity(name string, number int) ClientIdentity {
	return ClientIdentity{Name: strings.Join(strings.Fields(name), " "), Number: number}
}

func (c ClientIdentity) String() string {
	return fmt.Sprintf("%s (%09d)", c.Name, c.Number)
}

// Compare orders identities by name, then by identification number.
func (c ClientIdentity) Compare(other ClientIdentity) int {
	if n := strings.Compare(c.Name, other.Name); n != 0 {
		return n
	}
	return cmp.Compare(c.Number, other.Number)
}

// ClientRecord is one parsed client block.
type ClientRecord struct {
	Identity ClientIdentity
	Accounts AccountSet
	Line     int // 1-based line of the block's first identity line
}
