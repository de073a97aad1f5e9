package ledger

import (
	"errors"
	"fmt"

	"github.com/abcbank/ledger/internal/model"
	"github.com/abcbank/ledger/internal/sin"
)

// ErrInvariant is wrapped by errors from mutations that would leave an
// AccountSet inconsistent. The AccountSet is not modified.
var ErrInvariant = errors.New("account set invariant violated")

// NotFoundError reports an identity absent from the ledger.
type NotFoundError struct {
	Client model.ClientIdentity
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("client %q (%s) not found", e.Client.Name, sin.Mask(e.Client.Number))
}

// ValidationError describes a violated precondition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
