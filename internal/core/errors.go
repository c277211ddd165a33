package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every failure surfaced by a service wraps one of the
// first three sentinels so transport layers can map it with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthenticated = errors.New("authentication required")
)

var (
	ErrInvalidAmount          = fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	ErrInvalidAccountType     = fmt.Errorf("%w: account type must be bank, mobile_money or cash", ErrInvalidArgument)
	ErrInvalidTransactionType = fmt.Errorf("%w: transaction type must be income or expense", ErrInvalidArgument)
	ErrInvalidWindow          = fmt.Errorf("%w: end date must not precede start date", ErrInvalidArgument)
	ErrEmptyName              = fmt.Errorf("%w: name cannot be empty", ErrInvalidArgument)
	ErrForeignParentCategory  = fmt.Errorf("%w: parent category belongs to another user", ErrInvalidArgument)
)

// NotFound wraps ErrNotFound with the entity kind for log and API messages.
func NotFound(kind string) error {
	return fmt.Errorf("%s %w", kind, ErrNotFound)
}
