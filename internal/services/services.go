package services

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/events"
)

// owned is any entity carrying its owning user id.
type owned interface {
	Owner() string
}

// assertOwned is the single ownership gate: every entity loaded on behalf
// of a caller passes through here before being read or mutated. A foreign
// entity is indistinguishable from a missing one.
func assertOwned(e owned, userID, kind string) error {
	if e.Owner() != userID {
		return core.NotFound(kind)
	}
	return nil
}

// EventPublisher publishes ledger events. A nil publisher disables
// publishing; a publish failure never fails the originating operation.
type EventPublisher interface {
	PublishTransactionPosted(ctx context.Context, msg *events.TransactionPostedMessage) error
	PublishBudgetBreached(ctx context.Context, msg *events.BudgetBreachedMessage) error
}
