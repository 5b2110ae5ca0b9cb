// Package repository defines the item store contract shared by the MongoDB,
// Redis and in-memory backends.
package repository

import (
	"context"
	"errors"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

// DefaultCollection is the name of the inventory collection.
const DefaultCollection = "inventory"

// ErrStoreUnavailable wraps every failure talking to the backing store.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrContention is returned when an atomic decrement keeps losing to
// concurrent writers.
var ErrContention = errors.New("too much contention on item")

// ItemStore is a key-value view over the inventory collection keyed by item
// name. Calls are independent round-trips; none are transactional together.
type ItemStore interface {
	// ListAll returns every item ordered by name.
	ListAll(ctx context.Context) ([]models.Item, error)
	// Get returns the stored quantity. A missing record is not an error.
	Get(ctx context.Context, name string) (quantity int, found bool, err error)
	// Put replaces the whole record body, creating it when absent.
	Put(ctx context.Context, name string, quantity int) error
	// Delete removes the record; deleting a missing record is a no-op.
	Delete(ctx context.Context, name string) error
}

// Counter is implemented by stores that can change a quantity in a single
// atomic step.
type Counter interface {
	// Increment adds one, creating the record at 1.
	Increment(ctx context.Context, name string) error
	// Decrement subtracts one and deletes the record instead of storing 0.
	// A missing record is a no-op.
	Decrement(ctx context.Context, name string) error
}

// ReportRepository stores inventory reports.
type ReportRepository interface {
	SaveReport(ctx context.Context, report models.InventoryReport) error
}
