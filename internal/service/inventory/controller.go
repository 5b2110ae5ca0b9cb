// Package inventory turns user intents (add one, remove one, refresh) into
// read-then-write sequences against an item store and keeps the last
// snapshot fetched from it.
//
// By default an intent reads the quantity and writes the new value in two
// unguarded round-trips. Two intents racing on the same name can lose an
// update: both read 1, both write 2. Enabling Options.AtomicCounters with a
// store that implements repository.Counter replaces the pair with a single
// atomic call.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/repository"
)

// ErrInvalidName rejects empty and whitespace-only item names.
var ErrInvalidName = errors.New("item name must not be empty")

// Options tunes a Controller.
type Options struct {
	AtomicCounters bool
}

// Controller is the quantity state machine. It is safe for concurrent use;
// the lock only guards the snapshot, never the store calls.
type Controller struct {
	store   repository.ItemStore
	counter repository.Counter
	logger  *zap.Logger

	mu       sync.RWMutex
	snapshot models.Snapshot
}

// NewController wires a controller over store. Atomic counters are only used
// when requested and supported by the store.
func NewController(store repository.ItemStore, opts Options, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{store: store, logger: logger}
	if opts.AtomicCounters {
		if counter, ok := store.(repository.Counter); ok {
			c.counter = counter
		} else {
			logger.Warn("store has no atomic counter, falling back to read-then-write")
		}
	}
	return c
}

// Atomic reports whether intents use the store's atomic counter.
func (c *Controller) Atomic() bool {
	return c.counter != nil
}

// Snapshot returns the last snapshot fetched from the store.
func (c *Controller) Snapshot() models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Refresh lists the store and replaces the snapshot wholesale. On failure
// the previous snapshot is returned with the error.
func (c *Controller) Refresh(ctx context.Context) (models.Snapshot, error) {
	items, err := c.store.ListAll(ctx)
	if err != nil {
		return c.Snapshot(), fmt.Errorf("refresh inventory: %w", err)
	}

	snapshot := models.Snapshot(items)
	c.mu.Lock()
	c.snapshot = snapshot
	c.mu.Unlock()

	c.logger.Debug("inventory refreshed", zap.Int("items", len(snapshot)))
	return snapshot, nil
}

// AddOne creates name at quantity 1 or bumps it by one, then refreshes.
// The name is trimmed before it is used as the store key, so records stored
// with surrounding whitespace by another writer are not reachable.
func (c *Controller) AddOne(ctx context.Context, name string) (models.Snapshot, error) {
	name, err := normalizeName(name)
	if err != nil {
		return c.Snapshot(), err
	}

	if c.counter != nil {
		err = c.counter.Increment(ctx, name)
	} else {
		err = c.readThenAdd(ctx, name)
	}
	if err != nil {
		c.logger.Warn("add item failed", zap.String("item", name), zap.Error(err))
		return c.Snapshot(), fmt.Errorf("add %q: %w", name, err)
	}

	c.logger.Info("item added", zap.String("item", name))
	return c.Refresh(ctx)
}

// RemoveOne takes one unit of name away, deleting the record instead of
// storing zero, then refreshes. Removing an unknown item only refreshes.
// As with AddOne, the key is the trimmed name.
func (c *Controller) RemoveOne(ctx context.Context, name string) (models.Snapshot, error) {
	name, err := normalizeName(name)
	if err != nil {
		return c.Snapshot(), err
	}

	if c.counter != nil {
		err = c.counter.Decrement(ctx, name)
	} else {
		err = c.readThenRemove(ctx, name)
	}
	if err != nil {
		c.logger.Warn("remove item failed", zap.String("item", name), zap.Error(err))
		return c.Snapshot(), fmt.Errorf("remove %q: %w", name, err)
	}

	c.logger.Info("item removed", zap.String("item", name))
	return c.Refresh(ctx)
}

func (c *Controller) readThenAdd(ctx context.Context, name string) error {
	quantity, found, err := c.store.Get(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		return c.store.Put(ctx, name, 1)
	}
	return c.store.Put(ctx, name, quantity+1)
}

func (c *Controller) readThenRemove(ctx context.Context, name string) error {
	quantity, found, err := c.store.Get(ctx, name)
	if err != nil {
		return err
	}
	switch {
	case !found:
		return nil
	case quantity <= 1:
		return c.store.Delete(ctx, name)
	default:
		return c.store.Put(ctx, name, quantity-1)
	}
}

func normalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

// Intents is what a view needs from the inventory: a refresh and the two
// quantity intents, each answering with the resulting snapshot.
type Intents interface {
	Refresh(ctx context.Context) (models.Snapshot, error)
	AddOne(ctx context.Context, name string) (models.Snapshot, error)
	RemoveOne(ctx context.Context, name string) (models.Snapshot, error)
}

var _ Intents = (*Controller)(nil)
