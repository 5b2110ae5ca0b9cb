// Package memory is an in-process ItemStore. It backs tests and the
// "memory" store backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/repository"
)

// Store keeps the inventory in a map. It implements repository.ItemStore,
// repository.Counter and repository.ReportRepository.
type Store struct {
	mu      sync.Mutex
	items   map[string]int
	reports []models.InventoryReport
	failErr error
}

// NewStore returns a store seeded with the given quantities.
func NewStore(seed map[string]int) *Store {
	items := make(map[string]int, len(seed))
	for name, qty := range seed {
		items[name] = qty
	}
	return &Store{items: items}
}

// FailWith makes every following call fail with err wrapped in
// repository.ErrStoreUnavailable. Passing nil heals the store.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *Store) check(op string) error {
	if s.failErr != nil {
		return fmt.Errorf("%s: %w: %w", op, repository.ErrStoreUnavailable, s.failErr)
	}
	return nil
}

func (s *Store) ListAll(ctx context.Context) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("list items"); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(s.items))
	for name, qty := range s.items {
		items = append(items, models.Item{Name: name, Quantity: qty})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *Store) Get(ctx context.Context, name string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("get item"); err != nil {
		return 0, false, err
	}
	qty, ok := s.items[name]
	return qty, ok, nil
}

func (s *Store) Put(ctx context.Context, name string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("put item"); err != nil {
		return err
	}
	s.items[name] = quantity
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete item"); err != nil {
		return err
	}
	delete(s.items, name)
	return nil
}

func (s *Store) Increment(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("increment item"); err != nil {
		return err
	}
	s.items[name]++
	return nil
}

func (s *Store) Decrement(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("decrement item"); err != nil {
		return err
	}

	qty, ok := s.items[name]
	switch {
	case !ok:
	case qty <= 1:
		delete(s.items, name)
	default:
		s.items[name] = qty - 1
	}
	return nil
}

func (s *Store) SaveReport(ctx context.Context, report models.InventoryReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("save report"); err != nil {
		return err
	}
	s.reports = append(s.reports, report)
	return nil
}

// Reports returns the reports saved so far.
func (s *Store) Reports() []models.InventoryReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.InventoryReport, len(s.reports))
	copy(out, s.reports)
	return out
}

// Close satisfies the shutdown contract of the networked stores.
func (s *Store) Close(ctx context.Context) error {
	return nil
}
