package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/repository"
	"github.com/mamadbah2/pantry/internal/repository/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newController(seed map[string]int, opts Options) (*Controller, *memory.Store) {
	store := memory.NewStore(seed)
	return NewController(store, opts, nil), store
}

func TestAddOne_NewItem(t *testing.T) {
	c, store := newController(nil, Options{})

	snapshot, err := c.AddOne(context.Background(), "eggs")
	require.NoError(t, err)
	assert.Equal(t, models.Snapshot{{Name: "eggs", Quantity: 1}}, snapshot)

	qty, found, err := store.Get(context.Background(), "eggs")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, qty)
}

func TestAddOne_ExistingItem(t *testing.T) {
	c, _ := newController(map[string]int{"eggs": 4}, Options{})

	snapshot, err := c.AddOne(context.Background(), "eggs")
	require.NoError(t, err)
	assert.Equal(t, models.Snapshot{{Name: "eggs", Quantity: 5}}, snapshot)
}

func TestRemoveOne(t *testing.T) {
	c, store := newController(map[string]int{"eggs": 3, "milk": 1}, Options{})
	ctx := context.Background()

	snapshot, err := c.RemoveOne(ctx, "eggs")
	require.NoError(t, err)
	assert.Equal(t, models.Snapshot{{Name: "eggs", Quantity: 2}, {Name: "milk", Quantity: 1}}, snapshot)

	snapshot, err = c.RemoveOne(ctx, "milk")
	require.NoError(t, err)
	assert.Equal(t, models.Snapshot{{Name: "eggs", Quantity: 2}}, snapshot)

	_, found, err := store.Get(ctx, "milk")
	require.NoError(t, err)
	assert.False(t, found, "quantity zero is never stored")
}

func TestRemoveOne_UnknownItemIsNoop(t *testing.T) {
	c, _ := newController(map[string]int{"eggs": 2}, Options{})

	snapshot, err := c.RemoveOne(context.Background(), "bread")
	require.NoError(t, err)
	assert.Equal(t, models.Snapshot{{Name: "eggs", Quantity: 2}}, snapshot)
}

func TestEggsScenario(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		c, _ := newController(nil, Options{AtomicCounters: atomic})
		ctx := context.Background()

		steps := []struct {
			intent func(context.Context, string) (models.Snapshot, error)
			want   models.Snapshot
		}{
			{c.AddOne, models.Snapshot{{Name: "eggs", Quantity: 1}}},
			{c.AddOne, models.Snapshot{{Name: "eggs", Quantity: 2}}},
			{c.RemoveOne, models.Snapshot{{Name: "eggs", Quantity: 1}}},
			{c.RemoveOne, models.Snapshot{}},
		}

		for i, step := range steps {
			snapshot, err := step.intent(ctx, "eggs")
			require.NoError(t, err)
			assert.Equal(t, step.want, snapshot, "atomic=%v step %d", atomic, i)
		}
	}
}

func TestRefresh_Idempotent(t *testing.T) {
	c, _ := newController(map[string]int{"apple": 2, "banana": 1}, Options{})
	ctx := context.Background()

	first, err := c.Refresh(ctx)
	require.NoError(t, err)
	second, err := c.Refresh(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, second, c.Snapshot())
}

func TestNames_TrimmedAndValidated(t *testing.T) {
	c, store := newController(nil, Options{})
	ctx := context.Background()

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := c.AddOne(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName)
		_, err = c.RemoveOne(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName)
	}

	items, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items, "invalid names never reach the store")

	snapshot, err := c.AddOne(ctx, "  Olive Oil ")
	require.NoError(t, err)
	assert.Equal(t, models.Snapshot{{Name: "Olive Oil", Quantity: 1}}, snapshot, "case is preserved")
}

func TestIntents_UseTrimmedKey(t *testing.T) {
	c, store := newController(map[string]int{" eggs": 2}, Options{})
	ctx := context.Background()

	snapshot, err := c.RemoveOne(ctx, " eggs")
	require.NoError(t, err)
	assert.Equal(t, models.Snapshot{{Name: " eggs", Quantity: 2}}, snapshot, "untrimmed record is left alone")

	_, err = c.AddOne(ctx, " eggs ")
	require.NoError(t, err)

	qty, found, err := store.Get(ctx, "eggs")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, qty)

	qty, _, err = store.Get(ctx, " eggs")
	require.NoError(t, err)
	assert.Equal(t, 2, qty)
}

func TestStoreFailure_KeepsPreviousSnapshot(t *testing.T) {
	c, store := newController(map[string]int{"eggs": 2}, Options{})
	ctx := context.Background()

	before, err := c.Refresh(ctx)
	require.NoError(t, err)

	network := errors.New("connection reset")
	store.FailWith(network)

	snapshot, err := c.AddOne(ctx, "eggs")
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.ErrorIs(t, err, network)
	assert.Equal(t, before, snapshot)

	snapshot, err = c.RemoveOne(ctx, "eggs")
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.Equal(t, before, snapshot)

	snapshot, err = c.Refresh(ctx)
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.Equal(t, before, snapshot)

	store.FailWith(nil)
	snapshot, err = c.AddOne(ctx, "eggs")
	require.NoError(t, err)
	assert.Equal(t, models.Snapshot{{Name: "eggs", Quantity: 3}}, snapshot)
}

func TestAtomicCounters_FallBackWithoutCounter(t *testing.T) {
	store := &callRecorder{ItemStore: memory.NewStore(nil)}
	c := NewController(store, Options{AtomicCounters: true}, nil)
	assert.False(t, c.Atomic())

	_, err := c.AddOne(context.Background(), "eggs")
	require.NoError(t, err)
	assert.Equal(t, []string{"get eggs", "put eggs 1", "list"}, store.calls)
}

func TestAtomicCounters_Enabled(t *testing.T) {
	c, _ := newController(nil, Options{AtomicCounters: true})
	assert.True(t, c.Atomic())
}

func TestConcurrentIntents_AtomicNoLostUpdates(t *testing.T) {
	c, store := newController(map[string]int{"milk": 1}, Options{AtomicCounters: true})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.AddOne(ctx, "milk")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	qty, _, err := store.Get(ctx, "milk")
	require.NoError(t, err)
	assert.Equal(t, 26, qty)
}
