package mongodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/repository"
)

var (
	_ repository.ItemStore        = (*MongoDBRepository)(nil)
	_ repository.Counter          = (*MongoDBRepository)(nil)
	_ repository.ReportRepository = (*MongoDBRepository)(nil)
)

func getRepository(t *testing.T) *MongoDBRepository {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	coll := fmt.Sprintf("inventory_test_%d", time.Now().UnixNano())
	repo, err := NewMongoDBRepository(ctx, uri, "pantry_test", coll)
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	t.Cleanup(func() {
		ctx := context.Background()
		_ = repo.items().Drop(ctx)
		_ = repo.Close(ctx)
	})
	return repo
}

func TestToItems(t *testing.T) {
	docs := []itemDocument{{Name: "apple", Quantity: 2}, {Name: "banana", Quantity: 1}}
	assert.Equal(t, []models.Item{{Name: "apple", Quantity: 2}, {Name: "banana", Quantity: 1}}, toItems(docs))
	assert.Empty(t, toItems(nil))
}

func TestItemDocumentShape(t *testing.T) {
	raw, err := bson.Marshal(itemDocument{Name: "eggs", Quantity: 3})
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, "eggs", m["_id"])
	assert.EqualValues(t, 3, m["quantity"])
}

func TestUnavailableWrapsBoth(t *testing.T) {
	cause := errors.New("server selection timeout")
	err := unavailable("get item eggs", cause)
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "get item eggs")
}

func TestRepository_CRUD(t *testing.T) {
	repo := getRepository(t)
	ctx := context.Background()

	_, found, err := repo.Get(ctx, "eggs")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Put(ctx, "eggs", 1))
	require.NoError(t, repo.Put(ctx, "apple", 4))
	require.NoError(t, repo.Put(ctx, "eggs", 2))

	qty, found, err := repo.Get(ctx, "eggs")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, qty)

	items, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Item{{Name: "apple", Quantity: 4}, {Name: "eggs", Quantity: 2}}, items)

	require.NoError(t, repo.Delete(ctx, "eggs"))
	require.NoError(t, repo.Delete(ctx, "eggs"))

	items, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Item{{Name: "apple", Quantity: 4}}, items)
}

func TestRepository_ConcurrentCounter(t *testing.T) {
	repo := getRepository(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Increment(ctx, "milk"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	qty, _, err := repo.Get(ctx, "milk")
	require.NoError(t, err)
	assert.Equal(t, 20, qty)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Decrement(ctx, "milk"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	_, found, err := repo.Get(ctx, "milk")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepository_SaveReport(t *testing.T) {
	repo := getRepository(t)
	ctx := context.Background()

	report := models.NewInventoryReport(models.Snapshot{{Name: "eggs", Quantity: 1}}, time.Now().UTC())
	require.NoError(t, repo.SaveReport(ctx, report))

	reports := repo.client.Database(repo.dbName).Collection(reportsCollection)
	t.Cleanup(func() { _ = reports.Drop(context.Background()) })

	count, err := reports.CountDocuments(ctx, bson.D{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, int64(1))
}
