// Package redis stores the inventory collection as a single Redis hash whose
// fields are item names and whose values are quantities.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/repository"
)

const keyPrefix = "pantry:"

// decrementScript removes one unit and deletes the field instead of storing
// zero. Returns the remaining quantity, or -1 when the item did not exist.
var decrementScript = redis.NewScript(`
local key = KEYS[1]
local field = ARGV[1]

local current = redis.call('HGET', key, field)
if not current then
	return -1
end

current = tonumber(current)
if current <= 1 then
	redis.call('HDEL', key, field)
	return 0
end

return redis.call('HINCRBY', key, field, -1)
`)

// Store implements repository.ItemStore and repository.Counter on Redis.
// Reports are appended as JSON to a list next to the hash.
type Store struct {
	client     *redis.Client
	key        string
	reportsKey string
}

// NewStore wraps an existing client. collection names the hash.
func NewStore(client *redis.Client, collection string) *Store {
	if collection == "" {
		collection = repository.DefaultCollection
	}
	return &Store{
		client:     client,
		key:        keyPrefix + collection,
		reportsKey: keyPrefix + collection + ":reports",
	}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr, collection string) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return NewStore(client, collection), nil
}

func (s *Store) ListAll(ctx context.Context) ([]models.Item, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, unavailable("list items", err)
	}

	items := make([]models.Item, 0, len(fields))
	for name, raw := range fields {
		qty, err := parseQuantity(name, raw)
		if err != nil {
			return nil, err
		}
		items = append(items, models.Item{Name: name, Quantity: qty})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *Store) Get(ctx context.Context, name string) (int, bool, error) {
	raw, err := s.client.HGet(ctx, s.key, name).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, unavailable("get item "+name, err)
	}

	qty, err := parseQuantity(name, raw)
	if err != nil {
		return 0, false, err
	}
	return qty, true, nil
}

func (s *Store) Put(ctx context.Context, name string, quantity int) error {
	if err := s.client.HSet(ctx, s.key, name, quantity).Err(); err != nil {
		return unavailable("put item "+name, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.HDel(ctx, s.key, name).Err(); err != nil {
		return unavailable("delete item "+name, err)
	}
	return nil
}

func (s *Store) Increment(ctx context.Context, name string) error {
	if err := s.client.HIncrBy(ctx, s.key, name, 1).Err(); err != nil {
		return unavailable("increment item "+name, err)
	}
	return nil
}

func (s *Store) Decrement(ctx context.Context, name string) error {
	if err := decrementScript.Run(ctx, s.client, []string{s.key}, name).Err(); err != nil {
		return unavailable("decrement item "+name, err)
	}
	return nil
}

func (s *Store) SaveReport(ctx context.Context, report models.InventoryReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := s.client.RPush(ctx, s.reportsKey, raw).Err(); err != nil {
		return unavailable("save report", err)
	}
	return nil
}

// Reports returns every saved report, oldest first.
func (s *Store) Reports(ctx context.Context) ([]models.InventoryReport, error) {
	raws, err := s.client.LRange(ctx, s.reportsKey, 0, -1).Result()
	if err != nil {
		return nil, unavailable("list reports", err)
	}

	reports := make([]models.InventoryReport, 0, len(raws))
	for _, raw := range raws {
		var report models.InventoryReport
		if err := json.Unmarshal([]byte(raw), &report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Close releases the client connections.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Close()
}

// parseQuantity decodes a hash value. A malformed value is a data error, not
// an unreachable store.
func parseQuantity(name, raw string) (int, error) {
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("item %s has non-integer quantity %q: %w", name, raw, err)
	}
	return qty, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, repository.ErrStoreUnavailable, err)
}
