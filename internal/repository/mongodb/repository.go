package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/repository"
)

const (
	reportsCollection = "inventory_reports"

	// decrementAttempts bounds the delete-or-decrement loop used by
	// Decrement when concurrent writers keep moving the quantity.
	decrementAttempts = 5
)

// itemDocument is the stored shape of an inventory record.
type itemDocument struct {
	Name     string `bson:"_id"`
	Quantity int    `bson:"quantity"`
}

// quantityBody is the replacement body written by Put. The _id is kept by
// ReplaceOne.
type quantityBody struct {
	Quantity int `bson:"quantity"`
}

// MongoDBRepository stores inventory items as documents keyed by item name.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, collName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	if collName == "" {
		collName = repository.DefaultCollection
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: collName,
	}, nil
}

func (r *MongoDBRepository) items() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// ListAll returns every item sorted by name.
func (r *MongoDBRepository) ListAll(ctx context.Context) ([]models.Item, error) {
	cursor, err := r.items().Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, unavailable("list items", err)
	}

	var docs []itemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("decode items", err)
	}

	return toItems(docs), nil
}

// Get reads the quantity stored for name.
func (r *MongoDBRepository) Get(ctx context.Context, name string) (int, bool, error) {
	var doc itemDocument
	err := r.items().FindOne(ctx, bson.D{{Key: "_id", Value: name}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, unavailable("get item "+name, err)
	}
	return doc.Quantity, true, nil
}

// Put overwrites the record body, inserting it when missing.
func (r *MongoDBRepository) Put(ctx context.Context, name string, quantity int) error {
	_, err := r.items().ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: name}},
		quantityBody{Quantity: quantity},
		options.Replace().SetUpsert(true))
	if err != nil {
		return unavailable("put item "+name, err)
	}
	return nil
}

// Delete removes the record for name, if any.
func (r *MongoDBRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.items().DeleteOne(ctx, bson.D{{Key: "_id", Value: name}}); err != nil {
		return unavailable("delete item "+name, err)
	}
	return nil
}

// Increment bumps the quantity with $inc, creating the record at 1.
func (r *MongoDBRepository) Increment(ctx context.Context, name string) error {
	_, err := r.items().UpdateOne(ctx,
		bson.D{{Key: "_id", Value: name}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "quantity", Value: 1}}}},
		options.Update().SetUpsert(true))
	if err != nil {
		return unavailable("increment item "+name, err)
	}
	return nil
}

// Decrement removes one unit. The last unit deletes the record. Each step is
// a single conditional write, so no update is lost; the loop only repeats
// when another writer changed the quantity between the two filters.
func (r *MongoDBRepository) Decrement(ctx context.Context, name string) error {
	coll := r.items()

	for attempt := 0; attempt < decrementAttempts; attempt++ {
		deleted, err := coll.DeleteOne(ctx, bson.D{
			{Key: "_id", Value: name},
			{Key: "quantity", Value: bson.D{{Key: "$lte", Value: 1}}},
		})
		if err != nil {
			return unavailable("decrement item "+name, err)
		}
		if deleted.DeletedCount > 0 {
			return nil
		}

		updated, err := coll.UpdateOne(ctx,
			bson.D{
				{Key: "_id", Value: name},
				{Key: "quantity", Value: bson.D{{Key: "$gt", Value: 1}}},
			},
			bson.D{{Key: "$inc", Value: bson.D{{Key: "quantity", Value: -1}}}})
		if err != nil {
			return unavailable("decrement item "+name, err)
		}
		if updated.MatchedCount > 0 {
			return nil
		}

		_, found, err := r.Get(ctx, name)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
	}

	return fmt.Errorf("decrement item %s: %w", name, repository.ErrContention)
}

// SaveReport saves an inventory report to the reports collection.
func (r *MongoDBRepository) SaveReport(ctx context.Context, report models.InventoryReport) error {
	collection := r.client.Database(r.dbName).Collection(reportsCollection)
	if _, err := collection.InsertOne(ctx, report); err != nil {
		return unavailable("insert inventory report", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func toItems(docs []itemDocument) []models.Item {
	items := make([]models.Item, 0, len(docs))
	for _, doc := range docs {
		items = append(items, models.Item{Name: doc.Name, Quantity: doc.Quantity})
	}
	return items
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, repository.ErrStoreUnavailable, err)
}
