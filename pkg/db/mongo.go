package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCloseTimeout = 5 * time.Second

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoKV is a KV backed by a MongoDB collection, one document per key.
type MongoKV struct {
	coll *mongo.Collection
}

// ConnectMongo connects to uri and returns a MongoKV over the "kv" collection of dbName.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoKV, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)

		return nil, fmt.Errorf("error pinging mongo: %w", err)
	}

	return NewMongoKV(client.Database(dbName)), nil
}

// NewMongoKV wraps an already connected database.
func NewMongoKV(db *mongo.Database) *MongoKV {
	return &MongoKV{coll: db.Collection("kv")}
}

// Get returns the value stored under key, or ErrNotFound.
func (m *MongoKV) Get(ctx context.Context, key string) (string, error) {
	var doc kvDocument

	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}

	if err != nil {
		return "", fmt.Errorf("error reading key %s: %w", key, err)
	}

	return doc.Value, nil
}

// Put upserts value under key.
func (m *MongoKV) Put(ctx context.Context, key, value string) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value, "updated_at": time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("error writing key %s: %w", key, err)
	}

	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MongoKV) Delete(ctx context.Context, key string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("error deleting key %s: %w", key, err)
	}

	return nil
}

// Close disconnects the underlying client.
func (m *MongoKV) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()

	return m.coll.Database().Client().Disconnect(ctx)
}
