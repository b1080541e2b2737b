package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/casegraph/casegraph/pkg/errors"
)

const snapshotCollection = "snapshots"

// MongoStore persists snapshots in MongoDB for server deployments.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	URI      string // connection string, defaults to mongodb://localhost:27017
	Database string // database name, defaults to casegraph
}

// NewMongoStore connects to MongoDB, verifies the connection, and ensures
// the index used by Latest and List.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "casegraph"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(snapshotCollection)

	// Latest and List both query by case and sort by recency.
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "case_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo index: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

// Save persists a snapshot, overwriting any existing one with the same ID.
func (m *MongoStore) Save(ctx context.Context, s *Snapshot) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := m.coll.ReplaceOne(ctx, bson.M{"_id": s.ID}, s, opts); err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.ID, err)
	}
	return nil
}

// Get retrieves a snapshot by ID.
func (m *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	var s Snapshot
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return &s, nil
}

// Latest retrieves the most recent snapshot for a case.
func (m *MongoStore) Latest(ctx context.Context, caseID string) (*Snapshot, error) {
	if err := errors.ValidateCaseID(caseID); err != nil {
		return nil, err
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var s Snapshot
	err := m.coll.FindOne(ctx, bson.M{"case_id": caseID}, opts).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, noneForCase(caseID)
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot for case %s: %w", caseID, err)
	}
	return &s, nil
}

// List returns brief descriptors for a case's snapshots, newest first.
func (m *MongoStore) List(ctx context.Context, caseID string, limit int) ([]Ref, error) {
	if err := errors.ValidateCaseID(caseID); err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"_id": 1, "case_id": 1, "created_at": 1, "network_hash": 1})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := m.coll.Find(ctx, bson.M{"case_id": caseID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list snapshots for case %s: %w", caseID, err)
	}
	defer cursor.Close(ctx)

	var refs []Ref
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("decode snapshot refs: %w", err)
	}
	return refs, nil
}

// Close disconnects from MongoDB.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
