package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/retry"
)

// Mongo defaults.
const (
	DefaultDatabase   = "blendview"
	DefaultCollection = "captures"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoStore archives captures in a MongoDB collection, one document per
// capture keyed by the snapshot ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects, pings and ensures the capture indexes exist.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	err = retry.Connect(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return retry.Transient(fmt.Errorf("ping mongo: %w", err))
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "graph_id", Value: 1}, {Key: "captured_at", Value: -1}}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (m *MongoStore) Save(ctx context.Context, s *graph.Snapshot) error {
	if err := prepare(s); err != nil {
		return err
	}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"id": s.ID}, s, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save capture: %w", err)
	}
	return nil
}

func (m *MongoStore) Get(ctx context.Context, id string) (*graph.Snapshot, error) {
	var s graph.Snapshot
	err := m.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get capture: %w", err)
	}
	return &s, nil
}

func (m *MongoStore) List(ctx context.Context, graphID string, limit int) ([]*graph.Snapshot, error) {
	filter := bson.M{}
	if graphID != "" {
		filter["graph_id"] = graphID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "captured_at", Value: -1}, {Key: "id", Value: 1}}).
		SetLimit(int64(normLimit(limit)))

	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list captures: %w", err)
	}
	var out []*graph.Snapshot
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode captures: %w", err)
	}
	return out, nil
}

func (m *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("delete capture: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
