package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	TTL        time.Duration
}

// MongoStore keeps one document per chart, keyed by chart ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	ttl    time.Duration
	now    func() time.Time
}

// NewMongoStore connects to MongoDB and verifies the connection, retrying
// transient failures.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	err = RetryWithBackoff(ctx, func() error {
		return Retryable(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	return &MongoStore{client: client, coll: coll, ttl: cfg.TTL, now: time.Now}, nil
}

// live matches charts that have not expired.
func (s *MongoStore) live() bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"expires_at": time.Time{}},
		bson.M{"expires_at": bson.M{"$gt": s.now()}},
	}}
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Chart, error) {
	var c Chart
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get: %w", err)
	}
	if c.Expired(s.now()) {
		_, _ = s.coll.DeleteOne(ctx, bson.M{"_id": id})
		return nil, notFound(id)
	}
	return &c, nil
}

func (s *MongoStore) Put(ctx context.Context, c *Chart) error {
	prepare(c, s.ttl, s.now())
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo put: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, s.live(), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	var charts []Chart
	if err := cur.All(ctx, &charts); err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	out := make([]Summary, len(charts))
	for i := range charts {
		out[i] = charts[i].summary()
	}
	sortSummaries(out)
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
