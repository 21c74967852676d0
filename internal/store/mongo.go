// Package store persists documents into a replicated MongoDB deployment and
// answers the read-side queries used for reporting and auditing.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/ksuazo/corpusvec/internal/document"
	"github.com/ksuazo/corpusvec/internal/logger"
)

const (
	directConnectTimeout = 5 * time.Second
	replicaSetTimeout    = 10 * time.Second
	insertWriteTimeout   = 5 * time.Second
)

// Config contains the connection details for the store.
type Config struct {
	// URI, when set, is used as-is.
	URI        string
	Hosts      []string
	ReplicaSet string
	Database   string
	Collection string
}

// Mongo wraps the MongoDB client with the operations the pipeline needs.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect establishes the connection to the replica set. When no URI is
// configured it first tries a direct connection to each listed member, then
// falls back to a replica-set URI over all members. The connection is
// verified with a ping before it is accepted.
func Connect(ctx context.Context, cfg Config) (*Mongo, error) {
	client, err := dial(ctx, cfg)
	if err != nil {
		return nil, err
	}

	wc := &writeconcern.WriteConcern{W: "majority", WTimeout: insertWriteTimeout}
	coll := client.Database(cfg.Database).
		Collection(cfg.Collection, options.Collection().SetWriteConcern(wc))

	m := &Mongo{client: client, coll: coll}
	m.logConnectionInfo(ctx)
	return m, nil
}

func dial(ctx context.Context, cfg Config) (*mongo.Client, error) {
	if cfg.URI != "" {
		logger.Info("Connecting to MongoDB at %s", cfg.URI)
		return connectAndPing(ctx, options.Client().
			ApplyURI(cfg.URI).
			SetServerSelectionTimeout(replicaSetTimeout))
	}

	// Strategy 1: direct connection to each member in turn.
	for _, host := range cfg.Hosts {
		logger.Info("Trying direct connection to %s...", host)
		client, err := connectAndPing(ctx, options.Client().
			ApplyURI("mongodb://"+host).
			SetDirect(true).
			SetServerSelectionTimeout(directConnectTimeout))
		if err != nil {
			logger.Warn("Could not connect to %s: %v", host, err)
			continue
		}
		logger.Info("Connected to MongoDB via %s", host)
		return client, nil
	}

	// Strategy 2: the full replica set.
	uri := fmt.Sprintf("mongodb://%s/?replicaSet=%s", strings.Join(cfg.Hosts, ","), cfg.ReplicaSet)
	logger.Info("Trying replica set connection: %s", uri)
	client, err := connectAndPing(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(replicaSetTimeout))
	if err != nil {
		return nil, fmt.Errorf("could not establish a MongoDB connection: %w", err)
	}
	logger.Info("Connected to MongoDB replica set %s", cfg.ReplicaSet)
	return client, nil
}

func connectAndPing(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

// logConnectionInfo reports the server version and replica set member states.
// Informational only; failures here never abort the run.
func (m *Mongo) logConnectionInfo(ctx context.Context) {
	var build struct {
		Version string `bson:"version"`
	}
	err := m.client.Database("admin").
		RunCommand(ctx, bson.D{{Key: "buildInfo", Value: 1}}).
		Decode(&build)
	if err != nil {
		logger.Warn("Could not fetch MongoDB server info: %v", err)
	} else {
		logger.Info("MongoDB server version: %s", build.Version)
	}

	status, err := m.ReplicaSetStatus(ctx)
	if err != nil {
		logger.Warn("Could not fetch replica set status: %v", err)
		return
	}
	logger.Info("Replica set: %s, members: %d", status.Set, len(status.Members))
	for _, member := range status.Members {
		logger.Info("  %s: %s", member.Name, member.State)
	}
}

// Insert attempts to persist one document. The unique index on _id turns a
// re-insert of identical text into a Duplicate outcome rather than a second
// record.
func (m *Mongo) Insert(ctx context.Context, doc *document.Document) (Outcome, error) {
	_, err := m.coll.InsertOne(ctx, doc)
	return Classify(err)
}

// Count returns the number of documents in the collection.
func (m *Mongo) Count(ctx context.Context) (int64, error) {
	return m.coll.CountDocuments(ctx, bson.D{})
}

// SampleOne returns one stored document, or nil when the collection is empty.
func (m *Mongo) SampleOne(ctx context.Context) (*document.Document, error) {
	var doc document.Document
	err := m.coll.FindOne(ctx, bson.D{}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sample document: %w", err)
	}
	return &doc, nil
}

// SizeBucket is one row of the embedding-length distribution.
type SizeBucket struct {
	Size  int32 `bson:"_id"`
	Count int32 `bson:"count"`
}

// EmbeddingSizeDistribution groups stored documents by embedding length.
// More than one bucket means the collection holds inconsistent vectors.
func (m *Mongo) EmbeddingSizeDistribution(ctx context.Context) ([]SizeBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "embedding_size", Value: bson.D{{Key: "$size", Value: "$embedding"}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$embedding_size"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate embedding sizes: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []SizeBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode embedding size buckets: %w", err)
	}
	return buckets, nil
}

// CountMissingField returns how many documents lack the given field.
func (m *Mongo) CountMissingField(ctx context.Context, field string) (int64, error) {
	filter := bson.D{{Key: field, Value: bson.D{{Key: "$exists", Value: false}}}}
	return m.coll.CountDocuments(ctx, filter)
}

// ReplicaMember describes one member of the replica set.
type ReplicaMember struct {
	Name  string `bson:"name"`
	State string `bson:"stateStr"`
}

// ReplicaStatus describes the replica set this store is connected to.
type ReplicaStatus struct {
	Set     string          `bson:"set"`
	Members []ReplicaMember `bson:"members"`
}

// PrimaryCount returns how many members report the PRIMARY state.
func (s *ReplicaStatus) PrimaryCount() int {
	n := 0
	for _, m := range s.Members {
		if m.State == "PRIMARY" {
			n++
		}
	}
	return n
}

// ReplicaSetStatus fetches the replica set status from the server.
func (m *Mongo) ReplicaSetStatus(ctx context.Context) (*ReplicaStatus, error) {
	var status ReplicaStatus
	err := m.client.Database("admin").
		RunCommand(ctx, bson.D{{Key: "replSetGetStatus", Value: 1}}).
		Decode(&status)
	if err != nil {
		return nil, fmt.Errorf("failed to get replica set status: %w", err)
	}
	return &status, nil
}

// EnsureIndexes creates the secondary indexes used by downstream consumers: a
// text index over the document text and a sparse index on the embedding field.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "text", Value: "text"}},
			Options: options.Index().SetName("text_index"),
		},
		{
			Keys:    bson.D{{Key: "embedding", Value: 1}},
			Options: options.Index().SetName("embedding_index").SetSparse(true),
		},
	}
	for _, model := range models {
		if _, err := m.coll.Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// Close disconnects from the store.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
