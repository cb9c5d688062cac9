package source

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/runshape/pkg/errors"
	"github.com/matzehuels/runshape/pkg/run"
)

const mongoConnectTimeout = 10 * time.Second

// MongoConfig locates the snapshot collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// snapshotDoc is the stored form of a snapshot.
type snapshotDoc struct {
	ID        string       `bson:"_id"`
	Tenant    string       `bson:"tenant"`
	RunID     string       `bson:"run_id"`
	Snapshot  run.Snapshot `bson:"snapshot"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

func docID(tenant, runID string) string { return tenant + "/" + runID }

// MongoStore stores run snapshots in a MongoDB collection, one document per
// tenant and run.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and pings the server.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" || cfg.Database == "" || cfg.Collection == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo uri, database and collection are required")
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return NewMongoStoreFromCollection(client, client.Database(cfg.Database).Collection(cfg.Collection)), nil
}

// NewMongoStoreFromCollection wraps an existing collection. client may be
// nil when the caller owns the connection.
func NewMongoStoreFromCollection(client *mongo.Client, coll *mongo.Collection) *MongoStore {
	return &MongoStore{client: client, coll: coll}
}

// Put stores snap under its tenant and run id, replacing any previous one.
func (s *MongoStore) Put(ctx context.Context, tenant string, snap *run.Snapshot) error {
	if err := errors.ValidateTenantID(tenant); err != nil {
		return err
	}
	if err := errors.ValidateRunID(snap.RunID); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	doc := snapshotDoc{
		ID:        docID(tenant, snap.RunID),
		Tenant:    tenant,
		RunID:     snap.RunID,
		Snapshot:  *snap,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "store run %s", snap.RunID)
	}
	return nil
}

// Get loads a stored snapshot. A missing document is NOT_FOUND.
func (s *MongoStore) Get(ctx context.Context, tenant, runID string) (*run.Snapshot, error) {
	var doc snapshotDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": docID(tenant, runID)}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeNotFound, "run %s not stored for tenant %s", runID, tenant)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "load run %s", runID)
	}
	if err := doc.Snapshot.Validate(); err != nil {
		return nil, err
	}
	return &doc.Snapshot, nil
}

// Runs lists the run ids stored for a tenant, most recently updated first.
func (s *MongoStore) Runs(ctx context.Context, tenant string) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetProjection(bson.M{"run_id": 1})
	cur, err := s.coll.Find(ctx, bson.M{"tenant": tenant}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list runs")
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			RunID string `bson:"run_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode run document")
		}
		ids = append(ids, doc.RunID)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list runs")
	}
	return ids, nil
}

// Source returns a source reading one stored run. A missing tenant or run
// is an INVALID_INPUT error.
func (s *MongoStore) Source(tenant, runID string) (*Mongo, error) {
	if err := errors.ValidateTenantID(tenant); err != nil {
		return nil, err
	}
	if err := errors.ValidateRunID(runID); err != nil {
		return nil, err
	}
	return &Mongo{store: s, tenant: tenant, run: runID}, nil
}

// Close disconnects the client, if the store owns one.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Mongo reads one run from a [MongoStore].
type Mongo struct {
	store  *MongoStore
	tenant string
	run    string
}

// Fetch loads the stored snapshot.
func (m *Mongo) Fetch(ctx context.Context) run.Query {
	snap, err := m.store.Get(ctx, m.tenant, m.run)
	if err != nil {
		return run.Failed(err)
	}
	return run.Ready(snap)
}
