package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/craftfolio-api/internal/config"
	"github.com/craftfolio-api/internal/models"
)

// Mongo is the MongoDB-backed Store. Nested collection paths are mapped
// onto flat collections scoped by ancestor-id fields; live subscriptions
// use change streams, which require the server to run as a replica set.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	log    zerolog.Logger
}

// NewMongo connects to MongoDB and verifies the connection
func NewMongo(ctx context.Context, cfg *config.MongoConfig, log zerolog.Logger) (*Mongo, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(cfg.URI).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping document store: %w", err)
	}

	store := &Mongo{
		client: client,
		db:     client.Database(cfg.Database),
		log:    log.With().Str("component", "docstore").Logger(),
	}

	store.log.Info().Str("database", cfg.Database).Msg("Document store connection established")
	return store, nil
}

// Close disconnects from MongoDB
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Create inserts a new document and returns its assigned id
func (m *Mongo) Create(ctx context.Context, path string, fields Fields) (string, error) {
	name, scope, err := collectionScope(path)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	doc := bson.M{"_id": id}
	for k, v := range fields {
		doc[k] = v
	}
	for k, v := range scope {
		doc[k] = v
	}

	if _, err := m.db.Collection(name).InsertOne(ctx, doc); err != nil {
		return "", models.NewBackendError("create "+name, err)
	}
	return id, nil
}

// Get fetches a single document
func (m *Mongo) Get(ctx context.Context, path string) (Fields, error) {
	name, id, scope, err := documentRef(path)
	if err != nil {
		return nil, err
	}

	var raw bson.M
	err = m.db.Collection(name).FindOne(ctx, scopedFilter(id, scope)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.NewBackendError("get "+name, err)
	}
	return normalizeFields(raw, scope), nil
}

// Update overwrites the given fields of a document
func (m *Mongo) Update(ctx context.Context, path string, fields Fields) error {
	name, id, scope, err := documentRef(path)
	if err != nil {
		return err
	}

	res, err := m.db.Collection(name).UpdateOne(ctx, scopedFilter(id, scope), bson.M{"$set": bson.M(fields)})
	if err != nil {
		return models.NewBackendError("update "+name, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes a document. Sub-collections nested under the document
// path are left in place.
func (m *Mongo) Delete(ctx context.Context, path string) error {
	name, id, scope, err := documentRef(path)
	if err != nil {
		return err
	}

	res, err := m.db.Collection(name).DeleteOne(ctx, scopedFilter(id, scope))
	if err != nil {
		return models.NewBackendError("delete "+name, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// List returns all documents of a collection ordered by creation time
func (m *Mongo) List(ctx context.Context, path string) ([]Document, error) {
	name, scope, err := collectionScope(path)
	if err != nil {
		return nil, err
	}

	filter := bson.M{}
	for k, v := range scope {
		filter[k] = v
	}

	cur, err := m.db.Collection(name).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, models.NewBackendError("list "+name, err)
	}

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, models.NewBackendError("list "+name, err)
	}

	docs := make([]Document, 0, len(raw))
	for _, r := range raw {
		id, _ := r["_id"].(string)
		docs = append(docs, Document{ID: id, Fields: normalizeFields(r, scope)})
	}
	return docs, nil
}

// ToggleVote flips membership of member in voteField and clears it from
// oppositeField in one server-side update, so concurrent toggles never
// interleave a stale read with a write.
func (m *Mongo) ToggleVote(ctx context.Context, path, voteField, oppositeField, member string) error {
	name, id, scope, err := documentRef(path)
	if err != nil {
		return err
	}

	vote := bson.D{{Key: "$ifNull", Value: bson.A{"$" + voteField, bson.A{}}}}
	opposite := bson.D{{Key: "$ifNull", Value: bson.A{"$" + oppositeField, bson.A{}}}}

	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: voteField, Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$in", Value: bson.A{member, vote}}},
				bson.D{{Key: "$setDifference", Value: bson.A{vote, bson.A{member}}}},
				bson.D{{Key: "$concatArrays", Value: bson.A{vote, bson.A{member}}}},
			}}}},
			{Key: oppositeField, Value: bson.D{{Key: "$setDifference", Value: bson.A{opposite, bson.A{member}}}}},
		}}},
	}

	res, err := m.db.Collection(name).UpdateOne(ctx, scopedFilter(id, scope), update)
	if err != nil {
		return models.NewBackendError("vote "+name, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Subscribe opens a change stream on the collection and re-reads the full
// scoped listing on every event. The first snapshot is delivered without
// waiting for a change.
func (m *Mongo) Subscribe(ctx context.Context, path string) (Subscription, error) {
	name, _, err := collectionScope(path)
	if err != nil {
		return nil, err
	}

	// The subscription outlives the caller's request context; its
	// lifetime is owned by the returned cancel handle.
	streamCtx, cancel := context.WithCancel(context.Background())

	stream, err := m.db.Collection(name).Watch(streamCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, models.NewBackendError("watch "+name, err)
	}

	sub := &mongoSubscription{
		snapshots: make(chan []Document, 1),
		cancel:    cancel,
	}
	go sub.run(streamCtx, m, path, stream)
	return sub, nil
}

type mongoSubscription struct {
	snapshots chan []Document
	cancel    context.CancelFunc
}

func (s *mongoSubscription) Snapshots() <-chan []Document { return s.snapshots }

func (s *mongoSubscription) Cancel() { s.cancel() }

func (s *mongoSubscription) run(ctx context.Context, m *Mongo, path string, stream *mongo.ChangeStream) {
	defer close(s.snapshots)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = stream.Close(closeCtx)
	}()

	if !s.publish(ctx, m, path) {
		return
	}

	// The stream fires for every document in the flat collection; the
	// scoped re-read below keeps snapshots correct either way, an
	// out-of-scope event just refreshes an identical listing.
	for stream.Next(ctx) {
		if !s.publish(ctx, m, path) {
			return
		}
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		m.log.Error().Err(err).Str("path", path).Msg("Change stream terminated")
	}
}

// publish re-reads the collection and delivers the snapshot, replacing a
// pending stale one rather than blocking on a slow consumer.
func (s *mongoSubscription) publish(ctx context.Context, m *Mongo, path string) bool {
	docs, err := m.List(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		m.log.Error().Err(err).Str("path", path).Msg("Snapshot read failed")
		return true
	}

	for {
		select {
		case s.snapshots <- docs:
			return true
		case <-ctx.Done():
			return false
		default:
			select {
			case <-s.snapshots:
			default:
			}
		}
	}
}

// scopedFilter builds the _id filter including ancestor scope fields
func scopedFilter(id string, scope map[string]string) bson.M {
	filter := bson.M{"_id": id}
	for k, v := range scope {
		filter[k] = v
	}
	return filter
}

// normalizeFields converts BSON decoding artifacts back to the plain Go
// types the services expect and strips storage-internal fields.
func normalizeFields(raw bson.M, scope map[string]string) Fields {
	fields := make(Fields, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		if _, isScope := scope[k]; isScope {
			continue
		}
		fields[k] = normalizeValue(v)
	}
	return fields
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case bson.DateTime:
		return t.Time().UTC()
	case bson.A:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return t
			}
			out = append(out, s)
		}
		return out
	default:
		return v
	}
}
