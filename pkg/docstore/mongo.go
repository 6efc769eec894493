package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crowdfork/crowdfork/pkg/metrics"
)

// Mongo implements Store on a MongoDB database.
type Mongo struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

// MongoOptions configures Open.
type MongoOptions struct {
	URI          string
	Database     string
	Transactions bool
}

// Open connects and pings. Server selection gives up after five seconds so
// a missing server fails fast instead of hanging the first request.
func Open(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(5*time.Second).
		SetConnectTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("docstore: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("docstore: ping: %w", err)
	}

	return NewMongo(client, opts.Database, opts.Transactions), nil
}

func NewMongo(client *mongo.Client, database string, transactions bool) *Mongo {
	return &Mongo{client: client, db: client.Database(database), transactions: transactions}
}

func (m *Mongo) Create(ctx context.Context, coll string, doc interface{}) (string, error) {
	defer metrics.ObserveDBQuery("create", time.Now())

	d, id, err := ToDocument(doc)
	if err != nil {
		return "", err
	}
	if _, err := m.db.Collection(coll).InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: %s", ErrDuplicate, coll)
		}
		return "", fmt.Errorf("docstore: insert %s: %w", coll, err)
	}
	return id, nil
}

func (m *Mongo) Get(ctx context.Context, coll, id string, dest interface{}) error {
	defer metrics.ObserveDBQuery("get", time.Now())

	err := m.db.Collection(coll).FindOne(ctx, bson.M{"_id": id}).Decode(dest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("docstore: get %s/%s: %w", coll, id, err)
	}
	return nil
}

func (m *Mongo) List(ctx context.Context, coll string, q Query, dest interface{}) error {
	defer metrics.ObserveDBQuery("list", time.Now())

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := m.db.Collection(coll).Find(ctx, queryFilter(q), opts)
	if err != nil {
		return fmt.Errorf("docstore: list %s: %w", coll, err)
	}
	if err := cur.All(ctx, dest); err != nil {
		return fmt.Errorf("docstore: list %s: %w", coll, err)
	}
	return nil
}

func (m *Mongo) GetMany(ctx context.Context, coll string, ids []string, dest interface{}) error {
	defer metrics.ObserveDBQuery("get_many", time.Now())

	if ids == nil {
		ids = []string{}
	}
	cur, err := m.db.Collection(coll).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("docstore: get many %s: %w", coll, err)
	}
	if err := cur.All(ctx, dest); err != nil {
		return fmt.Errorf("docstore: get many %s: %w", coll, err)
	}
	return nil
}

func (m *Mongo) Update(ctx context.Context, coll, id string, fields map[string]interface{}) error {
	defer metrics.ObserveDBQuery("update", time.Now())

	return m.updateOne(ctx, coll, id, bson.M{"$set": fields})
}

func (m *Mongo) Delete(ctx context.Context, coll, id string) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	if _, err := m.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("docstore: delete %s/%s: %w", coll, id, err)
	}
	return nil
}

func (m *Mongo) DeleteWhere(ctx context.Context, coll, field string, value interface{}) (int64, error) {
	defer metrics.ObserveDBQuery("delete_where", time.Now())

	res, err := m.db.Collection(coll).DeleteMany(ctx, bson.M{field: value})
	if err != nil {
		return 0, fmt.Errorf("docstore: delete %s where %s: %w", coll, field, err)
	}
	return res.DeletedCount, nil
}

func (m *Mongo) AddToSet(ctx context.Context, coll, id, field string, value interface{}) error {
	defer metrics.ObserveDBQuery("add_to_set", time.Now())

	return m.updateOne(ctx, coll, id, bson.M{"$addToSet": bson.M{field: value}})
}

func (m *Mongo) RemoveFromSet(ctx context.Context, coll, id, field string, value interface{}) error {
	defer metrics.ObserveDBQuery("remove_from_set", time.Now())

	return m.updateOne(ctx, coll, id, bson.M{"$pull": bson.M{field: value}})
}

func (m *Mongo) updateOne(ctx context.Context, coll, id string, update bson.M) error {
	res, err := m.db.Collection(coll).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s/%s", ErrDuplicate, coll, id)
		}
		return fmt.Errorf("docstore: update %s/%s: %w", coll, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RunInTransaction needs a replica set. Without transactions enabled fn
// runs directly and a failure part way through is not rolled back.
func (m *Mongo) RunInTransaction(ctx context.Context, fn TxFunc) error {
	if !m.transactions {
		return fn(ctx)
	}

	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("docstore: start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (m *Mongo) EnsureIndex(ctx context.Context, coll string, idx IndexSpec) error {
	opts := options.Index().SetUnique(idx.Unique)
	if idx.Name != "" {
		opts.SetName(idx.Name)
	}
	_, err := m.db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    indexKeys(idx.Keys),
		Options: opts,
	})
	if err != nil {
		return fmt.Errorf("docstore: index %s.%s: %w", coll, idx.Name, err)
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
