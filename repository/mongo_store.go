package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoStore keeps each collection in a MongoDB collection. Ids are stored in _id.
// Batches need a replica set since they commit inside a transaction.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo connects to MongoDB using the provided URI and database name.
func ConnectMongo(ctx context.Context, mongoURL, dbName string) (*MongoStore, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(timeoutCtx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(timeoutCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	zap.L().Info("Connected to MongoDB", zap.String("database", dbName))
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects from MongoDB.
func (m *MongoStore) Close(ctx context.Context) error {
	disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := m.client.Disconnect(disconnectCtx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}

func (m *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one failed: %w", err)
	}
	return fromBSON(raw)
}

func (m *MongoStore) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	cursor, err := m.db.Collection(collection).Find(ctx, mongoFilter(q.Filters))
	if err != nil {
		return nil, fmt.Errorf("find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		doc, err := fromBSON(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor failed: %w", err)
	}
	// Timestamps are stored as RFC3339 strings, which do not sort lexically
	// once fractional seconds vary in width, so ordering happens here.
	return applyQuery(docs, q), nil
}

func (m *MongoStore) Count(ctx context.Context, collection string, filters ...Filter) (int, error) {
	n, err := m.db.Collection(collection).CountDocuments(ctx, mongoFilter(filters))
	if err != nil {
		return 0, fmt.Errorf("count documents failed: %w", err)
	}
	return int(n), nil
}

func (m *MongoStore) Create(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.NewString()
	if _, err := m.db.Collection(collection).InsertOne(ctx, toBSON(doc, id)); err != nil {
		return "", fmt.Errorf("insert failed: %w", err)
	}
	return id, nil
}

func (m *MongoStore) Update(ctx context.Context, collection, id string, fields Document) error {
	return updateOne(ctx, m.db.Collection(collection), id, fields)
}

func (m *MongoStore) Delete(ctx context.Context, collection, id string) error {
	return deleteOne(ctx, m.db.Collection(collection), id)
}

func (m *MongoStore) Batch() Batch {
	return &mongoBatch{store: m}
}

type mongoBatch struct {
	store *MongoStore
	ops   []func(ctx context.Context) error
}

func (b *mongoBatch) Update(collection, id string, fields Document) {
	coll := b.store.db.Collection(collection)
	b.ops = append(b.ops, func(ctx context.Context) error {
		return updateOne(ctx, coll, id, fields)
	})
}

func (b *mongoBatch) Delete(collection, id string) {
	coll := b.store.db.Collection(collection)
	b.ops = append(b.ops, func(ctx context.Context) error {
		return deleteOne(ctx, coll, id)
	})
}

// Commit runs every operation in one session transaction. Any failure aborts it.
func (b *mongoBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	session, err := b.store.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, op := range b.ops {
			if err := op(sc); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

func updateOne(ctx context.Context, coll *mongo.Collection, id string, fields Document) error {
	update := setUpdate(fields)
	if update == nil {
		return nil
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	return matchedOrNotFound(res.MatchedCount)
}

func deleteOne(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return matchedOrNotFound(res.DeletedCount)
}

// matchedOrNotFound turns a zero matched or deleted count into ErrNotFound.
func matchedOrNotFound(n int64) error {
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// setUpdate builds the $set document for fields, or nil when only the id is given.
func setUpdate(fields Document) bson.M {
	set := clone(fields)
	delete(set, "id")
	if len(set) == 0 {
		return nil
	}
	return bson.M{"$set": bson.M(set)}
}

// toBSON stores the document under id as _id. Any id field in doc is dropped.
func toBSON(doc Document, id string) bson.M {
	item := clone(doc)
	delete(item, "id")
	item["_id"] = id
	return bson.M(item)
}

// mongoFilter maps equality filters onto a query document. Dotted paths and
// null matching (null or missing) are native to MongoDB.
func mongoFilter(filters []Filter) bson.M {
	out := bson.M{}
	for _, f := range filters {
		out[f.Field] = f.Value
	}
	return out
}

func fromBSON(raw bson.M) (Document, error) {
	doc := Document(raw)
	if id, ok := raw["_id"]; ok {
		doc["id"] = id
		delete(doc, "_id")
	}
	return normalize(doc)
}
