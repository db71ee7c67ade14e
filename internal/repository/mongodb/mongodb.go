// Package mongodb implements the repository interfaces on MongoDB.
//
// COLLECTIONS:
//
//	users  {_id ObjectID, githubLogin (unique), name, avatar, githubToken, createdAt, updatedAt}
//	photos {_id ObjectID, id, name, description, category, userID, created}
//	tags   {_id ObjectID, photoID, userID}
//
// The driver's _id never leaves this package. Photos carry a separate public
// "id" string: seeded photos keep their "1", "2", "3" and new photos get the
// hex form of their ObjectID. Documents written by other tools may lack the
// public field, so toModel falls back to the _id hex.
//
// ObjectIDs start with a timestamp followed by a per-process counter, so
// sorting on _id gives insertion order for documents written by this server.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/photoshare-api/internal/repository"
)

const (
	usersCollection  = "users"
	photosCollection = "photos"
	tagsCollection   = "tags"
)

// byInsertion sorts a find by _id ascending.
var byInsertion = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

// DB wraps a mongo database handle.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to uri, verifies the connection and ensures indexes exist.
func New(ctx context.Context, uri, database string) (*DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connecting: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb: pinging: %w", err)
	}

	db := &DB{client: client, db: client.Database(database)}
	if err := db.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return db, nil
}

// FromDatabase wraps an already connected database. Close is then a no-op;
// the owner of the client disconnects it.
func FromDatabase(database *mongo.Database) *DB {
	return &DB{db: database}
}

func (db *DB) ensureIndexes(ctx context.Context) error {
	_, err := db.db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "githubLogin", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "githubToken", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongodb: creating user indexes: %w", err)
	}

	_, err = db.db.Collection(photosCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}},
		{Keys: bson.D{{Key: "userID", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongodb: creating photo indexes: %w", err)
	}

	_, err = db.db.Collection(tagsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "photoID", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("mongodb: creating tag index: %w", err)
	}
	return nil
}

// Close disconnects the client if this DB opened it.
func (db *DB) Close() error {
	if db.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.client.Disconnect(ctx)
}

// Users returns the users collection.
func (db *DB) Users() *UserCollection {
	return &UserCollection{coll: db.db.Collection(usersCollection)}
}

// Photos returns the photos collection.
func (db *DB) Photos() *PhotoCollection {
	return &PhotoCollection{coll: db.db.Collection(photosCollection)}
}

// Tags returns the tags collection.
func (db *DB) Tags() *TagCollection {
	return &TagCollection{coll: db.db.Collection(tagsCollection)}
}

// Store bundles the collections for the service layer.
func (db *DB) Store() repository.Store {
	return repository.Store{
		Users:  db.Users(),
		Photos: db.Photos(),
		Tags:   db.Tags(),
	}
}
