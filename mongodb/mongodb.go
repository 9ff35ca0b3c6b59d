// Package mongodb stores the catalog, and optionally the accounts, in MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MoviesCollection        = "movies"
	ActorsCollection        = "actors"
	ProducersCollection     = "producers"
	UsersCollection         = "users"
	LoginAttemptsCollection = "login_attempts"
)

type Options struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// NewDatabase connects and pings the server.
func NewDatabase(ctx context.Context, opts Options) (*mongo.Database, error) {
	if strings.TrimSpace(opts.Database) == "" {
		return nil, errors.New("mongodb: database name is required")
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	return client.Database(opts.Database), nil
}

// EnsureIndexes creates the indexes every repository relies on. It is safe to
// call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	catalogIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{
			Keys:    bson.D{{Key: "externalId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	for _, name := range []string{MoviesCollection, ActorsCollection, ProducersCollection} {
		models := catalogIndexes
		if name == MoviesCollection {
			models = append(models, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}})
		}
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongodb: create %s indexes: %w", name, err)
		}
	}

	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongodb: create users indexes: %w", err)
	}

	return nil
}

// nameFilter matches a case-insensitive substring of name. search is matched
// literally.
func nameFilter(search string) bson.M {
	search = strings.TrimSpace(search)
	if search == "" {
		return bson.M{}
	}
	return bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}}
}

// idFilter selects by ObjectID when id is a valid hex id and by provider id
// otherwise.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"externalId": id}
}

func page(offset, limit int) *options.FindOptions {
	return options.Find().SetSkip(int64(max(offset, 0))).SetLimit(int64(max(limit, 0)))
}
