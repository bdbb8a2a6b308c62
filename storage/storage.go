// Package storage declares the primitives a document store must offer for the
// repositories to run on it: point lookup, predicate scan, count, insert,
// upsert-capable update, delete by key and index creation.
package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNoDocuments is returned by FindOne when nothing matches the filter.
var ErrNoDocuments = mongo.ErrNoDocuments

type FindOptions struct {
	Sort  bson.D
	Skip  int64
	Limit int64
}

type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedCount int64
}

type Index struct {
	Name   string
	Keys   bson.D
	Unique bool
	Sparse bool
}

// Cursor is the subset of *mongo.Cursor the repositories iterate with.
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(val any) error
	Err() error
	Close(ctx context.Context) error
}

type Collection interface {
	Name() string
	FindOne(ctx context.Context, filter any) (bson.Raw, error)
	Find(ctx context.Context, filter any, opts FindOptions) (Cursor, error)
	CountDocuments(ctx context.Context, filter any) (int64, error)
	InsertOne(ctx context.Context, doc any) error
	UpdateOne(ctx context.Context, filter any, update any, upsert bool) (UpdateResult, error)
	DeleteOne(ctx context.Context, filter any) (int64, error)
	EnsureIndex(ctx context.Context, index Index) error
}

// Database hands out collections by name from a single shared handle.
type Database interface {
	Collection(name string) Collection
}

// IsNoDocuments reports whether err means the lookup matched nothing.
func IsNoDocuments(err error) bool {
	return errors.Is(err, ErrNoDocuments)
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
