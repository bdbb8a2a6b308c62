package mongodb

import (
	"context"
	"slices"

	"github.com/supakorn-kn/go-ehr/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type collection struct {
	conn *MongoDBConn
	name string
}

func (c *collection) Name() string {
	return c.name
}

func (c *collection) coll(ctx context.Context) (*mongo.Collection, error) {

	if err := c.conn.Wait(ctx); err != nil {
		return nil, err
	}

	return c.conn.GetDatabase().Collection(c.name), nil
}

func (c *collection) FindOne(ctx context.Context, filter any) (bson.Raw, error) {

	coll, err := c.coll(ctx)
	if err != nil {
		return nil, err
	}

	return coll.FindOne(ctx, filter).DecodeBytes()
}

func (c *collection) Find(ctx context.Context, filter any, opts storage.FindOptions) (storage.Cursor, error) {

	coll, err := c.coll(ctx)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find()
	if len(opts.Sort) > 0 {
		findOptions.SetSort(opts.Sort)
	}

	if opts.Skip > 0 {
		findOptions.SetSkip(opts.Skip)
	}

	if opts.Limit > 0 {
		findOptions.SetLimit(opts.Limit)
	}

	return coll.Find(ctx, filter, findOptions)
}

func (c *collection) CountDocuments(ctx context.Context, filter any) (int64, error) {

	coll, err := c.coll(ctx)
	if err != nil {
		return 0, err
	}

	return coll.CountDocuments(ctx, filter)
}

func (c *collection) InsertOne(ctx context.Context, doc any) error {

	coll, err := c.coll(ctx)
	if err != nil {
		return err
	}

	_, err = coll.InsertOne(ctx, doc)
	return err
}

func (c *collection) UpdateOne(ctx context.Context, filter any, update any, upsert bool) (storage.UpdateResult, error) {

	coll, err := c.coll(ctx)
	if err != nil {
		return storage.UpdateResult{}, err
	}

	result, err := coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(upsert))
	if err != nil {
		return storage.UpdateResult{}, err
	}

	return storage.UpdateResult{
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
		UpsertedCount: result.UpsertedCount,
	}, nil
}

func (c *collection) DeleteOne(ctx context.Context, filter any) (int64, error) {

	coll, err := c.coll(ctx)
	if err != nil {
		return 0, err
	}

	result, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

// EnsureIndex creates the index unless one with the same name already exists.
func (c *collection) EnsureIndex(ctx context.Context, index storage.Index) error {

	coll, err := c.coll(ctx)
	if err != nil {
		return err
	}

	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return err
	}

	var indexes []bson.M
	if err := cur.All(ctx, &indexes); err != nil {
		return err
	}

	contains := slices.ContainsFunc(indexes, func(m bson.M) bool {
		return m["name"] == index.Name
	})

	if contains {
		return nil
	}

	indexModelOptions := options.Index().SetName(index.Name)
	if index.Unique {
		indexModelOptions.SetUnique(true)
	}

	if index.Sparse {
		indexModelOptions.SetSparse(true)
	}

	indexModel := mongo.IndexModel{
		Keys:    index.Keys,
		Options: indexModelOptions,
	}

	_, err = coll.Indexes().CreateOne(ctx, indexModel)
	return err
}
