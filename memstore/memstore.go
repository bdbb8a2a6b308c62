// Package memstore is an in-process storage.Database. It evaluates the subset
// of MongoDB filter, update and sort documents the repositories produce, and
// enforces unique indexes with the same duplicate key error the server returns.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/supakorn-kn/go-ehr/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const duplicateKeyCode = 11000

type Store struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

func New() *Store {
	return &Store{collections: map[string]*Collection{}}
}

func (s *Store) Collection(name string) storage.Collection {

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[name]
	if !ok {
		coll = &Collection{name: name}
		s.collections[name] = coll
	}

	return coll
}

// Collection keeps documents in insertion order, which is the natural order
// scans return when no sort is given.
type Collection struct {
	name string

	mu      sync.RWMutex
	docs    []bson.Raw
	indexes []storage.Index
}

func (c *Collection) Name() string {
	return c.name
}

// Indexes returns the indexes created so far.
func (c *Collection) Indexes() []storage.Index {

	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]storage.Index(nil), c.indexes...)
}

func (c *Collection) FindOne(ctx context.Context, filter any) (bson.Raw, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cond, err := toRaw(filter)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, doc := range c.docs {

		ok, err := matches(doc, cond)
		if err != nil {
			return nil, err
		}

		if ok {
			return clone(doc), nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (c *Collection) Find(ctx context.Context, filter any, opts storage.FindOptions) (storage.Cursor, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cond, err := toRaw(filter)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	found, err := c.filter(cond)
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if len(opts.Sort) > 0 {
		if err := sortDocs(found, opts.Sort); err != nil {
			return nil, err
		}
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(found)) {
			found = nil
		} else {
			found = found[opts.Skip:]
		}
	}

	if opts.Limit > 0 && opts.Limit < int64(len(found)) {
		found = found[:opts.Limit]
	}

	return &cursor{docs: found}, nil
}

func (c *Collection) CountDocuments(ctx context.Context, filter any) (int64, error) {

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cond, err := toRaw(filter)
	if err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	found, err := c.filter(cond)
	if err != nil {
		return 0, err
	}

	return int64(len(found)), nil
}

func (c *Collection) InsertOne(ctx context.Context, doc any) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := toRaw(doc)
	if err != nil {
		return err
	}

	raw, err = withObjectID(raw)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnique(raw, -1); err != nil {
		return err
	}

	c.docs = append(c.docs, raw)
	return nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter any, update any, upsert bool) (storage.UpdateResult, error) {

	if err := ctx.Err(); err != nil {
		return storage.UpdateResult{}, err
	}

	cond, err := toRaw(filter)
	if err != nil {
		return storage.UpdateResult{}, err
	}

	changes, err := toRaw(update)
	if err != nil {
		return storage.UpdateResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {

		ok, err := matches(doc, cond)
		if err != nil {
			return storage.UpdateResult{}, err
		}

		if !ok {
			continue
		}

		updated, err := applyUpdate(doc, changes, false)
		if err != nil {
			return storage.UpdateResult{}, err
		}

		if err := c.checkUnique(updated, i); err != nil {
			return storage.UpdateResult{}, err
		}

		result := storage.UpdateResult{MatchedCount: 1}
		if !bytesEqual(doc, updated) {
			result.ModifiedCount = 1
		}

		c.docs[i] = updated
		return result, nil
	}

	if !upsert {
		return storage.UpdateResult{}, nil
	}

	seed, err := upsertSeed(cond)
	if err != nil {
		return storage.UpdateResult{}, err
	}

	inserted, err := applyUpdate(seed, changes, true)
	if err != nil {
		return storage.UpdateResult{}, err
	}

	inserted, err = withObjectID(inserted)
	if err != nil {
		return storage.UpdateResult{}, err
	}

	if err := c.checkUnique(inserted, -1); err != nil {
		return storage.UpdateResult{}, err
	}

	c.docs = append(c.docs, inserted)
	return storage.UpdateResult{UpsertedCount: 1}, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter any) (int64, error) {

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cond, err := toRaw(filter)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {

		ok, err := matches(doc, cond)
		if err != nil {
			return 0, err
		}

		if ok {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}

	return 0, nil
}

// EnsureIndex registers the index unless one with the same name exists. A
// unique index is refused when the stored documents already violate it.
func (c *Collection) EnsureIndex(ctx context.Context, index storage.Index) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	if index.Name == "" || len(index.Keys) == 0 {
		return fmt.Errorf("index on collection %s needs a name and at least one key", c.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.indexes {
		if existing.Name == index.Name {
			return nil
		}
	}

	if index.Unique {
		for i, doc := range c.docs {
			if err := c.checkIndex(index, doc, i); err != nil {
				return err
			}
		}
	}

	c.indexes = append(c.indexes, index)
	return nil
}

func (c *Collection) filter(cond bson.Raw) ([]bson.Raw, error) {

	var found []bson.Raw
	for _, doc := range c.docs {

		ok, err := matches(doc, cond)
		if err != nil {
			return nil, err
		}

		if ok {
			found = append(found, clone(doc))
		}
	}

	return found, nil
}

// checkUnique validates doc against every unique index, ignoring the stored
// document at position skip.
func (c *Collection) checkUnique(doc bson.Raw, skip int) error {

	for _, index := range c.indexes {

		if !index.Unique {
			continue
		}

		if err := c.checkIndex(index, doc, skip); err != nil {
			return err
		}
	}

	return nil
}

func (c *Collection) checkIndex(index storage.Index, doc bson.Raw, skip int) error {

	key, present := indexKey(doc, index)
	if index.Sparse && !present {
		return nil
	}

	for i, other := range c.docs {

		if i == skip {
			continue
		}

		otherKey, otherPresent := indexKey(other, index)
		if index.Sparse && !otherPresent {
			continue
		}

		if sameKey(key, otherKey) {
			return duplicateKeyError(c.name, index)
		}
	}

	return nil
}

func indexKey(doc bson.Raw, index storage.Index) ([]bson.RawValue, bool) {

	present := false
	key := make([]bson.RawValue, 0, len(index.Keys))
	for _, field := range index.Keys {

		values := lookup(doc, field.Key)
		if len(values) == 0 {
			key = append(key, nullValue)
			continue
		}

		present = true
		key = append(key, values[0])
	}

	return key, present
}

func sameKey(a, b []bson.RawValue) bool {

	for i := range a {
		if compare(a[i], b[i]) != 0 {
			return false
		}
	}

	return true
}

func duplicateKeyError(collection string, index storage.Index) error {

	fields := make([]string, 0, len(index.Keys))
	for _, field := range index.Keys {
		fields = append(fields, field.Key)
	}

	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{
			Code:    duplicateKeyCode,
			Message: fmt.Sprintf("E11000 duplicate key error collection: %s index: %s dup key: %s", collection, index.Name, strings.Join(fields, ", ")),
		}},
	}
}

func toRaw(v any) (bson.Raw, error) {

	switch t := v.(type) {
	case nil:
		return bson.Raw(emptyDocument), nil
	case bson.Raw:
		return clone(t), nil
	default:
		return bson.Marshal(v)
	}
}

// withObjectID prepends an _id the way the server does for documents without one.
func withObjectID(doc bson.Raw) (bson.Raw, error) {

	if _, err := doc.LookupErr("_id"); err == nil {
		return doc, nil
	}

	var fields bson.D
	if err := bson.Unmarshal(doc, &fields); err != nil {
		return nil, err
	}

	fields = append(bson.D{{Key: "_id", Value: primitive.NewObjectID()}}, fields...)
	return bson.Marshal(fields)
}

func clone(doc bson.Raw) bson.Raw {
	return append(bson.Raw(nil), doc...)
}

func bytesEqual(a, b bson.Raw) bool {
	return string(a) == string(b)
}

// emptyDocument is the encoding of {}.
var emptyDocument = []byte{5, 0, 0, 0, 0}
