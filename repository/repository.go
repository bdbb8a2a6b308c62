package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	serverError "github.com/supakorn-kn/go-ehr/errors"
	"github.com/supakorn-kn/go-ehr/storage"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	IDKey        = "id"
	CreatedAtKey = "createdAt"
	UpdatedAtKey = "updatedAt"

	// DefaultSaveAttempts bounds how often Save regenerates identifiers after
	// a unique index rejected the insert.
	DefaultSaveAttempts = 3
)

// IDIndex is created on every collection.
var IDIndex = storage.Index{Name: "id_1", Keys: bson.D{{Key: IDKey, Value: 1}}, Unique: true}

type Repository[T any] struct {
	coll storage.Collection

	search       SearchBuilder
	beforeSave   func(data *T)
	indexes      []storage.Index
	clock        *Clock
	pageSize     int
	saveAttempts int
}

type Option[T any] func(r *Repository[T])

// WithSearch enables Search using builder.
func WithSearch[T any](builder SearchBuilder) Option[T] {
	return func(r *Repository[T]) { r.search = builder }
}

// WithBeforeSave runs hook on the entity data before every insert attempt.
func WithBeforeSave[T any](hook func(data *T)) Option[T] {
	return func(r *Repository[T]) { r.beforeSave = hook }
}

func WithIndexes[T any](indexes ...storage.Index) Option[T] {
	return func(r *Repository[T]) { r.indexes = append(r.indexes, indexes...) }
}

func WithClock[T any](now func() time.Time) Option[T] {
	return func(r *Repository[T]) { r.clock = NewClock(now) }
}

func WithPageSize[T any](size int) Option[T] {
	return func(r *Repository[T]) { r.pageSize = size }
}

func WithSaveAttempts[T any](attempts int) Option[T] {
	return func(r *Repository[T]) { r.saveAttempts = attempts }
}

func New[T any](db storage.Database, collection string, opts ...Option[T]) (*Repository[T], error) {

	if db == nil {
		return nil, fmt.Errorf("repository %s needs a storage handle", collection)
	}

	if collection == "" {
		return nil, fmt.Errorf("repository needs a collection name")
	}

	r := &Repository[T]{
		coll:         db.Collection(collection),
		indexes:      []storage.Index{IDIndex},
		clock:        NewClock(nil),
		pageSize:     DefaultPageSize,
		saveAttempts: DefaultSaveAttempts,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.pageSize < 1 || r.pageSize > MaxPageSize {
		return nil, fmt.Errorf("page size of repository %s must be between 1 and %d", collection, MaxPageSize)
	}

	if r.saveAttempts < 1 {
		return nil, fmt.Errorf("save attempts of repository %s can be only positive integer", collection)
	}

	return r, nil
}

func (r *Repository[T]) Name() string {
	return r.coll.Name()
}

func (r *Repository[T]) Indexes() []storage.Index {
	return append([]storage.Index(nil), r.indexes...)
}

// EnsureIndexes creates the configured indexes. Existing indexes are kept, so
// it is safe to call on every start.
func (r *Repository[T]) EnsureIndexes(ctx context.Context) error {

	for _, index := range r.indexes {
		if err := r.coll.EnsureIndex(ctx, index); err != nil {
			return fmt.Errorf("ensure index %s on %s: %w", index.Name, r.coll.Name(), err)
		}
	}

	return nil
}

// Find returns nil without an error when no record has the id.
func (r *Repository[T]) Find(ctx context.Context, id string) (*Record[T], error) {

	raw, err := r.coll.FindOne(ctx, idFilter(id))
	if err != nil {

		if storage.IsNoDocuments(err) {
			return nil, nil
		}

		return nil, err
	}

	var record Record[T]
	if err := bson.Unmarshal(raw, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

// FindAll returns every record ordered by sort. Sort fields refer to entity
// fields.
func (r *Repository[T]) FindAll(ctx context.Context, sort Sort) (*Results[T], error) {

	cur, err := r.coll.Find(ctx, bson.D{}, storage.FindOptions{Sort: sort.Bson(DataNamespace)})
	if err != nil {
		return nil, err
	}

	return newResults[T](cur), nil
}

func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}

// Query returns every record matching criteria.
func (r *Repository[T]) Query(ctx context.Context, criteria Criteria) ([]Record[T], error) {

	filter := criteria.Filter
	if filter == nil {
		filter = bson.D{}
	}

	cur, err := r.coll.Find(ctx, filter, storage.FindOptions{Sort: criteria.Sort})
	if err != nil {
		return nil, err
	}

	return newResults[T](cur).All(ctx)
}

func (r *Repository[T]) Search(ctx context.Context, container SearchContainer) ([]Record[T], error) {

	if r.search == nil {
		return nil, serverError.SearchUnsupportedError.New(r.coll.Name())
	}

	return r.Query(ctx, r.search.Build(container))
}

// FindAllBy returns the records whose entity field equals value.
func (r *Repository[T]) FindAllBy(ctx context.Context, field string, value any) ([]Record[T], error) {
	return r.Query(ctx, Criteria{Filter: bson.D{{Key: DataField(field), Value: value}}})
}

// FindPage returns one window of records ordered by sort. An unpaged request
// returns every record.
func (r *Repository[T]) FindPage(ctx context.Context, sort Sort, req PageRequest) (Page[Record[T]], error) {

	if req.IsUnpaged() {

		results, err := r.FindAll(ctx, sort)
		if err != nil {
			return Page[Record[T]]{}, err
		}

		records, err := results.All(ctx)
		if err != nil {
			return Page[Record[T]]{}, err
		}

		return NewPage(records, false, false, nil)
	}

	offset, size, err := req.window(r.pageSize)
	if err != nil {
		return Page[Record[T]]{}, err
	}

	opts := storage.FindOptions{
		Sort:  sort.Bson(DataNamespace),
		Skip:  int64(offset),
		Limit: int64(size + 1),
	}

	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return Page[Record[T]]{}, err
	}

	records, err := newResults[T](cur).All(ctx)
	if err != nil {
		return Page[Record[T]]{}, err
	}

	hasNext := len(records) > size
	if hasNext {
		records = records[:size]
	}

	page, err := NewPage(records, hasNext, offset > 0, &req)
	if err != nil {
		return Page[Record[T]]{}, err
	}

	if page.HasNext {
		next := encodeCursor(offset + size)
		page.NextCursor = &next
	}

	if page.HasPrevious {
		previous := encodeCursor(max(offset-size, 0))
		page.PreviousCursor = &previous
	}

	return page, nil
}

// Save stores record.Data as a new record under a fresh id and returns it as
// stored. The id and timestamps of record are ignored. When a unique index
// rejects the insert the id is regenerated and the pre-save hook runs again
// on the original data.
func (r *Repository[T]) Save(ctx context.Context, record Record[T]) (*Record[T], error) {

	var lastErr error
	for attempt := 0; attempt < r.saveAttempts; attempt++ {

		data := record.Data
		if r.beforeSave != nil {
			r.beforeSave(&data)
		}

		now := r.clock.Now()
		created := Record[T]{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now, Data: data}

		err := r.coll.InsertOne(ctx, created)
		if err == nil {
			return r.reload(ctx, created.ID)
		}

		if !storage.IsDuplicateKey(err) {
			return nil, err
		}

		lastErr = err
	}

	return nil, serverError.DuplicatedObjectIDError.New(r.saveAttempts, lastErr)
}

// SaveOrUpdate saves a record without id. Otherwise it overwrites the entity
// fields present in record.Data and bumps updatedAt, upserting under the
// given id. Entity fields named in cleared that record.Data leaves empty are
// removed, which resets them to their zero value. When the id matched
// nothing the record is then saved again through Save, so the caller gets
// back a record with a new id while the upserted document stays behind.
func (r *Repository[T]) SaveOrUpdate(ctx context.Context, record Record[T], cleared ...string) (*Record[T], error) {

	if record.ID == "" {
		return r.Save(ctx, record)
	}

	fields, err := dataFields(record.Data)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	set := append(bson.D{{Key: UpdatedAtKey, Value: now}}, fields...)
	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$setOnInsert", Value: bson.D{{Key: CreatedAtKey, Value: now}}},
	}

	if unset := clearedFields(fields, cleared); len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}

	result, err := r.coll.UpdateOne(ctx, idFilter(record.ID), update, true)
	if err != nil {
		return nil, err
	}

	if result.MatchedCount == 0 {
		return r.Save(ctx, record)
	}

	return r.reload(ctx, record.ID)
}

// Delete removes the record with record.ID if there is one and returns
// record unchanged.
func (r *Repository[T]) Delete(ctx context.Context, record Record[T]) (Record[T], error) {

	if _, err := r.coll.DeleteOne(ctx, idFilter(record.ID)); err != nil {
		return record, err
	}

	return record, nil
}

func (r *Repository[T]) reload(ctx context.Context, id string) (*Record[T], error) {

	record, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if record == nil {
		return nil, serverError.ObjectIDNotFoundError.New(id)
	}

	return record, nil
}

func idFilter(id string) bson.D {
	return bson.D{{Key: IDKey, Value: id}}
}

// dataFields flattens the marshaled entity into data.<field> assignments,
// so fields omitted from data are left untouched by $set.
func dataFields(data any) (bson.D, error) {

	b, err := bson.Marshal(data)
	if err != nil {
		return nil, err
	}

	var parsedBson bson.D
	if err := bson.Unmarshal(b, &parsedBson); err != nil {
		return nil, err
	}

	fields := make(bson.D, 0, len(parsedBson))
	for _, keyValue := range parsedBson {
		fields = append(fields, bson.E{Key: DataField(keyValue.Key), Value: keyValue.Value})
	}

	return fields, nil
}

// clearedFields lists the data.<field> paths to unset: the names in cleared
// that are not already being set. Nested paths and operators are skipped.
func clearedFields(set bson.D, cleared []string) bson.D {

	var unset bson.D
	for _, name := range cleared {

		if name == "" || strings.ContainsAny(name, ".$") {
			continue
		}

		key := DataField(name)
		isKey := func(e bson.E) bool { return e.Key == key }
		if slices.ContainsFunc(set, isKey) || slices.ContainsFunc(unset, isKey) {
			continue
		}

		unset = append(unset, bson.E{Key: key, Value: ""})
	}

	return unset
}
