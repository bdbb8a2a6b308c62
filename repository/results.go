package repository

import (
	"context"

	"github.com/supakorn-kn/go-ehr/storage"
)

// Results is a one-shot iterator over the records of a query.
type Results[T any] struct {
	cur     storage.Cursor
	current Record[T]
	err     error
}

func newResults[T any](cur storage.Cursor) *Results[T] {
	return &Results[T]{cur: cur}
}

func (r *Results[T]) Next(ctx context.Context) bool {

	if r.err != nil || !r.cur.Next(ctx) {
		return false
	}

	var record Record[T]
	if err := r.cur.Decode(&record); err != nil {
		r.err = err
		return false
	}

	r.current = record
	return true
}

func (r *Results[T]) Record() Record[T] {
	return r.current
}

func (r *Results[T]) Err() error {

	if r.err != nil {
		return r.err
	}

	return r.cur.Err()
}

func (r *Results[T]) Close(ctx context.Context) error {
	return r.cur.Close(ctx)
}

// All drains and closes the iterator.
func (r *Results[T]) All(ctx context.Context) ([]Record[T], error) {

	defer r.Close(ctx)

	records := []Record[T]{}
	for r.Next(ctx) {
		records = append(records, r.Record())
	}

	if err := r.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
