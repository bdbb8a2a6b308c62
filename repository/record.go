// Package repository provides a generic CRUD, search, sort and pagination
// contract over one named collection of records. Entity specific behavior is
// injected as a SearchBuilder and a pre-save hook.
package repository

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Record is the stored shape of every entity: {id, createdAt, updatedAt, data}.
type Record[T any] struct {
	ID        string    `json:"id" bson:"id" validate:"required"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" validate:"required"`
	Data      T         `json:"data" bson:"data"`
}

func NewRecord[T any](data T) Record[T] {
	return Record[T]{Data: data}
}

func (r Record[T]) GetID() string {
	return r.ID
}
