package apis

import (
	"context"

	"github.com/supakorn-kn/go-ehr/errors"
	"github.com/supakorn-kn/go-ehr/repository"
)

type CRUDResponse struct {
	Result any              `json:"result,omitempty"`
	Error  errors.BaseError `json:"error,omitempty"`
}

// Repository is the part of a repository the CRUD routes call.
type Repository[T any] interface {
	Find(ctx context.Context, id string) (*repository.Record[T], error)
	FindPage(ctx context.Context, sort repository.Sort, req repository.PageRequest) (repository.Page[repository.Record[T]], error)
	Count(ctx context.Context) (int64, error)
	Search(ctx context.Context, container repository.SearchContainer) ([]repository.Record[T], error)
	Save(ctx context.Context, record repository.Record[T]) (*repository.Record[T], error)
	SaveOrUpdate(ctx context.Context, record repository.Record[T], cleared ...string) (*repository.Record[T], error)
	Delete(ctx context.Context, record repository.Record[T]) (repository.Record[T], error)
}

var OKResponse = CRUDResponse{Result: map[string]any{"status": "OK"}}

type CountResult struct {
	Count int64 `json:"count"`
}
