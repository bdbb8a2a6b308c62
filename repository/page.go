package repository

import (
	"fmt"
	"math"

	serverError "github.com/supakorn-kn/go-ehr/errors"
)

type PageDirection string

const (
	NextPage     PageDirection = "next"
	PreviousPage PageDirection = "previous"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// maxOffset keeps offset+2*size within int for any size up to MaxPageSize.
const maxOffset = math.MaxInt - 2*MaxPageSize

// PageRequest describes a result window either by page number and size or by
// one of the opaque cursors a previous Page returned. Every field is
// optional and a request with none of them set is unpaged.
type PageRequest struct {
	Number         *int          `json:"number,omitempty"`
	Size           *int          `json:"size,omitempty"`
	NextCursor     *string       `json:"nextCursor,omitempty"`
	PreviousCursor *string       `json:"previousCursor,omitempty"`
	Direction      PageDirection `json:"direction,omitempty"`
}

var Unpaged = PageRequest{}

func PageOf(number, size int) PageRequest {
	return PageRequest{Number: &number, Size: &size}
}

func (r PageRequest) IsUnpaged() bool {
	return r.Number == nil && r.Size == nil && r.NextCursor == nil && r.PreviousCursor == nil && r.Direction == ""
}

// cursor picks the cursor the direction refers to. Without a direction the
// next cursor wins over the previous one.
func (r PageRequest) cursor() *string {

	switch r.Direction {
	case NextPage:
		return r.NextCursor
	case PreviousPage:
		return r.PreviousCursor
	}

	if r.NextCursor != nil {
		return r.NextCursor
	}

	return r.PreviousCursor
}

// window resolves the request into an offset and a size.
func (r PageRequest) window(defaultSize int) (offset int, size int, err error) {

	size = defaultSize
	if r.Size != nil {
		size = *r.Size
	}

	if size < 1 || size > MaxPageSize {
		return 0, 0, serverError.RequestInvalidError.New(fmt.Sprintf("page size must be between 1 and %d", MaxPageSize))
	}

	if cursor := r.cursor(); cursor != nil {

		offset, err = decodeCursor(*cursor)
		if err != nil {
			return 0, 0, err
		}

		if offset > maxOffset {
			return 0, 0, serverError.PageCursorInvalidError.New("offset is out of range")
		}

		return offset, size, nil
	}

	if r.Number != nil {

		if *r.Number < 1 || *r.Number-1 > maxOffset/size {
			return 0, 0, serverError.CurrentPageInvalidError.New()
		}

		offset = (*r.Number - 1) * size
	}

	return offset, size, nil
}

type Page[T any] struct {
	Items          []T          `json:"items"`
	HasNext        bool         `json:"hasNext"`
	HasPrevious    bool         `json:"hasPrevious"`
	Request        *PageRequest `json:"request"`
	NextCursor     *string      `json:"nextCursor,omitempty"`
	PreviousCursor *string      `json:"previousCursor,omitempty"`
}

// NewPage validates every item before looking at anything else and fails
// with PageContentInvalidError naming the first item that does not conform.
func NewPage[T any](items []T, hasNext bool, hasPrevious bool, req *PageRequest) (Page[T], error) {

	for i, item := range items {
		if err := validate.Struct(item); err != nil {
			return Page[T]{}, serverError.PageContentInvalidError.New(i, err)
		}
	}

	if req != nil && req.Number != nil && *req.Number < 1 {
		return Page[T]{}, serverError.CurrentPageInvalidError.New()
	}

	return Page[T]{
		Items:       append(make([]T, 0, len(items)), items...),
		HasNext:     hasNext,
		HasPrevious: hasPrevious,
		Request:     req,
	}, nil
}
