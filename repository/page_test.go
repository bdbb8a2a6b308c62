package repository

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/supakorn-kn/go-ehr/errors"
)

func validRecord(id string) Record[item] {

	now := time.Now().UTC()
	return Record[item]{ID: id, CreatedAt: now, UpdatedAt: now, Data: item{Type: "CBC"}}
}

func TestNewPage(t *testing.T) {

	t.Run("Should keep items and flags", func(t *testing.T) {

		req := PageOf(2, 2)
		items := []Record[item]{validRecord("a"), validRecord("b")}

		page, err := NewPage(items, true, true, &req)
		require.NoError(t, err)
		require.Equal(t, items, page.Items)
		require.True(t, page.HasNext)
		require.True(t, page.HasPrevious)
		require.Equal(t, &req, page.Request)
	})

	t.Run("Should return empty items instead of nil", func(t *testing.T) {

		page, err := NewPage[Record[item]](nil, false, false, nil)
		require.NoError(t, err)
		require.NotNil(t, page.Items)
		require.Empty(t, page.Items)
	})

	t.Run("Should reject a non-conforming item before reading the request", func(t *testing.T) {

		invalid := validRecord("")
		req := PageOf(0, 2)

		_, err := NewPage([]Record[item]{validRecord("a"), invalid}, false, false, &req)
		require.ErrorIs(t, err, errors.PageContentInvalidError)
		require.True(t, strings.HasPrefix(err.Error(), "Page item 1 "), err.Error())
	})

	t.Run("Should reject a record without timestamps", func(t *testing.T) {

		_, err := NewPage([]Record[item]{{ID: "a"}}, false, false, nil)
		require.ErrorIs(t, err, errors.PageContentInvalidError)
	})

	t.Run("Should reject items that are not structs", func(t *testing.T) {

		_, err := NewPage([]string{"a"}, false, false, nil)
		require.ErrorIs(t, err, errors.PageContentInvalidError)
	})

	t.Run("Should reject a non-positive page number", func(t *testing.T) {

		req := PageOf(0, 2)

		_, err := NewPage([]Record[item]{validRecord("a")}, false, false, &req)
		require.ErrorIs(t, err, errors.CurrentPageInvalidError)
	})
}

func TestPageRequest(t *testing.T) {

	t.Run("Should be unpaged only without any field", func(t *testing.T) {

		size := 5
		require.True(t, Unpaged.IsUnpaged())
		require.False(t, PageRequest{Size: &size}.IsUnpaged())
		require.False(t, PageRequest{Direction: NextPage}.IsUnpaged())
	})

	t.Run("Should resolve windows", func(t *testing.T) {

		size := 3
		next := encodeCursor(9)
		previous := encodeCursor(3)

		var testCases = map[string]struct {
			Offset  int
			Size    int
			Request PageRequest
		}{
			"default size":     {Offset: 0, Size: 10, Request: PageRequest{Direction: NextPage}},
			"page number":      {Offset: 6, Size: 3, Request: PageOf(3, 3)},
			"next cursor":      {Offset: 9, Size: 3, Request: PageRequest{Size: &size, NextCursor: &next, PreviousCursor: &previous}},
			"previous cursor":  {Offset: 3, Size: 3, Request: PageRequest{Size: &size, NextCursor: &next, PreviousCursor: &previous, Direction: PreviousPage}},
			"cursor over page": {Offset: 9, Size: 3, Request: PageRequest{Number: &size, Size: &size, NextCursor: &next}},
		}

		for name, testCase := range testCases {

			t.Run(name, func(t *testing.T) {

				offset, size, err := testCase.Request.window(DefaultPageSize)
				require.NoError(t, err)
				require.Equal(t, testCase.Offset, offset)
				require.Equal(t, testCase.Size, size)
			})
		}
	})

	t.Run("Should reject a non-positive size", func(t *testing.T) {

		_, _, err := PageOf(1, 0).window(DefaultPageSize)
		require.ErrorIs(t, err, errors.RequestInvalidError)
	})

	t.Run("Should reject a size above the maximum", func(t *testing.T) {

		_, _, err := PageOf(1, MaxPageSize+1).window(DefaultPageSize)
		require.ErrorIs(t, err, errors.RequestInvalidError)

		_, _, err = PageOf(1, math.MaxInt).window(DefaultPageSize)
		require.ErrorIs(t, err, errors.RequestInvalidError)

		_, size, err := PageOf(1, MaxPageSize).window(DefaultPageSize)
		require.NoError(t, err)
		require.Equal(t, MaxPageSize, size)
	})

	t.Run("Should reject a page number whose offset overflows", func(t *testing.T) {

		for _, number := range []int{math.MaxInt, math.MaxInt64/2 + 1, maxOffset/4 + 2} {

			_, _, err := PageOf(number, 4).window(DefaultPageSize)
			require.ErrorIs(t, err, errors.CurrentPageInvalidError, number)
		}

		offset, _, err := PageOf(maxOffset/4+1, 4).window(DefaultPageSize)
		require.NoError(t, err)
		require.Equal(t, maxOffset/4*4, offset)
	})

	t.Run("Should reject a cursor offset out of range", func(t *testing.T) {

		cursor := encodeCursor(math.MaxInt)

		_, _, err := PageRequest{NextCursor: &cursor}.window(DefaultPageSize)
		require.ErrorIs(t, err, errors.PageCursorInvalidError)
	})
}

func TestCursor(t *testing.T) {

	t.Run("Should round trip an offset", func(t *testing.T) {

		offset, err := decodeCursor(encodeCursor(42))
		require.NoError(t, err)
		require.Equal(t, 42, offset)
	})

	t.Run("Should reject malformed cursors", func(t *testing.T) {

		for _, cursor := range []string{"%%%", encodeCursor(-1), "bm90IGpzb24"} {

			_, err := decodeCursor(cursor)
			require.ErrorIs(t, err, errors.PageCursorInvalidError, cursor)
		}
	})
}
