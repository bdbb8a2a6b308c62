package apis

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/supakorn-kn/go-ehr/errors"
	"github.com/supakorn-kn/go-ehr/repository"
)

type listQuery struct {
	Text      string  `form:"text"`
	Status    string  `form:"status"`
	Sort      string  `form:"sort"`
	Page      *int    `form:"page"`
	Size      *int    `form:"size"`
	Cursor    *string `form:"cursor"`
	Direction string  `form:"direction" binding:"omitempty,oneof=next previous"`
}

func (q listQuery) isSearch() bool {
	return q.Text != "" || q.Status != ""
}

func (q listQuery) pageRequest() repository.PageRequest {

	req := repository.PageRequest{
		Number:    q.Page,
		Size:      q.Size,
		Direction: repository.PageDirection(q.Direction),
	}

	if q.Direction == string(repository.PreviousPage) {
		req.PreviousCursor = q.Cursor
	} else {
		req.NextCursor = q.Cursor
	}

	return req
}

type nilChecker interface {
	IsNil() bool
}

func bindData[T any](ctx *gin.Context) (T, error) {

	var data T
	if err := ctx.ShouldBindJSON(&data); err != nil {
		return data, errors.RequestInvalidError.New(err)
	}

	if checker, ok := any(data).(nilChecker); ok && checker.IsNil() {
		return data, errors.RequestInvalidError.New("body has no fields")
	}

	return data, nil
}

// bindUpdate binds the body and also returns the keys it named, so fields
// sent with a zero value get cleared instead of ignored.
func bindUpdate[T any](ctx *gin.Context) (T, []string, error) {

	var data T
	if err := ctx.ShouldBindBodyWith(&data, binding.JSON); err != nil {
		return data, nil, errors.RequestInvalidError.New(err)
	}

	var body map[string]json.RawMessage
	if err := ctx.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		return data, nil, errors.RequestInvalidError.New(err)
	}

	if len(body) == 0 {
		return data, nil, errors.RequestInvalidError.New("body has no fields")
	}

	sent := make([]string, 0, len(body))
	for key := range body {
		sent = append(sent, key)
	}

	slices.Sort(sent)
	return data, sent, nil
}

func RegisterCrudAPI[T any](repo Repository[T], group *gin.RouterGroup) {

	group.POST("", func(ctx *gin.Context) {

		data, err := bindData[T](ctx)
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		saved, err := repo.Save(ctx.Request.Context(), repository.NewRecord(data))
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		ctx.JSON(http.StatusCreated, CRUDResponse{Result: saved})
	})

	group.GET("count", func(ctx *gin.Context) {

		count, err := repo.Count(ctx.Request.Context())
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, CRUDResponse{Result: CountResult{Count: count}})
	})

	group.GET(":id", func(ctx *gin.Context) {

		itemID := ctx.Param("id")

		record, err := repo.Find(ctx.Request.Context(), itemID)
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		if record == nil {
			writeErrorJSON(ctx, errors.ObjectIDNotFoundError.New(itemID))
			return
		}

		ctx.JSON(http.StatusOK, CRUDResponse{Result: record})
	})

	group.GET("", func(ctx *gin.Context) {

		var query listQuery
		if err := ctx.ShouldBindQuery(&query); err != nil {
			writeErrorJSON(ctx, errors.RequestInvalidError.New(err))
			return
		}

		sort, err := repository.ParseSort(query.Sort)
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		if query.isSearch() {

			container := repository.SearchContainer{Text: query.Text, Status: query.Status, Sort: sort}

			records, err := repo.Search(ctx.Request.Context(), container)
			if err != nil {
				writeErrorJSON(ctx, err)
				return
			}

			ctx.JSON(http.StatusOK, CRUDResponse{Result: records})
			return
		}

		page, err := repo.FindPage(ctx.Request.Context(), sort, query.pageRequest())
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, CRUDResponse{Result: page})
	})

	group.PUT(":id", func(ctx *gin.Context) {

		data, sent, err := bindUpdate[T](ctx)
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		record := repository.Record[T]{ID: ctx.Param("id"), Data: data}

		saved, err := repo.SaveOrUpdate(ctx.Request.Context(), record, sent...)
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, CRUDResponse{Result: saved})
	})

	group.DELETE(":id", func(ctx *gin.Context) {

		deleted, err := repo.Delete(ctx.Request.Context(), repository.Record[T]{ID: ctx.Param("id")})
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, CRUDResponse{Result: deleted})
	})
}

// registerListAPI serves the records a lookup returns for the id in the path.
func registerListAPI[T any](group *gin.RouterGroup, path string, param string, lookup func(ctx *gin.Context, id string) ([]repository.Record[T], error)) {

	group.GET(path, func(ctx *gin.Context) {

		records, err := lookup(ctx, ctx.Param(param))
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, CRUDResponse{Result: records})
	})
}

func writeErrorJSON(ctx *gin.Context, err error) {

	ctx.Error(err)

	assertedError, ok := errors.TryAssertError(err)
	if !ok {
		ctx.JSON(http.StatusInternalServerError, CRUDResponse{Error: errors.UnknownError.New(err)})
		return
	}

	var statusCode int
	var errorResponse = CRUDResponse{Error: assertedError}

	switch assertedError.Code {
	case errors.ObjectIDNotFoundErrorCode:
		statusCode = http.StatusNotFound
	case errors.StorageNotReadyErrorCode:
		statusCode = http.StatusServiceUnavailable
	case errors.DuplicatedObjectIDErrorCode:
		statusCode = http.StatusInternalServerError
	default:
		statusCode = http.StatusBadRequest
	}

	ctx.JSON(statusCode, errorResponse)
}
