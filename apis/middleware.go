package apis

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/supakorn-kn/go-ehr/errors"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one, and echoes
// it on the response.
func RequestID() gin.HandlerFunc {

	return func(ctx *gin.Context) {

		rid := ctx.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}

		ctx.Set(RequestIDKey, rid)
		ctx.Header(RequestIDHeader, rid)
		ctx.Next()
	}
}

func Logger(logger zerolog.Logger) gin.HandlerFunc {

	return func(ctx *gin.Context) {

		start := time.Now()
		ctx.Next()

		evt := logger.Info()
		if err := ctx.Errors.Last(); err != nil {
			evt = logger.Error().Err(err.Err)
		}

		evt.
			Str("request_id", ctx.GetString(RequestIDKey)).
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", ctx.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("remote_ip", ctx.ClientIP()).
			Msg("request")
	}
}

func Recovery(logger zerolog.Logger) gin.HandlerFunc {

	return func(ctx *gin.Context) {

		defer func() {
			if r := recover(); r != nil {
				var stack [4096]byte
				n := runtime.Stack(stack[:], false)

				logger.Error().
					Str("request_id", ctx.GetString(RequestIDKey)).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(stack[:n])).
					Msg("panic recovered")

				ctx.AbortWithStatusJSON(http.StatusInternalServerError, CRUDResponse{Error: errors.UnknownError.New(r)})
			}
		}()

		ctx.Next()
	}
}

// Timeout puts a deadline on the request context. Storage calls made with it
// give up once the deadline passes, and a handler that wrote nothing by then
// gets a 504.
func Timeout(timeout time.Duration) gin.HandlerFunc {

	return func(ctx *gin.Context) {

		reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), timeout)
		defer cancel()

		ctx.Request = ctx.Request.WithContext(reqCtx)
		ctx.Next()

		if reqCtx.Err() == context.DeadlineExceeded && !ctx.Writer.Written() {
			ctx.AbortWithStatusJSON(http.StatusGatewayTimeout, CRUDResponse{Error: errors.UnknownError.New(reqCtx.Err())})
		}
	}
}

// NewRouter builds the engine with the middleware chain every API shares.
func NewRouter(logger zerolog.Logger, timeout time.Duration) *gin.Engine {

	g := gin.New()
	g.Use(RequestID(), Logger(logger), Recovery(logger), Timeout(timeout))
	return g
}
