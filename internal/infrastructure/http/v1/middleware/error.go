package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/idempotency"
	"fifostock/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}
		ctx := c.Request.Context()

		if appErr, ok := apperror.AsAppError(err); ok {
			switch {
			case apperror.IsConsistencyFault(appErr):
				logger.Error(ctx, "consistency fault",
					"severity", "consistency",
					"message", appErr.Message,
					"details", appErr.Details,
					"cause", appErr.Err,
				)
			case appErr.Err != nil:
				logger.Error(ctx, "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}

			body := gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			}
			finishIdempotency(c, err, appErr.HTTPStatus, body)
			c.JSON(appErr.HTTPStatus, body)
			return
		}

		logger.Error(ctx, "unhandled error", "error", err)

		body := gin.H{
			"code":    apperror.CodeInternal,
			"message": "Internal server error",
			"details": map[string]any{
				"request_id": c.GetString("request_id"),
			},
		}
		finishIdempotency(c, err, http.StatusInternalServerError, body)
		c.JSON(http.StatusInternalServerError, body)
	}
}

// finishIdempotency stores the error response under the request key.
// Retryable errors release the key instead so the same key can be retried.
func finishIdempotency(c *gin.Context, err error, status int, body any) {
	key, store, ok := IdempotencyFrom(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var ierr error
	if apperror.Retryable(err) {
		ierr = store.Release(ctx, key)
	} else {
		ierr = store.FailKey(ctx, key, status, "application/json", body)
	}
	if ierr != nil {
		logger.Warn(ctx, "finish idempotency key", "key", key, "error", ierr)
	}
}

// IdempotencyFrom returns the key and store set by the Idempotency middleware.
func IdempotencyFrom(c *gin.Context) (string, idempotency.Store, bool) {
	key, ok := c.Get(ctxIdempotencyKey)
	if !ok {
		return "", nil, false
	}
	store, ok := c.Get(ctxIdempotencyStore)
	if !ok {
		return "", nil, false
	}
	s, ok := store.(idempotency.Store)
	if !ok || s == nil {
		return "", nil, false
	}
	return key.(string), s, true
}
