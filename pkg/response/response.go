package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the JSON envelope every /api route answers with.
type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func envelope[T any](c *gin.Context, status, fallback int, ok bool, message string) APIResponse[T] {
	if status == 0 {
		status = fallback
	}
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
		Success:   ok,
		Message:   message,
	}
}

// Success writes a 2xx envelope carrying data and optional meta.
func Success[T any](c *gin.Context, status int, data T, message string, meta any) APIResponse[T] {
	res := envelope[T](c, status, http.StatusOK, true, message)
	res.Data, res.Meta = data, meta
	c.JSON(res.Status, res)
	return res
}

// Error aborts the chain with a failure envelope; detail lands in "error".
func Error[T any](c *gin.Context, status int, message string, detail any) APIResponse[T] {
	res := envelope[T](c, status, http.StatusBadRequest, false, message)
	res.Error = detail
	c.AbortWithStatusJSON(res.Status, res)
	return res
}
