package api

import (
	"errors"
	"net/http"

	"github.com/darkstoreops/approval-api/internal/utils"
	"github.com/darkstoreops/approval-api/internal/workflow"
	"github.com/gin-gonic/gin"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// ErrorHandlerMiddleware 错误处理中间件
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				Error(c, http.StatusInternalServerError, "internal server error", err.Error())
			}
		}
	}
}

// DomainError 将工作流错误映射为 HTTP 错误响应
// NotFound -> 404, InvalidState -> 409, Forbidden -> 403, 校验类错误 -> 400
func DomainError(c *gin.Context, err error, operation string) {
	var vErr *utils.ValidationError

	switch {
	case errors.Is(err, workflow.ErrTaskNotFound):
		Error(c, http.StatusNotFound, "task not found", err.Error())
	case errors.Is(err, workflow.ErrInvalidState):
		Error(c, http.StatusConflict, "task already decided", err.Error())
	case errors.Is(err, workflow.ErrForbidden):
		Error(c, http.StatusForbidden, "not allowed", err.Error())
	case errors.Is(err, workflow.ErrUnknownDomain),
		errors.Is(err, workflow.ErrUnknownType),
		errors.Is(err, workflow.ErrInvalidDecision),
		errors.Is(err, workflow.ErrInvalidStatus),
		errors.As(err, &vErr):
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
	default:
		Error(c, http.StatusInternalServerError, "failed to "+operation, err.Error())
	}
}
