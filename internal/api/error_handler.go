package api

import (
	"errors"
	"net/http"

	"github.com/Franklyn101/sagbama-land-authentication/internal/export"
	"github.com/Franklyn101/sagbama-land-authentication/internal/service"
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

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// HandleServiceError 按服务层错误类型映射 HTTP 状态码
// 校验失败 400, 不存在 404, 状态转移冲突 409, 导出终态失败 500
func HandleServiceError(c *gin.Context, err error, operation string) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		Error(c, http.StatusBadRequest, "invalid request", validationErr.Error())
		return
	}

	var notFoundErr *service.NotFoundError
	if errors.As(err, &notFoundErr) {
		Error(c, http.StatusNotFound, "document not found", notFoundErr.Error())
		return
	}

	var transitionErr *service.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		Error(c, http.StatusConflict, "invalid status transition", transitionErr.Error())
		return
	}

	var failedErr *export.FailedError
	if errors.As(err, &failedErr) {
		Error(c, http.StatusInternalServerError, "certificate export failed", failedErr.Error())
		return
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
		return
	}

	Error(c, http.StatusInternalServerError, "failed to "+operation, err.Error())
}
