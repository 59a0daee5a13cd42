package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Franklyn101/sagbama-land-authentication/internal/api"
	"github.com/Franklyn101/sagbama-land-authentication/internal/export"
	"github.com/Franklyn101/sagbama-land-authentication/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// TestResponseFormat 测试统一响应格式
func TestResponseFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		api.Success(c, gin.H{"message": "test"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response api.Response
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 0, response.Code)
	assert.Equal(t, "success", response.Message)
	assert.NotNil(t, response.Data)
}

// TestErrorResponseFormat 测试错误响应格式
func TestErrorResponseFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		api.Error(c, 400, "invalid request", "missing required field")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response api.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 400, response.Code)
	assert.Equal(t, "invalid request", response.Message)
	assert.Equal(t, "missing required field", response.Detail)
}

// TestHandleServiceErrorMapping 测试服务层错误到状态码的映射
func TestHandleServiceErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &service.ValidationError{Field: "vendorName", Reason: "is required"}, http.StatusBadRequest},
		{"not found", &service.NotFoundError{ID: "doc-1"}, http.StatusNotFound},
		{"transition", &service.InvalidTransitionError{ID: "doc-1", From: "verified", To: "rejected"}, http.StatusConflict},
		{"export failed", &export.FailedError{DocumentID: "doc-1", Err: errors.New("boom")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/test", func(c *gin.Context) {
				api.HandleServiceError(c, tc.err, "do thing")
			})

			req := httptest.NewRequest("GET", "/test", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code)
		})
	}
}

// TestRequestIDMiddleware 测试请求 ID 的生成与透传
func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(api.RequestIDMiddleware())
	router.GET("/test", func(c *gin.Context) {
		api.Success(c, gin.H{"request_id": c.GetString("request_id")})
	})

	// 未携带请求 ID 时生成新的
	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// 携带请求 ID 时原样透传
	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

// TestRateLimitMiddleware 测试限流中间件
func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(api.RateLimitMiddleware(0.0001, 1))
	router.GET("/test", func(c *gin.Context) {
		api.Success(c, nil)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// 令牌耗尽后返回 429
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
