package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Franklyn101/sagbama-land-authentication/internal/api"
	"github.com/Franklyn101/sagbama-land-authentication/internal/certificate"
	"github.com/Franklyn101/sagbama-land-authentication/internal/config"
	"github.com/Franklyn101/sagbama-land-authentication/internal/export"
	"github.com/Franklyn101/sagbama-land-authentication/internal/model"
	"github.com/Franklyn101/sagbama-land-authentication/internal/service"
	"github.com/Franklyn101/sagbama-land-authentication/internal/storage"
	"github.com/Franklyn101/sagbama-land-authentication/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter 构造完整的内存栈路由: 文件级持久化换成空操作存储
func newTestRouter(t *testing.T) (*gin.Engine, service.DocumentService) {
	t.Helper()
	return newTestRouterWithAudit(t, nil)
}

// newTestRouterWithAudit 同 newTestRouter, 并接入指定的审计服务
func newTestRouterWithAudit(t *testing.T, auditSvc service.AuditLogService) (*gin.Engine, service.DocumentService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Storage.Backend = "none"

	docStore := store.NewDocumentStore(newMemoryBlobStore(), "", nil)
	docSvc := service.NewDocumentService(docStore, auditSvc, nil, nil)
	statsSvc := service.NewStatisticsService(docStore)

	encoder := certificate.NewFallbackQREncoder(
		certificate.NewLocalQREncoder(100),
		certificate.NewRemoteQREncoder("", 100),
		nil,
	)
	rasterizer, err := certificate.NewGGRasterizer(1.0)
	require.NoError(t, err)
	pipeline := export.NewPipeline(rasterizer, nil)

	controllers := &api.Controllers{
		Auth:        api.NewAuthController(),
		Document:    api.NewDocumentController(docSvc, auditSvc),
		Certificate: api.NewCertificateController(docSvc, encoder, pipeline, auditSvc, cfg.Certificate.BaseOrigin, nil),
		Statistics:  api.NewStatisticsController(statsSvc),
	}

	return api.SetupRoutes(cfg, controllers, nil, nil), docSvc
}

// captureAuditService 测试用内存审计服务
type captureAuditService struct {
	entries []*model.AuditLogModel
}

func (c *captureAuditService) RecordAction(ctx context.Context, actorID, action, resourceType, resourceID, details string) error {
	c.entries = append(c.entries, &model.AuditLogModel{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      []byte(details),
	})
	return nil
}

func (c *captureAuditService) GetByResource(resourceID string) ([]*model.AuditLogModel, error) {
	var out []*model.AuditLogModel
	for _, e := range c.entries {
		if e.ResourceID == resourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *captureAuditService) GetByActor(actorID string) ([]*model.AuditLogModel, error) {
	var out []*model.AuditLogModel
	for _, e := range c.entries {
		if e.ActorID == actorID {
			out = append(out, e)
		}
	}
	return out, nil
}

// memoryBlobStore 测试用内存 blob 存储
type memoryBlobStore struct {
	data map[string][]byte
}

func newMemoryBlobStore() storage.BlobStore {
	return &memoryBlobStore{data: make(map[string][]byte)}
}

func (m *memoryBlobStore) Load(key string) ([]byte, error) { return m.data[key], nil }
func (m *memoryBlobStore) Save(key string, data []byte) error {
	m.data[key] = data
	return nil
}
func (m *memoryBlobStore) Remove(key string) error {
	delete(m.data, key)
	return nil
}

func doJSON(router *gin.Engine, method, path, actor string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set("X-Actor", actor)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeRecord(t *testing.T, w *httptest.ResponseRecorder) *model.DocumentRecord {
	t.Helper()
	var resp struct {
		Code int                  `json:"code"`
		Data model.DocumentRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.Code)
	return &resp.Data
}

// TestDocumentCreateEndpoint 测试创建接口与角色限制
func TestDocumentCreateEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	body := map[string]string{"vendorName": "Acme Ltd", "purchaserName": "J. Doe"}

	// 匿名请求被拒绝
	w := doJSON(router, "POST", "/api/v1/documents", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 审核员无创建权限
	w = doJSON(router, "POST", "/api/v1/documents", "officer@sagbama.gov", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 经办人创建成功
	w = doJSON(router, "POST", "/api/v1/documents", "handler@sagbama.gov", body)
	require.Equal(t, http.StatusOK, w.Code)
	record := decodeRecord(t, w)
	assert.Equal(t, model.StatusPending, record.Status)
	assert.Equal(t, "handler@sagbama.gov", record.UploadedBy)

	// 必填字段缺失返回 400
	w = doJSON(router, "POST", "/api/v1/documents", "handler@sagbama.gov", map[string]string{"vendorName": "Acme Ltd"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestDocumentLifecycleEndpoints 测试审核接口的完整链路
func TestDocumentLifecycleEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, "POST", "/api/v1/documents", "handler@sagbama.gov",
		map[string]string{"vendorName": "Acme Ltd", "purchaserName": "J. Doe"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decodeRecord(t, w)

	// 经办人无审核权限
	w = doJSON(router, "POST", "/api/v1/documents/"+created.ID+"/verify", "handler@sagbama.gov", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 审核员通过, 审核人缺省取操作人身份
	w = doJSON(router, "POST", "/api/v1/documents/"+created.ID+"/verify", "officer@sagbama.gov", nil)
	require.Equal(t, http.StatusOK, w.Code)
	verified := decodeRecord(t, w)
	assert.Equal(t, model.StatusVerified, verified.Status)
	assert.Equal(t, "officer@sagbama.gov", verified.VerifiedBy)
	assert.NotEmpty(t, verified.Reference)

	// 终态重复审核返回 409
	w = doJSON(router, "POST", "/api/v1/documents/"+created.ID+"/reject", "officer@sagbama.gov", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// 不存在的文档返回 404
	w = doJSON(router, "POST", "/api/v1/documents/missing/verify", "officer@sagbama.gov", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 删除仅限管理员
	w = doJSON(router, "DELETE", "/api/v1/documents/"+created.ID, "officer@sagbama.gov", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(router, "DELETE", "/api/v1/documents/"+created.ID, "admin@sagbama.gov", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestDocumentListEndpoint 测试列表接口与状态过滤
func TestDocumentListEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, vendor := range []string{"A", "B"} {
		w := doJSON(router, "POST", "/api/v1/documents", "handler@sagbama.gov",
			map[string]string{"vendorName": vendor, "purchaserName": "P"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(router, "GET", "/api/v1/documents", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []model.DocumentRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)

	w = doJSON(router, "GET", "/api/v1/documents?status=verified", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp.Data = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)

	// 非法状态值返回 400
	w = doJSON(router, "GET", "/api/v1/documents?status=approved", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestUnknownActorRejected 测试未知操作人被拒绝
func TestUnknownActorRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, "GET", "/api/v1/documents", "stranger@example.org", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestAuditLogsUnavailableWithoutDatabase 测试无数据库后端时审计接口明确返回 503 而非崩溃
func TestAuditLogsUnavailableWithoutDatabase(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, "GET", "/api/v1/documents/doc-1/audit-logs", "admin@sagbama.gov", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

// TestAuditLogsEndpoint 测试生命周期操作留痕并可按文档查询
func TestAuditLogsEndpoint(t *testing.T) {
	auditSvc := &captureAuditService{}
	router, _ := newTestRouterWithAudit(t, auditSvc)

	w := doJSON(router, "POST", "/api/v1/documents", "handler@sagbama.gov",
		map[string]string{"vendorName": "Acme Ltd", "purchaserName": "J. Doe"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decodeRecord(t, w)

	w = doJSON(router, "POST", "/api/v1/documents/"+created.ID+"/verify", "officer@sagbama.gov", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/api/v1/documents/"+created.ID+"/audit-logs", "admin@sagbama.gov", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []model.AuditLogModel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "create", resp.Data[0].Action)
	assert.Equal(t, "handler@sagbama.gov", resp.Data[0].ActorID)
	assert.Equal(t, "verify", resp.Data[1].Action)
	assert.Equal(t, "officer@sagbama.gov", resp.Data[1].ActorID)
}

// TestNoRouteReturnsJSON 测试未匹配路由返回 JSON 404
func TestNoRouteReturnsJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, "GET", "/api/v1/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
