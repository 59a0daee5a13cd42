package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCertificateQREndpoint 测试 QR 载荷接口
func TestCertificateQREndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, "POST", "/api/v1/documents", "handler@sagbama.gov",
		map[string]string{"vendorName": "Acme Ltd", "purchaserName": "J. Doe"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decodeRecord(t, w)

	w = doJSON(router, "GET", "/api/v1/documents/"+created.ID+"/certificate/qr", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			DocumentID string `json:"documentId"`
			Payload    string `json:"payload"`
			QRRef      string `json:"qrRef"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.Data.DocumentID)
	assert.True(t, strings.HasSuffix(resp.Data.Payload, "/documents/"+created.ID))
	assert.True(t, strings.HasPrefix(resp.Data.QRRef, "data:image/png;base64,"))

	// 不存在的文档返回 404
	w = doJSON(router, "GET", "/api/v1/documents/missing/certificate/qr", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestCertificatePreviewEndpoint 测试证书视图接口
func TestCertificatePreviewEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, "POST", "/api/v1/documents", "handler@sagbama.gov",
		map[string]string{"vendorName": "Acme Ltd", "purchaserName": "J. Doe"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decodeRecord(t, w)

	w = doJSON(router, "GET", "/api/v1/documents/"+created.ID+"/certificate", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Title  string `json:"Title"`
			Border string `json:"Border"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DEED OF CONVEYANCE", resp.Data.Title)
	assert.Equal(t, "solid", resp.Data.Border)
}

// TestCertificateExportEndpoint 测试证书导出接口
func TestCertificateExportEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, "POST", "/api/v1/documents", "handler@sagbama.gov",
		map[string]string{"vendorName": "Acme Ltd", "purchaserName": "J. Doe"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decodeRecord(t, w)

	w = doJSON(router, "POST", "/api/v1/documents/"+created.ID+"/verify", "officer@sagbama.gov", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "POST", "/api/v1/documents/"+created.ID+"/certificate/export", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Acme_Ltd_"+created.ID+".pdf")
	assert.Equal(t, "full", w.Header().Get("X-Export-Mode"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	// 不存在的文档返回 404
	w = doJSON(router, "POST", "/api/v1/documents/missing/certificate/export", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestCertificateExportAudited 测试导出操作写入审计轨迹
func TestCertificateExportAudited(t *testing.T) {
	auditSvc := &captureAuditService{}
	router, _ := newTestRouterWithAudit(t, auditSvc)

	w := doJSON(router, "POST", "/api/v1/documents", "handler@sagbama.gov",
		map[string]string{"vendorName": "Acme Ltd", "purchaserName": "J. Doe"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decodeRecord(t, w)

	w = doJSON(router, "POST", "/api/v1/documents/"+created.ID+"/verify", "officer@sagbama.gov", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "POST", "/api/v1/documents/"+created.ID+"/certificate/export", "officer@sagbama.gov", nil)
	require.Equal(t, http.StatusOK, w.Code)

	entries, err := auditSvc.GetByResource(created.ID)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	last := entries[len(entries)-1]
	assert.Equal(t, "export", last.Action)
	assert.Equal(t, "officer@sagbama.gov", last.ActorID)
	assert.Equal(t, "document", last.ResourceType)
	assert.Contains(t, string(last.Details), `"mode":"full"`)
}
