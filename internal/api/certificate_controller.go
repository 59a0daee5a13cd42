package api

import (
	"fmt"
	"net/http"

	"github.com/Franklyn101/sagbama-land-authentication/internal/certificate"
	"github.com/Franklyn101/sagbama-land-authentication/internal/export"
	"github.com/Franklyn101/sagbama-land-authentication/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CertificateController 证书控制器
type CertificateController struct {
	documentService service.DocumentService
	encoder         certificate.QREncoder
	pipeline        *export.Pipeline
	auditLogService service.AuditLogService
	baseOrigin      string
	logger          *logrus.Logger
}

// NewCertificateController 创建证书控制器
func NewCertificateController(documentService service.DocumentService, encoder certificate.QREncoder, pipeline *export.Pipeline, auditLogSvc service.AuditLogService, baseOrigin string, logger *logrus.Logger) *CertificateController {
	if logger == nil {
		logger = GetLogger()
	}
	return &CertificateController{
		documentService: documentService,
		encoder:         encoder,
		pipeline:        pipeline,
		auditLogService: auditLogSvc,
		baseOrigin:      baseOrigin,
		logger:          logger,
	}
}

// Payload 返回证书验证载荷和 QR 图像引用
func (c *CertificateController) Payload(ctx *gin.Context) {
	record, err := c.documentService.Get(ctx.Param("id"))
	if err != nil {
		HandleServiceError(ctx, err, "get document")
		return
	}

	payload := certificate.BuildPayload(record.ID, c.baseOrigin)
	qrRef, err := c.encoder.Encode(payload)
	if err != nil {
		HandleServiceError(ctx, err, "encode qr")
		return
	}

	Success(ctx, gin.H{
		"documentId": record.ID,
		"payload":    payload,
		"qrRef":      qrRef,
	})
}

// Preview 返回证书视图快照, 供前端渲染用
func (c *CertificateController) Preview(ctx *gin.Context) {
	record, err := c.documentService.Get(ctx.Param("id"))
	if err != nil {
		HandleServiceError(ctx, err, "get document")
		return
	}

	payload := certificate.BuildPayload(record.ID, c.baseOrigin)
	qrRef, err := c.encoder.Encode(payload)
	if err != nil {
		HandleServiceError(ctx, err, "encode qr")
		return
	}

	Success(ctx, certificate.NewCertificateView(record, qrRef))
}

// Export 导出证书 PDF
// 成功返回 application/pdf 附件; 降级导出同样是成功, 以响应头标记
func (c *CertificateController) Export(ctx *gin.Context) {
	record, err := c.documentService.Get(ctx.Param("id"))
	if err != nil {
		HandleServiceError(ctx, err, "get document")
		return
	}

	payload := certificate.BuildPayload(record.ID, c.baseOrigin)
	qrRef, err := c.encoder.Encode(payload)
	if err != nil {
		// QR 失败不阻断导出, 证书渲染器会画占位框
		c.logger.WithError(err).WithField("document_id", record.ID).Warn("qr encode failed, exporting without qr")
		qrRef = ""
	}

	artifact, err := c.pipeline.Export(record, qrRef)
	if err != nil {
		HandleServiceError(ctx, err, "export certificate")
		return
	}

	mode := "full"
	if artifact.Degraded {
		mode = "degraded"
	}
	c.recordExportAudit(ctx, record.ID, mode)

	ctx.Header("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
	ctx.Header("X-Export-Mode", mode)
	ctx.Data(http.StatusOK, "application/pdf", artifact.Data)
}

// recordExportAudit 记录导出操作的审计轨迹
// 审计失败只告警, 不影响已生成的产物交付
func (c *CertificateController) recordExportAudit(ctx *gin.Context, documentID, mode string) {
	if c.auditLogService == nil {
		return
	}
	actorID := ctx.GetString("actor_id")
	if actorID == "" {
		return
	}
	details := fmt.Sprintf(`{"mode":"%s"}`, mode)
	if err := c.auditLogService.RecordAction(ctx.Request.Context(), actorID, "export", "document", documentID, details); err != nil {
		c.logger.WithError(err).WithField("document_id", documentID).Warn("failed to record export audit log")
	}
}
