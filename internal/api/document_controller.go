package api

import (
	"net/http"

	"github.com/Franklyn101/sagbama-land-authentication/internal/model"
	"github.com/Franklyn101/sagbama-land-authentication/internal/service"
	"github.com/gin-gonic/gin"
)

// DocumentController 文档控制器
type DocumentController struct {
	documentService service.DocumentService
	auditLogService service.AuditLogService
}

// NewDocumentController 创建文档控制器
func NewDocumentController(documentService service.DocumentService, auditLogService service.AuditLogService) *DocumentController {
	return &DocumentController{
		documentService: documentService,
		auditLogService: auditLogService,
	}
}

// VerifyRequest 审核通过请求
type VerifyRequest struct {
	Verifier string `json:"verifier"`
}

// RejectRequest 审核驳回请求
type RejectRequest struct {
	Verifier string `json:"verifier"`
	Reason   string `json:"reason"`
}

// Create 创建文档记录
func (c *DocumentController) Create(ctx *gin.Context) {
	var req service.CreateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	record, err := c.documentService.Create(ctx.Request.Context(), &req)
	if err != nil {
		HandleServiceError(ctx, err, "create document")
		return
	}

	Success(ctx, record)
}

// Get 获取文档记录
func (c *DocumentController) Get(ctx *gin.Context) {
	record, err := c.documentService.Get(ctx.Param("id"))
	if err != nil {
		HandleServiceError(ctx, err, "get document")
		return
	}

	Success(ctx, record)
}

// List 列出文档记录, 支持 status 查询参数过滤
func (c *DocumentController) List(ctx *gin.Context) {
	statusParam := ctx.Query("status")
	if statusParam == "" {
		records, err := c.documentService.List()
		if err != nil {
			HandleServiceError(ctx, err, "list documents")
			return
		}
		Success(ctx, records)
		return
	}

	status := model.DocumentStatus(statusParam)
	if !status.Valid() {
		Error(ctx, http.StatusBadRequest, "invalid status", statusParam)
		return
	}

	records, err := c.documentService.ListByStatus(status)
	if err != nil {
		HandleServiceError(ctx, err, "list documents")
		return
	}

	Success(ctx, records)
}

// Verify 审核通过
func (c *DocumentController) Verify(ctx *gin.Context) {
	var req VerifyRequest
	// 请求体可为空, 审核人回退到操作人身份
	_ = ctx.ShouldBindJSON(&req)
	if req.Verifier == "" {
		req.Verifier = ctx.GetString("actor_id")
	}

	record, err := c.documentService.Verify(ctx.Request.Context(), ctx.Param("id"), req.Verifier)
	if err != nil {
		HandleServiceError(ctx, err, "verify document")
		return
	}

	Success(ctx, record)
}

// Reject 审核驳回
func (c *DocumentController) Reject(ctx *gin.Context) {
	var req RejectRequest
	_ = ctx.ShouldBindJSON(&req)
	if req.Verifier == "" {
		req.Verifier = ctx.GetString("actor_id")
	}

	record, err := c.documentService.Reject(ctx.Request.Context(), ctx.Param("id"), req.Verifier, req.Reason)
	if err != nil {
		HandleServiceError(ctx, err, "reject document")
		return
	}

	Success(ctx, record)
}

// Delete 删除文档记录
func (c *DocumentController) Delete(ctx *gin.Context) {
	if err := c.documentService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		HandleServiceError(ctx, err, "delete document")
		return
	}

	Success(ctx, gin.H{"deleted": ctx.Param("id")})
}

// Stats 按操作人过滤的聚合计数
// 管理员看到全量, 其余角色只看到自己创建的记录
func (c *DocumentController) Stats(ctx *gin.Context) {
	actorID := ctx.GetString("actor_id")
	if ctx.GetString("actor_role") == "admin" {
		actorID = ""
	}

	stats, err := c.documentService.Stats(actorID)
	if err != nil {
		HandleServiceError(ctx, err, "compute stats")
		return
	}

	Success(ctx, stats)
}

// AuditLogs 查询文档的审计轨迹
// file/none 存储后端没有数据库, 审计服务不可用时明确拒绝而不是崩溃
func (c *DocumentController) AuditLogs(ctx *gin.Context) {
	if c.auditLogService == nil {
		Error(ctx, http.StatusServiceUnavailable, "audit log not available", "storage backend has no database")
		return
	}

	logs, err := c.auditLogService.GetByResource(ctx.Param("id"))
	if err != nil {
		HandleServiceError(ctx, err, "list audit logs")
		return
	}

	Success(ctx, logs)
}
