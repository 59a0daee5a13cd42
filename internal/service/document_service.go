package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Franklyn101/sagbama-land-authentication/internal/metrics"
	"github.com/Franklyn101/sagbama-land-authentication/internal/model"
	"github.com/Franklyn101/sagbama-land-authentication/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultRejectionReason 驳回原因缺省值
const DefaultRejectionReason = "Rejected - requires further review"

// referenceCharset 参考编号后缀字符集
const referenceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DocumentService 文档生命周期服务接口
// 状态只能从 pending 单向转移到 verified 或 rejected, 终态之间不可互转
type DocumentService interface {
	Create(ctx context.Context, req *CreateDocumentRequest) (*model.DocumentRecord, error)
	Get(id string) (*model.DocumentRecord, error)
	Verify(ctx context.Context, id string, verifier string) (*model.DocumentRecord, error)
	Reject(ctx context.Context, id string, verifier string, reason string) (*model.DocumentRecord, error)
	Delete(ctx context.Context, id string) error
	List() ([]*model.DocumentRecord, error)
	ListByStatus(status model.DocumentStatus) ([]*model.DocumentRecord, error)
	Stats(actorID string) (*DocumentStats, error)
}

// CreateDocumentRequest 创建文档请求
type CreateDocumentRequest struct {
	Title      string `json:"title"`
	Type       string `json:"type"`
	UploadedBy string `json:"uploadedBy"`

	CounselName      string `json:"counselName"`
	CounselAddress   string `json:"counselAddress"`
	CounselContact   string `json:"counselContact"`
	DocumentType     string `json:"documentType"`
	VendorName       string `json:"vendorName" binding:"required"`
	VendorAddress    string `json:"vendorAddress"`
	PurchaserName    string `json:"purchaserName" binding:"required"`
	PurchaserAddress string `json:"purchaserAddress"`
	SubjectMatter    string `json:"subjectMatter"`
	PurchaseValue    string `json:"purchaseValue"`
	LegalFee         string `json:"legalFee"`
	BranchCommission string `json:"branchCommission"`
	ExecutionDate    string `json:"executionDate"`
	BainNumber       string `json:"bainNumber"`
	CounselPhoto     string `json:"counselPhoto"`
}

// DocumentStats 文档统计
type DocumentStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Verified int `json:"verified"`
	Rejected int `json:"rejected"`
}

// Notifier 状态变更通知
// 由 websocket 事件中心实现, 看板无需轮询存储
type Notifier interface {
	NotifyDocumentChanged(id string, status model.DocumentStatus)
}

type documentService struct {
	store       store.DocumentStore
	auditLogSvc AuditLogService
	notifier    Notifier
	logger      *logrus.Logger
	now         func() time.Time
}

// NewDocumentService 创建文档生命周期服务
func NewDocumentService(st store.DocumentStore, auditLogSvc AuditLogService, notifier Notifier, logger *logrus.Logger) DocumentService {
	if logger == nil {
		logger = logrus.New()
	}
	return &documentService{
		store:       st,
		auditLogSvc: auditLogSvc,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// Create 创建文档记录, 状态固定为 pending
func (s *documentService) Create(ctx context.Context, req *CreateDocumentRequest) (*model.DocumentRecord, error) {
	if req.VendorName == "" {
		return nil, &ValidationError{Field: "vendorName", Reason: "is required"}
	}
	if req.PurchaserName == "" {
		return nil, &ValidationError{Field: "purchaserName", Reason: "is required"}
	}

	now := s.now()
	record := &model.DocumentRecord{
		ID:               uuid.NewString(),
		Title:            req.Title,
		Type:             req.Type,
		UploadedBy:       req.UploadedBy,
		CounselName:      req.CounselName,
		CounselAddress:   req.CounselAddress,
		CounselContact:   req.CounselContact,
		DocumentType:     req.DocumentType,
		VendorName:       req.VendorName,
		VendorAddress:    req.VendorAddress,
		PurchaserName:    req.PurchaserName,
		PurchaserAddress: req.PurchaserAddress,
		SubjectMatter:    req.SubjectMatter,
		PurchaseValue:    req.PurchaseValue,
		LegalFee:         req.LegalFee,
		BranchCommission: req.BranchCommission,
		ExecutionDate:    req.ExecutionDate,
		BainNumber:       req.BainNumber,
		CounselPhoto:     req.CounselPhoto,
		Status:           model.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.UploadedBy == "" {
		record.UploadedBy = ActorIDFromContext(ctx)
	}

	saved, err := s.store.Put(record)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	metrics.RecordDocumentCreated()
	s.recordAudit(ctx, "create", saved.ID, fmt.Sprintf(`{"vendor":"%s","purchaser":"%s"}`, saved.VendorName, saved.PurchaserName))
	s.notify(saved)
	return saved, nil
}

// Get 获取文档记录
func (s *documentService) Get(id string) (*model.DocumentRecord, error) {
	record, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, &NotFoundError{ID: id}
	}
	return record, nil
}

// Verify 审核通过
// 仅允许 pending 状态, 成功后生成参考编号并盖上审核人与时间戳
func (s *documentService) Verify(ctx context.Context, id string, verifier string) (*model.DocumentRecord, error) {
	record, err := s.transitionTarget(id, model.StatusVerified)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record.Status = model.StatusVerified
	record.VerifiedBy = verifier
	record.VerifiedAt = &now
	record.RejectionReason = ""
	record.Reference = s.newReference(now)

	saved, err := s.store.Put(record)
	if err != nil {
		return nil, fmt.Errorf("failed to verify document: %w", err)
	}

	metrics.RecordVerification("verified")
	s.recordAudit(ctx, "verify", id, fmt.Sprintf(`{"verifier":"%s","reference":"%s"}`, verifier, saved.Reference))
	s.notify(saved)
	return saved, nil
}

// Reject 审核驳回
// 仅允许 pending 状态, 原因为空时使用缺省文案
func (s *documentService) Reject(ctx context.Context, id string, verifier string, reason string) (*model.DocumentRecord, error) {
	record, err := s.transitionTarget(id, model.StatusRejected)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = DefaultRejectionReason
	}
	now := s.now()
	record.Status = model.StatusRejected
	record.VerifiedBy = verifier
	record.VerifiedAt = &now
	record.RejectionReason = reason

	saved, err := s.store.Put(record)
	if err != nil {
		return nil, fmt.Errorf("failed to reject document: %w", err)
	}

	metrics.RecordVerification("rejected")
	s.recordAudit(ctx, "reject", id, fmt.Sprintf(`{"verifier":"%s","reason":"%s"}`, verifier, reason))
	s.notify(saved)
	return saved, nil
}

// Delete 管理清理用删除, 无生命周期副作用
func (s *documentService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", id, fmt.Sprintf(`{"document_id":"%s"}`, id))
	return nil
}

// List 返回全部文档记录
func (s *documentService) List() ([]*model.DocumentRecord, error) {
	return s.store.List()
}

// ListByStatus 按状态过滤, 顺序沿用存储快照顺序
func (s *documentService) ListByStatus(status model.DocumentStatus) ([]*model.DocumentRecord, error) {
	records, err := s.store.List()
	if err != nil {
		return nil, err
	}
	filtered := make([]*model.DocumentRecord, 0, len(records))
	for _, r := range records {
		if r.Status == status {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// Stats 聚合计数, actorID 非空时只统计该操作人创建的记录
func (s *documentService) Stats(actorID string) (*DocumentStats, error) {
	records, err := s.store.List()
	if err != nil {
		return nil, err
	}
	stats := &DocumentStats{}
	for _, r := range records {
		if actorID != "" && r.UploadedBy != actorID {
			continue
		}
		stats.Total++
		switch r.Status {
		case model.StatusPending:
			stats.Pending++
		case model.StatusVerified:
			stats.Verified++
		case model.StatusRejected:
			stats.Rejected++
		}
	}
	if actorID == "" {
		metrics.SetDocumentsByStatus(string(model.StatusPending), float64(stats.Pending))
		metrics.SetDocumentsByStatus(string(model.StatusVerified), float64(stats.Verified))
		metrics.SetDocumentsByStatus(string(model.StatusRejected), float64(stats.Rejected))
	}
	return stats, nil
}

// transitionTarget 校验转移前置条件并返回可变更的副本
// 校验先于任何写入, 失败不会破坏存储状态
func (s *documentService) transitionTarget(id string, to model.DocumentStatus) (*model.DocumentRecord, error) {
	record, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, &NotFoundError{ID: id}
	}
	if record.Status != model.StatusPending {
		return nil, &InvalidTransitionError{ID: id, From: string(record.Status), To: string(to)}
	}
	return record, nil
}

// newReference 生成人类可读的参考编号: LDC-{年份}-{6 位大写字母数字}
// 唯一性为尽力而为, 不做存储查重; 冲突可凭此日志追溯
func (s *documentService) newReference(now time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = referenceCharset[rand.Intn(len(referenceCharset))]
	}
	ref := fmt.Sprintf("LDC-%d-%s", now.Year(), string(suffix))
	s.logger.WithField("reference", ref).Debug("generated certificate reference")
	return ref
}

func (s *documentService) recordAudit(ctx context.Context, action, resourceID, details string) {
	if s.auditLogSvc == nil {
		return
	}
	actorID := ActorIDFromContext(ctx)
	if actorID == "" {
		return
	}
	if err := s.auditLogSvc.RecordAction(ctx, actorID, action, "document", resourceID, details); err != nil {
		s.logger.WithError(err).Warn("failed to record audit log")
	}
}

func (s *documentService) notify(record *model.DocumentRecord) {
	if s.notifier == nil || record == nil {
		return
	}
	s.notifier.NotifyDocumentChanged(record.ID, record.Status)
}
