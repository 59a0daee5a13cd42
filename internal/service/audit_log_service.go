package service

import (
	"context"
	"time"

	"github.com/Franklyn101/sagbama-land-authentication/internal/model"
	"github.com/Franklyn101/sagbama-land-authentication/internal/repository"
	"github.com/google/uuid"
)

// AuditLogService 审计日志服务接口
type AuditLogService interface {
	RecordAction(ctx context.Context, actorID, action, resourceType, resourceID, details string) error
	GetByResource(resourceID string) ([]*model.AuditLogModel, error)
	GetByActor(actorID string) ([]*model.AuditLogModel, error)
}

// auditLogService 审计日志服务实现
type auditLogService struct {
	repo repository.AuditLogRepository
}

// NewAuditLogService 创建审计日志服务
func NewAuditLogService(repo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{repo: repo}
}

// RecordAction 记录一次操作
func (s *auditLogService) RecordAction(ctx context.Context, actorID, action, resourceType, resourceID, details string) error {
	log := &model.AuditLogModel{
		ID:           uuid.NewString(),
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    requestIDFromContext(ctx),
		Details:      []byte(details),
		CreatedAt:    time.Now(),
	}
	if err := log.Validate(); err != nil {
		return err
	}
	return s.repo.Save(log)
}

// GetByResource 查询某资源的审计日志
func (s *auditLogService) GetByResource(resourceID string) ([]*model.AuditLogModel, error) {
	return s.repo.FindByResourceID(resourceID)
}

// GetByActor 查询某操作人的审计日志
func (s *auditLogService) GetByActor(actorID string) ([]*model.AuditLogModel, error) {
	return s.repo.FindByActor(actorID)
}

type contextKey string

const (
	// ContextKeyRequestID 请求 ID 上下文键
	ContextKeyRequestID contextKey = "request_id"
	// ContextKeyActorID 操作人上下文键
	ContextKeyActorID contextKey = "actor_id"
)

// requestIDFromContext 从上下文提取请求 ID
func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// ActorIDFromContext 从上下文提取操作人 ID
func ActorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ContextKeyActorID).(string); ok {
		return v
	}
	return ""
}
