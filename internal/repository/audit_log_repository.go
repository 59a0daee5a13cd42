package repository

import (
	"github.com/Franklyn101/sagbama-land-authentication/internal/model"
	"gorm.io/gorm"
)

// AuditLogRepository 审计日志仓储接口
type AuditLogRepository interface {
	Save(log *model.AuditLogModel) error
	FindByResourceID(resourceID string) ([]*model.AuditLogModel, error)
	FindByActor(actorID string) ([]*model.AuditLogModel, error)
}

// auditLogRepository 审计日志仓储实现
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository 创建审计日志仓储
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Save 保存审计日志
func (r *auditLogRepository) Save(log *model.AuditLogModel) error {
	return r.db.Create(log).Error
}

// FindByResourceID 根据资源 ID 查找审计日志
func (r *auditLogRepository) FindByResourceID(resourceID string) ([]*model.AuditLogModel, error) {
	var logs []*model.AuditLogModel
	err := r.db.Where("resource_id = ?", resourceID).Order("created_at DESC").Find(&logs).Error
	return logs, err
}

// FindByActor 根据操作人查找审计日志
func (r *auditLogRepository) FindByActor(actorID string) ([]*model.AuditLogModel, error) {
	var logs []*model.AuditLogModel
	err := r.db.Where("actor_id = ?", actorID).Order("created_at DESC").Find(&logs).Error
	return logs, err
}
