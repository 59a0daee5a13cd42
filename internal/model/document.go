package model

import (
	"errors"
	"time"
)

// DocumentStatus 文书状态
type DocumentStatus string

// 文书状态常量: pending 为初始状态, verified/rejected 为终态
const (
	StatusPending  DocumentStatus = "pending"
	StatusVerified DocumentStatus = "verified"
	StatusRejected DocumentStatus = "rejected"
)

// Valid 判断状态是否合法
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected:
		return true
	}
	return false
}

// Terminal 判断是否为终态
func (s DocumentStatus) Terminal() bool {
	return s == StatusVerified || s == StatusRejected
}

// DocumentRecord 土地文书记录
// 统一的超集实体: 简单状态形态和完整法律表单形态共用一个结构,
// 法律表单字段对旧数据保持零值
type DocumentRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Type       string `json:"type"` // survey/deed/receipt/certificate/other
	UploadedBy string `json:"uploadedBy"`

	// 法律表单字段
	CounselName      string `json:"counselName"`
	CounselAddress   string `json:"counselAddress"`
	CounselContact   string `json:"counselContact"`
	DocumentType     string `json:"documentType"`
	VendorName       string `json:"vendorName"`
	VendorAddress    string `json:"vendorAddress"`
	PurchaserName    string `json:"purchaserName"`
	PurchaserAddress string `json:"purchaserAddress"`
	SubjectMatter    string `json:"subjectMatter"`
	PurchaseValue    string `json:"purchaseValue"`
	LegalFee         string `json:"legalFee"`
	BranchCommission string `json:"branchCommission"`
	ExecutionDate    string `json:"executionDate"`
	BainNumber       string `json:"bainNumber"`
	CounselPhoto     string `json:"counselPhoto"` // data URL 编码的照片

	Status          DocumentStatus `json:"status"`
	VerifiedBy      string         `json:"verifiedBy,omitempty"`
	VerifiedAt      *time.Time     `json:"verifiedAt,omitempty"`
	RejectionReason string         `json:"rejectionReason,omitempty"`
	Reference       string         `json:"reference,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate 验证文书记录
func (d *DocumentRecord) Validate() error {
	if d.ID == "" {
		return errors.New("document ID is required")
	}
	if !d.Status.Valid() {
		return errors.New("document status is invalid")
	}
	if d.Status.Terminal() {
		if d.VerifiedBy == "" {
			return errors.New("verified by is required for terminal status")
		}
		if d.VerifiedAt == nil {
			return errors.New("verified at is required for terminal status")
		}
	}
	if d.UpdatedAt.Before(d.CreatedAt) {
		return errors.New("updated at must not precede created at")
	}
	return nil
}

// Normalize 在存储边界归一化记录
// 兼容早期仅含状态字段的存储形态: 缺失状态按 pending 处理,
// 时间戳缺失时互相补齐
func (d *DocumentRecord) Normalize() {
	if d.Status == "" {
		d.Status = StatusPending
	}
	if d.CreatedAt.IsZero() && !d.UpdatedAt.IsZero() {
		d.CreatedAt = d.UpdatedAt
	}
	if d.UpdatedAt.Before(d.CreatedAt) {
		d.UpdatedAt = d.CreatedAt
	}
}

// Clone 返回记录的独立副本
func (d *DocumentRecord) Clone() *DocumentRecord {
	if d == nil {
		return nil
	}
	cp := *d
	if d.VerifiedAt != nil {
		t := *d.VerifiedAt
		cp.VerifiedAt = &t
	}
	return &cp
}
