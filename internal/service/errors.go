package service

import "fmt"

// ValidationError 创建时必填字段缺失
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// NotFoundError 引用了不存在的文档 ID
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document not found: %s", e.ID)
}

// InvalidTransitionError 对非 pending 状态的文档执行了审核操作
type InvalidTransitionError struct {
	ID   string
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for document %s: %s -> %s", e.ID, e.From, e.To)
}
