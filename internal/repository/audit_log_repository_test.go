package repository

import (
	"testing"
	"time"

	"github.com/Franklyn101/sagbama-land-authentication/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) AuditLogRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// SQLite 不支持 jsonb, 手动建表
	require.NoError(t, db.Exec(`
		CREATE TABLE audit_logs (
			id VARCHAR(64) PRIMARY KEY,
			actor_id VARCHAR(128) NOT NULL,
			action VARCHAR(32) NOT NULL,
			resource_type VARCHAR(32) NOT NULL,
			resource_id VARCHAR(64) NOT NULL,
			request_id VARCHAR(64),
			details TEXT,
			created_at DATETIME NOT NULL
		)
	`).Error)
	return NewAuditLogRepository(db)
}

func sampleLog(id, actorID, resourceID string, at time.Time) *model.AuditLogModel {
	return &model.AuditLogModel{
		ID:           id,
		ActorID:      actorID,
		Action:       "verify",
		ResourceType: "document",
		ResourceID:   resourceID,
		Details:      []byte(`{"verifier":"officer@sagbama.gov"}`),
		CreatedAt:    at,
	}
}

// TestAuditLogRepositorySaveAndFind 测试保存与按资源查询
func TestAuditLogRepositorySaveAndFind(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now()

	require.NoError(t, repo.Save(sampleLog("log-1", "officer@sagbama.gov", "doc-1", now.Add(-time.Hour))))
	require.NoError(t, repo.Save(sampleLog("log-2", "officer@sagbama.gov", "doc-1", now)))
	require.NoError(t, repo.Save(sampleLog("log-3", "admin@sagbama.gov", "doc-2", now)))

	logs, err := repo.FindByResourceID("doc-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	// 按时间倒序
	assert.Equal(t, "log-2", logs[0].ID)
	assert.Equal(t, "log-1", logs[1].ID)

	logs, err = repo.FindByActor("admin@sagbama.gov")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "doc-2", logs[0].ResourceID)

	logs, err = repo.FindByResourceID("missing")
	require.NoError(t, err)
	assert.Empty(t, logs)
}
