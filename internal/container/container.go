package container

import (
	"fmt"
	"time"

	"github.com/Franklyn101/sagbama-land-authentication/internal/certificate"
	"github.com/Franklyn101/sagbama-land-authentication/internal/config"
	"github.com/Franklyn101/sagbama-land-authentication/internal/database"
	"github.com/Franklyn101/sagbama-land-authentication/internal/events"
	"github.com/Franklyn101/sagbama-land-authentication/internal/export"
	"github.com/Franklyn101/sagbama-land-authentication/internal/repository"
	"github.com/Franklyn101/sagbama-land-authentication/internal/service"
	"github.com/Franklyn101/sagbama-land-authentication/internal/storage"
	"github.com/Franklyn101/sagbama-land-authentication/internal/store"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、存储、服务和导出管道
type Container struct {
	cfg               *config.Config
	logger            *logrus.Logger
	db                *gorm.DB
	blobStore         storage.BlobStore
	documentStore     store.DocumentStore
	auditLogService   service.AuditLogService
	documentService   service.DocumentService
	statisticsService service.StatisticsService
	qrEncoder         certificate.QREncoder
	pipeline          *export.Pipeline
	hub               *events.Hub
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if logger == nil {
		logger = logrus.New()
	}

	// 1. 初始化数据库（带重试机制）
	// storage.backend 不为 database 时允许无数据库启动, 审计日志随之停用
	var db *gorm.DB
	if cfg.Storage.Backend == "database" {
		var err error
		db, err = database.ConnectWithRetry(cfg.Database, 3, time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		// 执行数据库迁移
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// 2. 初始化文档集合的底层存储
	var blobStore storage.BlobStore
	switch cfg.Storage.Backend {
	case "database":
		blobStore = storage.NewGormBlobStore(db)
	case "file":
		blobStore = storage.NewFileBlobStore(cfg.Storage.Dir)
	case "none":
		blobStore = storage.NewNoopBlobStore()
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}

	// 3. 初始化文档存储
	documentStore := store.NewDocumentStore(blobStore, cfg.Storage.Key, logger)

	// 4. 初始化审计日志服务
	var auditLogService service.AuditLogService
	if db != nil {
		auditLogService = service.NewAuditLogService(repository.NewAuditLogRepository(db))
	}

	// 5. 初始化 WebSocket 事件中心
	hub := events.NewHub(logger)

	// 6. 初始化文档生命周期服务
	documentService := service.NewDocumentService(documentStore, auditLogService, hub, logger)

	// 7. 初始化统计服务
	statisticsService := service.NewStatisticsService(documentStore)

	// 8. 初始化 QR 编码器: 本地栅格优先, 远端图表 URL 兜底
	qrEncoder := certificate.NewFallbackQREncoder(
		certificate.NewLocalQREncoder(cfg.Certificate.QRSize),
		certificate.NewRemoteQREncoder(cfg.Certificate.QRFallbackEndpoint, cfg.Certificate.QRSize),
		logger,
	)

	// 9. 初始化证书栅格化器与导出管道
	rasterizer, err := certificate.NewGGRasterizer(cfg.Export.RasterScale)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rasterizer: %w", err)
	}
	pipeline := export.NewPipeline(rasterizer, logger)

	return &Container{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		blobStore:         blobStore,
		documentStore:     documentStore,
		auditLogService:   auditLogService,
		documentService:   documentService,
		statisticsService: statisticsService,
		qrEncoder:         qrEncoder,
		pipeline:          pipeline,
		hub:               hub,
	}, nil
}

// Config 获取配置
func (c *Container) Config() *config.Config {
	return c.cfg
}

// Logger 获取日志记录器
func (c *Container) Logger() *logrus.Logger {
	return c.logger
}

// DB 获取数据库连接, 可能为 nil
func (c *Container) DB() *gorm.DB {
	return c.db
}

// DocumentStore 获取文档存储
func (c *Container) DocumentStore() store.DocumentStore {
	return c.documentStore
}

// AuditLogService 获取审计日志服务
func (c *Container) AuditLogService() service.AuditLogService {
	return c.auditLogService
}

// DocumentService 获取文档生命周期服务
func (c *Container) DocumentService() service.DocumentService {
	return c.documentService
}

// StatisticsService 获取统计服务
func (c *Container) StatisticsService() service.StatisticsService {
	return c.statisticsService
}

// QREncoder 获取 QR 编码器
func (c *Container) QREncoder() certificate.QREncoder {
	return c.qrEncoder
}

// ExportPipeline 获取证书导出管道
func (c *Container) ExportPipeline() *export.Pipeline {
	return c.pipeline
}

// Hub 获取 WebSocket 事件中心
func (c *Container) Hub() *events.Hub {
	return c.hub
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return nil
}
