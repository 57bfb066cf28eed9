package container

import (
	"context"
	"fmt"
	"time"

	"github.com/darkstoreops/approval-api/internal/auth"
	"github.com/darkstoreops/approval-api/internal/cache"
	"github.com/darkstoreops/approval-api/internal/config"
	"github.com/darkstoreops/approval-api/internal/database"
	"github.com/darkstoreops/approval-api/internal/events"
	"github.com/darkstoreops/approval-api/internal/repository"
	"github.com/darkstoreops/approval-api/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理数据库、缓存、事件通道、仓储与服务的装配和生命周期
type Container struct {
	cfg          *config.Config
	db           *gorm.DB
	redisClient  *redis.Client
	summaryCache *cache.Cache
	hub          *events.Hub
	publisher    *events.Publisher
	validator    *auth.TokenValidator
	authorizer   *auth.Authorizer

	taskRepo    repository.TaskRepository
	auditRepo   repository.AuditLogRepository
	auditLogSvc service.AuditLogService
	querySvc    service.QueryService
	summarySvc  service.SummaryService
	decisionSvc service.DecisionService
	seedSvc     service.SeedService
}

// NewContainer 创建依赖注入容器
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{cfg: cfg}

	// 1. 初始化数据库（带重试,指数退避）
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = db

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. 初始化 Redis 摘要缓存（可选）
	if cfg.Redis.Enabled {
		c.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		c.summaryCache = cache.New(c.redisClient, "approvals:",
			time.Duration(cfg.Redis.SummaryTTL)*time.Second)
	}

	// 3. 初始化 NATS 发布器（可选,连接失败只降级不阻塞启动）
	if cfg.NATS.Enabled {
		publisher := events.NewPublisher(cfg.NATS.URL)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := publisher.Connect(ctx)
		cancel()
		if err != nil {
			if logger != nil {
				logger.WithError(err).Warn("NATS unavailable, decision events will not be published")
			}
		} else {
			c.publisher = publisher
		}
	}

	// 4. WebSocket Hub
	c.hub = events.NewHub()
	go c.hub.Run()

	// 5. 认证与审批能力
	if cfg.Auth.Enabled {
		if cfg.Auth.Issuer == "" {
			return nil, fmt.Errorf("auth enabled but issuer not configured")
		}
		c.validator = auth.NewTokenValidator(cfg.Auth.Issuer)
	}
	c.authorizer = auth.NewAuthorizer(cfg.Auth.SeniorAmountThreshold)

	// 6. 仓储与服务
	c.taskRepo = repository.NewTaskRepository(db)
	c.auditRepo = repository.NewAuditLogRepository(db)
	c.auditLogSvc = service.NewAuditLogService(c.auditRepo)
	c.querySvc = service.NewQueryService(c.taskRepo)
	c.summarySvc = service.NewSummaryService(c.taskRepo, c.summaryCache)
	c.decisionSvc = service.NewDecisionService(
		c.taskRepo,
		c.authorizer,
		c.auditLogSvc,
		events.NewFanout(c.hub, c.publisher, logger),
		c.summaryCache,
	)
	c.seedSvc = service.NewSeedService(c.taskRepo)

	return c, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// SummaryCache 获取摘要缓存,未启用时为 nil
func (c *Container) SummaryCache() *cache.Cache {
	return c.summaryCache
}

// Hub 获取 WebSocket Hub
func (c *Container) Hub() *events.Hub {
	return c.hub
}

// Validator 获取 Token 验证器,认证关闭时为 nil
func (c *Container) Validator() *auth.TokenValidator {
	return c.validator
}

// TaskRepository 获取任务仓储
func (c *Container) TaskRepository() repository.TaskRepository {
	return c.taskRepo
}

// QueryService 获取查询服务
func (c *Container) QueryService() service.QueryService {
	return c.querySvc
}

// SummaryService 获取摘要服务
func (c *Container) SummaryService() service.SummaryService {
	return c.summarySvc
}

// DecisionService 获取裁决服务
func (c *Container) DecisionService() service.DecisionService {
	return c.decisionSvc
}

// SeedService 获取种子数据服务
func (c *Container) SeedService() service.SeedService {
	return c.seedSvc
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.publisher != nil {
		c.publisher.Close()
	}

	if c.redisClient != nil {
		_ = c.redisClient.Close()
	}

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	return nil
}
