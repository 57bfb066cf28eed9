package metrics

import (
	"context"
	"time"

	"github.com/darkstoreops/approval-api/internal/repository"
	"github.com/darkstoreops/approval-api/internal/workflow"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Collector 周期性采集任务分布和连接池指标
type Collector struct {
	db       *gorm.DB
	taskRepo repository.TaskRepository
	interval time.Duration
	logger   *logrus.Logger
}

// NewCollector 创建指标采集器
func NewCollector(db *gorm.DB, taskRepo repository.TaskRepository, interval time.Duration, logger *logrus.Logger) *Collector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Collector{
		db:       db,
		taskRepo: taskRepo,
		interval: interval,
		logger:   logger,
	}
}

// Run 启动采集循环,context 取消后退出
func (c *Collector) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

// collect 执行一次采集
func (c *Collector) collect() {
	if err := UpdateDatabaseConnections(c.db); err != nil && c.logger != nil {
		c.logger.WithError(err).Warn("failed to update database connection metrics")
	}

	for _, domain := range workflow.Domains() {
		counts, err := c.taskRepo.CountPendingByType(domain)
		if err != nil {
			if c.logger != nil {
				c.logger.WithError(err).WithField("domain", domain).Warn("failed to collect pending task metrics")
			}
			continue
		}
		// 未出现在统计中的类型归零,避免残留旧值
		for _, taskType := range domain.Describe().TaskTypes {
			UpdatePendingTasks(string(domain), string(taskType), float64(counts[string(taskType)]))
		}
	}
}
