package service

import (
	"context"
	"fmt"
	"time"

	"github.com/darkstoreops/approval-api/internal/cache"
	"github.com/darkstoreops/approval-api/internal/repository"
	"github.com/darkstoreops/approval-api/internal/workflow"
)

// SummaryService 摘要统计服务接口
type SummaryService interface {
	Summarize(ctx context.Context, domain workflow.Domain) (*Summary, error)
}

// Summary 业务域审批摘要
// 今日计数由裁决时间派生: decided_at 落在当前 UTC 日内的任务数,
// 因此跨日自然归零,无需单独的重置逻辑
type Summary struct {
	Domain               string           `json:"domain"`
	PendingRequestsCount int64            `json:"pending_requests_count"`
	PendingByType        map[string]int64 `json:"pending_by_type"`
	ApprovedTodayCount   int64            `json:"approved_today_count"`
	RejectedTodayCount   int64            `json:"rejected_today_count"`
	GeneratedAt          time.Time        `json:"generated_at"`
}

// summaryService 摘要统计服务实现
type summaryService struct {
	taskRepo     repository.TaskRepository
	summaryCache *cache.Cache
	now          func() time.Time
}

// NewSummaryService 创建摘要统计服务,summaryCache 可为 nil
func NewSummaryService(taskRepo repository.TaskRepository, summaryCache *cache.Cache) SummaryService {
	return &summaryService{
		taskRepo:     taskRepo,
		summaryCache: summaryCache,
		now:          time.Now,
	}
}

// summaryCacheKey 摘要缓存键
func summaryCacheKey(domain workflow.Domain) string {
	return "summary:" + string(domain)
}

// Summarize 统计业务域的审批摘要
// 配置了 Redis 时走旁路缓存,裁决会主动失效缓存
func (s *summaryService) Summarize(ctx context.Context, domain workflow.Domain) (*Summary, error) {
	if s.summaryCache != nil {
		var cached Summary
		if hit, err := s.summaryCache.Get(ctx, summaryCacheKey(domain), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	summary, err := s.compute(domain)
	if err != nil {
		return nil, err
	}

	if s.summaryCache != nil {
		_ = s.summaryCache.Set(ctx, summaryCacheKey(domain), summary)
	}
	return summary, nil
}

// compute 从存储计算摘要
func (s *summaryService) compute(domain workflow.Domain) (*Summary, error) {
	byType, err := s.taskRepo.CountPendingByType(domain)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending tasks: %w", err)
	}

	// 补齐未出现的类型,看板需要稳定的键集合
	pendingByType := make(map[string]int64, len(domain.Describe().TaskTypes))
	var pendingTotal int64
	for _, taskType := range domain.Describe().TaskTypes {
		count := byType[string(taskType)]
		pendingByType[string(taskType)] = count
		pendingTotal += count
	}

	dayStart := s.now().UTC().Truncate(24 * time.Hour)

	approvedToday, err := s.taskRepo.CountDecidedSince(domain, workflow.StatusApproved, dayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count approved tasks: %w", err)
	}

	rejectedToday, err := s.taskRepo.CountDecidedSince(domain, workflow.StatusRejected, dayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count rejected tasks: %w", err)
	}

	return &Summary{
		Domain:               string(domain),
		PendingRequestsCount: pendingTotal,
		PendingByType:        pendingByType,
		ApprovedTodayCount:   approvedToday,
		RejectedTodayCount:   rejectedToday,
		GeneratedAt:          s.now().UTC(),
	}, nil
}
