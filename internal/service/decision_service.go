package service

import (
	"context"
	"time"

	"github.com/darkstoreops/approval-api/internal/auth"
	"github.com/darkstoreops/approval-api/internal/cache"
	"github.com/darkstoreops/approval-api/internal/events"
	"github.com/darkstoreops/approval-api/internal/metrics"
	"github.com/darkstoreops/approval-api/internal/repository"
	"github.com/darkstoreops/approval-api/internal/utils"
	"github.com/darkstoreops/approval-api/internal/workflow"
)

// maxNoteLength 审批意见与拒绝原因的最大长度
const maxNoteLength = 1000

// DecisionService 裁决服务接口
type DecisionService interface {
	Decide(ctx context.Context, domain workflow.Domain, id string, req *DecideRequest) (*workflow.Task, error)
}

// DecideRequest 裁决请求
type DecideRequest struct {
	Decision string `json:"decision" binding:"required"` // approve 或 reject
	Note     string `json:"note"`                        // 审批意见
	Reason   string `json:"reason"`                      // 拒绝原因
}

// decisionService 裁决服务实现
type decisionService struct {
	taskRepo     repository.TaskRepository
	authorizer   *auth.Authorizer
	auditLogSvc  AuditLogService
	notifier     events.Notifier
	summaryCache *cache.Cache
}

// NewDecisionService 创建裁决服务
// authorizer、auditLogSvc、notifier、summaryCache 均可为 nil
func NewDecisionService(
	taskRepo repository.TaskRepository,
	authorizer *auth.Authorizer,
	auditLogSvc AuditLogService,
	notifier events.Notifier,
	summaryCache *cache.Cache,
) DecisionService {
	return &decisionService{
		taskRepo:     taskRepo,
		authorizer:   authorizer,
		auditLogSvc:  auditLogSvc,
		notifier:     notifier,
		summaryCache: summaryCache,
	}
}

// Decide 对单个任务执行裁决
// 流程: 校验请求 -> 读取任务做能力检查 -> 原子 check-and-set -> 指标/审计/事件
// 并发裁决同一任务时,只有赢得 CAS 的一次生效,其余返回 ErrInvalidState
func (s *decisionService) Decide(ctx context.Context, domain workflow.Domain, id string, req *DecideRequest) (*workflow.Task, error) {
	if err := utils.ValidateTaskID(id); err != nil {
		return nil, err
	}

	decision, err := workflow.ParseDecision(req.Decision)
	if err != nil {
		return nil, err
	}

	note, err := utils.ValidateNote(req.Note, maxNoteLength)
	if err != nil {
		return nil, err
	}
	reason, err := utils.ValidateNote(req.Reason, maxNoteLength)
	if err != nil {
		return nil, err
	}

	// 读取任务: 不存在时直接失败,不产生任何副作用
	current, err := s.taskRepo.FindByID(domain, id)
	if err != nil {
		return nil, err
	}
	if workflow.Status(current.Status).Terminal() {
		return nil, workflow.ErrInvalidState
	}

	// 能力检查
	principal, _ := auth.PrincipalFromContext(ctx)
	if s.authorizer != nil {
		if err := s.authorizer.CanDecide(principal, domain, current.Amount); err != nil {
			return nil, err
		}
	}

	approverName := ""
	actorID := ""
	if principal != nil {
		approverName = principal.Name
		actorID = principal.ID
	}

	// 原子应用裁决;预检之后任务仍可能被并发请求抢先裁决,以 CAS 结果为准
	updated, err := s.taskRepo.ApplyDecision(domain, id, &repository.DecisionUpdate{
		Outcome:         decision.Outcome(),
		ApproverName:    approverName,
		DecisionNote:    note,
		RejectionReason: reason,
		DecidedAt:       time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	task := updated.ToTask()

	// 记录业务指标
	metrics.RecordDecision(string(domain), string(task.Status))

	// 摘要缓存失效,让下一次 summarize 读到最新计数
	if s.summaryCache != nil {
		_ = s.summaryCache.Delete(ctx, summaryCacheKey(domain))
	}

	// 记录审计日志,失败不影响裁决结果
	if s.auditLogSvc != nil && actorID != "" {
		_ = s.auditLogSvc.RecordAction(ctx, actorID, string(decision), "task", id, map[string]string{
			"task_id":  id,
			"domain":   string(domain),
			"decision": string(decision),
		})
	}

	// 推送裁决事件
	if s.notifier != nil {
		s.notifier.NotifyDecision(ctx, &events.DecisionEvent{
			Domain:    domain,
			Task:      task,
			Outcome:   task.Status,
			Actor:     approverName,
			DecidedAt: *task.DecidedAt,
		})
	}

	return task, nil
}
