package service

import (
	"context"
	"fmt"

	"github.com/darkstoreops/approval-api/internal/repository"
	"github.com/darkstoreops/approval-api/internal/utils"
	"github.com/darkstoreops/approval-api/internal/workflow"
)

// QueryService 任务查询服务接口
type QueryService interface {
	ListTasks(ctx context.Context, domain workflow.Domain, filter *ListTasksFilter) ([]*workflow.Task, error)
	GetTask(ctx context.Context, domain workflow.Domain, id string) (*workflow.Task, error)
}

// ListTasksFilter 任务列表查询过滤器
// Status 为空时返回全部状态;Type 和 MinAmount 为可选的收窄条件
type ListTasksFilter struct {
	Status    string
	Type      string
	MinAmount *float64
}

// queryService 任务查询服务实现
type queryService struct {
	taskRepo repository.TaskRepository
}

// NewQueryService 创建任务查询服务
func NewQueryService(taskRepo repository.TaskRepository) QueryService {
	return &queryService{taskRepo: taskRepo}
}

// ListTasks 列出任务,排序策略由业务域决定:
// 财务域按创建时间倒序,采购域先按优先级降序再按创建时间倒序
func (s *queryService) ListTasks(ctx context.Context, domain workflow.Domain, filter *ListTasksFilter) ([]*workflow.Task, error) {
	repoFilter := &repository.TaskFilter{Domain: domain}

	if filter != nil {
		if filter.Status != "" {
			status, ok := workflow.ParseStatus(filter.Status)
			if !ok {
				return nil, fmt.Errorf("%w: %q", workflow.ErrInvalidStatus, filter.Status)
			}
			repoFilter.Status = &status
		}
		if filter.Type != "" {
			taskType, err := domain.ParseType(filter.Type)
			if err != nil {
				return nil, err
			}
			repoFilter.Type = &taskType
		}
		repoFilter.MinAmount = filter.MinAmount
	}

	models, err := s.taskRepo.FindByFilter(repoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	tasks := make([]*workflow.Task, 0, len(models))
	for _, m := range models {
		tasks = append(tasks, m.ToTask())
	}
	return tasks, nil
}

// GetTask 根据 ID 获取任务详情
func (s *queryService) GetTask(ctx context.Context, domain workflow.Domain, id string) (*workflow.Task, error) {
	if err := utils.ValidateTaskID(id); err != nil {
		return nil, err
	}

	m, err := s.taskRepo.FindByID(domain, id)
	if err != nil {
		return nil, err
	}
	return m.ToTask(), nil
}
