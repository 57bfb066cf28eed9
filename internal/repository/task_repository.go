package repository

import (
	"errors"
	"time"

	"github.com/darkstoreops/approval-api/internal/model"
	"github.com/darkstoreops/approval-api/internal/workflow"
	"gorm.io/gorm"
)

// TaskRepository 审批任务仓储接口
type TaskRepository interface {
	Save(task *model.ApprovalTaskModel) error
	SaveBatch(tasks []*model.ApprovalTaskModel) error
	FindByID(domain workflow.Domain, id string) (*model.ApprovalTaskModel, error)
	FindByFilter(filter *TaskFilter) ([]*model.ApprovalTaskModel, error)
	CountPendingByType(domain workflow.Domain) (map[string]int64, error)
	CountDecidedSince(domain workflow.Domain, status workflow.Status, since time.Time) (int64, error)
	ApplyDecision(domain workflow.Domain, id string, upd *DecisionUpdate) (*model.ApprovalTaskModel, error)
}

// TaskFilter 任务查询过滤器
type TaskFilter struct {
	Domain    workflow.Domain
	Status    *workflow.Status
	Type      *workflow.TaskType
	MinAmount *float64
}

// DecisionUpdate 裁决写入参数
type DecisionUpdate struct {
	Outcome         workflow.Status
	ApproverName    string
	DecisionNote    string
	RejectionReason string
	DecidedAt       time.Time
}

// taskRepository 审批任务仓储实现
type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建审批任务仓储
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Save 保存任务
func (r *taskRepository) Save(task *model.ApprovalTaskModel) error {
	if err := task.Validate(); err != nil {
		return err
	}
	return r.db.Save(task).Error
}

// SaveBatch 批量保存任务
func (r *taskRepository) SaveBatch(tasks []*model.ApprovalTaskModel) error {
	if len(tasks) == 0 {
		return nil
	}
	for _, task := range tasks {
		if err := task.Validate(); err != nil {
			return err
		}
	}
	return r.db.CreateInBatches(tasks, 100).Error
}

// FindByID 根据 ID 查找任务
func (r *taskRepository) FindByID(domain workflow.Domain, id string) (*model.ApprovalTaskModel, error) {
	var task model.ApprovalTaskModel
	err := r.db.Where("id = ? AND domain = ?", id, string(domain)).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// FindByFilter 根据过滤器查找任务,排序策略由业务域描述符决定
func (r *taskRepository) FindByFilter(filter *TaskFilter) ([]*model.ApprovalTaskModel, error) {
	query := r.db.Model(&model.ApprovalTaskModel{}).
		Where("domain = ?", string(filter.Domain))

	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}

	if filter.Domain.Describe().OrderBy == workflow.OrderPriorityThenNewest {
		query = query.Order("priority_rank DESC").Order("created_at DESC")
	} else {
		query = query.Order("created_at DESC")
	}

	var tasks []*model.ApprovalTaskModel
	err := query.Find(&tasks).Error
	return tasks, err
}

// CountPendingByType 统计待审批任务数量,按任务类型分组
func (r *taskRepository) CountPendingByType(domain workflow.Domain) (map[string]int64, error) {
	var results []struct {
		Type  string
		Count int64
	}

	err := r.db.Model(&model.ApprovalTaskModel{}).
		Select("type, COUNT(*) as count").
		Where("domain = ? AND status = ?", string(domain), string(workflow.StatusPending)).
		Group("type").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(results))
	for _, r := range results {
		counts[r.Type] = r.Count
	}
	return counts, nil
}

// CountDecidedSince 统计指定时间之后裁决为给定终态的任务数量
func (r *taskRepository) CountDecidedSince(domain workflow.Domain, status workflow.Status, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.ApprovalTaskModel{}).
		Where("domain = ? AND status = ? AND decided_at >= ?", string(domain), string(status), since).
		Count(&count).Error
	return count, err
}

// ApplyDecision 原子地应用裁决
// 通过 UPDATE ... WHERE status = 'pending' 的受影响行数实现 check-and-set,
// 保证同一任务的并发裁决至多一次生效;0 行受影响时回查区分 NotFound 和 InvalidState
func (r *taskRepository) ApplyDecision(domain workflow.Domain, id string, upd *DecisionUpdate) (*model.ApprovalTaskModel, error) {
	updates := map[string]interface{}{
		"status":        string(upd.Outcome),
		"approver_name": upd.ApproverName,
		"decided_at":    upd.DecidedAt,
		"updated_at":    upd.DecidedAt,
	}
	if upd.Outcome == workflow.StatusApproved {
		updates["decision_note"] = upd.DecisionNote
	} else {
		updates["rejection_reason"] = upd.RejectionReason
		if upd.DecisionNote != "" {
			updates["decision_note"] = upd.DecisionNote
		}
	}

	res := r.db.Model(&model.ApprovalTaskModel{}).
		Where("id = ? AND domain = ? AND status = ?", id, string(domain), string(workflow.StatusPending)).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		var existing model.ApprovalTaskModel
		err := r.db.Where("id = ? AND domain = ?", id, string(domain)).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrTaskNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, workflow.ErrInvalidState
	}

	return r.FindByID(domain, id)
}
