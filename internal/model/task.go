package model

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/darkstoreops/approval-api/internal/workflow"
)

// ApprovalTaskModel 审批任务数据模型
type ApprovalTaskModel struct {
	ID              string     `gorm:"primaryKey;type:varchar(64)"`
	Domain          string     `gorm:"type:varchar(16);not null;index"` // 业务域: finance/procurement
	Type            string     `gorm:"type:varchar(32);not null;index"` // 任务类型
	Description     string     `gorm:"type:text;not null"`
	Details         string     `gorm:"type:text"`
	Amount          *float64   `gorm:"type:numeric"` // 采购域任务可为空
	Currency        string     `gorm:"type:varchar(8)"`
	RequesterName   string     `gorm:"type:varchar(128);not null"`
	RequesterRole   string     `gorm:"type:varchar(64)"`
	Priority        string     `gorm:"type:varchar(8)"`                 // 仅采购域任务携带
	PriorityRank    int        `gorm:"not null;default:0;index"`        // 冗余的排序权重,创建时写入
	Status          string     `gorm:"type:varchar(16);not null;index"` // 生命周期状态
	ApproverName    string     `gorm:"type:varchar(128)"`
	DecidedAt       *time.Time `gorm:"index"` // 裁决时间,单次写入
	DecisionNote    string     `gorm:"type:text"`
	RejectionReason string     `gorm:"type:text"`
	RelatedIDs      []byte     `gorm:"type:jsonb"` // 关联的业务实体 ID,仅作展示
	CreatedAt       time.Time  `gorm:"not null;index"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName 指定表名
func (ApprovalTaskModel) TableName() string {
	return "approval_tasks"
}

// Validate 验证任务模型
func (tm *ApprovalTaskModel) Validate() error {
	if tm.ID == "" {
		return errors.New("task ID is required")
	}
	if tm.Domain == "" {
		return errors.New("task domain is required")
	}
	if tm.Type == "" {
		return errors.New("task type is required")
	}
	if tm.Description == "" {
		return errors.New("task description is required")
	}
	if tm.Status == "" {
		return errors.New("task status is required")
	}
	if _, ok := workflow.ParseStatus(tm.Status); !ok {
		return errors.New("task status is invalid")
	}
	return nil
}

// ToTask 转换为工作流视图对象
func (tm *ApprovalTaskModel) ToTask() *workflow.Task {
	var related map[string]string
	if len(tm.RelatedIDs) > 0 {
		_ = json.Unmarshal(tm.RelatedIDs, &related)
	}

	return &workflow.Task{
		ID:              tm.ID,
		Domain:          workflow.Domain(tm.Domain),
		Type:            workflow.TaskType(tm.Type),
		Description:     tm.Description,
		Details:         tm.Details,
		Amount:          tm.Amount,
		Currency:        tm.Currency,
		RequesterName:   tm.RequesterName,
		RequesterRole:   tm.RequesterRole,
		Priority:        workflow.Priority(tm.Priority),
		Status:          workflow.Status(tm.Status),
		ApproverName:    tm.ApproverName,
		DecidedAt:       tm.DecidedAt,
		DecisionNote:    tm.DecisionNote,
		RejectionReason: tm.RejectionReason,
		RelatedIDs:      related,
		CreatedAt:       tm.CreatedAt,
	}
}
