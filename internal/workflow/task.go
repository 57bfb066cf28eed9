package workflow

import "time"

// Status 任务生命周期状态
// 状态机: pending -> approved 或 pending -> rejected,终态不可再变更
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus 解析状态字符串
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), true
	}
	return "", false
}

// Terminal 判断是否为终态
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// TaskType 任务类型,取值由所属业务域的描述符约束
type TaskType string

// Priority 任务优先级,仅采购域任务携带,只影响列表排序
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// priorityRanks 优先级排序权重,数值大的排前面
var priorityRanks = map[Priority]int{
	PriorityHigh:   2,
	PriorityNormal: 1,
	PriorityLow:    0,
}

// Rank 返回优先级排序权重,未知优先级按最低处理
func (p Priority) Rank() int {
	return priorityRanks[p]
}

// ParsePriority 解析优先级字符串
func ParsePriority(s string) (Priority, bool) {
	switch Priority(s) {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return Priority(s), true
	}
	return "", false
}

// Decision 裁决动作
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision 解析裁决动作
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject:
		return Decision(s), nil
	}
	return "", ErrInvalidDecision
}

// Outcome 返回裁决动作对应的终态
func (d Decision) Outcome() Status {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// Task 审批任务视图对象
// 由存储模型转换而来,是 API 返回和事件推送使用的统一结构
type Task struct {
	ID              string            `json:"id"`
	Domain          Domain            `json:"domain"`
	Type            TaskType          `json:"type"`
	Description     string            `json:"description"`
	Details         string            `json:"details,omitempty"`
	Amount          *float64          `json:"amount,omitempty"`
	Currency        string            `json:"currency,omitempty"`
	RequesterName   string            `json:"requester_name"`
	RequesterRole   string            `json:"requester_role"`
	Priority        Priority          `json:"priority,omitempty"`
	Status          Status            `json:"status"`
	ApproverName    string            `json:"approver_name,omitempty"`
	DecidedAt       *time.Time        `json:"decided_at,omitempty"`
	DecisionNote    string            `json:"decision_note,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	RelatedIDs      map[string]string `json:"related_ids,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}
