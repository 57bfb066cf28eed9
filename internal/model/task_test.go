package model_test

import (
	"testing"
	"time"

	"github.com/darkstoreops/approval-api/internal/model"
	"github.com/darkstoreops/approval-api/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestApprovalTaskModel_Validate 测试任务模型校验
func TestApprovalTaskModel_Validate(t *testing.T) {
	valid := &model.ApprovalTaskModel{
		ID:          "task-001",
		Domain:      "finance",
		Type:        "refund",
		Description: "Customer refund",
		Status:      "pending",
	}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*model.ApprovalTaskModel)
	}{
		{"missing id", func(m *model.ApprovalTaskModel) { m.ID = "" }},
		{"missing domain", func(m *model.ApprovalTaskModel) { m.Domain = "" }},
		{"missing type", func(m *model.ApprovalTaskModel) { m.Type = "" }},
		{"missing description", func(m *model.ApprovalTaskModel) { m.Description = "" }},
		{"missing status", func(m *model.ApprovalTaskModel) { m.Status = "" }},
		{"invalid status", func(m *model.ApprovalTaskModel) { m.Status = "cancelled" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := *valid
			tc.mutate(&m)
			assert.Error(t, m.Validate())
		})
	}
}

// TestApprovalTaskModel_ToTask 测试存储模型到视图对象的转换
func TestApprovalTaskModel_ToTask(t *testing.T) {
	amount := 1500.75
	decidedAt := time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC)
	createdAt := decidedAt.Add(-2 * time.Hour)

	m := &model.ApprovalTaskModel{
		ID:            "task-001",
		Domain:        "procurement",
		Type:          "purchase_order",
		Description:   "Restock PO for beverages",
		Details:       "Raised after stockout alerts",
		Amount:        &amount,
		Currency:      "INR",
		RequesterName: "Arjun Rao",
		RequesterRole: "category_manager",
		Priority:      "high",
		PriorityRank:  2,
		Status:        "approved",
		ApproverName:  "Asha Verma",
		DecidedAt:     &decidedAt,
		DecisionNote:  "restock confirmed",
		RelatedIDs:    []byte(`{"po":"po-000123"}`),
		CreatedAt:     createdAt,
	}

	task := m.ToTask()
	assert.Equal(t, "task-001", task.ID)
	assert.Equal(t, workflow.DomainProcurement, task.Domain)
	assert.Equal(t, workflow.TaskType("purchase_order"), task.Type)
	assert.Equal(t, workflow.PriorityHigh, task.Priority)
	assert.Equal(t, workflow.StatusApproved, task.Status)
	require.NotNil(t, task.Amount)
	assert.Equal(t, amount, *task.Amount)
	assert.Equal(t, "po-000123", task.RelatedIDs["po"])
	assert.Equal(t, createdAt, task.CreatedAt)
	require.NotNil(t, task.DecidedAt)
	assert.Equal(t, decidedAt, *task.DecidedAt)
}

// TestApprovalTaskModel_ToTask_EmptyRelated 测试空关联 ID 转换
func TestApprovalTaskModel_ToTask_EmptyRelated(t *testing.T) {
	m := &model.ApprovalTaskModel{
		ID: "task-001", Domain: "finance", Type: "refund",
		Description: "refund", Status: "pending",
	}

	task := m.ToTask()
	assert.Nil(t, task.RelatedIDs)
	assert.Nil(t, task.Amount)
	assert.Nil(t, task.DecidedAt)
}
