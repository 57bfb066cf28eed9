package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/darkstoreops/approval-api/internal/model"
	"github.com/darkstoreops/approval-api/internal/repository"
	"github.com/darkstoreops/approval-api/internal/service"
	"github.com/darkstoreops/approval-api/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupSummaryTest 创建摘要服务及任务仓储
func setupSummaryTest(t *testing.T) (service.SummaryService, repository.TaskRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&model.ApprovalTaskModel{})
	require.NoError(t, err)

	taskRepo := repository.NewTaskRepository(db)
	return service.NewSummaryService(taskRepo, nil), taskRepo
}

// saveTask 按给定状态保存任务
func saveTask(t *testing.T, repo repository.TaskRepository, id string, domain workflow.Domain, taskType string, status workflow.Status, decidedAt *time.Time) {
	task := &model.ApprovalTaskModel{
		ID:            id,
		Domain:        string(domain),
		Type:          taskType,
		Description:   "test task " + id,
		RequesterName: "Priya Nair",
		RequesterRole: "store_manager",
		Status:        string(status),
		DecidedAt:     decidedAt,
		CreatedAt:     time.Now().UTC().Add(-time.Hour),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, repo.Save(task))
}

// TestSummaryService_Empty 测试空库摘要
// 所有计数为零,pending_by_type 仍包含该域全部任务类型
func TestSummaryService_Empty(t *testing.T) {
	svc, _ := setupSummaryTest(t)

	summary, err := svc.Summarize(context.Background(), workflow.DomainFinance)
	require.NoError(t, err)

	assert.Equal(t, "finance", summary.Domain)
	assert.Equal(t, int64(0), summary.PendingRequestsCount)
	assert.Equal(t, int64(0), summary.ApprovedTodayCount)
	assert.Equal(t, int64(0), summary.RejectedTodayCount)

	require.Len(t, summary.PendingByType, 5)
	for _, taskType := range workflow.DomainFinance.Describe().TaskTypes {
		count, ok := summary.PendingByType[string(taskType)]
		assert.True(t, ok, "missing type %s", taskType)
		assert.Equal(t, int64(0), count)
	}
}

// TestSummaryService_Counts 测试摘要计数
func TestSummaryService_Counts(t *testing.T) {
	svc, repo := setupSummaryTest(t)

	now := time.Now().UTC()
	saveTask(t, repo, "task-001", workflow.DomainFinance, "refund", workflow.StatusPending, nil)
	saveTask(t, repo, "task-002", workflow.DomainFinance, "refund", workflow.StatusPending, nil)
	saveTask(t, repo, "task-003", workflow.DomainFinance, "invoice", workflow.StatusPending, nil)
	saveTask(t, repo, "task-004", workflow.DomainFinance, "refund", workflow.StatusApproved, &now)
	saveTask(t, repo, "task-005", workflow.DomainFinance, "invoice", workflow.StatusRejected, &now)

	// 其他业务域的任务不计入
	saveTask(t, repo, "task-006", workflow.DomainProcurement, "purchase_order", workflow.StatusPending, nil)

	summary, err := svc.Summarize(context.Background(), workflow.DomainFinance)
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.PendingRequestsCount)
	assert.Equal(t, int64(2), summary.PendingByType["refund"])
	assert.Equal(t, int64(1), summary.PendingByType["invoice"])
	assert.Equal(t, int64(0), summary.PendingByType["large_payment"])
	assert.Equal(t, int64(1), summary.ApprovedTodayCount)
	assert.Equal(t, int64(1), summary.RejectedTodayCount)
}

// TestSummaryService_TodayWindow 测试今日计数只统计当前 UTC 日
func TestSummaryService_TodayWindow(t *testing.T) {
	svc, repo := setupSummaryTest(t)

	now := time.Now().UTC()
	yesterday := now.Truncate(24 * time.Hour).Add(-time.Hour)

	saveTask(t, repo, "task-001", workflow.DomainFinance, "refund", workflow.StatusApproved, &now)
	saveTask(t, repo, "task-002", workflow.DomainFinance, "refund", workflow.StatusApproved, &yesterday)
	saveTask(t, repo, "task-003", workflow.DomainFinance, "invoice", workflow.StatusRejected, &yesterday)

	summary, err := svc.Summarize(context.Background(), workflow.DomainFinance)
	require.NoError(t, err)

	assert.Equal(t, int64(1), summary.ApprovedTodayCount)
	assert.Equal(t, int64(0), summary.RejectedTodayCount)
}

// TestSummaryService_ConsistentWithDecision 测试裁决后的摘要一致性
// 裁决一个待审批任务后: 待审批数减一,对应今日计数加一
func TestSummaryService_ConsistentWithDecision(t *testing.T) {
	svc, repo := setupSummaryTest(t)

	saveTask(t, repo, "task-001", workflow.DomainProcurement, "purchase_order", workflow.StatusPending, nil)
	saveTask(t, repo, "task-002", workflow.DomainProcurement, "vendor_onboarding", workflow.StatusPending, nil)

	before, err := svc.Summarize(context.Background(), workflow.DomainProcurement)
	require.NoError(t, err)
	assert.Equal(t, int64(2), before.PendingRequestsCount)

	_, err = repo.ApplyDecision(workflow.DomainProcurement, "task-001", &repository.DecisionUpdate{
		Outcome:      workflow.StatusApproved,
		ApproverName: "Asha Verma",
		DecidedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)

	after, err := svc.Summarize(context.Background(), workflow.DomainProcurement)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after.PendingRequestsCount)
	assert.Equal(t, int64(1), after.PendingByType["vendor_onboarding"])
	assert.Equal(t, int64(0), after.PendingByType["purchase_order"])
	assert.Equal(t, before.ApprovedTodayCount+1, after.ApprovedTodayCount)
	assert.Equal(t, before.RejectedTodayCount, after.RejectedTodayCount)
}
