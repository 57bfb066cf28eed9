package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/darkstoreops/approval-api/internal/auth"
	"github.com/darkstoreops/approval-api/internal/model"
	"github.com/darkstoreops/approval-api/internal/repository"
	"github.com/darkstoreops/approval-api/internal/service"
	"github.com/darkstoreops/approval-api/internal/utils"
	"github.com/darkstoreops/approval-api/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupDecisionTest 创建裁决服务及其依赖
func setupDecisionTest(t *testing.T) (service.DecisionService, repository.TaskRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&model.ApprovalTaskModel{}, &model.AuditLogModel{})
	require.NoError(t, err)

	taskRepo := repository.NewTaskRepository(db)
	auditSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	svc := service.NewDecisionService(taskRepo, auth.NewAuthorizer(10000), auditSvc, nil, nil)
	return svc, taskRepo
}

// savePendingTask 保存一个待审批任务
func savePendingTask(t *testing.T, repo repository.TaskRepository, id string, domain workflow.Domain, taskType string, amount *float64) {
	task := &model.ApprovalTaskModel{
		ID:            id,
		Domain:        string(domain),
		Type:          taskType,
		Description:   "test task " + id,
		Amount:        amount,
		RequesterName: "Priya Nair",
		RequesterRole: "store_manager",
		Status:        string(workflow.StatusPending),
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, repo.Save(task))
}

// adminContext 返回携带管理员主体的 context
func adminContext() context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{
		ID:    "user-001",
		Name:  "Asha Verma",
		Roles: []string{auth.RoleAdmin},
	})
}

// TestDecisionService_Approve 测试批准一个待审批任务
func TestDecisionService_Approve(t *testing.T) {
	svc, repo := setupDecisionTest(t)
	savePendingTask(t, repo, "task-001", workflow.DomainFinance, "refund", nil)

	task, err := svc.Decide(adminContext(), workflow.DomainFinance, "task-001", &service.DecideRequest{
		Decision: "approve",
		Note:     "verified against order history",
	})
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusApproved, task.Status)
	assert.Equal(t, "Asha Verma", task.ApproverName)
	assert.Equal(t, "verified against order history", task.DecisionNote)
	require.NotNil(t, task.DecidedAt)
	assert.WithinDuration(t, time.Now().UTC(), *task.DecidedAt, 5*time.Second)
}

// TestDecisionService_Reject 测试拒绝一个待审批任务
func TestDecisionService_Reject(t *testing.T) {
	svc, repo := setupDecisionTest(t)
	savePendingTask(t, repo, "task-001", workflow.DomainProcurement, "purchase_order", nil)

	task, err := svc.Decide(adminContext(), workflow.DomainProcurement, "task-001", &service.DecideRequest{
		Decision: "reject",
		Reason:   "duplicate of an open PO",
	})
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusRejected, task.Status)
	assert.Equal(t, "duplicate of an open PO", task.RejectionReason)
	require.NotNil(t, task.DecidedAt)
}

// TestDecisionService_AlreadyDecided 测试重复裁决返回冲突错误
func TestDecisionService_AlreadyDecided(t *testing.T) {
	svc, repo := setupDecisionTest(t)
	savePendingTask(t, repo, "task-001", workflow.DomainFinance, "refund", nil)

	_, err := svc.Decide(adminContext(), workflow.DomainFinance, "task-001", &service.DecideRequest{Decision: "approve"})
	require.NoError(t, err)

	_, err = svc.Decide(adminContext(), workflow.DomainFinance, "task-001", &service.DecideRequest{Decision: "reject"})
	assert.ErrorIs(t, err, workflow.ErrInvalidState)

	// 首次裁决结果保持不变
	m, err := repo.FindByID(workflow.DomainFinance, "task-001")
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusApproved), m.Status)
}

// TestDecisionService_NotFound 测试裁决不存在的任务
func TestDecisionService_NotFound(t *testing.T) {
	svc, _ := setupDecisionTest(t)

	_, err := svc.Decide(adminContext(), workflow.DomainFinance, "task-missing", &service.DecideRequest{Decision: "approve"})
	assert.ErrorIs(t, err, workflow.ErrTaskNotFound)
}

// TestDecisionService_InvalidDecision 测试非法裁决动作
func TestDecisionService_InvalidDecision(t *testing.T) {
	svc, repo := setupDecisionTest(t)
	savePendingTask(t, repo, "task-001", workflow.DomainFinance, "refund", nil)

	_, err := svc.Decide(adminContext(), workflow.DomainFinance, "task-001", &service.DecideRequest{Decision: "defer"})
	assert.ErrorIs(t, err, workflow.ErrInvalidDecision)

	// 任务保持待审批,没有副作用
	m, err := repo.FindByID(workflow.DomainFinance, "task-001")
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusPending), m.Status)
}

// TestDecisionService_Forbidden_NoRole 测试无权限主体被拒绝
func TestDecisionService_Forbidden_NoRole(t *testing.T) {
	svc, repo := setupDecisionTest(t)
	savePendingTask(t, repo, "task-001", workflow.DomainFinance, "refund", nil)

	ctx := auth.WithPrincipal(context.Background(), &auth.Principal{
		ID:    "user-002",
		Name:  "Rohit Shah",
		Roles: []string{"procurement-approver"},
	})

	_, err := svc.Decide(ctx, workflow.DomainFinance, "task-001", &service.DecideRequest{Decision: "approve"})
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	m, err := repo.FindByID(workflow.DomainFinance, "task-001")
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusPending), m.Status)
}

// TestDecisionService_Forbidden_LargeAmount 测试大额财务任务要求高级审批员
func TestDecisionService_Forbidden_LargeAmount(t *testing.T) {
	svc, repo := setupDecisionTest(t)
	amount := 250000.0
	savePendingTask(t, repo, "task-001", workflow.DomainFinance, "large_payment", &amount)

	approver := auth.WithPrincipal(context.Background(), &auth.Principal{
		ID:    "user-003",
		Name:  "Meera Joshi",
		Roles: []string{"finance-approver"},
	})
	_, err := svc.Decide(approver, workflow.DomainFinance, "task-001", &service.DecideRequest{Decision: "approve"})
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	senior := auth.WithPrincipal(context.Background(), &auth.Principal{
		ID:    "user-004",
		Name:  "Vikram Singh",
		Roles: []string{"finance-approver", auth.RoleSeniorApprover},
	})
	task, err := svc.Decide(senior, workflow.DomainFinance, "task-001", &service.DecideRequest{Decision: "approve"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, task.Status)
	assert.Equal(t, "Vikram Singh", task.ApproverName)
}

// TestDecisionService_NoteSanitized 测试审批意见清理
func TestDecisionService_NoteSanitized(t *testing.T) {
	svc, repo := setupDecisionTest(t)
	savePendingTask(t, repo, "task-001", workflow.DomainFinance, "refund", nil)

	task, err := svc.Decide(adminContext(), workflow.DomainFinance, "task-001", &service.DecideRequest{
		Decision: "approve",
		Note:     "<script>alert(1)</script> ok",
	})
	require.NoError(t, err)
	assert.NotContains(t, task.DecisionNote, "<script>")
	assert.Contains(t, task.DecisionNote, "ok")
}

// TestDecisionService_NoteTooLong 测试超长审批意见被拒绝
func TestDecisionService_NoteTooLong(t *testing.T) {
	svc, repo := setupDecisionTest(t)
	savePendingTask(t, repo, "task-001", workflow.DomainFinance, "refund", nil)

	_, err := svc.Decide(adminContext(), workflow.DomainFinance, "task-001", &service.DecideRequest{
		Decision: "approve",
		Note:     strings.Repeat("a", 2000),
	})
	assert.ErrorIs(t, err, utils.ErrStringTooLong)
}

// TestDecisionService_InvalidTaskID 测试非法任务 ID
func TestDecisionService_InvalidTaskID(t *testing.T) {
	svc, _ := setupDecisionTest(t)

	_, err := svc.Decide(adminContext(), workflow.DomainFinance, "task'; DROP TABLE--", &service.DecideRequest{Decision: "approve"})
	var vErr *utils.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
