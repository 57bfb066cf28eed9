package auth_test

import (
	"testing"

	"github.com/darkstoreops/approval-api/internal/auth"
	"github.com/darkstoreops/approval-api/internal/workflow"
	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

// TestAuthorizer_Admin 测试管理员可裁决所有业务域
func TestAuthorizer_Admin(t *testing.T) {
	authorizer := auth.NewAuthorizer(10000)
	admin := &auth.Principal{ID: "u1", Name: "Admin", Roles: []string{auth.RoleAdmin}}

	assert.NoError(t, authorizer.CanDecide(admin, workflow.DomainFinance, floatPtr(500000)))
	assert.NoError(t, authorizer.CanDecide(admin, workflow.DomainProcurement, nil))
}

// TestAuthorizer_DomainApprover 测试域审批员只能裁决本域
func TestAuthorizer_DomainApprover(t *testing.T) {
	authorizer := auth.NewAuthorizer(10000)
	approver := &auth.Principal{ID: "u2", Name: "Fin", Roles: []string{"finance-approver"}}

	assert.NoError(t, authorizer.CanDecide(approver, workflow.DomainFinance, floatPtr(500)))

	err := authorizer.CanDecide(approver, workflow.DomainProcurement, nil)
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

// TestAuthorizer_SeniorThreshold 测试财务域大额任务的高级审批员要求
func TestAuthorizer_SeniorThreshold(t *testing.T) {
	authorizer := auth.NewAuthorizer(10000)
	approver := &auth.Principal{ID: "u3", Name: "Fin", Roles: []string{"finance-approver"}}
	senior := &auth.Principal{ID: "u4", Name: "Sr", Roles: []string{"finance-approver", auth.RoleSeniorApprover}}

	// 阈值以下普通审批员即可
	assert.NoError(t, authorizer.CanDecide(approver, workflow.DomainFinance, floatPtr(9999.99)))

	// 达到阈值需要高级审批员
	err := authorizer.CanDecide(approver, workflow.DomainFinance, floatPtr(10000))
	assert.ErrorIs(t, err, workflow.ErrForbidden)
	assert.NoError(t, authorizer.CanDecide(senior, workflow.DomainFinance, floatPtr(10000)))

	// 无金额的财务任务不触发阈值检查
	assert.NoError(t, authorizer.CanDecide(approver, workflow.DomainFinance, nil))

	// 阈值只作用于财务域
	procApprover := &auth.Principal{ID: "u5", Name: "Proc", Roles: []string{"procurement-approver"}}
	assert.NoError(t, authorizer.CanDecide(procApprover, workflow.DomainProcurement, floatPtr(500000)))
}

// TestAuthorizer_ThresholdDisabled 测试阈值未配置时不生效
func TestAuthorizer_ThresholdDisabled(t *testing.T) {
	authorizer := auth.NewAuthorizer(0)
	approver := &auth.Principal{ID: "u6", Name: "Fin", Roles: []string{"finance-approver"}}

	assert.NoError(t, authorizer.CanDecide(approver, workflow.DomainFinance, floatPtr(1000000)))
}

// TestAuthorizer_NoPrincipal 测试缺少主体
func TestAuthorizer_NoPrincipal(t *testing.T) {
	authorizer := auth.NewAuthorizer(10000)

	err := authorizer.CanDecide(nil, workflow.DomainFinance, nil)
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

// TestApproverRole 测试业务域审批员角色命名
func TestApproverRole(t *testing.T) {
	assert.Equal(t, "finance-approver", auth.ApproverRole(workflow.DomainFinance))
	assert.Equal(t, "procurement-approver", auth.ApproverRole(workflow.DomainProcurement))
}
