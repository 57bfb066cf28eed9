package auth

import (
	"fmt"

	"github.com/darkstoreops/approval-api/internal/workflow"
)

// 审批角色约定
// 管理员可裁决所有业务域;域审批员只能裁决本域任务;
// 财务域金额达到阈值的任务额外要求高级审批员角色
const (
	RoleAdmin          = "approvals-admin"
	RoleSeniorApprover = "senior-approver"
)

// ApproverRole 返回业务域对应的审批员角色
func ApproverRole(domain workflow.Domain) string {
	return string(domain) + "-approver"
}

// Authorizer 审批能力检查器
type Authorizer struct {
	// SeniorAmountThreshold 财务域需要高级审批员的金额阈值,<=0 表示不启用
	SeniorAmountThreshold float64
}

// NewAuthorizer 创建能力检查器
func NewAuthorizer(seniorAmountThreshold float64) *Authorizer {
	return &Authorizer{SeniorAmountThreshold: seniorAmountThreshold}
}

// CanDecide 检查主体是否可以裁决指定域和金额的任务
// 失败返回包装了 workflow.ErrForbidden 的错误,调用方据此映射为 403
func (a *Authorizer) CanDecide(p *Principal, domain workflow.Domain, amount *float64) error {
	if p == nil {
		return fmt.Errorf("%w: no principal", workflow.ErrForbidden)
	}

	if p.HasRole(RoleAdmin) {
		return nil
	}

	if !p.HasRole(ApproverRole(domain)) {
		return fmt.Errorf("%w: role %s required", workflow.ErrForbidden, ApproverRole(domain))
	}

	// 财务域大额任务需要高级审批员
	if domain == workflow.DomainFinance && a.SeniorAmountThreshold > 0 &&
		amount != nil && *amount >= a.SeniorAmountThreshold {
		if !p.HasRole(RoleSeniorApprover) {
			return fmt.Errorf("%w: amount %.2f requires role %s", workflow.ErrForbidden, *amount, RoleSeniorApprover)
		}
	}

	return nil
}
