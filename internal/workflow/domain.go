package workflow

// Domain 业务域
// 财务和采购两套审批流共用同一实现,通过域描述符参数化任务类型与排序策略
type Domain string

const (
	DomainFinance     Domain = "finance"
	DomainProcurement Domain = "procurement"
)

// OrderPolicy 列表排序策略
type OrderPolicy int

const (
	// OrderNewestFirst 按创建时间倒序
	OrderNewestFirst OrderPolicy = iota
	// OrderPriorityThenNewest 先按优先级降序,再按创建时间倒序
	OrderPriorityThenNewest
)

// Descriptor 业务域描述符
// 约束该域允许的任务类型、是否携带优先级以及列表排序策略
type Descriptor struct {
	Domain      Domain
	TaskTypes   []TaskType
	HasPriority bool
	OrderBy     OrderPolicy
}

var descriptors = map[Domain]*Descriptor{
	DomainFinance: {
		Domain: DomainFinance,
		TaskTypes: []TaskType{
			"refund",
			"invoice",
			"vendor_payment",
			"large_payment",
			"adjustment",
		},
		HasPriority: false,
		OrderBy:     OrderNewestFirst,
	},
	DomainProcurement: {
		Domain: DomainProcurement,
		TaskTypes: []TaskType{
			"vendor_onboarding",
			"purchase_order",
			"contract_renewal",
			"price_change",
			"payment_release",
		},
		HasPriority: true,
		OrderBy:     OrderPriorityThenNewest,
	},
}

// Domains 返回所有业务域
func Domains() []Domain {
	return []Domain{DomainFinance, DomainProcurement}
}

// ParseDomain 解析业务域字符串
func ParseDomain(s string) (Domain, error) {
	d := Domain(s)
	if _, ok := descriptors[d]; !ok {
		return "", ErrUnknownDomain
	}
	return d, nil
}

// Describe 返回业务域描述符
func (d Domain) Describe() *Descriptor {
	return descriptors[d]
}

// ValidType 判断任务类型是否属于该业务域
func (d Domain) ValidType(t TaskType) bool {
	desc, ok := descriptors[d]
	if !ok {
		return false
	}
	for _, tt := range desc.TaskTypes {
		if tt == t {
			return true
		}
	}
	return false
}

// ParseType 解析并校验任务类型
func (d Domain) ParseType(s string) (TaskType, error) {
	t := TaskType(s)
	if !d.ValidType(t) {
		return "", ErrUnknownType
	}
	return t, nil
}
