package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/darkstoreops/approval-api/internal/metrics"
	"github.com/darkstoreops/approval-api/internal/model"
	"github.com/darkstoreops/approval-api/internal/repository"
	"github.com/darkstoreops/approval-api/internal/workflow"
	"github.com/google/uuid"
)

// SeedService 种子数据服务
// 模拟上游财务/采购事件批量灌入待审批任务,生产部署中由真实事件源替代
type SeedService interface {
	Seed(ctx context.Context, domain workflow.Domain, count int) ([]*workflow.Task, error)
}

// requester 任务发起人目录项
type requester struct {
	name string
	role string
}

// seedCatalog 业务域的生成目录
type seedCatalog struct {
	requesters   []requester
	descriptions map[workflow.TaskType][]string
	amountRange  map[workflow.TaskType][2]float64 // 最小/最大金额,零值表示无金额
	relatedKey   map[workflow.TaskType]string     // 关联实体键,如 order/invoice/vendor
	currency     string
}

var seedCatalogs = map[workflow.Domain]*seedCatalog{
	workflow.DomainFinance: {
		requesters: []requester{
			{"Priya Nair", "store_manager"},
			{"Rahul Mehta", "finance_ops"},
			{"Ananya Iyer", "customer_support"},
			{"Vikram Singh", "zone_lead"},
			{"Sneha Kulkarni", "finance_ops"},
		},
		descriptions: map[workflow.TaskType][]string{
			"refund":         {"Customer refund for damaged items", "Refund for cancelled order", "Refund for missing items in delivery"},
			"invoice":        {"Monthly packaging supplies invoice", "Cold-chain logistics invoice", "Store maintenance invoice"},
			"vendor_payment": {"Weekly settlement for produce vendor", "Dairy vendor payment cycle", "Beverage distributor settlement"},
			"large_payment":  {"Quarterly warehouse lease payment", "Fleet insurance premium", "Annual software licensing payment"},
			"adjustment":     {"Stock write-off adjustment", "Cash register variance adjustment", "Promo discount reconciliation"},
		},
		amountRange: map[workflow.TaskType][2]float64{
			"refund":         {50, 2500},
			"invoice":        {1000, 50000},
			"vendor_payment": {5000, 150000},
			"large_payment":  {100000, 2000000},
			"adjustment":     {100, 10000},
		},
		relatedKey: map[workflow.TaskType]string{
			"refund":         "order",
			"invoice":        "invoice",
			"vendor_payment": "vendor",
			"large_payment":  "invoice",
			"adjustment":     "order",
		},
		currency: "INR",
	},
	workflow.DomainProcurement: {
		requesters: []requester{
			{"Arjun Rao", "category_manager"},
			{"Meera Joshi", "procurement_lead"},
			{"Karan Malhotra", "vendor_manager"},
			{"Divya Pillai", "merchandising"},
			{"Sanjay Gupta", "supply_planner"},
		},
		descriptions: map[workflow.TaskType][]string{
			"vendor_onboarding": {"Onboard new produce supplier", "Onboard regional dairy vendor", "Onboard packaging materials vendor"},
			"purchase_order":    {"Restock PO for beverages", "Bulk PO for festive season", "Replenishment PO for staples"},
			"contract_renewal":  {"Annual contract renewal with logistics partner", "Renewal of cold-storage agreement", "Renewal of cleaning services contract"},
			"price_change":      {"Price revision for dairy SKUs", "Seasonal price update for produce", "Cost price change from distributor"},
			"payment_release":   {"Release payment for completed PO", "Milestone payment for fit-out works", "Release withheld vendor payment"},
		},
		amountRange: map[workflow.TaskType][2]float64{
			"purchase_order":  {10000, 500000},
			"payment_release": {5000, 300000},
			// vendor_onboarding/contract_renewal/price_change 无固定金额
		},
		relatedKey: map[workflow.TaskType]string{
			"vendor_onboarding": "vendor",
			"purchase_order":    "po",
			"contract_renewal":  "contract",
			"price_change":      "sku",
			"payment_release":   "po",
		},
		currency: "INR",
	},
}

var priorities = []workflow.Priority{
	workflow.PriorityHigh,
	workflow.PriorityNormal,
	workflow.PriorityLow,
}

// seedService 种子数据服务实现
type seedService struct {
	taskRepo repository.TaskRepository
	rng      *rand.Rand
	now      func() time.Time
}

// SeedOption 种子服务选项
type SeedOption func(*seedService)

// WithRandSource 注入随机源,测试中用固定种子保证可重现
func WithRandSource(src rand.Source) SeedOption {
	return func(s *seedService) {
		s.rng = rand.New(src)
	}
}

// WithClock 注入时钟
func WithClock(now func() time.Time) SeedOption {
	return func(s *seedService) {
		s.now = now
	}
}

// NewSeedService 创建种子数据服务
func NewSeedService(taskRepo repository.TaskRepository, opts ...SeedOption) SeedService {
	s := &seedService{
		taskRepo: taskRepo,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed 为业务域批量生成待审批任务
func (s *seedService) Seed(ctx context.Context, domain workflow.Domain, count int) ([]*workflow.Task, error) {
	catalog, ok := seedCatalogs[domain]
	if !ok {
		return nil, workflow.ErrUnknownDomain
	}
	if count <= 0 {
		return nil, fmt.Errorf("seed count must be positive, got %d", count)
	}

	desc := domain.Describe()
	models := make([]*model.ApprovalTaskModel, 0, count)
	now := s.now().UTC()

	for i := 0; i < count; i++ {
		taskType := desc.TaskTypes[s.rng.Intn(len(desc.TaskTypes))]
		req := catalog.requesters[s.rng.Intn(len(catalog.requesters))]
		texts := catalog.descriptions[taskType]
		description := texts[s.rng.Intn(len(texts))]

		m := &model.ApprovalTaskModel{
			ID:            "task-" + uuid.New().String(),
			Domain:        string(domain),
			Type:          string(taskType),
			Description:   description,
			Details:       fmt.Sprintf("%s raised by %s", description, req.name),
			RequesterName: req.name,
			RequesterRole: req.role,
			Status:        string(workflow.StatusPending),
			// 创建时间散布在过去 72 小时内,让排序断言有区分度
			CreatedAt: now.Add(-time.Duration(s.rng.Intn(72*3600)) * time.Second),
			UpdatedAt: now,
		}

		if bounds, ok := catalog.amountRange[taskType]; ok {
			amount := bounds[0] + s.rng.Float64()*(bounds[1]-bounds[0])
			amount = float64(int(amount*100)) / 100
			m.Amount = &amount
			m.Currency = catalog.currency
		}

		if desc.HasPriority {
			priority := priorities[s.rng.Intn(len(priorities))]
			m.Priority = string(priority)
			m.PriorityRank = priority.Rank()
		}

		if key, ok := catalog.relatedKey[taskType]; ok {
			related := map[string]string{key: fmt.Sprintf("%s-%06d", key, s.rng.Intn(1000000))}
			m.RelatedIDs, _ = json.Marshal(related)
		}

		models = append(models, m)
	}

	if err := s.taskRepo.SaveBatch(models); err != nil {
		return nil, fmt.Errorf("failed to seed tasks: %w", err)
	}

	metrics.RecordTasksSeeded(string(domain), len(models))

	tasks := make([]*workflow.Task, 0, len(models))
	for _, m := range models {
		tasks = append(tasks, m.ToTask())
	}
	return tasks, nil
}
