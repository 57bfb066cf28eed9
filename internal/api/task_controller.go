package api

import (
	"net/http"
	"strconv"

	"github.com/darkstoreops/approval-api/internal/service"
	"github.com/darkstoreops/approval-api/internal/utils"
	"github.com/darkstoreops/approval-api/internal/workflow"
	"github.com/gin-gonic/gin"
)

// TaskController 审批任务控制器
type TaskController struct {
	queryService    service.QueryService
	decisionService service.DecisionService
}

// NewTaskController 创建审批任务控制器
func NewTaskController(queryService service.QueryService, decisionService service.DecisionService) *TaskController {
	return &TaskController{
		queryService:    queryService,
		decisionService: decisionService,
	}
}

// parseDomain 解析路径中的业务域并返回错误响应（如果无效）
func parseDomain(ctx *gin.Context) (workflow.Domain, bool) {
	domain, err := workflow.ParseDomain(ctx.Param("domain"))
	if err != nil {
		Error(ctx, http.StatusBadRequest, "invalid domain", err.Error())
		return "", false
	}
	return domain, true
}

// validateTaskID 验证任务 ID 并返回错误响应（如果无效）
func validateTaskID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateTaskID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid task ID", err.Error())
		return false
	}
	return true
}

// List 列出任务
// GET /api/v1/:domain/tasks?status=&type=&min_amount=
func (c *TaskController) List(ctx *gin.Context) {
	domain, ok := parseDomain(ctx)
	if !ok {
		return
	}

	filter := &service.ListTasksFilter{
		Status: ctx.Query("status"),
		Type:   ctx.Query("type"),
	}

	if raw := ctx.Query("min_amount"); raw != "" {
		minAmount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			Error(ctx, http.StatusBadRequest, "invalid min_amount", err.Error())
			return
		}
		filter.MinAmount = &minAmount
	}

	tasks, err := c.queryService.ListTasks(ctx.Request.Context(), domain, filter)
	if err != nil {
		DomainError(ctx, err, "list tasks")
		return
	}

	Success(ctx, tasks)
}

// Get 获取任务详情
// GET /api/v1/:domain/tasks/:id
func (c *TaskController) Get(ctx *gin.Context) {
	domain, ok := parseDomain(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !validateTaskID(ctx, id) {
		return
	}

	task, err := c.queryService.GetTask(ctx.Request.Context(), domain, id)
	if err != nil {
		DomainError(ctx, err, "get task")
		return
	}

	Success(ctx, task)
}

// Decide 提交裁决
// POST /api/v1/:domain/tasks/:id/decision
func (c *TaskController) Decide(ctx *gin.Context) {
	domain, ok := parseDomain(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !validateTaskID(ctx, id) {
		return
	}

	var req service.DecideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	task, err := c.decisionService.Decide(ctx.Request.Context(), domain, id, &req)
	if err != nil {
		DomainError(ctx, err, "decide task")
		return
	}

	Success(ctx, task)
}
