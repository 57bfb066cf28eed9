package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/darkstoreops/approval-api/internal/api"
	"github.com/darkstoreops/approval-api/internal/auth"
	"github.com/darkstoreops/approval-api/internal/config"
	"github.com/darkstoreops/approval-api/internal/model"
	"github.com/darkstoreops/approval-api/internal/repository"
	"github.com/darkstoreops/approval-api/internal/service"
	"github.com/darkstoreops/approval-api/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupRouter 搭建测试路由与任务仓储
// 认证关闭,开发模式中间件注入管理员主体
func setupRouter(t *testing.T) (*gin.Engine, repository.TaskRepository) {
	gin.SetMode(gin.TestMode)

	// 静默请求日志
	api.SetLoggerOutput(io.Discard)
	api.SetLoggerLevel(logrus.ErrorLevel)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&model.ApprovalTaskModel{}, &model.AuditLogModel{})
	require.NoError(t, err)

	taskRepo := repository.NewTaskRepository(db)
	auditSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	querySvc := service.NewQueryService(taskRepo)
	summarySvc := service.NewSummaryService(taskRepo, nil)
	decisionSvc := service.NewDecisionService(taskRepo, auth.NewAuthorizer(10000), auditSvc, nil, nil)

	router := api.SetupRoutes(&api.RouterDeps{
		DB:                db,
		TaskController:    api.NewTaskController(querySvc, decisionSvc),
		SummaryController: api.NewSummaryController(summarySvc),
	}, config.Default())

	return router, taskRepo
}

// seedTask 插入一个待审批任务
func seedTask(t *testing.T, repo repository.TaskRepository, id string, domain workflow.Domain, taskType string) {
	task := &model.ApprovalTaskModel{
		ID:            id,
		Domain:        string(domain),
		Type:          taskType,
		Description:   "test task " + id,
		RequesterName: "Priya Nair",
		RequesterRole: "store_manager",
		Status:        string(workflow.StatusPending),
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, repo.Save(task))
}

// doRequest 发起测试请求
func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestListTasks 测试任务列表接口
func TestListTasks(t *testing.T) {
	router, repo := setupRouter(t)
	seedTask(t, repo, "task-001", workflow.DomainFinance, "refund")
	seedTask(t, repo, "task-002", workflow.DomainFinance, "invoice")

	w := doRequest(router, http.MethodGet, "/api/v1/finance/tasks", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    []workflow.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	assert.Len(t, resp.Data, 2)
}

// TestListTasks_InvalidDomain 测试未知业务域返回 400
func TestListTasks_InvalidDomain(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/hr/tasks", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestListTasks_InvalidFilter 测试非法过滤参数返回 400
func TestListTasks_InvalidFilter(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/finance/tasks?status=cancelled", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/finance/tasks?type=purchase_order", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/finance/tasks?min_amount=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestGetTask 测试任务详情接口
func TestGetTask(t *testing.T) {
	router, repo := setupRouter(t)
	seedTask(t, repo, "task-001", workflow.DomainFinance, "refund")

	w := doRequest(router, http.MethodGet, "/api/v1/finance/tasks/task-001", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 不存在返回 404
	w = doRequest(router, http.MethodGet, "/api/v1/finance/tasks/task-missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 跨域查询同样 404
	w = doRequest(router, http.MethodGet, "/api/v1/procurement/tasks/task-001", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestDecideTask 测试裁决接口
func TestDecideTask(t *testing.T) {
	router, repo := setupRouter(t)
	seedTask(t, repo, "task-001", workflow.DomainFinance, "refund")

	w := doRequest(router, http.MethodPost, "/api/v1/finance/tasks/task-001/decision",
		map[string]string{"decision": "approve", "note": "checked order history"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int           `json:"code"`
		Data workflow.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, workflow.StatusApproved, resp.Data.Status)
	assert.Equal(t, "checked order history", resp.Data.DecisionNote)
	assert.NotNil(t, resp.Data.DecidedAt)
}

// TestDecideTask_Conflict 测试重复裁决返回 409
func TestDecideTask_Conflict(t *testing.T) {
	router, repo := setupRouter(t)
	seedTask(t, repo, "task-001", workflow.DomainProcurement, "purchase_order")

	w := doRequest(router, http.MethodPost, "/api/v1/procurement/tasks/task-001/decision",
		map[string]string{"decision": "reject", "reason": "over budget"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/procurement/tasks/task-001/decision",
		map[string]string{"decision": "approve"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// TestDecideTask_BadRequest 测试非法裁决请求
func TestDecideTask_BadRequest(t *testing.T) {
	router, repo := setupRouter(t)
	seedTask(t, repo, "task-001", workflow.DomainFinance, "refund")

	// 缺少 decision 字段
	w := doRequest(router, http.MethodPost, "/api/v1/finance/tasks/task-001/decision",
		map[string]string{"note": "missing decision"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 非法裁决动作
	w = doRequest(router, http.MethodPost, "/api/v1/finance/tasks/task-001/decision",
		map[string]string{"decision": "defer"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestDecideTask_NotFound 测试裁决不存在的任务返回 404
func TestDecideTask_NotFound(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/finance/tasks/task-missing/decision",
		map[string]string{"decision": "approve"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestSummary 测试摘要接口
func TestSummary(t *testing.T) {
	router, repo := setupRouter(t)
	seedTask(t, repo, "task-001", workflow.DomainFinance, "refund")
	seedTask(t, repo, "task-002", workflow.DomainFinance, "refund")

	w := doRequest(router, http.MethodGet, "/api/v1/finance/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int             `json:"code"`
		Data service.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Data.PendingRequestsCount)
	assert.Equal(t, int64(2), resp.Data.PendingByType["refund"])
	assert.Len(t, resp.Data.PendingByType, 5)
}

// TestSummary_AfterDecision 测试裁决后摘要联动
func TestSummary_AfterDecision(t *testing.T) {
	router, repo := setupRouter(t)
	seedTask(t, repo, "task-001", workflow.DomainFinance, "refund")
	seedTask(t, repo, "task-002", workflow.DomainFinance, "invoice")

	w := doRequest(router, http.MethodPost, "/api/v1/finance/tasks/task-001/decision",
		map[string]string{"decision": "approve"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/finance/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data service.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.PendingRequestsCount)
	assert.Equal(t, int64(1), resp.Data.ApprovedTodayCount)
}

// TestHealth 测试健康检查接口
func TestHealth(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])

	// 未配置缓存时不输出缓存统计
	_, hasCache := resp["cache"]
	assert.False(t, hasCache)
}

// TestMetricsEndpoint 测试指标端点
func TestMetricsEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

// TestNoRoute 测试未匹配路由返回 JSON 404
func TestNoRoute(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v2/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

// TestRequestIDHeader 测试请求 ID 透传
func TestRequestIDHeader(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-12345")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-12345", w.Header().Get("X-Request-ID"))

	// 未提供时自动生成
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
