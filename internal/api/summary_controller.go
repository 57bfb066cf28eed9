package api

import (
	"github.com/darkstoreops/approval-api/internal/service"
	"github.com/gin-gonic/gin"
)

// SummaryController 审批摘要控制器
type SummaryController struct {
	summaryService service.SummaryService
}

// NewSummaryController 创建审批摘要控制器
func NewSummaryController(summaryService service.SummaryService) *SummaryController {
	return &SummaryController{summaryService: summaryService}
}

// Summarize 获取业务域审批摘要
// GET /api/v1/:domain/summary
func (c *SummaryController) Summarize(ctx *gin.Context) {
	domain, ok := parseDomain(ctx)
	if !ok {
		return
	}

	summary, err := c.summaryService.Summarize(ctx.Request.Context(), domain)
	if err != nil {
		DomainError(ctx, err, "summarize")
		return
	}

	Success(ctx, summary)
}
