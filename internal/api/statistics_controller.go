package api

import (
	"github.com/Franklyn101/sagbama-land-authentication/internal/service"
	"github.com/gin-gonic/gin"
)

// StatisticsController 统计控制器
type StatisticsController struct {
	statisticsService service.StatisticsService
}

// NewStatisticsController 创建统计控制器
func NewStatisticsController(statisticsService service.StatisticsService) *StatisticsController {
	return &StatisticsController{
		statisticsService: statisticsService,
	}
}

// ByStatus 按状态统计
func (c *StatisticsController) ByStatus(ctx *gin.Context) {
	stats, err := c.statisticsService.GetDocumentStatisticsByStatus()
	if err != nil {
		HandleServiceError(ctx, err, "compute statistics")
		return
	}
	Success(ctx, stats)
}

// ByType 按文档类型统计
func (c *StatisticsController) ByType(ctx *gin.Context) {
	stats, err := c.statisticsService.GetDocumentStatisticsByType()
	if err != nil {
		HandleServiceError(ctx, err, "compute statistics")
		return
	}
	Success(ctx, stats)
}

// ByDay 按创建日期统计
func (c *StatisticsController) ByDay(ctx *gin.Context) {
	stats, err := c.statisticsService.GetDocumentStatisticsByDay()
	if err != nil {
		HandleServiceError(ctx, err, "compute statistics")
		return
	}
	Success(ctx, stats)
}

// Verifiers 审核人工作量统计
func (c *StatisticsController) Verifiers(ctx *gin.Context) {
	stats, err := c.statisticsService.GetVerifierStatistics()
	if err != nil {
		HandleServiceError(ctx, err, "compute statistics")
		return
	}
	Success(ctx, stats)
}
