package job

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cradi/services"
)

// JobController exposes the scheduled jobs for manual runs.
func JobController(router *gin.Engine, sweeper *services.EscalationSweeper, aggregator *services.StatisticsAggregator) {
	routes := router.Group("/jobs")
	{
		routes.POST("/escalation", func(c *gin.Context) {
			RunEscalation(c, sweeper)
		})
		routes.POST("/statistics", func(c *gin.Context) {
			RunStatistics(c, aggregator)
		})
	}
}

func RunEscalation(c *gin.Context, sweeper *services.EscalationSweeper) {
	result, err := sweeper.Sweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Escalation sweep failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func RunStatistics(c *gin.Context, aggregator *services.StatisticsAggregator) {
	snapshot, err := aggregator.Aggregate(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Statistics aggregation failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": snapshot})
}
