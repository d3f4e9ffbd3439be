package statistics

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cradi/repository"
	"cradi/services"
)

func StatisticsController(router *gin.Engine, aggregator *services.StatisticsAggregator) {
	router.GET("/statistics/latest", func(c *gin.Context) {
		LatestStatistics(c, aggregator)
	})
}

func LatestStatistics(c *gin.Context, aggregator *services.StatisticsAggregator) {
	snapshot, err := aggregator.Latest(c.Request.Context())
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No statistics available yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
