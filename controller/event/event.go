package event

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cradi/dto"
	"cradi/services"
)

// EventController receives the report store's create and update hooks.
func EventController(router *gin.Engine, intake *services.IntakeNotifier, alert *services.AlertDistributor) {
	routes := router.Group("/events/reports")
	{
		routes.POST("/created", func(c *gin.Context) {
			ReportCreated(c, intake)
		})
		routes.POST("/updated", func(c *gin.Context) {
			ReportUpdated(c, alert)
		})
	}
}

func ReportCreated(c *gin.Context, intake *services.IntakeNotifier) {
	var req dto.ReportCreatedEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	result, err := intake.HandleCreated(c.Request.Context(), req.Report.ToModel())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to notify peers", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func ReportUpdated(c *gin.Context, alert *services.AlertDistributor) {
	var req dto.ReportUpdatedEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	result, err := alert.HandleUpdated(c.Request.Context(), req.Report.ToModel(), req.PreviousModel())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to distribute alert", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}
