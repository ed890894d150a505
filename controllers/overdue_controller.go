package controllers

import (
	"net/http"
	"strconv"
	"time"

	"school_library_backend/app"

	"github.com/gin-gonic/gin"
)

type OverdueController struct{ *Srv }

func NewOverdueController(s *Srv) *OverdueController { return &OverdueController{Srv: s} }

// Sweep promotes past-due loans. The Redis lock keeps concurrent triggers
// (endpoint + cron, or several instances) from racing each other.
func (oc *OverdueController) Sweep(c *gin.Context) {
	ctx := c.Request.Context()
	token, err := oc.Stock.AcquireSweepLock(ctx, 30*time.Second)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if token == "" {
		c.JSON(http.StatusConflict, app.H{"error": "a sweep is already running"})
		return
	}
	defer oc.Stock.ReleaseSweepLock(ctx, token)

	updated, err := oc.Sweeper.Sweep(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"updated": updated})
}

func (oc *OverdueController) Statistics(c *gin.Context) {
	stats, err := oc.Sweeper.Statistics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (oc *OverdueController) NearDue(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "3"))
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid days parameter"})
		return
	}
	loans, err := oc.Sweeper.FindNearDue(c.Request.Context(), days)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": loans})
}
