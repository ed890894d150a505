package controllers

import (
	"net/http"

	"school_library_backend/app"
	"school_library_backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ResourceController struct{ *Srv }

func NewResourceController(s *Srv) *ResourceController { return &ResourceController{Srv: s} }

func (rc *ResourceController) CreateResource(c *gin.Context) {
	var in struct {
		Title         string `json:"title" binding:"required"`
		ISBN          string `json:"isbn"`
		TotalQuantity int    `json:"totalQuantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	res := &models.Resource{
		ID:             uuid.NewString(),
		Title:          in.Title,
		ISBN:           in.ISBN,
		TotalQuantity:  in.TotalQuantity,
		Available:      true,
		ConditionState: models.ConditionGood,
	}
	if err := rc.Repo.CreateResource(c.Request.Context(), res); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (rc *ResourceController) ListResources(c *gin.Context) {
	rs, err := rc.Repo.ListResources(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"resources": rs})
}

func (rc *ResourceController) FindByISBN(c *gin.Context) {
	res, err := rc.Repo.FindResourceByISBN(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetStock serves the counters, cache first.
func (rc *ResourceController) GetStock(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if info, err := rc.Stock.Get(ctx, id); err == nil && info != nil {
		c.JSON(http.StatusOK, info)
		return
	}
	info, err := rc.Repo.GetStockInfo(ctx, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	_ = rc.Stock.Set(ctx, info)
	c.JSON(http.StatusOK, info)
}

func (rc *ResourceController) SetAvailability(c *gin.Context) {
	var in struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if err := rc.Repo.SetAvailability(c.Request.Context(), id, *in.Available); err != nil {
		writeServiceError(c, err)
		return
	}
	rc.Stock.Invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (rc *ResourceController) UpdateTotalQuantity(c *gin.Context) {
	var in struct {
		TotalQuantity int `json:"totalQuantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if err := rc.Repo.UpdateTotalQuantity(c.Request.Context(), id, in.TotalQuantity); err != nil {
		writeServiceError(c, err)
		return
	}
	rc.Stock.Invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// Reconcile recomputes the loaned counters from the outstanding loans.
func (rc *ResourceController) Reconcile(c *gin.Context) {
	corrected, err := rc.Repo.SyncLoanCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"corrected": corrected})
}
