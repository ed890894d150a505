package controllers

import (
	"errors"
	"net/http"

	"school_library_backend/app"
	"school_library_backend/cache"
	"school_library_backend/config"
	"school_library_backend/db"
	"school_library_backend/services"

	"github.com/gin-gonic/gin"
)

// Srv wires the repo, the services and the cache for the controllers.
type Srv struct {
	Repo        *db.Repo
	Eligibility *services.EligibilityEngine
	Lifecycle   *services.LoanLifecycleService
	Sweeper     *services.OverdueSweeper
	Stock       *cache.StockCache
	Policy      config.Policy
}

func GetSrv(a *app.App) *Srv {
	repo := db.NewRepo(a.DB)
	policy := a.Config.Policy
	eligibility := services.NewEligibilityEngine(repo, repo, repo, policy)
	return &Srv{
		Repo:        repo,
		Eligibility: eligibility,
		Lifecycle:   services.NewLoanLifecycleService(eligibility, repo, repo, repo, policy),
		Sweeper:     services.NewOverdueSweeper(repo),
		Stock:       cache.NewStockCache(a.RDB, a.Config.StockCacheTTL),
		Policy:      policy,
	}
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, app.H{"error": ve.Message, "code": ve.Code})
		return
	}
	var ce *services.StateConflictError
	if errors.As(err, &ce) {
		c.JSON(http.StatusConflict, app.H{"error": ce.Message})
		return
	}
	switch {
	case errors.Is(err, db.ErrLoanNotFound),
		errors.Is(err, db.ErrPersonNotFound),
		errors.Is(err, db.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrShrinkBelowLoaned),
		errors.Is(err, db.ErrInsufficientStock),
		errors.Is(err, db.ErrResourceUnavailable):
		c.JSON(http.StatusUnprocessableEntity, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}
