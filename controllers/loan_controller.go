package controllers

import (
	"net/http"
	"time"

	"school_library_backend/app"
	"school_library_backend/db"
	"school_library_backend/services"

	"github.com/gin-gonic/gin"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

func (lc *LoanController) CreateLoan(c *gin.Context) {
	var in struct {
		PersonID     string `json:"personId" binding:"required,uuid"`
		ResourceID   string `json:"resourceId" binding:"required,uuid"`
		Quantity     int    `json:"quantity" binding:"required,min=1"`
		Observations string `json:"observations"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	loan, err := lc.Lifecycle.Create(c.Request.Context(), services.CreateLoanInput{
		PersonID:     in.PersonID,
		ResourceID:   in.ResourceID,
		Quantity:     in.Quantity,
		Observations: in.Observations,
		ActorID:      app.ActorID(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	lc.Stock.Invalidate(c.Request.Context(), in.ResourceID)
	c.JSON(http.StatusCreated, loan)
}

func (lc *LoanController) ListLoans(c *gin.Context) {
	rows, err := lc.Repo.ListLoans(c.Request.Context(), db.LoanQuery{
		PersonID:   c.Query("personId"),
		ResourceID: c.Query("resourceId"),
		Status:     c.Query("status"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": rows})
}

func (lc *LoanController) Renew(c *gin.Context) {
	var in struct {
		AdditionalDays int `json:"additionalDays" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	loan, err := lc.Lifecycle.Renew(c.Request.Context(), c.Param("id"), in.AdditionalDays, app.ActorID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (lc *LoanController) Return(c *gin.Context) {
	var in struct {
		ReturnDate        *time.Time `json:"returnDate"`
		ResourceCondition string     `json:"resourceCondition"`
		Observations      string     `json:"observations"`
	}
	_ = c.ShouldBindJSON(&in)

	summary, err := lc.Lifecycle.ProcessReturn(c.Request.Context(), services.ReturnInput{
		LoanID:            c.Param("id"),
		ReturnDate:        in.ReturnDate,
		ResourceCondition: in.ResourceCondition,
		Observations:      in.Observations,
		ActorID:           app.ActorID(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	lc.Stock.Invalidate(c.Request.Context(), summary.Loan.ResourceID)
	c.JSON(http.StatusOK, summary)
}

func (lc *LoanController) MarkLost(c *gin.Context) {
	var in struct {
		Observations string `json:"observations" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	loan, err := lc.Lifecycle.MarkAsLost(c.Request.Context(), services.LostInput{
		LoanID:       c.Param("id"),
		Observations: in.Observations,
		ActorID:      app.ActorID(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	lc.Stock.Invalidate(c.Request.Context(), loan.ResourceID)
	c.JSON(http.StatusOK, loan)
}

func (lc *LoanController) BatchReturns(c *gin.Context) {
	var in struct {
		Returns []struct {
			LoanID            string     `json:"loanId" binding:"required,uuid"`
			ReturnDate        *time.Time `json:"returnDate"`
			ResourceCondition string     `json:"resourceCondition"`
			Observations      string     `json:"observations"`
		} `json:"returns" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	items := make([]services.ReturnInput, 0, len(in.Returns))
	for _, r := range in.Returns {
		items = append(items, services.ReturnInput{
			LoanID:            r.LoanID,
			ReturnDate:        r.ReturnDate,
			ResourceCondition: r.ResourceCondition,
			Observations:      r.Observations,
		})
	}
	results := lc.Lifecycle.ProcessBatchReturns(c.Request.Context(), items, app.ActorID(c))

	for _, res := range results {
		if res.Success && res.Summary != nil {
			lc.Stock.Invalidate(c.Request.Context(), res.Summary.Loan.ResourceID)
		}
	}
	c.JSON(http.StatusOK, app.H{"results": results})
}
