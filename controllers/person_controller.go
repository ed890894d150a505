package controllers

import (
	"net/http"

	"school_library_backend/app"
	"school_library_backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PersonController struct{ *Srv }

func NewPersonController(s *Srv) *PersonController { return &PersonController{Srv: s} }

func (pc *PersonController) CreatePerson(c *gin.Context) {
	var in struct {
		Name       string `json:"name" binding:"required"`
		PersonType string `json:"personType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	p := &models.Person{
		ID:         uuid.NewString(),
		Name:       in.Name,
		PersonType: in.PersonType,
		Active:     true,
	}
	if err := pc.Repo.CreatePerson(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (pc *PersonController) ListPersons(c *gin.Context) {
	ps, err := pc.Repo.ListPersons(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"persons": ps})
}

// CanBorrow is advisory and fail-closed; it always answers 200.
func (pc *PersonController) CanBorrow(c *gin.Context) {
	out := pc.Eligibility.CanPersonBorrow(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, out)
}

// MaxQuantity reports the largest request this person could make right now
// for the given resource.
func (pc *PersonController) MaxQuantity(c *gin.Context) {
	max, err := pc.Eligibility.GetMaxQuantityForPerson(c.Request.Context(), c.Param("id"), c.Param("resourceId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"maxQuantity": max})
}
