package routes

import (
	"school_library_backend/app"
	"school_library_backend/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	personCtl := controllers.NewPersonController(s)
	resourceCtl := controllers.NewResourceController(s)
	loanCtl := controllers.NewLoanController(s)
	overdueCtl := controllers.NewOverdueController(s)

	actorMW := app.ActorRequired()

	// ------------------------------
	// Persons (read-only collaborator + eligibility queries)
	// ------------------------------
	persons := r.Group("/api/persons")
	{
		persons.POST("", actorMW, personCtl.CreatePerson)
		persons.GET("", personCtl.ListPersons)
		persons.GET("/:id/can-borrow", personCtl.CanBorrow)
		persons.GET("/:id/max-quantity/:resourceId", personCtl.MaxQuantity)
	}

	// ------------------------------
	// Resources / inventory
	// ------------------------------
	resources := r.Group("/api/resources")
	{
		resources.POST("", actorMW, resourceCtl.CreateResource)
		resources.GET("", resourceCtl.ListResources)
		resources.GET("/isbn/:isbn", resourceCtl.FindByISBN)
		resources.GET("/:id/stock", resourceCtl.GetStock)
		resources.PUT("/:id/availability", actorMW, resourceCtl.SetAvailability)
		resources.PUT("/:id/quantity", actorMW, resourceCtl.UpdateTotalQuantity)
		resources.POST("/reconcile", actorMW, resourceCtl.Reconcile)
	}

	// ------------------------------
	// Loan lifecycle
	// ------------------------------
	loans := r.Group("/api/loans")
	{
		loans.POST("", actorMW, loanCtl.CreateLoan)
		loans.GET("", loanCtl.ListLoans) // ?personId=&resourceId=&status=
		loans.POST("/:id/renew", actorMW, loanCtl.Renew)
		loans.POST("/:id/return", actorMW, loanCtl.Return)
		loans.POST("/:id/lost", actorMW, loanCtl.MarkLost)
		loans.POST("/returns/batch", actorMW, loanCtl.BatchReturns)

		// Overdue tracking (on-demand, no internal timer)
		loans.POST("/overdue/sweep", actorMW, overdueCtl.Sweep)
		loans.GET("/overdue/stats", overdueCtl.Statistics)
		loans.GET("/near-due", overdueCtl.NearDue) // ?days=N
	}
}
