package main

import (
	"log"
	"os"

	"school_library_backend/app"
	"school_library_backend/config"
	"school_library_backend/db"
	"school_library_backend/routes"
	"school_library_backend/services"
	"school_library_backend/utils"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	// Optional cron-driven overdue sweep; the endpoint stays the primary
	// trigger.
	if spec := application.Config.SweepCron; spec != "" {
		sweeper := services.NewOverdueSweeper(db.NewRepo(application.DB))
		cr, err := utils.StartSweepScheduler(spec, sweeper)
		if err != nil {
			log.Fatalf("sweep scheduler: %v", err)
		}
		defer cr.Stop()
		log.Printf("overdue sweep scheduled: %q", spec)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
