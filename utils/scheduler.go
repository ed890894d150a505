package utils

import (
	"context"
	"log"
	"time"

	"school_library_backend/services"

	"github.com/robfig/cron/v3"
)

// StartSweepScheduler runs the overdue sweep on a cron spec. Optional: the
// sweep endpoint remains the primary trigger, this just keeps deployments
// without an external scheduler from needing one.
func StartSweepScheduler(spec string, sweeper *services.OverdueSweeper) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		updated, err := sweeper.Sweep(ctx)
		if err != nil {
			log.Printf("[sweep] scheduled run failed: %v", err)
			return
		}
		log.Printf("[sweep] scheduled run promoted %d loan(s) to overdue", updated)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
