package cron

import (
	"context"

	"github.com/rishmeh/bhookh/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartJanitorCron schedules the hourly expiry sweep and returns the running
// cron so the caller owns its lifecycle (Stop on shutdown). Sweep failures
// are logged and swallowed; the next tick retries.
func StartJanitorCron(janitor *jobs.ExpiryJanitor) *cron.Cron {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		if err := janitor.RunSweep(context.Background()); err != nil {
			logrus.WithError(err).Error("Expiry sweep failed")
		}
	})

	c.Start()
	return c
}
