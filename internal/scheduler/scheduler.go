package scheduler

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// Sweeper is anything that can drop its expired entries.
type Sweeper interface {
	Sweep() int
}

// Start runs sweeper.Sweep on the cron spec (e.g. "@every 1m") in the
// background. Stop the returned cron to end it.
func Start(spec string, sweeper Sweeper) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { SweepOnce(sweeper) }); err != nil {
		return nil, errors.Wrapf(err, "invalid sweep spec %q", spec)
	}
	c.Start()
	slog.Info("cache sweeper started", "spec", spec)
	return c, nil
}

// SweepOnce runs one sweep and logs what it removed.
func SweepOnce(sweeper Sweeper) int {
	removed := sweeper.Sweep()
	if removed > 0 {
		slog.Debug("cache sweep", "removed", removed)
	}
	return removed
}
