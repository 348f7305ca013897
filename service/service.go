// Package service pauses the system service that normally owns the panel
// while this process drives it.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/NeowayLabs/touchballs/internal/logger"
)

// Controller stops and restarts systemd units.
type Controller interface {
	Stop(ctx context.Context, unit string) error
	Restart(ctx context.Context, unit string) error
}

// Guard keeps a unit stopped until Release.
type Guard struct {
	ctl  Controller
	unit string
	once sync.Once
	err  error
}

// Acquire stops unit. Failing to stop it is logged and otherwise ignored:
// the unit may not be installed, and the device lock will still arbitrate.
func Acquire(ctx context.Context, ctl Controller, unit string) *Guard {
	logger.Infof("Stopping %s...", unit)
	if err := ctl.Stop(ctx, unit); err != nil {
		logger.Warn("could not stop service", "unit", unit, "err", err)
	}
	return &Guard{ctl: ctl, unit: unit}
}

// Release restarts the unit. Only the first call does anything; later
// calls return the first result. ctx should not be the one cancelled by
// the shutdown signal.
func (g *Guard) Release(ctx context.Context) error {
	g.once.Do(func() {
		logger.Infof("Starting %s...", g.unit)
		if err := g.ctl.Restart(ctx, g.unit); err != nil {
			logger.Warn("could not restart service", "unit", g.unit, "err", err)
			g.err = fmt.Errorf("restart %s: %w", g.unit, err)
		}
	})
	return g.err
}
