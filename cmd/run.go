package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	goerrors "github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"github.com/NeowayLabs/touchballs/balls"
	"github.com/NeowayLabs/touchballs/display"
	"github.com/NeowayLabs/touchballs/drm"
	"github.com/NeowayLabs/touchballs/frame"
	"github.com/NeowayLabs/touchballs/input"
	"github.com/NeowayLabs/touchballs/internal/config"
	"github.com/NeowayLabs/touchballs/internal/logger"
	"github.com/NeowayLabs/touchballs/service"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Take over the panel and run the animation (default)",
	Long: `Stop the panel's usual service, find the first card that can drive the
Touch Bar, and render until SIGINT or SIGTERM. The service is restarted
on every exit path.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Opening Touch Bar...")

	if cfg.Service.Enabled {
		ctl, closeCtl, err := controller(cfg.Service.Control)
		if err != nil {
			return err
		}
		defer closeCtl()
		guard := service.Acquire(ctx, ctl, cfg.Service.Name)
		// restart even after the signal cancelled ctx
		defer guard.Release(context.WithoutCancel(ctx))
	}

	err := run(ctx, cfg)
	if err != nil {
		var stacked *goerrors.Error
		if logger.DebugEnabled() && goerrors.As(err, &stacked) {
			fmt.Fprint(os.Stderr, stacked.ErrorStack())
		}
	}
	return err
}

func run(ctx context.Context, cfg *config.Config) error {
	paths, err := drm.ListCards(cfg.Display.Dir, cfg.Display.Prefix)
	if err != nil {
		return err
	}
	backend, err := display.Open(paths, display.OpenCard)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("display cleanup", "err", err)
		}
	}()

	width, height := backend.Size()
	logger.Infof("Touch Bar: %dx%d (pitch: %d)", width, height, backend.Pitch())

	if err := backend.Map(); err != nil {
		return fmt.Errorf("map scanout buffer: %w", err)
	}

	src, err := input.Open(input.Options{
		Glob:         cfg.Input.Glob,
		UdevDir:      cfg.Input.UdevDir,
		Seat:         cfg.Input.Seat,
		FallbackSeat: cfg.Input.FallbackSeat,
		Width:        width,
		Height:       height,
	})
	if err != nil {
		return err
	}
	defer src.Close()
	if src.Devices() == 0 {
		logger.Warn("running without touch input")
	} else {
		logger.Debug("input bound", "seat", src.Seat(), "devices", src.Devices())
	}

	loop, err := frame.New(src, balls.New(width, height), backend, width, height, backend.Pitch())
	if err != nil {
		return err
	}
	return loop.Run(ctx)
}

// connectDBus is replaced in tests.
var connectDBus = service.ConnectDBus

// controller builds the unit controller for kind. The bus is best effort:
// when it cannot be reached, systemctl is used instead.
func controller(kind string) (service.Controller, func(), error) {
	switch kind {
	case config.ControlDBus:
		d, conn, err := connectDBus()
		if err != nil {
			logger.Warn("system bus unavailable, using systemctl", "err", err)
			return service.Systemctl{}, func() {}, nil
		}
		return d, func() { conn.Close() }, nil
	case config.ControlSystemctl:
		return service.Systemctl{}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown service control %q", kind)
	}
}
