package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/NeowayLabs/touchballs/input"
	"github.com/NeowayLabs/touchballs/internal/logger"
)

var (
	injectDevice string
	injectMaxX   int32
	injectMaxY   int32
	injectSteps  int
	injectDelay  time.Duration
	injectSettle time.Duration
)

var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Swipe across a virtual touch device",
	Long: `Create a uinput touch device and drag once along its long axis. Useful to
exercise the run command on a bench without a Touch Bar. The device lands
on the default seat, so run picks it up through the fallback seat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pad, err := input.CreateVirtualTouch(injectDevice, "touchballs virtual touch", injectMaxX, injectMaxY)
		if err != nil {
			return err
		}
		defer pad.Close()

		// give udev and readers time to see the new node
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(injectSettle):
		}

		logger.Info("swiping", "device", injectDevice, "steps", injectSteps)
		return input.Swipe{
			FromX:    0,
			FromY:    injectMaxY / 2,
			ToX:      injectMaxX,
			ToY:      injectMaxY / 2,
			Steps:    injectSteps,
			Interval: injectDelay,
		}.Play(ctx, pad)
	},
}

func init() {
	injectCmd.Flags().StringVar(&injectDevice, "uinput", "/dev/uinput", "uinput device node")
	injectCmd.Flags().Int32Var(&injectMaxX, "max-x", 2007, "maximum x of the virtual device")
	injectCmd.Flags().Int32Var(&injectMaxY, "max-y", 59, "maximum y of the virtual device")
	injectCmd.Flags().IntVar(&injectSteps, "steps", 120, "number of motion events")
	injectCmd.Flags().DurationVar(&injectDelay, "interval", 16*time.Millisecond, "delay between motion events")
	injectCmd.Flags().DurationVar(&injectSettle, "settle", time.Second, "wait after creating the device")
}
