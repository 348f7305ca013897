package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Systemctl drives units through the systemctl binary.
type Systemctl struct {
	// Path of the binary, "systemctl" from PATH when empty.
	Path string
}

func (s Systemctl) Stop(ctx context.Context, unit string) error {
	return s.run(ctx, "stop", unit)
}

func (s Systemctl) Restart(ctx context.Context, unit string) error {
	return s.run(ctx, "restart", unit)
}

func (s Systemctl) run(ctx context.Context, verb, unit string) error {
	bin := s.Path
	if bin == "" {
		bin = "systemctl"
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, verb, unit)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("systemctl %s %s: %w: %s", verb, unit, err, msg)
		}
		return fmt.Errorf("systemctl %s %s: %w", verb, unit, err)
	}
	return nil
}
