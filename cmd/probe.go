package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/NeowayLabs/touchballs/drm"
	"github.com/NeowayLabs/touchballs/internal/config"
	"github.com/NeowayLabs/touchballs/internal/logger"
	"github.com/NeowayLabs/touchballs/mode"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Print the KMS topology of every card",
	Long: `List connectors, modes, CRTCs and planes of every card without taking
the master lock. Safe to run while another program drives the display.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		paths, err := drm.ListCards(cfg.Display.Dir, cfg.Display.Prefix)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no %s* nodes in %s", cfg.Display.Prefix, cfg.Display.Dir)
		}
		for _, path := range paths {
			if err := probe(cmd.OutOrStdout(), path); err != nil {
				logger.Warn("probe failed", "path", path, "err", err)
			}
		}
		return nil
	},
}

func probe(w io.Writer, path string) error {
	file, err := drm.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	version, err := drm.GetVersion(file)
	if err != nil {
		return err
	}
	if err := drm.SetClientCap(file, drm.ClientCapUniversalPlanes, 1); err != nil {
		logger.Debug("universal planes unavailable", "path", path, "err", err)
	}
	top, err := mode.Snapshot(mode.FileReader{File: file})
	if err != nil {
		return err
	}

	encoders := map[uint32]*mode.Encoder{}
	for _, c := range top.Connectors {
		if c.EncoderID == 0 {
			continue
		}
		enc, err := mode.GetEncoder(file, c.EncoderID)
		if err != nil {
			logger.Debug("encoder unreadable", "id", c.EncoderID, "err", err)
			continue
		}
		encoders[enc.ID] = enc
	}

	planes := make([]*mode.Plane, 0, len(top.Planes))
	for _, id := range top.Planes {
		p, err := mode.GetPlane(file, id)
		if err != nil {
			return fmt.Errorf("plane %d: %w", id, err)
		}
		planes = append(planes, p)
	}

	describe(w, path, version, drm.HasDumbBuffer(file), top, encoders, planes)
	return nil
}

func describe(w io.Writer, path string, v drm.Version, dumb bool, top *mode.Topology,
	encoders map[uint32]*mode.Encoder, planes []*mode.Plane) {
	fmt.Fprintf(w, "%s: %s %d.%d.%d (%s), dumb buffers: %t\n", path, v.Name, v.Major, v.Minor, v.Patch, v.Desc, dumb)
	for _, c := range top.Connectors {
		fmt.Fprintf(w, "  connector %d: %s, %d modes", c.ID, mode.ConnectionName(c.Connection), len(c.Modes))
		if enc, ok := encoders[c.EncoderID]; ok {
			fmt.Fprintf(w, ", encoder %d on crtc %d", enc.ID, enc.CrtcID)
		}
		fmt.Fprintln(w)
		for i, m := range c.Modes {
			width, height := m.Size()
			fmt.Fprintf(w, "    Mode %d: %dx%d @ %dHz (clock: %d kHz)\n", i, width, height, m.Vrefresh, m.Clock)
		}
	}
	for _, c := range top.Crtcs {
		fmt.Fprintf(w, "  crtc %d: fb %d, mode %q\n", c.ID, c.BufferID, c.Mode.String())
	}
	for _, p := range planes {
		fmt.Fprintf(w, "  plane %d: crtc %d, fb %d, %d formats\n", p.ID, p.CrtcID, p.BufferID, len(p.Formats))
	}
}

