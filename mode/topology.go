package mode

import (
	"fmt"
	"os"
)

type (
	// Reader is the read-only part of a device needed to take a
	// Topology snapshot.
	Reader interface {
		Resources() (*Resources, error)
		Connector(id uint32) (*Connector, error)
		Crtc(id uint32) (*Crtc, error)
		Planes() ([]uint32, error)
	}

	// Topology is the state of a card at one point in time. It is read
	// once at startup and never refreshed.
	Topology struct {
		Resources  *Resources
		Connectors []*Connector
		Crtcs      []*Crtc
		Planes     []uint32
	}

	// FileReader reads topology straight from an open device node.
	FileReader struct {
		File *os.File
	}
)

func (f FileReader) Resources() (*Resources, error)         { return GetResources(f.File) }
func (f FileReader) Connector(id uint32) (*Connector, error) { return GetConnector(f.File, id) }
func (f FileReader) Crtc(id uint32) (*Crtc, error)           { return GetCrtc(f.File, id) }
func (f FileReader) Planes() ([]uint32, error)               { return GetPlaneResources(f.File) }

// Snapshot reads resources, then every connector and CRTC in the order the
// device reports them. Connectors or CRTCs that fail to read are left out,
// the same way a probe of a flaky output would just not list it.
func Snapshot(r Reader) (*Topology, error) {
	res, err := r.Resources()
	if err != nil {
		return nil, fmt.Errorf("cannot retrieve resources: %w", err)
	}

	t := &Topology{Resources: res}
	for _, id := range res.Connectors {
		conn, err := r.Connector(id)
		if err != nil {
			continue
		}
		t.Connectors = append(t.Connectors, conn)
	}
	for _, id := range res.Crtcs {
		crtc, err := r.Crtc(id)
		if err != nil {
			continue
		}
		t.Crtcs = append(t.Crtcs, crtc)
	}

	t.Planes, err = r.Planes()
	if err != nil {
		return nil, fmt.Errorf("cannot retrieve planes: %w", err)
	}
	return t, nil
}

// ConnectionName is the human name of Connector.Connection.
func ConnectionName(c uint8) string {
	switch c {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}
