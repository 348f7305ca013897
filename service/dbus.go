package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	systemdDest    = "org.freedesktop.systemd1"
	systemdPath    = dbus.ObjectPath("/org/freedesktop/systemd1")
	managerIface   = "org.freedesktop.systemd1.Manager"
	jobModeReplace = "replace"
)

// Caller is the part of a bus connection DBus needs. *dbus.Conn
// satisfies it.
type Caller interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
}

// DBus drives units through the systemd manager on the system bus.
type DBus struct {
	Conn Caller
}

// ConnectDBus connects to the system bus. The connection must outlive the
// shutdown signal so the restart can still be sent.
func ConnectDBus() (*DBus, *dbus.Conn, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, nil, fmt.Errorf("connect system bus: %w", err)
	}
	return &DBus{Conn: conn}, conn, nil
}

func (d *DBus) Stop(ctx context.Context, unit string) error {
	return d.job(ctx, "StopUnit", unit)
}

func (d *DBus) Restart(ctx context.Context, unit string) error {
	return d.job(ctx, "RestartUnit", unit)
}

func (d *DBus) job(ctx context.Context, method, unit string) error {
	obj := d.Conn.Object(systemdDest, systemdPath)
	var job dbus.ObjectPath
	err := obj.CallWithContext(ctx, managerIface+"."+method, 0, unitName(unit), jobModeReplace).Store(&job)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, unit, err)
	}
	return nil
}

// unitName adds the .service suffix systemd needs over the bus, where
// systemctl would infer it.
func unitName(unit string) string {
	if strings.Contains(unit, ".") {
		return unit
	}
	return unit + ".service"
}
