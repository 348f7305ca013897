package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) {
	t.Helper()
	viper.Reset()
	cfg = nil
	configPathOverride = ""
	t.Cleanup(func() {
		viper.Reset()
		cfg = nil
		configPathOverride = ""
	})
}

func TestInitDefaults(t *testing.T) {
	reset(t)
	t.Setenv("HOME", t.TempDir())
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(oldWd)

	require.NoError(t, Init())

	c := Get()
	assert.Equal(t, "/dev/dri", c.Display.Dir)
	assert.Equal(t, "card", c.Display.Prefix)
	assert.Equal(t, "seat-touchbar", c.Input.Seat)
	assert.Equal(t, "seat0", c.Input.FallbackSeat)
	assert.Equal(t, "tiny-dfr", c.Service.Name)
	assert.Equal(t, ControlSystemctl, c.Service.Control)
	assert.True(t, c.Service.Enabled)
}

func TestInitFromFile(t *testing.T) {
	reset(t)
	path := filepath.Join(t.TempDir(), "touchballs.toml")
	content := `
[display]
dir = "/tmp/dri"

[service]
name = "other-dfr"
control = "dbus"
enabled = false

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	SetConfigPath(path)

	require.NoError(t, Init())
	c := Get()
	assert.Equal(t, "/tmp/dri", c.Display.Dir)
	assert.Equal(t, "card", c.Display.Prefix, "unset keys keep defaults")
	assert.Equal(t, "other-dfr", c.Service.Name)
	assert.Equal(t, ControlDBus, c.Service.Control)
	assert.False(t, c.Service.Enabled)
	assert.Equal(t, "debug", c.Logging.Level)
}

func TestInitRejectsBadControl(t *testing.T) {
	reset(t)
	path := filepath.Join(t.TempDir(), "touchballs.toml")
	require.NoError(t, os.WriteFile(path, []byte("[service]\ncontrol = \"upstart\"\n"), 0o644))
	SetConfigPath(path)

	err := Init()
	assert.ErrorContains(t, err, "invalid service.control")
}

func TestInitMissingExplicitFile(t *testing.T) {
	reset(t)
	SetConfigPath(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, Init())
}

func TestInitInvalidTOML(t *testing.T) {
	reset(t)
	path := filepath.Join(t.TempDir(), "touchballs.toml")
	require.NoError(t, os.WriteFile(path, []byte("[display\ndir = 1"), 0o644))
	SetConfigPath(path)

	assert.Error(t, Init())
}

func TestGetWithoutInitReturnsCopy(t *testing.T) {
	reset(t)
	c := Get()
	c.Display.Dir = "changed"
	assert.Equal(t, "/dev/dri", DefaultConfig.Display.Dir)
}

func TestSearchPaths(t *testing.T) {
	assert.Equal(t, []string{"/etc/touchballs", "/root/.config/touchballs", "."}, searchPaths("/root"))
	assert.Equal(t, []string{"/etc/touchballs", "/home/pi/.config/touchballs", "."}, searchPaths("/home/pi"))
	assert.Equal(t, []string{"/etc/touchballs", "."}, searchPaths(""))
}

func TestInitFindsFileInHome(t *testing.T) {
	reset(t)
	home := t.TempDir()
	dir := filepath.Join(home, ".config", "touchballs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "touchballs.toml"),
		[]byte("[service]\nname = \"other-dfr\"\n"), 0o600))
	t.Setenv("HOME", home)

	require.NoError(t, Init())
	assert.Equal(t, "other-dfr", Get().Service.Name)
}
