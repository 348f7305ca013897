// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Display DisplayConfig `mapstructure:"display"`
	Input   InputConfig   `mapstructure:"input"`
	Service ServiceConfig `mapstructure:"service"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DisplayConfig selects the DRM nodes tried during discovery
type DisplayConfig struct {
	Dir    string `mapstructure:"dir"`    // Directory holding the device nodes
	Prefix string `mapstructure:"prefix"` // Only nodes with this name prefix are tried
}

// InputConfig selects the touch devices
type InputConfig struct {
	Glob         string `mapstructure:"glob"`
	UdevDir      string `mapstructure:"udev_dir"` // udev database, used for seat lookup
	Seat         string `mapstructure:"seat"`
	FallbackSeat string `mapstructure:"fallback_seat"`
}

// ServiceConfig names the service that competes for the panel
type ServiceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Name    string `mapstructure:"name"`
	Control string `mapstructure:"control"` // "systemctl" or "dbus"
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"` // Override LOG_LEVEL env var
}

const (
	ControlSystemctl = "systemctl"
	ControlDBus      = "dbus"
)

var (
	// DefaultConfig matches the Asahi Touch Bar setup
	DefaultConfig = Config{
		Display: DisplayConfig{
			Dir:    "/dev/dri",
			Prefix: "card",
		},
		Input: InputConfig{
			Glob:         "/dev/input/event*",
			UdevDir:      "/run/udev/data",
			Seat:         "seat-touchbar",
			FallbackSeat: "seat0",
		},
		Service: ServiceConfig{
			Enabled: true,
			Name:    "tiny-dfr",
			Control: ControlSystemctl,
		},
		Logging: LoggingConfig{
			Level: "",
		},
	}

	cfg *Config

	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// searchPaths lists the config directories in lookup order. The process
// usually runs as root, so root's home is searched like any other.
func searchPaths(home string) []string {
	dirs := []string{"/etc/touchballs"}
	if home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", "touchballs"))
	}
	return append(dirs, ".")
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("touchballs")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		for _, dir := range searchPaths(os.Getenv("HOME")) {
			viper.AddConfigPath(dir)
		}
	}

	viper.SetEnvPrefix("touchballs")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("display.dir", DefaultConfig.Display.Dir)
	viper.SetDefault("display.prefix", DefaultConfig.Display.Prefix)

	viper.SetDefault("input.glob", DefaultConfig.Input.Glob)
	viper.SetDefault("input.udev_dir", DefaultConfig.Input.UdevDir)
	viper.SetDefault("input.seat", DefaultConfig.Input.Seat)
	viper.SetDefault("input.fallback_seat", DefaultConfig.Input.FallbackSeat)

	viper.SetDefault("service.enabled", DefaultConfig.Service.Enabled)
	viper.SetDefault("service.name", DefaultConfig.Service.Name)
	viper.SetDefault("service.control", DefaultConfig.Service.Control)

	viper.SetDefault("logging.level", DefaultConfig.Logging.Level)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// Validate rejects values the rest of the program cannot act on
func (c *Config) Validate() error {
	switch c.Service.Control {
	case ControlSystemctl, ControlDBus:
	default:
		return fmt.Errorf("invalid service.control %q: want %q or %q",
			c.Service.Control, ControlSystemctl, ControlDBus)
	}
	if c.Display.Dir == "" {
		return fmt.Errorf("display.dir must not be empty")
	}
	if c.Input.Seat == "" && c.Input.FallbackSeat == "" {
		return fmt.Errorf("at least one of input.seat and input.fallback_seat is required")
	}
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		d := DefaultConfig
		return &d
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}
