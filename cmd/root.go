package cmd

import (
	"github.com/spf13/cobra"

	"github.com/NeowayLabs/touchballs/internal/config"
	"github.com/NeowayLabs/touchballs/internal/logger"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configPath string

	rootCmd = &cobra.Command{
		Use:   "touchballs",
		Short: "Touch-reactive animation on the Touch Bar",
		Long: `touchballs drives the Touch Bar panel directly through DRM/KMS and
renders a touch-reactive animation into it. The service that normally
owns the panel is paused while it runs.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
		RunE:              runRun,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: search /etc/touchballs, ~/.config/touchballs, .)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(inputsCmd)
	rootCmd.AddCommand(injectCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		config.SetConfigPath(configPath)
	}
	if err := config.Init(); err != nil {
		return err
	}
	if level := config.Get().Logging.Level; level != "" {
		logger.SetLevel(level)
	}
	return nil
}
