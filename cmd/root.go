package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/vpp/config"
	"github.com/kilianp07/vpp/infra/logger"
)

var (
	cfgPath  string
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:               "vpp",
	Short:             "Virtual power plant negotiation engine",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func setup(cmd *cobra.Command, _ []string) error {
	if cfgPath == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := logger.Configure(cfg.Logging.Options()); err != nil {
		return err
	}
	logger.SetOutput(cmd.ErrOrStderr())
	return nil
}
