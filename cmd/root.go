package cmd

import (
	"fmt"
	"os"
	"strings"

	cfgpkg "github.com/KaramelBytes/waterborne-cli/internal/config"
	"github.com/KaramelBytes/waterborne-cli/internal/logging"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string
	noColor   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "waterborne",
	Short: "Explore how water quality relates to waterborne disease",
	Long: `waterborne loads a water pollution and disease dataset, prints descriptive
statistics, aggregates and correlates indicators, and renders a fixed set of
charts (PNG or SVG) into an output directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.waterborne/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")
}

func loadConfig(cmd *cobra.Command) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	f := cmd.Root().PersistentFlags()
	if f.Changed("log-format") {
		cfg.LogFormat = strings.ToLower(logFormat)
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid --log-format: %s (use text or json)", cfg.LogFormat)
	}
	logging.InitWriter(cmd.ErrOrStderr(), level, cfg.LogFormat == "json")
	if noColor {
		color.NoColor = true
	}
	return nil
}
