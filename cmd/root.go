package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/imagegate/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "imagegate",
	Short: "Image format classification and validation pipeline",
	Long:  "Classifies whether a URL points to a web-displayable image via MIME hints, URL extensions, and live content-type probing, with result caching and decision telemetry.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
