package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cuemby/dbcore/pkg/engine"
	"github.com/cuemby/dbcore/pkg/engineconfig"
	"github.com/cuemby/dbcore/pkg/log"
	"github.com/cuemby/dbcore/pkg/metrics"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dbcore",
	Short: "dbcore - a multi-tenant relational database engine",
	Long: `dbcore is a storage engine combining a lock-free ordered index,
a tiered page store that migrates pages between hot, warm, and cold
storage, and a backup catalog for tracking RMAN-style recovery metadata.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"dbcore version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config", "", "Path to engine YAML config (defaults built in if omitted)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", true, "Output logs in JSON format")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
}

func loadConfig(cmd *cobra.Command) (engineconfig.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		cfg := engineconfig.Default()
		applyLogFlags(cmd, &cfg)
		return cfg, nil
	}
	cfg, err := engineconfig.Load(path)
	if err != nil {
		return engineconfig.Config{}, err
	}
	applyLogFlags(cmd, &cfg)
	return cfg, nil
}

func applyLogFlags(cmd *cobra.Command, cfg *engineconfig.Config) {
	if level, _ := cmd.Flags().GetString("log-level"); cmd.Flags().Changed("log-level") {
		cfg.LogLevel = log.Level(level)
	}
	if json, _ := cmd.Flags().GetBool("log-json"); cmd.Flags().Changed("log-json") {
		cfg.LogJSON = json
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine: index, page store, and catalog with background maintenance",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
			cfg.MetricsAddr = addr
		}

		e, err := engine.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to start engine: %w", err)
		}

		e.Start()
		fmt.Println("✓ Engine started")

		metrics.SetVersion(Version)

		addr := cfg.MetricsAddr
		if addr == "" {
			addr = ":9090"
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())

		errCh := make(chan error, 1)
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", addr)
		fmt.Printf("  - Health check: http://%s/health\n", addr)
		fmt.Printf("  - Readiness:    http://%s/ready\n", addr)
		fmt.Printf("  - Liveness:     http://%s/live\n", addr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			fmt.Println("\nShutting down...")
		case err := <-errCh:
			fmt.Fprintf(os.Stderr, "\n%v\n", err)
		}

		if err := e.Stop(); err != nil {
			return fmt.Errorf("failed to stop engine: %w", err)
		}
		fmt.Println("✓ Shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("metrics-addr", "", "Override the config's metrics listen address")
}
