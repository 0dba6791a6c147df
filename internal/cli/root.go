package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/filesort/internal/logging"
	"github.com/ppiankov/filesort/internal/model"
	"github.com/ppiankov/filesort/internal/pipeline"
)

// Version is set at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "filesort",
	Short: "filesort - decide which category folder a file belongs in",
	Long: `filesort classifies files into one of nine categories:
Images, Documents, Videos, Audio, Archives, Code, Executables, Fonts, Other.

Decisions come from keyword patterns learned from earlier classifications,
then (with --ai) from a local inference service looking at the image, the
content or the filename, and finally from static keyword and extension rules.

filesort never moves files. It prints decisions for a mover to act on.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "filesort %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.filesort/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".filesort"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// FILESORT_INFERENCE_MODEL overrides inference.model
	viper.SetEnvPrefix("FILESORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env vars can override it
func setDefaults(d *model.Config) {
	viper.SetDefault("inference.provider", d.Inference.Provider)
	viper.SetDefault("inference.base_url", d.Inference.BaseURL)
	viper.SetDefault("inference.api_key", d.Inference.APIKey)
	viper.SetDefault("inference.model", d.Inference.Model)
	viper.SetDefault("inference.vision_model", d.Inference.VisionModel)
	viper.SetDefault("inference.text_timeout", d.Inference.TextTimeout)
	viper.SetDefault("inference.content_timeout", d.Inference.ContentTimeout)
	viper.SetDefault("inference.vision_timeout", d.Inference.VisionTimeout)
	viper.SetDefault("inference.probe_timeout", d.Inference.ProbeTimeout)
	viper.SetDefault("inference.probe_cache_ttl", d.Inference.ProbeCacheTTL)
	viper.SetDefault("inference.temperature", d.Inference.Temperature)
	viper.SetDefault("inference.num_predict", d.Inference.NumPredict)
	viper.SetDefault("inference.vision_max_width", d.Inference.VisionMaxWidth)
	viper.SetDefault("inference.http_proxy", d.Inference.HTTPProxy)
	viper.SetDefault("inference.https_proxy", d.Inference.HTTPSProxy)
	viper.SetDefault("inference.no_proxy", d.Inference.NoProxy)

	viper.SetDefault("learning.backend", d.Learning.Backend)
	viper.SetDefault("learning.path", d.Learning.Path)
	viper.SetDefault("rules.file", d.Rules.File)
	viper.SetDefault("concurrency.workers", d.Concurrency.Workers)
	viper.SetDefault("rate_limiting.requests_per_second", d.RateLimiting.RequestsPerSecond)
	viper.SetDefault("rate_limiting.burst_size", d.RateLimiting.BurstSize)
	viper.SetDefault("rate_limiting.vision_requests_per_second", d.RateLimiting.VisionRequestsPerSecond)
	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.format", d.Logging.Format)
}

// loadConfig returns the effective configuration (flags > env > file > defaults)
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *model.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return logger, nil
}

// setup loads config, logger and pipeline for a command
func setup(useAI bool) (*model.Config, *zap.Logger, *pipeline.Pipeline, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	p, err := pipeline.NewPipeline(cfg, useAI, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, err
	}
	return cfg, logger, p, nil
}

// signalContext is cancelled on SIGINT/SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
