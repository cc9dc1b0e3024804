package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"subsctl/internal/api"
	"subsctl/internal/config"
	"subsctl/internal/logging"
	"subsctl/internal/models"
	"subsctl/internal/ui"

	"github.com/spf13/cobra"
)

var (
	globalConfig *config.Config
	logger       = logging.Discard()
	metrics      *api.Metrics

	metricsAddr string
	logCloser   io.Closer
	stopMetrics func()
)

var rootCmd = &cobra.Command{
	Use:   "subsctl",
	Short: "subsctl - manage subscriptions from the terminal",
	Long: `subsctl is a terminal admin client for subscriptions.
Run it without a subcommand to browse, filter, view and delete subscriptions interactively.`,
	Version:            "0.1.0",
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runList,
}

// Execute runs the root command
func Execute(cfg *config.Config) error {
	globalConfig = cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// setup opens the log file and, with --metrics-addr, the metrics endpoint
func setup(cmd *cobra.Command, args []string) error {
	if globalConfig == nil {
		cfg, err := config.LoadGlobalConfig()
		if err != nil {
			return fmt.Errorf("error loading global config: %w", err)
		}
		globalConfig = cfg
	}

	globalConfigDir, err := config.GetGlobalConfigDir()
	if err != nil {
		return err
	}

	l, closer, err := logging.OpenFile(globalConfigDir, globalConfig.LogLevel, globalConfig.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning: logging disabled:", err)
	} else {
		logger = l
		logCloser = closer
		slog.SetDefault(l)
	}

	if metricsAddr != "" {
		m, stop, err := serveMetrics(metricsAddr)
		if err != nil {
			return fmt.Errorf("error starting metrics server: %w", err)
		}
		metrics = m
		stopMetrics = stop
		logger.Info("Serving metrics", "addr", metricsAddr)
	}

	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if stopMetrics != nil {
		stopMetrics()
		stopMetrics = nil
	}
	if logCloser != nil {
		err := logCloser.Close()
		logCloser = nil
		return err
	}
	return nil
}

// newClient builds an API client for the configured server.
// It fails with models.ErrNotLoggedIn when no token is stored.
func newClient() (*api.Client, error) {
	globalConfigDir, err := config.GetGlobalConfigDir()
	if err != nil {
		return nil, fmt.Errorf("error getting global config directory: %w", err)
	}

	tokenStore := models.NewTokenStore(globalConfigDir)
	if _, err := tokenStore.GetToken(); err != nil {
		return nil, err
	}

	return api.NewClient(globalConfig.ServerURL, tokenStore, clientOptions()...), nil
}

func clientOptions() []api.Option {
	opts := []api.Option{
		api.WithTimeout(globalConfig.Timeout),
		api.WithRateLimit(globalConfig.RateLimit.RPS, globalConfig.RateLimit.Burst),
		api.WithLogger(logger),
	}
	if metrics != nil {
		opts = append(opts, api.WithMetrics(metrics))
	}
	return opts
}

// displayFormat builds the row formatting from the configuration
func displayFormat() ui.Format {
	return ui.Format{
		Currency:   globalConfig.CurrencySymbol,
		DateLayout: globalConfig.DateFormat,
		Location:   globalConfig.Location(),
	}
}

func printClientError(action string, err error) {
	if errors.Is(err, models.ErrNotLoggedIn) {
		fmt.Println("You are not logged in. Run 'subsctl login' first.")
		return
	}
	fmt.Printf("Error %s: %s\n", action, api.ErrorMessage(err))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve client Prometheus metrics on this address, e.g. :9090")
	addListFlags(rootCmd)
}
