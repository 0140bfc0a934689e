package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pitabwire/pscale/client"
	"github.com/pitabwire/pscale/internal/config"
	"github.com/pitabwire/pscale/internal/invoker"
	"github.com/pitabwire/pscale/internal/observability"
	"github.com/pitabwire/pscale/model"
	"github.com/pitabwire/pscale/operation"
)

// offlineAnnotation marks commands that never call the API and so need no
// credential.
const offlineAnnotation = "psctl/offline"

// app carries flag values and the dependencies built for one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	org        string
	jsonOutput bool

	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	client   *client.Client
	shutdown func(context.Context) error
}

// run executes psctl with args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(ctx); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
	}
	return exitCode(err)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "psctl",
		Short:             "psctl manages databases, branches and deploy requests",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: environment only)")
	root.PersistentFlags().StringVar(&a.org, "org", "", "organization (overrides api.organization)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "output as JSON")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(a.databasesCmd())
	root.AddCommand(a.branchesCmd())
	root.AddCommand(a.deployRequestsCmd())
	root.AddCommand(a.invoicesCmd())
	root.AddCommand(a.specCmd())
	return root
}

// setup loads configuration and builds the client. Offline commands only
// get defaults and a logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.registry = prometheus.NewRegistry()
	a.metrics = observability.InitMetrics(a.registry)

	if cmd.Annotations[offlineAnnotation] == "true" {
		a.cfg = config.Defaults()
		return a.initTelemetry(cmd.Context())
	}

	cfg, err := config.LoadOrDefaults(a.configPath)
	if err != nil {
		return usageError{err}
	}
	if a.org != "" {
		cfg.API.Organization = a.org
	}
	a.cfg = cfg
	if err := a.initTelemetry(cmd.Context()); err != nil {
		return err
	}

	transport := invoker.NewHTTPTransport(cfg.HTTP)
	cred := model.StaticCredential{
		Token:        cfg.API.Token,
		Organization: cfg.API.Organization,
		APIBaseURL:   cfg.API.BaseURL,
	}
	a.client = client.New(transport, cred,
		operation.WithLogger(a.logger),
		operation.WithRecorder(a.metrics),
		operation.WithUserAgent(cfg.API.UserAgent+" psctl/"+version),
		operation.WithMaxPages(cfg.Pagination.MaxPages),
	)
	a.logger.Info("client configured",
		zap.String("base_url", cfg.API.BaseURL),
		zap.String("organization", cfg.API.Organization),
		zap.Bool("config_file", a.configPath != ""),
	)
	return nil
}

func (a *app) initTelemetry(ctx context.Context) error {
	logger, err := observability.NewLogger(a.cfg.Observability)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.logger = logger

	shutdown, err := observability.InitTracing(ctx, a.cfg.Observability.Tracing, "psctl", version)
	if err != nil {
		return err
	}
	a.shutdown = shutdown
	return nil
}

// close flushes telemetry. Metrics are written to stderr when enabled.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.cfg != nil && a.cfg.Observability.Metrics.Enabled && a.registry != nil {
		errs = append(errs, observability.WriteText(a.stderr, a.registry))
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(context.WithoutCancel(ctx)))
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}
