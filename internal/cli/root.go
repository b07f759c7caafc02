// Package cli implements idpctl, a command line front end for the identity
// provider's OIDC API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"idpclient/internal/platform/config"
	"idpclient/internal/platform/logger"
	"idpclient/internal/platform/metrics"
	"idpclient/pkg/apiclient"
	"idpclient/pkg/oidc"
)

const userAgent = "idpctl"

// app is the state shared by every command of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	cfg         config.Client
	output      string
	metricsFile string

	logger   *slog.Logger
	registry *prometheus.Registry
	gateway  *oidc.Gateway
}

// Execute runs idpctl with args, writing to stdout and stderr. A requested
// metrics file is written whether or not the command succeeded.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCommand(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if mErr := a.writeMetrics(); mErr != nil {
		return errors.Join(err, mErr)
	}
	return err
}

func newRootCommand(a *app) *cobra.Command {
	var (
		baseURL     string
		apiKey      string
		bearerToken string
		timeout     time.Duration
		logLevel    string
		logFormat   string
	)

	root := &cobra.Command{
		Use:           "idpctl",
		Short:         "Manage OIDC clients and flows of an identity provider",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadEnv(); err != nil {
				return err
			}
			cfg := config.FromEnv()
			flags := cmd.Flags()
			if flags.Changed("base-url") {
				cfg.BaseURL = baseURL
			}
			if flags.Changed("api-key") {
				cfg.APIKey = apiKey
			}
			if flags.Changed("bearer-token") {
				cfg.BearerToken = bearerToken
			}
			if flags.Changed("timeout") {
				cfg.Timeout = timeout
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if a.output != outputJSON && a.output != outputYAML {
				return fmt.Errorf("unsupported output format %q (want json or yaml)", a.output)
			}
			a.cfg = cfg
			return a.init()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&baseURL, "base-url", config.DefaultBaseURL, "identity provider API base URL (env IDP_BASE_URL)")
	pf.StringVar(&apiKey, "api-key", "", "admin API key (env IDP_API_KEY)")
	pf.StringVar(&bearerToken, "bearer-token", "", "bearer token for user-scoped calls (env IDP_BEARER_TOKEN)")
	pf.DurationVar(&timeout, "timeout", config.DefaultTimeout, "per-request timeout (env IDP_TIMEOUT)")
	pf.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error (env IDP_LOG_LEVEL)")
	pf.StringVar(&logFormat, "log-format", "text", "text or json (env IDP_LOG_FORMAT)")
	pf.StringVarP(&a.output, "output", "o", outputJSON, "output format: json or yaml")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "write request metrics in Prometheus text format to this file")

	root.AddCommand(
		newAuthorizeCommand(a),
		newAuthorizationRequiredCommand(a),
		newClientsCommand(a),
		newDeviceCommand(a),
	)
	return root
}

func (a *app) init() error {
	a.logger = logger.NewWithWriter(a.stderr, a.cfg.LogLevel, a.cfg.LogFormat)
	a.registry = prometheus.NewRegistry()

	api, err := apiclient.New(a.cfg.BaseURL,
		apiclient.WithTimeout(a.cfg.Timeout),
		apiclient.WithAPIKey(a.cfg.APIKey),
		apiclient.WithBearerToken(a.cfg.BearerToken),
		apiclient.WithUserAgent(userAgent),
		apiclient.WithLogger(a.logger),
		apiclient.WithMetrics(metrics.New(a.registry)),
	)
	if err != nil {
		return err
	}
	a.gateway, err = oidc.New(api)
	return err
}

// writeMetrics dumps the run's request metrics. Runs that failed before the
// client was built have nothing to write.
func (a *app) writeMetrics() error {
	if a.metricsFile == "" || a.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
