package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/onnwee/livecheck/config"
	"github.com/onnwee/livecheck/discordapi"
	"github.com/onnwee/livecheck/live"
	"github.com/onnwee/livecheck/notify"
	"github.com/onnwee/livecheck/runner"
	"github.com/onnwee/livecheck/telemetry"
)

// exitError carries a process exit status out of cobra.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// deps lets tests route HTTP traffic to a mock server.
type deps struct {
	httpClient *http.Client
}

func newRootCmd(d deps) (*cobra.Command, error) {
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "livecheck",
		Short:         "Report days since the last live-stream notification",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runOnce(cmd.Context(), cfg, d)
		},
	}
	flags := cmd.Flags()
	flags.Int("max-pages", live.DefaultMaxPages, "history pages to scan before giving up")
	flags.Int("page-size", live.DefaultPageSize, "messages per history page (1-100)")
	flags.String("streamer", config.DefaultStreamerName, "name used in the days-since report")
	flags.Bool("dry-run", false, "log the report instead of posting it")
	if err := bindFlags(v, flags, map[string]string{
		config.KeyMaxPages:     "max-pages",
		config.KeyPageSize:     "page-size",
		config.KeyStreamerName: "streamer",
		config.KeyDryRun:       "dry-run",
	}); err != nil {
		return nil, err
	}
	return cmd, nil
}

// bindFlags binds each config key to the named flag.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag --%s to %s: %w", name, key, err)
		}
	}
	return nil
}

func runOnce(ctx context.Context, cfg *config.Config, d deps) error {
	telemetry.Init()
	shutdown, err := telemetry.InitTracing(cfg.OTLPEndpoint, "livecheck", version)
	if err != nil {
		return err
	}
	defer shutdown()

	ctx, runID := telemetry.NewRunContext(ctx)
	log := telemetry.LoggerWithCorr(ctx)
	log.Info("run starting",
		slog.String("channel_id", cfg.ChannelID),
		slog.Int("max_pages", cfg.MaxPages),
		slog.Int("page_size", cfg.PageSize),
		slog.Bool("dry_run", cfg.DryRun))

	client, err := discordapi.NewClient(cfg.BotToken, cfg.ChannelID, d.httpClient)
	if err != nil {
		return err
	}
	var notifier notify.Notifier = &notify.Webhook{URL: cfg.WebhookURL, HTTPClient: d.httpClient}
	if cfg.DryRun {
		notifier = notify.LogOnly{}
	}
	ctrl := &runner.Controller{
		Finder:   &live.Scanner{Source: client, MaxPages: cfg.MaxPages, PageSize: cfg.PageSize},
		Notifier: notifier,
		Streamer: cfg.StreamerName,
	}
	res := ctrl.Run(ctx)

	if err := telemetry.Push(ctx, cfg.PushgatewayURL); err != nil {
		log.Warn("metrics push failed", slog.Any("err", err))
	}
	log.Info("run finished",
		slog.String("run_id", runID),
		slog.String("outcome", res.Outcome.String()),
		slog.Int("days_since_live", res.Days))
	if code := res.Outcome.ExitCode(); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// execute runs the root command and returns the process exit status.
func execute(ctx context.Context, args []string) int {
	return executeWith(ctx, args, deps{})
}

func executeWith(ctx context.Context, args []string, d deps) int {
	cmd, err := newRootCmd(d)
	if err != nil {
		slog.Error("livecheck setup failed", slog.Any("err", err))
		return 1
	}
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	slog.Error("livecheck failed", slog.Any("err", err))
	return 1
}
