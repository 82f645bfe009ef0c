package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/sitechecker/internal/config"
	"github.com/hamed0406/sitechecker/internal/logging"
	"github.com/hamed0406/sitechecker/internal/notify"
	"github.com/hamed0406/sitechecker/internal/repo"
	"github.com/hamed0406/sitechecker/internal/repo/memory"
	"github.com/hamed0406/sitechecker/internal/repo/postgres"
	"github.com/hamed0406/sitechecker/internal/report"
	"github.com/hamed0406/sitechecker/internal/scheduler"
	"github.com/hamed0406/sitechecker/internal/targets"
)

var errNoTargets = errors.New("target required: pass URLs or --file")

type options struct {
	cfg      config.Config
	file     string
	noColor  bool
	debug    bool
	interval time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{cfg: config.FromEnv()}

	cmd := &cobra.Command{
		Use:   "sitechecker [urls...] [flags]",
		Short: "Check that a list of HTTP(S) endpoints answer",
		Example: `  sitechecker https://example.com https://example.org
  sitechecker --file urls.txt --workers 16 --timeout 3s --retries 2
  sitechecker --file urls.txt --interval 1m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.file == "" {
				_ = cmd.Help()
				return errNoTargets
			}
			if err := opts.cfg.Pool.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if opts.interval > 0 {
				// only watch mode stops on a signal; a single run always completes
				var cancel context.CancelFunc
				ctx, cancel = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer cancel()
			}
			return run(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), &opts, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()
	f.StringVar(&opts.file, "file", "", "File with one URL per line (# starts a comment)")
	f.IntVarP(&opts.cfg.Pool.Workers, "workers", "w", opts.cfg.Pool.Workers, "Number of concurrent workers")
	f.DurationVarP(&opts.cfg.Pool.Timeout, "timeout", "t", opts.cfg.Pool.Timeout, "Per-request timeout")
	f.IntVarP(&opts.cfg.Pool.Retries, "retries", "r", opts.cfg.Pool.Retries, "Extra attempts after a failed request")
	f.StringVarP(&opts.cfg.ReportPath, "output", "o", opts.cfg.ReportPath, "JSON report path")
	f.StringVar(&opts.cfg.LogDir, "log-dir", opts.cfg.LogDir, "Directory for rotated JSON logs")
	f.DurationVar(&opts.interval, "interval", opts.cfg.WatchInterval, "Repeat the checks at this interval until interrupted (0 = once)")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	f.BoolVar(&opts.debug, "debug", false, "Log every check")

	return cmd
}

func run(ctx context.Context, stdout, stderr io.Writer, opts *options, args []string) error {
	all := targets.FromArgs(args)
	if opts.file != "" {
		fromFile, err := targets.Load(opts.file)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: Could not read URLs from file '%s': %v\n", opts.file, err)
		}
		all = append(all, fromFile...)
	}
	if len(all) == 0 {
		fmt.Fprintln(stderr, "No URLs to check.")
		return nil
	}

	logger, err := logging.NewLogger(opts.cfg.LogDir, opts.debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	pool, err := scheduler.NewPool(logger, opts.cfg.Pool, report.NewConsole(stdout, opts.noColor))
	if err != nil {
		return err
	}

	notifier := notify.Multi{notify.Log{Logger: logger}}
	if s := notify.NewSlack(opts.cfg.SlackWebhook); s != nil {
		notifier = append(notifier, s)
	}

	var (
		runs   repo.RunStore
		alerts repo.AlertStore = memory.NewAlerts()
	)
	if opts.cfg.DatabaseURL != "" {
		store, err := openArchive(ctx, opts.cfg.DatabaseURL, logger)
		if err != nil {
			// the archive is optional; checks still run
			fmt.Fprintf(stderr, "Warning: archive disabled: %v\n", err)
			logger.Warn("archive_open_failed", zap.Error(err))
		} else {
			defer store.Close()
			runs, alerts = store, store
		}
	}

	alerter := scheduler.NewAlerter(logger, alerts, notifier, scheduler.AlerterConfig{
		AlertOnRecovery: opts.cfg.AlertRecovered,
		Cooldown:        opts.cfg.AlertCooldown,
	})

	var reportErr error
	onRun := func(ctx context.Context, r *repo.Run) {
		reportErr = report.WriteFile(opts.cfg.ReportPath, report.Build(r.Outcomes))
		if reportErr != nil {
			fmt.Fprintf(stderr, "Error writing %s: %v\n", opts.cfg.ReportPath, reportErr)
			logger.Error("report_write_failed", zap.String("path", opts.cfg.ReportPath), zap.Error(reportErr))
		} else {
			fmt.Fprintf(stdout, "Results saved to %s\n", opts.cfg.ReportPath)
		}

		if runs != nil {
			if err := runs.SaveRun(ctx, r); err != nil {
				logger.Warn("archive_run_failed", zap.Error(err))
			}
		}

		if opts.interval > 0 {
			if err := alerter.Observe(ctx, r.Outcomes); err != nil {
				logger.Warn("alerter_error", zap.Error(err))
			}
			return
		}
		if title, text, ok := report.Summary(r.Outcomes); ok {
			if err := notifier.Send(ctx, title, text); err != nil {
				logger.Warn("summary_send_failed", zap.Error(err))
			}
		}
	}

	if opts.interval == 0 {
		// checks never see a cancellation in a single run
		ctx = context.WithoutCancel(ctx)
	}
	scheduler.NewWatcher(logger, pool, all, opts.interval, onRun).Run(ctx)
	if opts.interval > 0 {
		return nil
	}
	return reportErr
}

func openArchive(ctx context.Context, dsn string, logger *zap.Logger) (*postgres.Store, error) {
	store, err := postgres.New(ctx, dsn, logger)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
