// Package runner performs one check-and-report cycle: scan history, count days, notify.
// It is the only place errors are recovered; a failed cycle sends at most one failure report.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/livecheck/live"
	"github.com/onnwee/livecheck/notify"
	"github.com/onnwee/livecheck/telemetry"
)

// Outcome is the terminal state of a run.
type Outcome int

const (
	// Success: a status report was delivered.
	Success Outcome = iota
	// ReportedFailure: the run failed and the failure report was delivered.
	ReportedFailure
	// UnreportedFailure: the run failed and so did the failure report.
	UnreportedFailure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case ReportedFailure:
		return "reported_failure"
	case UnreportedFailure:
		return "unreported_failure"
	default:
		return "unknown"
	}
}

// ExitCode maps the outcome to a process exit status.
func (o Outcome) ExitCode() int {
	if o == Success {
		return 0
	}
	return 1
}

// Finder locates the latest live notification. It is satisfied by *live.Scanner, whose
// Scan also reports the page and message counts the controller records as metrics;
// FindLastLive is the same search without those counts.
type Finder interface {
	Scan(ctx context.Context) (live.ScanResult, error)
}

// Result describes a finished run.
type Result struct {
	Outcome Outcome
	// Report is the last report the run tried to send.
	Report notify.Report
	// Days since the last live notification, -1 when none was found or the run failed.
	Days int
	// Err is why the run failed; NotifyErr is why the failure report was not delivered.
	Err       error
	NotifyErr error
}

// Controller wires the scanner to the notifier.
type Controller struct {
	Finder   Finder
	Notifier notify.Notifier
	Streamer string
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c *Controller) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Run executes one cycle. It never panics on collaborator errors; inspect Result.Outcome.
func (c *Controller) Run(ctx context.Context) Result {
	ctx, span := telemetry.StartSpan(ctx, "livecheck.run")
	var res Result
	telemetry.TimeFunc(telemetry.RunDuration, func() { res = c.run(ctx) })
	telemetry.RecordOutcome(res.Outcome.String())
	span.SetAttributes(
		attribute.String("outcome", res.Outcome.String()),
		attribute.Int("days", res.Days),
	)
	telemetry.EndSpan(span, res.Err)
	return res
}

func (c *Controller) run(ctx context.Context) Result {
	log := telemetry.LoggerWithCorr(ctx)

	report, days, err := c.check(ctx)
	if err == nil {
		err = c.send(ctx, report)
		if err == nil {
			telemetry.SetDaysSinceLive(days)
			log.Info("status report sent", slog.String("report", report.Kind.String()), slog.Int("days", days))
			return Result{Outcome: Success, Report: report, Days: days}
		}
	}

	log.Error("run failed", slog.Any("err", err))
	failure := notify.Failed(err, c.now())
	if nerr := c.send(ctx, failure); nerr != nil {
		log.Error("failure report not delivered", slog.Any("err", nerr))
		return Result{Outcome: UnreportedFailure, Report: failure, Days: -1, Err: err, NotifyErr: nerr}
	}
	return Result{Outcome: ReportedFailure, Report: failure, Days: -1, Err: err}
}

// check scans history and selects the report; days is -1 when nothing was found.
func (c *Controller) check(ctx context.Context) (notify.Report, int, error) {
	if c.Finder == nil {
		return notify.Report{}, -1, errors.New("runner has no finder")
	}
	scan, err := c.Finder.Scan(ctx)
	if telemetry.MessagesScanned != nil {
		telemetry.MessagesScanned.Add(float64(scan.Scanned))
	}
	if err != nil {
		return notify.Report{}, -1, err
	}
	now := c.now()
	if scan.Message == nil {
		telemetry.LoggerWithCorr(ctx).Info("no live notification found",
			slog.Int("pages", scan.Pages), slog.Int("scanned", scan.Scanned))
		return notify.NotFound(now), -1, nil
	}
	days := live.DaysSince(scan.Message.Timestamp, now)
	telemetry.LoggerWithCorr(ctx).Info("last live notification",
		slog.String("message_id", scan.Message.ID),
		slog.String("local_date", live.LocalDate(scan.Message.Timestamp).String()),
		slog.Int("days", days))
	return notify.ForDays(days, c.Streamer, now), days, nil
}

func (c *Controller) send(ctx context.Context, r notify.Report) error {
	if c.Notifier == nil {
		return errors.New("runner has no notifier")
	}
	return c.Notifier.Notify(ctx, r.Text())
}
