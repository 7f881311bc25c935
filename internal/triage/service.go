// Package triage runs the mailbox pipeline: an optional one-time bulk sweep
// followed by an indefinite poll loop with reconnect backoff.
package triage

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meko-christian/mail-sweeper/internal/classifier"
	"github.com/meko-christian/mail-sweeper/internal/report"
	"github.com/meko-christian/mail-sweeper/internal/unsubscribe"
)

const (
	DefaultInterval = 5 * time.Minute
	DefaultBackoff  = 60 * time.Second
)

// Unsubscriber performs one opt-out request. *unsubscribe.Agent implements it.
type Unsubscriber interface {
	Attempt(ctx context.Context, link string) unsubscribe.Attempt
}

// Notifier delivers a finished summary. *report.Mailer implements it.
type Notifier interface {
	Send(s *report.Summary) error
}

// Service wires the pipeline components. Sweeper is used by the bulk sweep,
// Poller by every poll cycle.
type Service struct {
	Connector    Connector
	Sweeper      classifier.Classifier
	Poller       classifier.Classifier
	Unsubscriber Unsubscriber

	// Sweep enables the bulk sweep before polling.
	Sweep    bool
	Interval time.Duration
	Backoff  time.Duration

	// Out receives the human readable summaries, Notifier a copy by mail.
	Out      io.Writer
	Notifier Notifier

	// OnState observes transitions.
	OnState func(State)
	// Sleep waits d or until ctx is done. Defaults to a timer.
	Sleep   func(ctx context.Context, d time.Duration) error
}

// Run executes BULK_SWEEP (if enabled) and then polls until ctx is cancelled.
// It returns nil on cancellation and an error only for fatal conditions.
func (s *Service) Run(ctx context.Context) error {
	s.enter(StateStartup)

	if s.Sweep {
		s.BulkSweep(ctx)
	}

	err := s.poll(ctx)
	if err != nil {
		return err
	}

	s.enter(StateShutdown)
	slog.Info("Shutting down")
	return nil
}

func (s *Service) enter(st State) {
	slog.Debug("State transition", "state", st.String())
	if s.OnState != nil {
		s.OnState(st)
	}
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if s.Sleep != nil {
		return s.Sleep(ctx, d)
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Service) interval() time.Duration {
	if s.Interval > 0 {
		return s.Interval
	}
	return DefaultInterval
}

func (s *Service) backoff() time.Duration {
	if s.Backoff > 0 {
		return s.Backoff
	}
	return DefaultBackoff
}

func newSummary(mode string) *report.Summary {
	return &report.Summary{RunID: uuid.NewString(), Mode: mode, Start: time.Now()}
}

// publish closes the summary and hands it to the reporting outputs.
func (s *Service) publish(sum *report.Summary) {
	sum.End = time.Now()

	slog.Info("Run finished",
		"run_id", sum.RunID,
		"mode", sum.Mode,
		"processed", sum.Processed,
		"unwanted", sum.Unwanted,
		"unsubscribed", sum.Unsubscribed,
		"deleted", sum.Deleted,
		"skipped", sum.Skipped,
		"duration", sum.Duration())

	if s.Out != nil {
		if err := report.Write(s.Out, sum); err != nil {
			slog.Error("Failed to write summary", "error", err)
		}
	}

	// an empty poll cycle is not worth a mail
	if s.Notifier != nil && (sum.Mode == ModeBulk || sum.Unwanted > 0 || sum.Err != nil) {
		if err := s.Notifier.Send(sum); err != nil {
			slog.Error("Failed to send summary", "run_id", sum.RunID, "error", err)
		}
	}
}
