package triage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meko-christian/mail-sweeper/internal/message"
	"github.com/meko-christian/mail-sweeper/internal/report"
)

// poll loops POLL_IDLE/POLL_ACTIVE until ctx is cancelled. Connect failures
// back off and retry without limit; any other error ends the loop.
func (s *Service) poll(ctx context.Context) error {
	s.enter(StatePollIdle)

	for {
		sess, err := s.connect(ctx)
		if err != nil {
			return err
		}
		if sess == nil {
			return nil
		}

		s.enter(StatePollActive)
		sum, err := s.cycle(ctx, sess)
		closeSession(sess, slog.With("run_id", sum.RunID))
		s.publish(sum)
		if err != nil {
			return fmt.Errorf("poll cycle failed: %w", err)
		}

		s.enter(StatePollIdle)
		slog.Debug("Waiting for next poll", "interval", s.interval())
		if err := s.sleep(ctx, s.interval()); err != nil {
			return nil
		}
	}
}

// connect opens a session, waiting the backoff after every connect failure.
// It returns a nil session once ctx is done.
func (s *Service) connect(ctx context.Context) (Session, error) {
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return nil, nil
		}

		sess, err := s.Connector.Open(ctx)
		if err == nil {
			return sess, nil
		}
		if !message.IsKind(err, message.KindConnect) {
			return nil, fmt.Errorf("open mailbox: %w", err)
		}

		slog.Error("Failed to connect", "error", err, "attempt", attempt)
		s.enter(StateReconnectBackoff)

		slog.Info("Retrying connection after delay", "delay", s.backoff(), "next_attempt", attempt+1)
		if err := s.sleep(ctx, s.backoff()); err != nil {
			return nil, nil
		}
	}
}

// cycle triages the messages currently in the folder with both classifier
// stages, committing each deletion immediately. The returned error is fatal.
func (s *Service) cycle(ctx context.Context, sess Session) (*report.Summary, error) {
	sum := newSummary(ModePoll)
	log := slog.With("run_id", sum.RunID, "mode", ModePoll)

	refs, err := sess.ListAll()
	if err != nil {
		sum.Err = err
		return sum, err
	}
	log.Debug("Polling messages", "messages", len(refs))

	for _, ref := range refs {
		if ctx.Err() != nil {
			log.Info("Poll cycle interrupted", "processed", sum.Processed, "total", len(refs))
			break
		}

		content, err := sess.Fetch(ref)
		if err != nil {
			log.Warn("Skipping message", "uid", ref, "error", err)
			sum.Skipped++
			continue
		}
		sum.Processed++

		if res := s.Poller.Classify(content); res.Unwanted {
			sum.Add(s.dispose(ctx, sess, ref, content, res, true, log))
		}
	}

	return sum, nil
}
