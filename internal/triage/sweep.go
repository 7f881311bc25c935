package triage

import (
	"context"
	"log/slog"
	"time"

	"github.com/meko-christian/mail-sweeper/internal/report"
)

const (
	ModeBulk = "bulk"
	ModePoll = "poll"
)

// progressEvery is how often the sweep logs its progress.
const progressEvery = 10

// BulkSweep runs one rule-only pass over the whole folder and commits every
// deletion in a single batch at the end. Failures to open or list are
// recorded in the summary; the sweep never retries.
func (s *Service) BulkSweep(ctx context.Context) *report.Summary {
	s.enter(StateBulkSweep)

	sum := newSummary(ModeBulk)
	defer s.publish(sum)

	log := slog.With("run_id", sum.RunID, "mode", ModeBulk)

	sess, err := s.Connector.Open(ctx)
	if err != nil {
		log.Error("Bulk sweep aborted, could not open mailbox", "error", err)
		sum.Err = err
		return sum
	}
	defer closeSession(sess, log)

	refs, err := sess.ListAll()
	if err != nil {
		log.Error("Bulk sweep aborted, could not list messages", "error", err)
		sum.Err = err
		return sum
	}
	log.Info("Starting bulk sweep", "messages", len(refs))

	marked := 0
	for _, ref := range refs {
		if ctx.Err() != nil {
			log.Info("Bulk sweep interrupted", "processed", sum.Processed, "total", len(refs))
			break
		}

		content, err := sess.Fetch(ref)
		if err != nil {
			log.Warn("Skipping message", "uid", ref, "error", err)
			sum.Skipped++
			continue
		}
		sum.Processed++

		if res := s.Sweeper.Classify(content); res.Unwanted {
			d := s.dispose(ctx, sess, ref, content, res, false, log)
			if d.Deleted {
				marked++
			}
			sum.Add(d)
		}

		if sum.Processed%progressEvery == 0 {
			log.Info("Sweep progress",
				"processed", sum.Processed,
				"total", len(refs),
				"elapsed", time.Since(sum.Start).Round(time.Millisecond))
		}
	}

	if marked == 0 {
		return sum
	}

	if err := sess.Commit(); err != nil {
		log.Error("Failed to expunge swept messages", "marked", marked, "error", err)
		for i := range sum.Records {
			sum.Records[i].Deleted = false
		}
		sum.Deleted = 0
		return sum
	}
	log.Info("Expunged swept messages", "count", marked)

	return sum
}
