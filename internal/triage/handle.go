package triage

import (
	"context"
	"log/slog"

	"github.com/meko-christian/mail-sweeper/internal/classifier"
	"github.com/meko-christian/mail-sweeper/internal/message"
	"github.com/meko-christian/mail-sweeper/internal/unsubscribe"
)

// dispose tries to unsubscribe from one unwanted message and then deletes it.
// Deletion never depends on the unsubscribe outcome. With immediate set the
// deletion is committed right away and the spam label is applied; otherwise
// the caller commits the batch.
func (s *Service) dispose(ctx context.Context, sess Session, ref message.Ref, c message.Content, res classifier.Result, immediate bool, log *slog.Logger) message.Disposition {
	d := message.Disposition{
		Ref:     ref,
		Subject: c.Subject,
		Sender:  c.Sender,
		Date:    c.Date,
		Reason:  res.Reason(),
	}
	log = log.With("uid", ref, "subject", c.Subject, "from", c.Sender, "date", c.Date)
	log.Info("Unwanted message", "reason", d.Reason)

	if immediate {
		if err := sess.LabelSpam(ref); err != nil {
			log.Warn("Could not apply spam label", "error", err)
		}
	}

	if link := unsubscribe.ExtractLink(c.BodyText); link != "" {
		d.Link = link
		// an in-flight request is not cut short by an interrupt, the
		// agent's own timeout bounds it
		attempt := s.Unsubscriber.Attempt(context.WithoutCancel(ctx), link)
		d.Unsubscribed = attempt.Succeeded
		if attempt.Succeeded {
			log.Info("Unsubscribed", "link", link)
		} else {
			log.Warn("Unsubscribe failed", "link", link, "status", attempt.Status, "error", attempt.Err)
		}
	} else {
		log.Debug("No unsubscribe link found")
	}

	if err := sess.MarkDeleted(ref); err != nil {
		log.Error("Failed to mark message deleted", "error", err)
		return d
	}

	if immediate {
		if err := sess.Commit(); err != nil {
			log.Error("Failed to expunge message", "error", err)
			return d
		}
	}

	d.Deleted = true
	return d
}

func closeSession(sess Session, log *slog.Logger) {
	if err := sess.Close(); err != nil {
		log.Warn("Failed to close mailbox session", "error", err)
	}
}
