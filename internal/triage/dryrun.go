package triage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meko-christian/mail-sweeper/internal/classifier"
	"github.com/meko-christian/mail-sweeper/internal/message"
	"github.com/meko-christian/mail-sweeper/internal/unsubscribe"
)

// Verdict is the dry-run outcome for one message.
type Verdict struct {
	Ref     message.Ref
	Content message.Content
	Result  classifier.Result
	Link    string
}

// DryRun classifies every message with the poll classifier without touching
// the mailbox or following links. Unfetchable messages are skipped.
func (s *Service) DryRun(ctx context.Context) ([]Verdict, error) {
	sess, err := s.Connector.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSession(sess, slog.Default())

	refs, err := sess.ListAll()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	var verdicts []Verdict
	for _, ref := range refs {
		if ctx.Err() != nil {
			break
		}

		content, err := sess.Fetch(ref)
		if err != nil {
			slog.Warn("Skipping message", "uid", ref, "error", err)
			continue
		}

		v := Verdict{Ref: ref, Content: content, Result: s.Poller.Classify(content)}
		if v.Result.Unwanted {
			v.Link = unsubscribe.ExtractLink(content.BodyText)
		}
		verdicts = append(verdicts, v)
	}

	return verdicts, nil
}
