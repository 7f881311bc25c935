package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/meko-christian/mail-sweeper/internal/config"
	"github.com/meko-christian/mail-sweeper/internal/message"
)

func sample() *Summary {
	start := time.Date(2024, 10, 7, 9, 0, 0, 0, time.UTC)
	s := &Summary{
		RunID:     "run-1",
		Mode:      "bulk",
		Start:     start,
		End:       start.Add(1500 * time.Millisecond),
		Processed: 23,
	}
	s.Add(message.Disposition{Subject: "Big sale", Sender: "shop@example.com", Date: "Mon", Reason: "rule: sale", Unsubscribed: true, Deleted: true})
	s.Add(message.Disposition{Subject: "Newsletter", Sender: "news@example.com", Date: "Tue", Reason: "rule: newsletter", Deleted: true})
	return s
}

func TestSummaryAdd(t *testing.T) {
	t.Parallel()

	s := sample()
	if s.Unwanted != 2 || s.Unsubscribed != 1 || s.Deleted != 2 {
		t.Errorf("counters = unwanted %d, unsubscribed %d, deleted %d", s.Unwanted, s.Unsubscribed, s.Deleted)
	}
	if got, want := s.Title(), "bulk summary: 23 processed, 2 unwanted, 1 unsubscribed, 2 deleted"; got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, sample()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"BULK SUMMARY",
		"Start time: 2024-10-07 09:00:00",
		"Total processing time: 1.50 seconds",
		"Total emails processed: 23",
		"Spam/Advertising emails found: 2",
		"Successful unsubscriptions: 1",
		"Emails deleted: 2",
		"1. Subject: Big sale",
		"   Unsubscribed: Yes",
		"2. Subject: Newsletter",
		"   Unsubscribed: No",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report lacks %q:\n%s", want, out)
		}
	}
}

func TestWriteAborted(t *testing.T) {
	t.Parallel()

	s := &Summary{Mode: "bulk", Err: errors.New("connect login: bad credentials")}
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Aborted: connect login: bad credentials") {
		t.Errorf("abort reason missing:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "Detailed") {
		t.Errorf("empty run should not list details")
	}
}

type captureSender struct {
	msgs []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.msgs = append(c.msgs, m...)
	return c.err
}

func TestMailerSend(t *testing.T) {
	t.Parallel()

	cfg := config.Report{
		To:   []string{"ops@example.com"},
		SMTP: config.SMTP{Username: "sweeper@example.com"},
	}
	sender := &captureSender{}
	if err := NewMailerWithSender(cfg, sender).Send(sample()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(sender.msgs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.msgs))
	}
	msg := sender.msgs[0]
	if got := msg.GetHeader("From"); len(got) != 1 || got[0] != "sweeper@example.com" {
		t.Errorf("From = %v", got)
	}
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "ops@example.com" {
		t.Errorf("To = %v", got)
	}
	if got := msg.GetHeader("Subject"); len(got) != 1 || !strings.HasPrefix(got[0], "[mail-sweeper] bulk summary") {
		t.Errorf("Subject = %v", got)
	}

	sender.err = errors.New("smtp down")
	if err := NewMailerWithSender(cfg, sender).Send(sample()); err == nil {
		t.Error("expected send error")
	}
}
