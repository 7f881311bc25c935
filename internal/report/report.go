// Package report renders the end-of-sweep and end-of-cycle summaries.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/meko-christian/mail-sweeper/internal/message"
)

const timeLayout = "2006-01-02 15:04:05"

// Summary is the outcome of one sweep or poll cycle. It is built by the run
// that produced it and handed to the reporting step; nothing is kept across
// runs.
type Summary struct {
	RunID string
	Mode  string
	Start time.Time
	End   time.Time

	Processed    int
	Unwanted     int
	Unsubscribed int
	Deleted      int
	// Skipped counts messages that could not be fetched.
	Skipped int

	Records []message.Disposition

	// Err is set when the run was aborted, e.g. the session could not be opened.
	Err error
}

// Add appends a disposition record and updates the counters.
func (s *Summary) Add(d message.Disposition) {
	s.Records = append(s.Records, d)
	s.Unwanted++
	if d.Unsubscribed {
		s.Unsubscribed++
	}
	if d.Deleted {
		s.Deleted++
	}
}

func (s *Summary) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Title is a one line description, used as mail subject.
func (s *Summary) Title() string {
	return fmt.Sprintf("%s summary: %d processed, %d unwanted, %d unsubscribed, %d deleted",
		s.Mode, s.Processed, s.Unwanted, s.Unsubscribed, s.Deleted)
}

// Write renders the human readable report.
func Write(w io.Writer, s *Summary) error {
	rule := strings.Repeat("=", 50)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n%s SUMMARY\n%s\n", rule, strings.ToUpper(s.Mode), rule)
	if s.RunID != "" {
		fmt.Fprintf(&b, "Run: %s\n", s.RunID)
	}
	fmt.Fprintf(&b, "Start time: %s\n", s.Start.Format(timeLayout))
	fmt.Fprintf(&b, "End time: %s\n", s.End.Format(timeLayout))
	fmt.Fprintf(&b, "Total processing time: %.2f seconds\n", s.Duration().Seconds())
	if s.Err != nil {
		fmt.Fprintf(&b, "Aborted: %v\n", s.Err)
	}

	fmt.Fprintf(&b, "\nTotal emails processed: %d\n", s.Processed)
	fmt.Fprintf(&b, "Spam/Advertising emails found: %d\n", s.Unwanted)
	fmt.Fprintf(&b, "Successful unsubscriptions: %d\n", s.Unsubscribed)
	fmt.Fprintf(&b, "Emails deleted: %d\n", s.Deleted)
	if s.Skipped > 0 {
		fmt.Fprintf(&b, "Emails skipped (fetch failed): %d\n", s.Skipped)
	}

	if len(s.Records) > 0 {
		fmt.Fprintf(&b, "\nDetailed Spam/Advertising Email List:\n%s\n", strings.Repeat("-", 50))
		for i, r := range s.Records {
			fmt.Fprintf(&b, "\n%d. Subject: %s\n", i+1, r.Subject)
			fmt.Fprintf(&b, "   From: %s\n", r.Sender)
			fmt.Fprintf(&b, "   Date: %s\n", r.Date)
			fmt.Fprintf(&b, "   Reason: %s\n", r.Reason)
			fmt.Fprintf(&b, "   Unsubscribed: %s\n", yesNo(r.Unsubscribed))
			fmt.Fprintf(&b, "   Deleted: %s\n", yesNo(r.Deleted))
		}
	}
	fmt.Fprintf(&b, "\n%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
