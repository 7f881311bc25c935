// Package unsubscribe finds opt-out links in message bodies and follows them.
package unsubscribe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/meko-christian/mail-sweeper/internal/message"
)

// linkPatterns are tried in order; the first pattern with any match wins
// regardless of where in the body the match is.
var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://[^\s<>"]+?/unsubscribe[^\s<>"]*`),
	regexp.MustCompile(`(?i)https?://[^\s<>"]+?/opt-out[^\s<>"]*`),
	regexp.MustCompile(`(?i)https?://[^\s<>"]+?/remove[^\s<>"]*`),
}

// ExtractLink returns the first opt-out link by pattern priority, or "".
func ExtractLink(body string) string {
	for _, re := range linkPatterns {
		if m := re.FindString(body); m != "" {
			return m
		}
	}
	return ""
}

// Attempt is the outcome of one unsubscribe request.
type Attempt struct {
	Link string
	// Status is zero when no response was received.
	Status    int
	Succeeded bool
	Err       error
}

// Agent issues single, unretried GET requests to opt-out links.
type Agent struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

type Options struct {
	Timeout time.Duration
	// Rate is the maximum number of requests per second.
	Rate      float64
	UserAgent string
}

// New builds an Agent. A nil client gets a fresh one using Timeout.
func New(client *http.Client, opts Options) *Agent {
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	} else if opts.Timeout > 0 {
		c := *client
		c.Timeout = opts.Timeout
		client = &c
	}

	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}

	return &Agent{
		client:    client,
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: opts.UserAgent,
	}
}

// Attempt GETs link once. Success is exactly status 200; any other status or
// transport failure is reported in the returned Attempt and never retried.
func (a *Agent) Attempt(ctx context.Context, link string) Attempt {
	res := Attempt{Link: link}

	lower := strings.ToLower(link)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		res.Err = message.Errorf(message.KindUnsubscribe, "get", 0, "refusing non-HTTP link %q", link)
		return res
	}

	if err := a.limiter.Wait(ctx); err != nil {
		res.Err = &message.Error{Kind: message.KindUnsubscribe, Op: "throttle", Err: err}
		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		res.Err = &message.Error{Kind: message.KindUnsubscribe, Op: "request", Err: err}
		return res
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		res.Err = &message.Error{Kind: message.KindUnsubscribe, Op: "get", Err: err}
		return res
	}
	defer resp.Body.Close()

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	res.Status = resp.StatusCode
	res.Succeeded = resp.StatusCode == http.StatusOK
	if !res.Succeeded {
		res.Err = message.Errorf(message.KindUnsubscribe, "get", 0, "unexpected status %d", resp.StatusCode)
	}

	slog.Debug("Unsubscribe request finished", "link", link, "status", resp.StatusCode)
	return res
}

func (a Attempt) String() string {
	switch {
	case a.Succeeded:
		return fmt.Sprintf("unsubscribed via %s", a.Link)
	case a.Status != 0:
		return fmt.Sprintf("unsubscribe failed via %s: status %d", a.Link, a.Status)
	default:
		return fmt.Sprintf("unsubscribe failed via %s: %v", a.Link, a.Err)
	}
}
