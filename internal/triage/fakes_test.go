package triage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/meko-christian/mail-sweeper/internal/classifier"
	"github.com/meko-christian/mail-sweeper/internal/message"
	"github.com/meko-christian/mail-sweeper/internal/report"
	"github.com/meko-christian/mail-sweeper/internal/unsubscribe"
)

type fakeSession struct {
	msgs      map[message.Ref]message.Content
	fetchErr  map[message.Ref]error
	listErr   error
	markErr   error
	commitErr error
	labelErr  error

	ops    []string
	closed int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		msgs:     map[message.Ref]message.Content{},
		fetchErr: map[message.Ref]error{},
	}
}

func (f *fakeSession) add(ref message.Ref, c message.Content) {
	f.msgs[ref] = c
}

func (f *fakeSession) ListAll() ([]message.Ref, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	refs := make([]message.Ref, 0, len(f.msgs)+len(f.fetchErr))
	for ref := range f.msgs {
		refs = append(refs, ref)
	}
	for ref := range f.fetchErr {
		if _, ok := f.msgs[ref]; !ok {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs, nil
}

func (f *fakeSession) Fetch(ref message.Ref) (message.Content, error) {
	if err := f.fetchErr[ref]; err != nil {
		return message.Content{}, err
	}
	return f.msgs[ref], nil
}

func (f *fakeSession) MarkDeleted(ref message.Ref) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.ops = append(f.ops, fmt.Sprintf("mark %d", ref))
	return nil
}

func (f *fakeSession) Commit() error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.ops = append(f.ops, "commit")
	return nil
}

func (f *fakeSession) LabelSpam(ref message.Ref) error {
	f.ops = append(f.ops, fmt.Sprintf("label %d", ref))
	return f.labelErr
}

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

// fakeConnector fails the first failures opens, then hands out sessions in
// order, repeating the last one.
type fakeConnector struct {
	failures int
	err      error
	sessions []*fakeSession
	opens    int
}

func (fc *fakeConnector) Open(ctx context.Context) (Session, error) {
	fc.opens++
	if fc.opens <= fc.failures {
		if fc.err != nil {
			return nil, fc.err
		}
		return nil, &message.Error{Kind: message.KindConnect, Op: "dial", Err: errors.New("connection refused")}
	}
	i := fc.opens - fc.failures - 1
	if i >= len(fc.sessions) {
		i = len(fc.sessions) - 1
	}
	return fc.sessions[i], nil
}

type fakeUnsubscriber struct {
	status map[string]int
	calls  []string
}

func (fu *fakeUnsubscriber) Attempt(_ context.Context, link string) unsubscribe.Attempt {
	fu.calls = append(fu.calls, link)
	status, ok := fu.status[link]
	if !ok {
		return unsubscribe.Attempt{Link: link, Err: errors.New("dial tcp: connection refused")}
	}
	return unsubscribe.Attempt{Link: link, Status: status, Succeeded: status == 200}
}

type fakeNotifier struct {
	sent []*report.Summary
}

func (fn *fakeNotifier) Send(s *report.Summary) error {
	fn.sent = append(fn.sent, s)
	return nil
}

// countingClassifier records how often it is consulted.
type countingClassifier struct {
	result classifier.Result
	calls  int
}

func (cc *countingClassifier) Classify(message.Content) classifier.Result {
	cc.calls++
	return cc.result
}

const (
	testBackoff  = 7 * time.Second
	testInterval = 11 * time.Second
)

// newTestService wires fakes with distinct backoff and interval durations.
// The returned states slice is filled as the service transitions.
func newTestService(conn Connector, unsub Unsubscriber) (*Service, *[]State) {
	states := &[]State{}
	svc := &Service{
		Connector:    conn,
		Sweeper:      classifier.DefaultRules(),
		Poller:       classifier.DefaultRules(),
		Unsubscriber: unsub,
		Interval:     testInterval,
		Backoff:      testBackoff,
		OnState:      func(s State) { *states = append(*states, s) },
		Sleep:        func(context.Context, time.Duration) error { return nil },
	}
	return svc, states
}

func ham(i int) message.Content {
	return message.Content{
		Subject:  fmt.Sprintf("Build report %d", i),
		Sender:   "ci@example.com",
		Date:     "Mon, 7 Oct 2024 09:00:00 +0000",
		BodyText: "All checks passed on the main branch.",
	}
}

func promo(link string) message.Content {
	return message.Content{
		Subject:  "Weekend sale",
		Sender:   "deals@shop.example",
		Date:     "Tue, 8 Oct 2024 10:00:00 +0000",
		BodyText: "Everything must go. " + link,
	}
}

type unsubscriberFunc func(ctx context.Context, link string) bool

func (f unsubscriberFunc) Attempt(ctx context.Context, link string) unsubscribe.Attempt {
	ok := f(ctx, link)
	return unsubscribe.Attempt{Link: link, Succeeded: ok}
}
