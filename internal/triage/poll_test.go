package triage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meko-christian/mail-sweeper/internal/classifier"
	"github.com/meko-christian/mail-sweeper/internal/config"
	"github.com/meko-christian/mail-sweeper/internal/mailbox"
	"github.com/meko-christian/mail-sweeper/internal/message"
)

// stopAfterFirstCycle makes svc record its waits and cancel the run at the
// first poll interval wait.
func stopAfterFirstCycle(svc *Service, cancel context.CancelFunc) *[]time.Duration {
	waits := &[]time.Duration{}
	svc.Sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		if d == testInterval {
			cancel()
		}
		return ctx.Err()
	}
	return waits
}

func TestReconnectBackoff(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 3, 25} {
		n := n
		t.Run(fmt.Sprintf("%d failures", n), func(t *testing.T) {
			t.Parallel()

			sess := newFakeSession()
			sess.add(1, ham(1))
			conn := &fakeConnector{failures: n, sessions: []*fakeSession{sess}}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			svc, states := newTestService(conn, &fakeUnsubscriber{})
			waits := stopAfterFirstCycle(svc, cancel)

			require.NoError(t, svc.Run(ctx))

			want := []State{StateStartup, StatePollIdle}
			wantWaits := []time.Duration{}
			for i := 0; i < n; i++ {
				want = append(want, StateReconnectBackoff)
				wantWaits = append(wantWaits, testBackoff)
			}
			want = append(want, StatePollActive, StatePollIdle, StateShutdown)
			wantWaits = append(wantWaits, testInterval)

			assert.Equal(t, want, *states)
			assert.Equal(t, wantWaits, *waits)
			assert.Equal(t, n+1, conn.opens)
			assert.Equal(t, 1, sess.closed)
		})
	}
}

func TestPollCommitsPerMessage(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.add(1, ham(1))
	sess.add(2, promo("https://shop.example/unsubscribe?u=2"))
	sess.add(3, ham(3))
	sess.add(4, promo("https://shop.example/remove?u=4"))

	unsub := &fakeUnsubscriber{status: map[string]int{
		"https://shop.example/unsubscribe?u=2": 200,
		"https://shop.example/remove?u=4":      200,
	}}
	notifier := &fakeNotifier{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, _ := newTestService(&fakeConnector{sessions: []*fakeSession{sess}}, unsub)
	svc.Notifier = notifier
	stopAfterFirstCycle(svc, cancel)

	require.NoError(t, svc.Run(ctx))

	assert.Equal(t, []string{
		"label 2", "mark 2", "commit",
		"label 4", "mark 4", "commit",
	}, sess.ops)

	require.Len(t, notifier.sent, 1)
	sum := notifier.sent[0]
	assert.Equal(t, ModePoll, sum.Mode)
	assert.Equal(t, 4, sum.Processed)
	assert.Equal(t, 2, sum.Unwanted)
	assert.Equal(t, 2, sum.Unsubscribed)
	assert.Equal(t, 2, sum.Deleted)
}

type fixedScore float64

func (f fixedScore) Probability(string) float64 { return float64(f) }

type identity struct{}

func (identity) Normalize(s string) string { return s }

func TestPollConsultsModel(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.add(1, ham(1))

	notifier := &fakeNotifier{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, _ := newTestService(&fakeConnector{sessions: []*fakeSession{sess}}, &fakeUnsubscriber{})
	svc.Notifier = notifier
	svc.Poller = classifier.Chain{
		classifier.DefaultRules(),
		&classifier.Probabilistic{Normalizer: identity{}, Scorer: fixedScore(0.95), Threshold: 0.8},
	}
	stopAfterFirstCycle(svc, cancel)

	require.NoError(t, svc.Run(ctx))

	require.Len(t, notifier.sent, 1)
	require.Len(t, notifier.sent[0].Records, 1)
	assert.Equal(t, "model: p=0.950", notifier.sent[0].Records[0].Reason)
	assert.True(t, notifier.sent[0].Records[0].Deleted)
}

func TestPollSkipsEmptyCycleMail(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.add(1, ham(1))

	notifier := &fakeNotifier{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, _ := newTestService(&fakeConnector{sessions: []*fakeSession{sess}}, &fakeUnsubscriber{})
	svc.Notifier = notifier
	stopAfterFirstCycle(svc, cancel)

	require.NoError(t, svc.Run(ctx))
	assert.Empty(t, notifier.sent)
}

func TestPollFatalErrorClosesSession(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.listErr = errors.New("connection reset by peer")

	svc, states := newTestService(&fakeConnector{sessions: []*fakeSession{sess}}, &fakeUnsubscriber{})

	err := svc.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, sess.listErr)
	assert.Equal(t, 1, sess.closed)
	assert.NotContains(t, *states, StateShutdown)
}

func TestPollNonConnectOpenErrorIsFatal(t *testing.T) {
	t.Parallel()

	conn := &fakeConnector{failures: 1, err: mailbox.ErrSessionActive, sessions: []*fakeSession{newFakeSession()}}
	svc, states := newTestService(conn, &fakeUnsubscriber{})

	err := svc.Run(context.Background())

	assert.ErrorIs(t, err, mailbox.ErrSessionActive)
	assert.NotContains(t, *states, StateReconnectBackoff)
}

func TestRunSweepThenPoll(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.add(1, promo(""))

	// the sweep's open fails, polling carries on
	conn := &fakeConnector{failures: 1, sessions: []*fakeSession{sess}}
	notifier := &fakeNotifier{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, states := newTestService(conn, &fakeUnsubscriber{})
	svc.Sweep = true
	svc.Notifier = notifier
	waits := stopAfterFirstCycle(svc, cancel)

	require.NoError(t, svc.Run(ctx))

	assert.Equal(t, []State{
		StateStartup, StateBulkSweep, StatePollIdle, StatePollActive, StatePollIdle, StateShutdown,
	}, *states)
	assert.Equal(t, []time.Duration{testInterval}, *waits)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, ModeBulk, notifier.sent[0].Mode)
	assert.True(t, message.IsKind(notifier.sent[0].Err, message.KindConnect))
	assert.Equal(t, ModePoll, notifier.sent[1].Mode)
	assert.Equal(t, 1, notifier.sent[1].Deleted)
}

func TestRunShutdownDuringCycle(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.add(1, promo(""))
	sess.add(2, promo(""))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, states := newTestService(&fakeConnector{sessions: []*fakeSession{sess}}, &fakeUnsubscriber{})
	svc.Poller = classifier.Chain{cancelOnClassify(cancel), classifier.DefaultRules()}
	svc.Sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	require.NoError(t, svc.Run(ctx))

	assert.Equal(t, []string{"label 1", "mark 1", "commit"}, sess.ops)
	assert.Equal(t, 1, sess.closed)
	assert.Equal(t, StateShutdown, (*states)[len(*states)-1])
}

func TestRunCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	conn := &fakeConnector{failures: 1 << 30}
	ctx, cancel := context.WithCancel(context.Background())

	svc, states := newTestService(conn, &fakeUnsubscriber{})
	svc.Sleep = func(ctx context.Context, _ time.Duration) error {
		if conn.opens == 5 {
			cancel()
		}
		return ctx.Err()
	}

	require.NoError(t, svc.Run(ctx))
	assert.Equal(t, 5, conn.opens)
	assert.Equal(t, StateShutdown, (*states)[len(*states)-1])
}

func TestDefaultSleepHonoursContext(t *testing.T) {
	t.Parallel()

	svc := &Service{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	assert.ErrorIs(t, svc.sleep(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.NoError(t, svc.sleep(context.Background(), time.Millisecond))
}

func TestMailboxConnectorReturnsNilSession(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	conn := MailboxConnector(mailbox.NewManager(config.IMAP{
		Server:      "127.0.0.1",
		Port:        port,
		Security:    "none",
		DialTimeout: time.Second,
	}))

	sess, err := conn.Open(context.Background())
	assert.True(t, message.IsKind(err, message.KindConnect))
	assert.Nil(t, sess)
}
