// Package mailbox owns the IMAP session lifecycle and every protocol
// operation the triage pipeline needs: listing, fetching, flagging and
// expunging messages.
package mailbox

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/emersion/go-imap/client"

	"github.com/meko-christian/mail-sweeper/internal/config"
	"github.com/meko-christian/mail-sweeper/internal/message"
)

// ErrSessionActive is returned by Open while a previous session is still open.
var ErrSessionActive = errors.New("mailbox session already open")

// Manager opens at most one authenticated, folder-selected session at a time.
// It never retries; retry policy belongs to the caller.
type Manager struct {
	cfg config.IMAP

	mu     sync.Mutex
	active *Session
}

func NewManager(cfg config.IMAP) *Manager {
	return &Manager{cfg: cfg}
}

// Open connects, logs in and selects the configured folder read-write.
// Failures are KindConnect errors and leave no connection behind.
func (m *Manager) Open(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, ErrSessionActive
	}

	if err := ctx.Err(); err != nil {
		return nil, &message.Error{Kind: message.KindConnect, Op: "dial", Err: err}
	}

	c, err := m.dial()
	if err != nil {
		return nil, &message.Error{Kind: message.KindConnect, Op: "dial", Err: fmt.Errorf("failed to connect to IMAP server %s: %w", m.cfg.Address(), err)}
	}

	if err := c.Login(m.cfg.Username, m.cfg.Password); err != nil {
		_ = c.Logout() // clean up if login fails
		return nil, &message.Error{Kind: message.KindConnect, Op: "login", Err: fmt.Errorf("failed to login as %s: %w", m.cfg.Username, err)}
	}

	// false = read-write, flags and expunge need SELECT rather than EXAMINE
	if _, err := c.Select(m.cfg.Folder, false); err != nil {
		_ = c.Logout()
		return nil, &message.Error{Kind: message.KindConnect, Op: "select", Err: fmt.Errorf("failed to select %s: %w", m.cfg.Folder, err)}
	}

	slog.Debug("IMAP session opened", "server", m.cfg.Address(), "folder", m.cfg.Folder)

	s := &Session{c: c, m: m, folder: m.cfg.Folder, spamLabel: m.cfg.SpamLabel}
	m.active = s
	return s, nil
}

func (m *Manager) dial() (*client.Client, error) {
	addr := m.cfg.Address()
	dialer := &net.Dialer{Timeout: m.cfg.DialTimeout}

	// ensures correct certificate validation
	tlsConfig := &tls.Config{ServerName: m.cfg.Server}

	switch m.cfg.Security {
	case "none":
		return client.DialWithDialer(dialer, addr)
	case "starttls":
		c, err := client.DialWithDialer(dialer, addr)
		if err != nil {
			return nil, err
		}
		if err := c.StartTLS(tlsConfig); err != nil {
			_ = c.Logout()
			return nil, fmt.Errorf("STARTTLS failed: %w", err)
		}
		return c, nil
	default:
		return client.DialWithDialerTLS(dialer, addr, tlsConfig)
	}
}

func (m *Manager) release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == s {
		m.active = nil
	}
}

// Session is one selected mailbox connection. It is not safe for concurrent
// use; the pipeline drives it from a single goroutine.
type Session struct {
	c         *client.Client
	m         *Manager
	folder    string
	spamLabel string
	closed    bool
}

// Folder returns the selected folder name.
func (s *Session) Folder() string {
	return s.folder
}

// Close logs out. It does not send CLOSE, so messages flagged \Deleted but
// not yet expunged stay in the folder. Calling Close twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.m.release(s)

	if err := s.c.Logout(); err != nil && !errors.Is(err, client.ErrAlreadyLoggedOut) {
		return fmt.Errorf("failed to logout: %w", err)
	}

	slog.Debug("Logged out from IMAP server")
	return nil
}
