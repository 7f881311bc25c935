package triage

import (
	"context"

	"github.com/meko-christian/mail-sweeper/internal/mailbox"
	"github.com/meko-christian/mail-sweeper/internal/message"
)

// Session is the part of a mailbox session the pipeline drives.
type Session interface {
	ListAll() ([]message.Ref, error)
	Fetch(ref message.Ref) (message.Content, error)
	MarkDeleted(ref message.Ref) error
	Commit() error
	LabelSpam(ref message.Ref) error
	Close() error
}

// Connector opens sessions. Retrying is up to the caller.
type Connector interface {
	Open(ctx context.Context) (Session, error)
}

type managerConnector struct {
	m *mailbox.Manager
}

// MailboxConnector adapts a mailbox.Manager to Connector.
func MailboxConnector(m *mailbox.Manager) Connector {
	return managerConnector{m: m}
}

func (mc managerConnector) Open(ctx context.Context) (Session, error) {
	s, err := mc.m.Open(ctx)
	if err != nil {
		// avoid a non-nil interface around a nil *mailbox.Session
		return nil, err
	}
	return s, nil
}
