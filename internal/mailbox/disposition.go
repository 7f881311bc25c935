package mailbox

import (
	"log/slog"

	"github.com/emersion/go-imap"

	"github.com/meko-christian/mail-sweeper/internal/message"
)

// MarkDeleted sets \Deleted on ref. It is reversible until Commit.
func (s *Session) MarkDeleted(ref message.Ref) error {
	slog.Debug("Marking message as deleted", "uid", ref)

	seqset := new(imap.SeqSet)
	seqset.AddNum(uint32(ref))

	item := imap.FormatFlagsOp(imap.AddFlags, true) // true = silent update
	flags := []interface{}{imap.DeletedFlag}

	if err := s.c.UidStore(seqset, item, flags, nil); err != nil {
		return &message.Error{Kind: message.KindDisposition, Op: "mark deleted", Ref: ref, Err: err}
	}
	return nil
}

// Commit permanently removes every message flagged \Deleted.
func (s *Session) Commit() error {
	if err := s.c.Expunge(nil); err != nil {
		return &message.Error{Kind: message.KindDisposition, Op: "expunge", Err: err}
	}

	slog.Debug("Expunged deleted messages", "folder", s.folder)
	return nil
}

// LabelSpam applies the provider specific spam label (Gmail X-GM-LABELS).
// Servers without the extension reject it; callers treat that as best-effort.
func (s *Session) LabelSpam(ref message.Ref) error {
	if s.spamLabel == "" {
		return nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uint32(ref))

	item := imap.StoreItem("+X-GM-LABELS")
	if err := s.c.UidStore(seqset, item, []interface{}{s.spamLabel}, nil); err != nil {
		return &message.Error{Kind: message.KindDisposition, Op: "label spam", Ref: ref, Err: err}
	}
	return nil
}
