package mailbox

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/emersion/go-imap"
	gomessage "github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"

	"github.com/meko-christian/mail-sweeper/internal/message"
)

// ListAll returns the UIDs of every message in the selected folder in the
// order the server lists them.
func (s *Session) ListAll() ([]message.Ref, error) {
	uids, err := s.c.UidSearch(imap.NewSearchCriteria())
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", s.folder, err)
	}

	refs := make([]message.Ref, len(uids))
	for i, uid := range uids {
		refs[i] = message.Ref(uid)
	}

	slog.Debug("Listed messages", "folder", s.folder, "count", len(refs))
	return refs, nil
}

// Fetch retrieves and parses one full message. BODY.PEEK[] is used so
// fetching does not set \Seen. Failures are KindFetch errors.
func (s *Session) Fetch(ref message.Ref) (message.Content, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(uint32(ref))

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.c.UidFetch(seqset, items, messages)
	}()

	var msg *imap.Message
	for m := range messages {
		if msg == nil && m.Uid == uint32(ref) {
			msg = m
		}
	}
	if err := <-done; err != nil {
		return message.Content{}, &message.Error{Kind: message.KindFetch, Op: "fetch", Ref: ref, Err: err}
	}
	if msg == nil {
		return message.Content{}, message.Errorf(message.KindFetch, "fetch", ref, "message not found")
	}

	body := msg.GetBody(section)
	if body == nil {
		return message.Content{}, message.Errorf(message.KindFetch, "fetch", ref, "no body in response")
	}

	entity, err := gomessage.Read(body)
	if err != nil && !tolerable(err) {
		return message.Content{}, &message.Error{Kind: message.KindFetch, Op: "parse", Ref: ref, Err: err}
	}

	return contentOf(entity), nil
}

// contentOf normalizes a parsed entity into the pipeline's message value.
func contentOf(entity *gomessage.Entity) message.Content {
	return message.Content{
		Subject:  headerText(entity.Header, "Subject"),
		Sender:   headerText(entity.Header, "From"),
		Date:     entity.Header.Get("Date"),
		BodyText: extractText(entity),
	}
}

// headerText decodes MIME encoded-words, falling back to the raw value.
func headerText(h gomessage.Header, key string) string {
	v, err := h.Text(key)
	if err != nil {
		return strings.TrimSpace(h.Get(key))
	}
	return strings.TrimSpace(v)
}

// tolerable reports parse errors that still yield a usable entity.
func tolerable(err error) bool {
	return gomessage.IsUnknownCharset(err) || gomessage.IsUnknownEncoding(err)
}
