// Package message holds the values that flow through the triage pipeline.
// They are decoupled from the IMAP library so downstream code never sees
// protocol shapes.
package message

import "strconv"

// Ref identifies a message within one mailbox session. It is the IMAP UID
// and is only meaningful inside the session that produced it.
type Ref uint32

func (r Ref) String() string {
	return strconv.FormatUint(uint64(r), 10)
}

// Content is the normalized, immutable view of a fetched message.
type Content struct {
	Subject string
	Sender  string
	// Date is the raw Date header, not reparsed.
	Date string
	// BodyText is every text/plain part concatenated in part order.
	BodyText string
}

// Disposition records what happened to one unwanted message.
type Disposition struct {
	Ref          Ref
	Subject      string
	Sender       string
	Date         string
	Reason       string
	Link         string
	Unsubscribed bool
	Deleted      bool
}
