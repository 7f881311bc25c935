package mailbox

import (
	"strings"
	"testing"

	gomessage "github.com/emersion/go-message"
)

func parse(t *testing.T, raw string) *gomessage.Entity {
	t.Helper()

	entity, err := gomessage.Read(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to parse message: %v", err)
	}
	return entity
}

func TestExtractText_ConcatenatesPlainParts(t *testing.T) {
	t.Parallel()

	raw := `Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: multipart/alternative; boundary="inner"

--inner
Content-Type: text/plain

First plain part.

--inner
Content-Type: text/html

<b>HTML version.</b>

--inner--

--outer
Content-Type: text/plain

Second plain part.

--outer
Content-Type: text/plain
Content-Disposition: attachment; filename="notes.txt"

attached text

--outer--`

	got := extractText(parse(t, raw))
	want := "First plain part.\nSecond plain part.\n"
	if got != want {
		t.Errorf("unexpected text body: %q, want %q", got, want)
	}
}

func TestExtractText_SinglePart(t *testing.T) {
	t.Parallel()

	raw := "Subject: hi\n\nJust text.\n"
	if got := extractText(parse(t, raw)); got != "Just text.\n" {
		t.Errorf("unexpected text body: %q", got)
	}
}

func TestExtractText_HTMLOnlyIgnored(t *testing.T) {
	t.Parallel()

	raw := "Content-Type: text/html\n\n<p>Big sale</p>\n"
	if got := extractText(parse(t, raw)); got != "" {
		t.Errorf("HTML-only body should yield no text, got %q", got)
	}
}

func TestExtractText_DecodesTransferEncoding(t *testing.T) {
	t.Parallel()

	raw := "Content-Type: text/plain; charset=utf-8\n" +
		"Content-Transfer-Encoding: quoted-printable\n\n" +
		"50% off =E2=80=94 today\n"
	if got := extractText(parse(t, raw)); got != "50% off — today\n" {
		t.Errorf("unexpected decoded body: %q", got)
	}
}

func TestContentOf(t *testing.T) {
	t.Parallel()

	raw := "From: =?utf-8?q?Shop_=C3=9Cber?= <deals@shop.example>\n" +
		"Subject: =?utf-8?b?NTAlIG9mZg==?=\n" +
		"Date: Tue, 1 Oct 2024 10:00:00 +0200\n\n" +
		"body\n"

	got := contentOf(parse(t, raw))
	if got.Subject != "50% off" {
		t.Errorf("Subject = %q", got.Subject)
	}
	if got.Sender != "Shop Über <deals@shop.example>" {
		t.Errorf("Sender = %q", got.Sender)
	}
	if got.Date != "Tue, 1 Oct 2024 10:00:00 +0200" {
		t.Errorf("Date = %q", got.Date)
	}
	if got.BodyText != "body\n" {
		t.Errorf("BodyText = %q", got.BodyText)
	}
}
