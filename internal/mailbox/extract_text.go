package mailbox

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	gomessage "github.com/emersion/go-message"
)

// extractText concatenates every inline text/plain part of entity in part
// order, descending into nested multiparts. HTML alternatives and parts
// marked as attachments are skipped.
func extractText(entity *gomessage.Entity) string {
	var b strings.Builder
	collectText(entity, &b)
	return b.String()
}

func collectText(entity *gomessage.Entity, b *strings.Builder) {
	if mr := entity.MultipartReader(); mr != nil {
		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil && (part == nil || !tolerable(err)) {
				slog.Warn("Failed to read MIME part", "error", err)
				return // skip the rest of a faulty multipart
			}

			collectText(part, b)
		}
	}

	mediaType, _, _ := entity.Header.ContentType()
	disposition, _, _ := entity.Header.ContentDisposition()

	if disposition == "attachment" {
		return
	}

	// no Content-Type means text/plain
	if mediaType != "" && mediaType != "text/plain" {
		return
	}

	body, err := io.ReadAll(entity.Body)
	if err != nil {
		slog.Warn("Failed to read part body", "error", err)
		return
	}
	b.Write(body)
}
