// Package dataset fetches the SMS spam collection and shapes it into the
// label,text CSV the spam model trains on.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// DefaultURL is the public copy of the SMS spam collection.
const DefaultURL = "https://raw.githubusercontent.com/mohitgupta-omg/Kaggle-SMS-Spam-Collection-Dataset-/master/spam.csv"

// Sample is one labelled training text.
type Sample struct {
	Text string
	Spam bool
}

// Download stores the body of url at dst.
func Download(ctx context.Context, client *http.Client, url, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download dataset: status %d", resp.StatusCode)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}

	slog.Info("Dataset downloaded", "path", dst, "bytes", n)
	return nil
}

// Prepare converts the raw latin-1 collection (columns v1=ham|spam, v2=text,
// plus trailing unnamed columns) into a UTF-8 label,text CSV with ham=0 and
// spam=1. It returns the number of rows written.
func Prepare(r io.Reader, w io.Writer) (int, error) {
	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}
	labelCol, textCol := column(header, "v1"), column(header, "v2")
	if labelCol < 0 || textCol < 0 {
		return 0, fmt.Errorf("expected v1 and v2 columns, got %v", header)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "text"}); err != nil {
		return 0, err
	}

	rows := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("failed to read row %d: %w", rows+1, err)
		}
		if len(rec) <= labelCol || len(rec) <= textCol {
			continue
		}

		var label string
		switch strings.ToLower(strings.TrimSpace(rec[labelCol])) {
		case "ham":
			label = "0"
		case "spam":
			label = "1"
		default:
			slog.Debug("Skipping row with unknown label", "label", rec[labelCol])
			continue
		}

		if err := cw.Write([]string{label, rec[textCol]}); err != nil {
			return rows, err
		}
		rows++
	}

	cw.Flush()
	return rows, cw.Error()
}

// PrepareFile runs Prepare from src to dst.
func PrepareFile(src, dst string) (int, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}

	rows, err := Prepare(in, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return rows, err
}

// Read parses a label,text CSV. Labels are 0/1 or ham/spam.
func Read(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	labelCol, textCol := column(header, "label"), column(header, "text")
	if labelCol < 0 || textCol < 0 {
		return nil, fmt.Errorf("expected label and text columns, got %v", header)
	}

	var samples []Sample
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		if len(rec) <= labelCol || len(rec) <= textCol {
			continue
		}

		var isSpam bool
		switch strings.ToLower(strings.TrimSpace(rec[labelCol])) {
		case "1", "spam":
			isSpam = true
		case "0", "ham":
		default:
			return nil, fmt.Errorf("line %d: unknown label %q", line, rec[labelCol])
		}
		samples = append(samples, Sample{Text: rec[textCol], Spam: isSpam})
	}
	return samples, nil
}

// ReadFile parses the label,text CSV at path.
func ReadFile(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

func column(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name) {
			return i
		}
	}
	return -1
}
