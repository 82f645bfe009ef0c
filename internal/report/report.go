// Package report turns check outcomes into the persisted JSON report and
// the per-check console lines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/hamed0406/sitechecker/internal/domain"
)

// TimestampLayout is used for both the report and the console lines.
const TimestampLayout = time.RFC3339Nano

// Record is one report entry. Exactly one of StatusCode and Error is non-nil.
type Record struct {
	URL            string  `json:"url"`
	StatusCode     *uint16 `json:"status_code"`
	ResponseTimeMS int64   `json:"response_time_ms"`
	Timestamp      string  `json:"timestamp"`
	Error          *string `json:"error"`
}

// Build maps outcomes to records one to one, keeping their order.
func Build(outcomes []domain.CheckOutcome) []Record {
	out := make([]Record, 0, len(outcomes))
	for _, o := range outcomes {
		r := Record{
			URL:            o.URL,
			ResponseTimeMS: o.Elapsed.Milliseconds(),
			Timestamp:      FormatTimestamp(o.ObservedAt),
		}
		if o.OK() {
			code := o.StatusCode
			r.StatusCode = &code
		} else {
			msg := o.Error
			r.Error = &msg
		}
		out = append(out, r)
	}
	return out
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Encode writes records as an indented JSON array.
func Encode(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteFile replaces path with the encoded report. A single write, no fsync.
func WriteFile(path string, records []Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	if err := Encode(f, records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Summary renders a short notification for a finished run. ok is false
// when every target answered, in which case nothing needs sending.
func Summary(outcomes []domain.CheckOutcome) (title, text string, ok bool) {
	var failed []domain.CheckOutcome
	for _, o := range outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	if len(failed) == 0 {
		return "", "", false
	}

	var b strings.Builder
	for _, o := range failed {
		fmt.Fprintf(&b, "%s: %s\n", o.URL, o.Error)
	}
	title = fmt.Sprintf("🔴 %d of %d targets unreachable", len(failed), len(outcomes))
	return title, strings.TrimRight(b.String(), "\n"), true
}
