package sync

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// Event is one recorded step of the session: an elapsed offset plus
// ordered key/value fields. Field order matters — the CSV log derives its
// column order from first appearance.
type Event struct {
	Elapsed time.Duration
	Fields  []Field
}

// Field is a single key/value pair on an Event.
type Field struct {
	Key   string
	Value string
}

// Log records an event and mirrors it to the session logger at debug
// level. kv is alternating keys and values; a trailing odd key is
// ignored.
func (s *Sync) Log(message string, kv ...string) {
	event := Event{
		Elapsed: time.Since(s.start),
		Fields:  []Field{{Key: "message", Value: message}},
	}
	args := make([]any, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		event.Fields = append(event.Fields, Field{Key: kv[i], Value: kv[i+1]})
		args = append(args, kv[i], kv[i+1])
	}
	s.events = append(s.events, event)
	s.logger.Debug(message, args...)
}

// Events returns the recorded event trail.
func (s *Sync) Events() []Event {
	return s.events
}

// EventCSV renders the event trail as CSV. The header starts with the
// elapsed time column followed by every field key in first-seen order;
// rows leave missing fields empty.
func (s *Sync) EventCSV() ([]byte, error) {
	labels := []string{"time"}
	seen := map[string]bool{"time": true}
	for _, event := range s.events {
		for _, f := range event.Fields {
			if !seen[f.Key] {
				seen[f.Key] = true
				labels = append(labels, f.Key)
			}
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(labels); err != nil {
		return nil, fmt.Errorf("writing event log header: %w", err)
	}
	for _, event := range s.events {
		values := map[string]string{
			"time": fmt.Sprintf("%.3f", event.Elapsed.Seconds()),
		}
		for _, f := range event.Fields {
			values[f.Key] = f.Value
		}
		row := make([]string, len(labels))
		for i, label := range labels {
			row[i] = values[label]
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing event log row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing event log: %w", err)
	}
	return buf.Bytes(), nil
}
