// Package stats keeps the detection statistics document: two cumulative
// counters and a bounded, oldest-first history of recent events.
package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultHistoryLimit = 100

	// TimestampLayout is ISO-8601 with microseconds and the local offset.
	TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

	missResult = "No teddy bears detected - False alarm, oopsie! 🙈"
)

var ErrCorrupt = errors.New("statistics store corrupt")

type Kind string

const (
	KindHit  Kind = "hit"
	KindMiss Kind = "miss"
)

// Event is one processed upload.
type Event struct {
	Kind      Kind   `json:"kind"`
	Count     int    `json:"count"`
	Timestamp string `json:"timestamp"`
}

func NewEvent(count int, t time.Time) Event {
	ev := Event{
		Kind:      KindMiss,
		Timestamp: t.Format(TimestampLayout),
	}
	if count > 0 {
		ev.Kind = KindHit
		ev.Count = count
	}
	return ev
}

func (e Event) IsHit() bool {
	return e.Kind == KindHit
}

// Result renders the prose the presentation layer pattern-matches on.
func (e Event) Result() string {
	if e.IsHit() {
		return fmt.Sprintf("Detected %d teddy bear(s)", e.Count)
	}
	return missResult
}

var timestampLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// Time parses the event timestamp. Offset-less timestamps written by older
// versions are read as local time.
func (e Event) Time() (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, e.Timestamp, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", e.Timestamp)
}

var hitResultRe = regexp.MustCompile(`Detected (\d+) teddy`)

// ParseResult recovers the kind and count from a prose result string.
func ParseResult(result string) (Kind, int, error) {
	if strings.HasPrefix(result, "No teddy bears detected") {
		return KindMiss, 0, nil
	}
	m := hitResultRe.FindStringSubmatch(result)
	if m == nil {
		return "", 0, fmt.Errorf("unrecognised result %q", result)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return "", 0, err
	}
	return KindHit, n, nil
}

// UnmarshalJSON accepts both the structured form and the legacy
// {"result": "...", "timestamp": "..."} entries.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind      Kind   `json:"kind"`
		Count     int    `json:"count"`
		Timestamp string `json:"timestamp"`
		Result    string `json:"result"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Timestamp = raw.Timestamp
	switch {
	case raw.Kind == KindHit || raw.Kind == KindMiss:
		e.Kind, e.Count = raw.Kind, raw.Count
	case raw.Result != "":
		kind, count, err := ParseResult(raw.Result)
		if err != nil {
			return err
		}
		e.Kind, e.Count = kind, count
	default:
		return fmt.Errorf("event has neither kind nor result")
	}
	return nil
}

type Statistics struct {
	Detections       []Event `json:"detections"`
	TotalDetections  int64   `json:"total_detections"`
	TotalFalseAlarms int64   `json:"total_false_alarms"`
}

func Empty() *Statistics {
	return &Statistics{Detections: []Event{}}
}

// Apply records ev: exactly one counter moves, the event is appended and the
// history is cut to the newest limit entries.
func (s *Statistics) Apply(ev Event, limit int) {
	if ev.IsHit() {
		s.TotalDetections++
	} else {
		s.TotalFalseAlarms++
	}
	s.Detections = append(s.Detections, ev)
	if limit > 0 && len(s.Detections) > limit {
		trimmed := make([]Event, limit)
		copy(trimmed, s.Detections[len(s.Detections)-limit:])
		s.Detections = trimmed
	}
}

// decodeStatistics parses a stored document. Unreadable history entries are
// dropped and counted in skipped; only a broken document as a whole is
// ErrCorrupt.
func decodeStatistics(data []byte) (s *Statistics, skipped int, err error) {
	var raw struct {
		Detections       []json.RawMessage `json:"detections"`
		TotalDetections  int64             `json:"total_detections"`
		TotalFalseAlarms int64             `json:"total_false_alarms"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	s = &Statistics{
		Detections:       make([]Event, 0, len(raw.Detections)),
		TotalDetections:  raw.TotalDetections,
		TotalFalseAlarms: raw.TotalFalseAlarms,
	}
	for _, entry := range raw.Detections {
		var ev Event
		if err := json.Unmarshal(entry, &ev); err != nil {
			skipped++
			continue
		}
		s.Detections = append(s.Detections, ev)
	}
	return s, skipped, nil
}
