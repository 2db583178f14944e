package stats

import (
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

// CountRecent counts history events of the given kind newer than days before
// now. Events with unparsable timestamps are skipped.
func CountRecent(s *Statistics, kind Kind, days int, now time.Time) int {
	cutoff := now.AddDate(0, 0, -days)
	count := 0
	for _, ev := range s.Detections {
		t, err := ev.Time()
		if err != nil {
			continue
		}
		if !t.Before(cutoff) && ev.Kind == kind {
			count++
		}
	}
	return count
}

// DaySpan is the number of calendar days between the oldest and newest event
// in the history, both ends included. Zero for an empty history.
func DaySpan(s *Statistics) int {
	var earliest, latest time.Time
	for _, ev := range s.Detections {
		t, err := ev.Time()
		if err != nil {
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
		if latest.IsZero() || t.After(latest) {
			latest = t
		}
	}
	if earliest.IsZero() {
		return 0
	}
	return int(latest.Sub(earliest).Hours()/24) + 1
}

type DailyBucket struct {
	Date        string `json:"date"`
	Detections  int    `json:"detections"`
	FalseAlarms int    `json:"falseAlarms"`
}

// Daily groups the history per local calendar day. Detections sums object
// counts, FalseAlarms counts miss events.
func Daily(s *Statistics) []DailyBucket {
	byDay := make(map[string]*DailyBucket)
	for _, ev := range s.Detections {
		t, err := ev.Time()
		if err != nil {
			continue
		}
		day := t.In(time.Local).Format(dayLayout)
		b, ok := byDay[day]
		if !ok {
			b = &DailyBucket{Date: day}
			byDay[day] = b
		}
		if ev.IsHit() {
			b.Detections += ev.Count
		} else {
			b.FalseAlarms++
		}
	}

	buckets := make([]DailyBucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})
	return buckets
}
