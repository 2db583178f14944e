package stats

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.Local)

func TestNewEvent(t *testing.T) {
	miss := NewEvent(0, ts)
	assert.Equal(t, KindMiss, miss.Kind)
	assert.Zero(t, miss.Count)
	assert.False(t, miss.IsHit())

	hit := NewEvent(3, ts)
	assert.Equal(t, KindHit, hit.Kind)
	assert.Equal(t, 3, hit.Count)

	parsed, err := hit.Time()
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))
}

func TestResultProseIsPatternCompatible(t *testing.T) {
	hit := NewEvent(3, ts).Result()
	assert.Equal(t, "Detected 3 teddy bear(s)", hit)
	m := regexp.MustCompile(`Detected (\d+) teddy`).FindStringSubmatch(hit)
	require.NotNil(t, m)
	assert.Equal(t, "3", m[1])

	miss := NewEvent(0, ts).Result()
	assert.Regexp(t, `^No teddy bears detected`, miss)

	for _, ev := range []Event{NewEvent(0, ts), NewEvent(1, ts), NewEvent(12, ts)} {
		kind, count, err := ParseResult(ev.Result())
		require.NoError(t, err)
		assert.Equal(t, ev.Kind, kind)
		assert.Equal(t, ev.Count, count)
	}

	_, _, err := ParseResult("something else")
	assert.Error(t, err)
}

func TestUnmarshalLegacyDocument(t *testing.T) {
	legacy := `{
		"detections": [
			{"result": "No teddy bears detected - False alarm, oopsie! 🙈", "timestamp": "2024-05-01T10:00:00.123456"},
			{"result": "Detected 2 teddy bear(s)", "timestamp": "2024-05-01T11:00:00.000001"}
		],
		"total_detections": 7,
		"total_false_alarms": 4
	}`

	s, skipped, err := decodeStatistics([]byte(legacy))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, s.Detections, 2)
	assert.Equal(t, KindMiss, s.Detections[0].Kind)
	assert.Equal(t, KindHit, s.Detections[1].Kind)
	assert.Equal(t, 2, s.Detections[1].Count)
	assert.EqualValues(t, 7, s.TotalDetections)
	assert.EqualValues(t, 4, s.TotalFalseAlarms)

	got, err := s.Detections[1].Time()
	require.NoError(t, err)
	assert.Equal(t, 11, got.Hour())
}

func TestDecodeStatisticsCorrupt(t *testing.T) {
	_, _, err := decodeStatistics([]byte("{not json"))
	assert.ErrorIs(t, err, ErrCorrupt)

	_, _, err = decodeStatistics([]byte(`{"detections": 7}`))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecodeStatisticsDropsUnreadableEntries(t *testing.T) {
	doc := `{
		"detections": [
			{"result": "Detected 2 teddy bear(s)", "timestamp": "2024-05-01T10:00:00"},
			{"timestamp": "x"},
			{"result": "Something else entirely", "timestamp": "2024-05-01T10:05:00"},
			{"kind": "miss", "count": 0, "timestamp": "2024-05-01T10:10:00.000000+02:00"}
		],
		"total_detections": 4,
		"total_false_alarms": 3
	}`
	s, skipped, err := decodeStatistics([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, s.Detections, 2)
	assert.Equal(t, KindHit, s.Detections[0].Kind)
	assert.Equal(t, 2, s.Detections[0].Count)
	assert.Equal(t, KindMiss, s.Detections[1].Kind)
	assert.EqualValues(t, 4, s.TotalDetections)
	assert.EqualValues(t, 3, s.TotalFalseAlarms)
}

func TestDecodeStatisticsNullHistory(t *testing.T) {
	s, _, err := decodeStatistics([]byte(`{"total_detections": 1}`))
	require.NoError(t, err)
	assert.NotNil(t, s.Detections)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"detections":[]`)
}

func TestApplyCountsOnePerEvent(t *testing.T) {
	s := Empty()
	s.Apply(NewEvent(5, ts), 100)
	s.Apply(NewEvent(0, ts), 100)
	s.Apply(NewEvent(1, ts), 100)

	assert.EqualValues(t, 2, s.TotalDetections, "a hit counts once regardless of object count")
	assert.EqualValues(t, 1, s.TotalFalseAlarms)
	assert.Len(t, s.Detections, 3)
}

func TestApplyEvictsOldestFirst(t *testing.T) {
	s := Empty()
	for i := 0; i < 250; i++ {
		s.Apply(NewEvent(i%3, ts.Add(time.Duration(i)*time.Second)), 100)
	}

	require.Len(t, s.Detections, 100)
	first, err := s.Detections[0].Time()
	require.NoError(t, err)
	assert.True(t, first.Equal(ts.Add(150*time.Second)))
	last, err := s.Detections[99].Time()
	require.NoError(t, err)
	assert.True(t, last.Equal(ts.Add(249*time.Second)))

	// counters keep evicted history
	assert.EqualValues(t, 250, s.TotalDetections+s.TotalFalseAlarms)
}

func TestCountRecent(t *testing.T) {
	now := ts
	s := Empty()
	s.Apply(NewEvent(1, now.AddDate(0, 0, -10)), 100)
	s.Apply(NewEvent(2, now.AddDate(0, 0, -2)), 100)
	s.Apply(NewEvent(0, now.AddDate(0, 0, -1)), 100)
	s.Apply(NewEvent(0, now), 100)
	s.Detections = append(s.Detections, Event{Kind: KindMiss, Timestamp: "garbage"})

	assert.Equal(t, 1, CountRecent(s, KindHit, 5, now))
	assert.Equal(t, 2, CountRecent(s, KindMiss, 5, now))
	assert.Equal(t, 2, CountRecent(s, KindHit, 30, now))
}

func TestDaySpan(t *testing.T) {
	assert.Zero(t, DaySpan(Empty()))

	s := Empty()
	s.Apply(NewEvent(1, ts), 100)
	assert.Equal(t, 1, DaySpan(s))

	s.Apply(NewEvent(0, ts.AddDate(0, 0, 3).Add(time.Hour)), 100)
	assert.Equal(t, 4, DaySpan(s))
}

func TestDaily(t *testing.T) {
	day1 := time.Date(2026, 1, 2, 10, 0, 0, 0, time.Local)
	day2 := day1.AddDate(0, 0, 1)

	s := Empty()
	s.Apply(NewEvent(3, day2), 100)
	s.Apply(NewEvent(0, day1), 100)
	s.Apply(NewEvent(2, day1.Add(time.Hour)), 100)
	s.Apply(NewEvent(0, day1.Add(2*time.Hour)), 100)

	buckets := Daily(s)
	require.Len(t, buckets, 2)
	assert.Equal(t, DailyBucket{Date: "2026-01-02", Detections: 2, FalseAlarms: 2}, buckets[0])
	assert.Equal(t, DailyBucket{Date: "2026-01-03", Detections: 3, FalseAlarms: 0}, buckets[1])
}
