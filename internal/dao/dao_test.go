package dao

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"teddywatch/internal/stats"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDetectResponseOmitsCountOnMiss(t *testing.T) {
	data, err := json.Marshal(NewDetectResponse([]byte{1, 2, 3}, 0, "nothing"))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["teddy_detected"])
	assert.NotContains(t, raw, "teddy_count")
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), raw["image"])
}

func TestDetectResponseHit(t *testing.T) {
	resp := NewDetectResponse([]byte{9}, 4, "⚠️ 4 Teddy Bears Detected!")
	assert.True(t, resp.TeddyDetected)
	assert.Equal(t, 4, resp.TeddyCount)
}

func TestFromStatisticsRendersResult(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	s := stats.Empty()
	s.Apply(stats.NewEvent(0, now), 100)
	s.Apply(stats.NewEvent(3, now.Add(time.Minute)), 100)

	resp := FromStatistics(s)
	assert.EqualValues(t, 1, resp.TotalDetections)
	assert.EqualValues(t, 1, resp.TotalFalseAlarms)
	require.Len(t, resp.Detections, 2)
	assert.Equal(t, "No teddy bears detected - False alarm, oopsie! 🙈", resp.Detections[0].Result)
	assert.Equal(t, "miss", resp.Detections[0].Kind)
	assert.Equal(t, "Detected 3 teddy bear(s)", resp.Detections[1].Result)
	assert.Equal(t, 3, resp.Detections[1].Count)
}

func TestFromStatisticsEmptyHistoryIsArray(t *testing.T) {
	data, err := json.Marshal(FromStatistics(stats.Empty()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"detections":[]`)
}

func TestFromDailyBuckets(t *testing.T) {
	resp := FromDailyBuckets([]stats.DailyBucket{
		{Date: "2024-01-01", Detections: 2, FalseAlarms: 1},
		{Date: "2024-01-02", Detections: 0, FalseAlarms: 3},
	})
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, resp.Labels)
	assert.Equal(t, []int{2, 0}, resp.Detections)
	assert.Equal(t, []int{1, 3}, resp.FalseAlarms)
}
