package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teddywatch/internal/config"
	"teddywatch/internal/detector"
	"teddywatch/internal/pipeline"
	"teddywatch/internal/stats"
)

func hitOutcome(t time.Time) *pipeline.Outcome {
	return &pipeline.Outcome{
		Event:   stats.NewEvent(2, t),
		Boxes:   []detector.Box{{X1: 1, Y1: 2, X2: 3, Y2: 4, Label: "teddy bear"}, {X1: 5, Y1: 6, X2: 7, Y2: 8, Label: "teddy bear"}},
		Image:   []byte{0xff, 0xd8},
		Message: "⚠️ 2 Teddy Bears Detected!",
		Width:   100,
		Height:  80,
	}
}

func TestObjectPath(t *testing.T) {
	ts := time.Date(2024, 2, 9, 8, 30, 0, 123, time.UTC)
	assert.Equal(t, "/2024/02/09/1707467400000000123.jpg", objectPath(ts))
}

func TestNewDetectionMessage(t *testing.T) {
	ts := time.Date(2024, 2, 9, 8, 30, 0, 0, time.Local)
	msg := NewDetectionMessage(hitOutcome(ts))

	assert.Equal(t, "hit", msg.Kind)
	assert.Equal(t, 2, msg.Count)
	assert.Equal(t, ts.Format(stats.TimestampLayout), msg.Timestamp)
	assert.Equal(t, 100, msg.Width)
	assert.Len(t, msg.Boxes, 2)
}

func TestNewPoint(t *testing.T) {
	ts := time.Date(2024, 2, 9, 8, 30, 0, 0, time.Local)
	p := newPoint(hitOutcome(ts))

	assert.Equal(t, InfluxMeasurement, p.Name())
	require.Len(t, p.TagList(), 1)
	assert.Equal(t, "kind", p.TagList()[0].Key)
	assert.Equal(t, "hit", p.TagList()[0].Value)
	require.Len(t, p.FieldList(), 1)
	assert.Equal(t, "count", p.FieldList()[0].Key)
	assert.Equal(t, int64(2), p.FieldList()[0].Value)
	assert.True(t, ts.Equal(p.Time()))
}

func TestMinioSinkSkipsMisses(t *testing.T) {
	s := &MinioSink{bucket: "unused"}
	o := &pipeline.Outcome{Event: stats.NewEvent(0, time.Now())}
	assert.NoError(t, s.Emit(context.Background(), o))
}

func TestFromConfigDisabled(t *testing.T) {
	set, err := FromConfig(context.Background(), config.DefaultConfig(), logrus.NewEntry(logrus.New()))
	require.NoError(t, err)
	defer set.Close()

	assert.Empty(t, set.Sinks)
	assert.Nil(t, set.Influx)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, wrap("nsq", nil))
	base := errors.New("refused")
	err := wrap("nsq", base)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "nsq: refused", err.Error())
}
