package consumer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teddywatch/internal/config"
	"teddywatch/internal/dao"
)

func TestHandleDecodesMessage(t *testing.T) {
	var got *dao.DetectionMessage
	c, err := NewConsumer(config.NSQConfig{Topic: "teddy_detections"}, func(msg *dao.DetectionMessage) error {
		got = msg
		return nil
	})
	require.NoError(t, err)
	defer c.Stop()

	require.NoError(t, c.handle([]byte(`{"kind":"hit","count":2,"timestamp":"2024-05-10T09:00:00.000000+00:00","boxes":[{"x1":1,"y1":2,"x2":3,"y2":4,"label":"teddy bear"}]}`)))
	require.NotNil(t, got)
	assert.Equal(t, "hit", got.Kind)
	assert.Equal(t, 2, got.Count)
	require.Len(t, got.Boxes, 1)
	assert.Equal(t, "teddy bear", got.Boxes[0].Label)
}

func TestHandleDropsMalformed(t *testing.T) {
	called := false
	c, err := NewConsumer(config.NSQConfig{Topic: "teddy_detections"}, func(msg *dao.DetectionMessage) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	defer c.Stop()

	assert.NoError(t, c.handle([]byte("not json")))
	assert.False(t, called)
}

func TestHandlePropagatesHandlerError(t *testing.T) {
	boom := errors.New("boom")
	c, err := NewConsumer(config.NSQConfig{Topic: "teddy_detections"}, func(msg *dao.DetectionMessage) error {
		return boom
	})
	require.NoError(t, err)
	defer c.Stop()

	assert.ErrorIs(t, c.handle([]byte(`{"kind":"miss"}`)), boom)
}

func TestNewConsumerRejectsBadTopic(t *testing.T) {
	_, err := NewConsumer(config.NSQConfig{Topic: "bad topic!"}, func(*dao.DetectionMessage) error { return nil })
	assert.Error(t, err)
}
