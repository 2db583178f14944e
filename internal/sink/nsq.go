package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nsqio/go-nsq"

	"teddywatch/internal/config"
	"teddywatch/internal/dao"
	"teddywatch/internal/pipeline"
)

type NSQSink struct {
	producer *nsq.Producer
	topic    string
}

func NewNSQSink(conf config.NSQConfig) (*NSQSink, error) {
	producer, err := nsq.NewProducer(conf.NSQDAddr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("create NSQ producer failed: %w", err)
	}
	producer.SetLoggerLevel(nsq.LogLevelWarning)
	return &NSQSink{producer: producer, topic: conf.Topic}, nil
}

func (s *NSQSink) Name() string {
	return "nsq"
}

func (s *NSQSink) Emit(ctx context.Context, o *pipeline.Outcome) error {
	body, err := json.Marshal(NewDetectionMessage(o))
	if err != nil {
		return wrap(s.Name(), err)
	}
	return wrap(s.Name(), s.producer.Publish(s.topic, body))
}

func (s *NSQSink) Close() {
	s.producer.Stop()
}

func NewDetectionMessage(o *pipeline.Outcome) dao.DetectionMessage {
	return dao.DetectionMessage{
		Kind:      string(o.Event.Kind),
		Count:     o.Event.Count,
		Timestamp: o.Event.Timestamp,
		Message:   o.Message,
		Width:     o.Width,
		Height:    o.Height,
		Boxes:     o.Boxes,
	}
}
