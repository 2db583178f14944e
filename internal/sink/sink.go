// Package sink forwards processed uploads to optional external systems.
package sink

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"teddywatch/internal/config"
	"teddywatch/internal/pipeline"
)

// Set holds every enabled sink.
type Set struct {
	Sinks  []pipeline.Sink
	Influx *InfluxSink

	closers []func()
}

// FromConfig builds every enabled sink. A disabled config yields an empty
// Set.
func FromConfig(ctx context.Context, conf *config.Config, logger *logrus.Entry) (*Set, error) {
	set := &Set{}

	if conf.NSQ.Enabled {
		s, err := NewNSQSink(conf.NSQ)
		if err != nil {
			set.Close()
			return nil, err
		}
		set.add(s, s.Close)
		logger.Infof("nsq sink enabled, topic %s", conf.NSQ.Topic)
	}

	if conf.S3.Enabled {
		s, err := NewMinioSink(ctx, conf.S3)
		if err != nil {
			set.Close()
			return nil, err
		}
		set.add(s, nil)
		logger.Infof("minio sink enabled, bucket %s", conf.S3.Bucket)
	}

	if conf.InfluxDB.Enabled {
		s := NewInfluxSink(conf.InfluxDB)
		set.add(s, s.Close)
		set.Influx = s
		logger.Infof("influxdb sink enabled, bucket %s", conf.InfluxDB.Bucket)
	}

	return set, nil
}

func (s *Set) add(sink pipeline.Sink, closer func()) {
	s.Sinks = append(s.Sinks, sink)
	if closer != nil {
		s.closers = append(s.closers, closer)
	}
}

// Close releases the sinks in reverse creation order.
func (s *Set) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}
