package sink

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"teddywatch/internal/config"
	"teddywatch/internal/pipeline"
)

const InfluxMeasurement = "teddywatch_detection"

// InfluxSink writes one point per processed upload.
type InfluxSink struct {
	client influxdb2.Client
	writer api.WriteAPIBlocking
	query  api.QueryAPI
}

func NewInfluxSink(conf config.InfluxDBConfig) *InfluxSink {
	client := influxdb2.NewClient(conf.URL, conf.Token)
	return &InfluxSink{
		client: client,
		writer: client.WriteAPIBlocking(conf.Org, conf.Bucket),
		query:  client.QueryAPI(conf.Org),
	}
}

func (s *InfluxSink) Name() string {
	return "influxdb"
}

func (s *InfluxSink) Emit(ctx context.Context, o *pipeline.Outcome) error {
	return wrap(s.Name(), s.writer.WritePoint(ctx, newPoint(o)))
}

// QueryAPI exposes the read side for trend queries.
func (s *InfluxSink) QueryAPI() api.QueryAPI {
	return s.query
}

func (s *InfluxSink) Close() {
	s.client.Close()
}

func newPoint(o *pipeline.Outcome) *write.Point {
	ts, err := o.Event.Time()
	if err != nil {
		ts = time.Now()
	}
	return influxdb2.NewPoint(
		InfluxMeasurement,
		map[string]string{"kind": string(o.Event.Kind)},
		map[string]interface{}{"count": int64(o.Event.Count)},
		ts,
	)
}
