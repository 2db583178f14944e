package config

import (
	"os"
	"path"
)

const (
	StatsBackendFile   = "file"
	StatsBackendBadger = "badger"
	StatsBackendSQL    = "sql"

	DetectorBackendDNN    = "dnn"
	DetectorBackendTriton = "triton"
)

type DetectorConfig struct {
	Backend       string   `yaml:"backend" validate:"oneof=dnn triton"`
	ModelPath     string   `yaml:"modelPath"`
	Labels        string   `yaml:"labels" validate:"required"`
	Classes       []string `yaml:"classes"`
	ConfThreshold float32  `yaml:"confThreshold" validate:"gt=0,lte=1"`
	IoUThreshold  float32  `yaml:"iouThreshold" validate:"gt=0,lte=1"`
	InputSize     int      `yaml:"inputSize" validate:"min=32"`
}

type TritonConfig struct {
	ServerAddr   string `yaml:"serverAddr"`
	ModelName    string `yaml:"modelName"`
	ModelVersion string `yaml:"modelVersion"`
}

type SQLConfig struct {
	Driver       string `yaml:"driver" validate:"oneof=mysql sqlite"`
	DSN          string `yaml:"dsn"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxLifetime  int    `yaml:"maxLifetime"`
}

type StatsConfig struct {
	Backend      string    `yaml:"backend" validate:"oneof=file badger sql"`
	Path         string    `yaml:"path"`
	HistoryLimit int       `yaml:"historyLimit" validate:"min=1"`
	SQL          SQLConfig `yaml:"sql"`
}

type NSQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	NSQDAddr string `yaml:"nsqdAddr" validate:"required_if=Enabled true"`
	Topic    string `yaml:"topic" validate:"required_if=Enabled true"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket" validate:"required_if=Enabled true"`
	Endpoint        string `yaml:"endpoint" validate:"required_if=Enabled true"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Region          string `yaml:"region"`
}

type InfluxDBConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url" validate:"required_if=Enabled true"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`
	Token   string `yaml:"token"`
}

type Config struct {
	Addr           string         `yaml:"addr" validate:"required"`
	SSLCert        string         `yaml:"sslCert"`
	SSLKey         string         `yaml:"sslKey"`
	WorkDir        string         `yaml:"workDir" validate:"required"`
	StaticDir      string         `yaml:"staticDir"`
	RequestTimeout int            `yaml:"requestTimeout" validate:"min=0"`
	MaxUploadSize  int64          `yaml:"maxUploadSize" validate:"min=1"`
	Detector       DetectorConfig `yaml:"detector"`
	Triton         TritonConfig   `yaml:"triton"`
	Stats          StatsConfig    `yaml:"stats"`
	NSQ            NSQConfig      `yaml:"nsq"`
	S3             S3Config       `yaml:"s3"`
	InfluxDB       InfluxDBConfig `yaml:"influxdb"`
}

func (c Config) DataDir() string {
	return path.Join(c.WorkDir, "data")
}

// StatsPath returns the configured store location, falling back to a
// per-backend default under the data dir.
func (c Config) StatsPath() string {
	if c.Stats.Path != "" {
		return c.Stats.Path
	}
	switch c.Stats.Backend {
	case StatsBackendFile:
		return path.Join(c.DataDir(), "detection_stats.json")
	case StatsBackendBadger:
		return path.Join(c.DataDir(), "stats")
	}
	return ""
}

func DefaultConfig() *Config {
	cfg := &Config{
		Addr:           "127.0.0.1:8000",
		RequestTimeout: 30,
		MaxUploadSize:  32 << 20,
		Detector: DetectorConfig{
			Backend:       DetectorBackendDNN,
			ModelPath:     "best.onnx",
			Labels:        "teddy bear",
			ConfThreshold: 0.25,
			IoUThreshold:  0.45,
			InputSize:     640,
		},
		Triton: TritonConfig{
			ServerAddr:   "localhost:8001",
			ModelName:    "teddy",
			ModelVersion: "1",
		},
		Stats: StatsConfig{
			Backend:      StatsBackendBadger,
			HistoryLimit: 100,
			SQL: SQLConfig{
				Driver:       "sqlite",
				DSN:          "teddywatch.db",
				MaxIdleConns: 10,
				MaxOpenConns: 10,
				MaxLifetime:  60,
			},
		},
		NSQ: NSQConfig{
			NSQDAddr: "localhost:4150",
			Topic:    "teddy_detections",
		},
		S3: S3Config{
			Bucket:   "teddywatch",
			Endpoint: "localhost:9000",
			UseSSL:   false,
			Region:   "us-east-1",
		},
		InfluxDB: InfluxDBConfig{
			URL:    "http://127.0.0.1:8086",
			Org:    "teddywatch",
			Bucket: "teddywatch",
		},
	}

	dataDir := os.Getenv("TEDDYWATCH_DATA")
	if dataDir != "" {
		cfg.WorkDir = dataDir
		cfg.StaticDir = path.Join(dataDir, "static")
	} else {
		cfg.WorkDir = "./teddywatch_dir"
		cfg.StaticDir = "./static"
	}

	return cfg
}
