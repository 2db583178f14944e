package sink

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"teddywatch/internal/config"
	"teddywatch/internal/pipeline"
)

// MinioSink archives annotated images of hits.
type MinioSink struct {
	client *minio.Client
	bucket string
}

func NewMinioSink(ctx context.Context, conf config.S3Config) (*MinioSink, error) {
	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKeyID, conf.SecretAccessKey, ""),
		Secure: conf.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed: %w", err)
	}

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s failed: %w", conf.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, fmt.Errorf("create bucket %s failed: %w", conf.Bucket, err)
		}
	}

	return &MinioSink{client: client, bucket: conf.Bucket}, nil
}

func (s *MinioSink) Name() string {
	return "minio"
}

func (s *MinioSink) Emit(ctx context.Context, o *pipeline.Outcome) error {
	if !o.Hit() {
		return nil
	}
	ts, err := o.Event.Time()
	if err != nil {
		ts = time.Now()
	}

	_, err = s.client.PutObject(
		ctx,
		s.bucket,
		strings.TrimPrefix(objectPath(ts), "/"),
		bytes.NewReader(o.Image),
		int64(len(o.Image)),
		minio.PutObjectOptions{
			ContentType: "image/jpeg",
		},
	)
	if err != nil {
		return wrap(s.Name(), fmt.Errorf("put object failed: %w", err))
	}
	return nil
}

func objectPath(ts time.Time) string {
	return fmt.Sprintf("/%04d/%02d/%02d/%d.jpg", ts.Year(), ts.Month(), ts.Day(), ts.UnixNano())
}
