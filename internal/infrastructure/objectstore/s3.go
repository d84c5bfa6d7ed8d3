// Package objectstore publishes the snapshot artifact to S3-compatible object storage.
package objectstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"PopulationSnapshot/internal/domain"
	"PopulationSnapshot/internal/ports"
)

// NameS3 is the registry name of the object storage sink.
const NameS3 = "s3"

const (
	DefaultRegion = "us-east-1"
	DefaultKey    = "country-population.json"
	ContentType   = "application/json; charset=utf-8"
)

// Config holds the bucket coordinates. Credentials fall back to the default AWS chain when empty.
type Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string // set for MinIO and other S3-compatible services
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads the encoded snapshot as a single object.
type S3Sink struct {
	client putObjectAPI
	bucket string
	key    string
}

var _ ports.SnapshotSink = (*S3Sink)(nil)

// NewS3Sink loads AWS configuration and builds the client.
func NewS3Sink(ctx context.Context, cfg Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3Sink(client, cfg.Bucket, cfg.Key), nil
}

func newS3Sink(client putObjectAPI, bucket, key string) *S3Sink {
	if key == "" {
		key = DefaultKey
	}
	return &S3Sink{client: client, bucket: bucket, key: key}
}

// Name identifies the sink inside the registry.
func (s *S3Sink) Name() string {
	return NameS3
}

// Write uploads the same bytes the file sink would write.
func (s *S3Sink) Write(ctx context.Context, snapshot domain.Snapshot) error {
	payload, err := snapshot.Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(payload),
		ContentType:   aws.String(ContentType),
		ContentLength: aws.Int64(int64(len(payload))),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}
