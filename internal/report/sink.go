package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Sink stores an encoded report under a key.
type Sink interface {
	Put(ctx context.Context, key string, body []byte) error
}

// Publish encodes r once and stores it under key in every sink.
func Publish(ctx context.Context, key string, r Report, sinks ...Sink) error {
	if len(sinks) == 0 {
		return nil
	}

	body, err := r.JSON()
	if err != nil {
		return fmt.Errorf("report: encode %s: %w", r.Name, err)
	}

	var errs []error
	for _, s := range sinks {
		if err := s.Put(ctx, key, body); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// FileSink writes reports into a directory.
type FileSink struct {
	Dir string
}

// Put writes body to Dir/key, creating Dir if needed.
func (s FileSink) Put(ctx context.Context, key string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("report: create output dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.Dir, filepath.Base(key)), body, 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", key, err)
	}

	return nil
}

// S3Config holds the connection settings of an S3-compatible bucket.
type S3Config struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// IsConfigured reports whether a bucket and credentials are set.
func (c S3Config) IsConfigured() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// S3Sink uploads reports to an S3-compatible bucket.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Sink creates a sink with static credentials. A custom endpoint
// switches to path-style addressing. The region defaults to "auto".
func NewS3Sink(cfg S3Config) (*S3Sink, error) {
	if !cfg.IsConfigured() {
		return nil, errors.New("report: S3 is not configured")
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	options := []func(*s3.Options){
		func(o *s3.Options) {
			o.Credentials = creds
			o.Region = region
		},
	}

	if cfg.Endpoint != "" {
		options = append(options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Sink{
		client: s3.New(s3.Options{}, options...),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Put uploads body as a JSON object under the configured prefix.
func (s *S3Sink) Put(ctx context.Context, key string, body []byte) error {
	objectKey := path.Join(s.prefix, key)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("report: upload %s: %w", objectKey, err)
	}

	return nil
}
