package summary

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store writes summaries to an S3 bucket.
//
// Example:
//
//	client, err := summary.NewS3Client(ctx, "eu-west-1")
//	store := summary.NewS3Store(client, "match-reports", "summaries/")
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Client builds an S3 client from the AWS default credential chain
// (env vars, shared config, IAM role). An empty region uses the chain's
// default.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("summary: load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// NewS3Store creates an S3-backed summary store. prefix is prepended to
// every object key and may be empty.
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// Write uploads data under prefix+name.
func (s *S3Store) Write(ctx context.Context, name string, data []byte) error {
	key := s.prefix + name
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("summary: upload s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}
