package share

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DefaultLinkTTL is how long presigned download links stay valid.
const DefaultLinkTTL = 24 * time.Hour

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}

	presignGetObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return s3.NewPresignClient(c).PresignGetObject(ctx, in, optFns...)
	}
)

// S3 uploads exports to a bucket and shares them through a presigned link.
// Endpoint may point at any S3-compatible service such as MinIO.
type S3 struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	LinkTTL   time.Duration
}

// Key returns the object key used for name.
func (s S3) Key(name string) string {
	if s.Prefix == "" {
		return name
	}
	return path.Join(s.Prefix, name)
}

func (s S3) client(ctx context.Context) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}
	if s.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, "")))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Share uploads data and returns a presigned GET URL for it.
func (s S3) Share(ctx context.Context, name string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if s.Bucket == "" {
		return "", fmt.Errorf("s3 export: bucket is not configured")
	}
	c, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	bucket, key := s.Bucket, s.Key(name)
	err = putObject(c, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String(xlsxContentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading s3://%s/%s: %w", bucket, key, err)
	}

	ttl := s.LinkTTL
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	req, err := presignGetObject(c, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presigning s3://%s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}
