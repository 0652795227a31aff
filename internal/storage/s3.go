// Package storage hands out presigned URLs for voice recordings held in
// S3-compatible object storage. The client uploads directly; the backend
// only ever mints URLs and never proxies audio bytes.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	PresignExpiry time.Duration
}

type Client struct {
	cfg       Config
	presigner *s3.PresignClient
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config failed: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = 15 * time.Minute
	}

	return &Client{
		cfg:       cfg,
		presigner: s3.NewPresignClient(s3Client),
	}, nil
}

// NewUploadURL mints an object key for a user's recording and a presigned
// PUT the client can upload to.
func (c *Client) NewUploadURL(ctx context.Context, userID uint) (key string, url string, err error) {
	key = fmt.Sprintf("recordings/%d/%s.webm", userID, uuid.NewString())

	req, err := c.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String("audio/webm"),
	}, s3.WithPresignExpires(c.cfg.PresignExpiry))
	if err != nil {
		return "", "", fmt.Errorf("presign upload failed: %w", err)
	}
	return key, req.URL, nil
}

// ResolveURL turns a stored object key into a fetchable presigned GET URL.
func (c *Client) ResolveURL(ctx context.Context, key string) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(c.cfg.PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign download failed: %w", err)
	}
	return req.URL, nil
}
