package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appcfg "github.com/AliceDavies2025/clincerta/config"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

// Client is the S3-backed object store.
type Client struct {
	client *s3.Client
	bucket string
	logger logger.Logger
}

func NewClient(cfg *appcfg.S3Config, log logger.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Client{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.BucketName,
		logger: log,
	}, nil
}

func (c *Client) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		c.logger.Error("failed to store object",
			logger.String("bucket", c.bucket),
			logger.String("key", key),
			logger.Error(err),
		)
		return "", fmt.Errorf("store object: %w", err)
	}
	return key, nil
}

func (c *Client) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		c.logger.Error("failed to get object",
			logger.String("bucket", c.bucket),
			logger.String("key", key),
			logger.Error(err),
		)
		return nil, fmt.Errorf("get object: %w", err)
	}
	return out.Body, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		c.logger.Error("failed to delete object",
			logger.String("bucket", c.bucket),
			logger.String("key", key),
			logger.Error(err),
		)
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (c *Client) CleanupBefore(ctx context.Context, threshold time.Time) error {
	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.LastModified != nil && obj.LastModified.Before(threshold) {
				if err := c.Delete(ctx, aws.ToString(obj.Key)); err != nil {
					continue
				}
				c.logger.Info("deleted expired object",
					logger.String("key", aws.ToString(obj.Key)),
					logger.Time("lastModified", *obj.LastModified),
				)
			}
		}
	}
	return nil
}
