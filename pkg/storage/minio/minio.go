package minio

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	appcfg "github.com/AliceDavies2025/clincerta/config"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

// Client is the MinIO-backed object store.
type Client struct {
	client *minio.Client
	bucket string
	logger logger.Logger
}

func NewClient(cfg *appcfg.MinioConfig, log logger.Logger) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := mc.BucketExists(context.Background(), cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(context.Background(), cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &Client{client: mc, bucket: cfg.BucketName, logger: log}, nil
}

func (c *Client) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	_, err := c.client.PutObject(ctx, c.bucket, key, reader, -1, minio.PutObjectOptions{})
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
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		c.logger.Error("failed to get object",
			logger.String("bucket", c.bucket),
			logger.String("key", key),
			logger.Error(err),
		)
		return nil, fmt.Errorf("get object: %w", err)
	}
	return obj, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
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
	objectCh := c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{})

	for obj := range objectCh {
		if obj.Err != nil {
			c.logger.Error("error listing objects",
				logger.String("bucket", c.bucket),
				logger.Error(obj.Err),
			)
			continue
		}
		if obj.LastModified.Before(threshold) {
			if err := c.Delete(ctx, obj.Key); err != nil {
				continue
			}
			c.logger.Info("deleted expired object",
				logger.String("key", obj.Key),
				logger.Time("lastModified", obj.LastModified),
			)
		}
	}
	return nil
}
