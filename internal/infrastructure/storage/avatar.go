// Package storage holds the avatar object store. Avatars are kept in an
// S3-compatible bucket (MinIO in development); the profile row stores only
// the object key.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	appconfig "account-service/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3AvatarStore struct {
	client *s3.Client
	bucket string
}

func NewS3AvatarStore(ctx context.Context, cfg appconfig.StorageConfig) (*S3AvatarStore, error) {
	if strings.TrimSpace(cfg.S3Bucket) == "" {
		return nil, fmt.Errorf("avatar storage: bucket not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3AvatarStore{client: client, bucket: cfg.S3Bucket}, nil
}

// Save uploads one avatar and returns the object key stored on the profile.
// Keys are namespaced per user so re-uploads stay within the owner's prefix.
func (s *S3AvatarStore) Save(ctx context.Context, userID string, filename string, body io.Reader, contentType string) (string, error) {
	key := fmt.Sprintf("avatars/user_%s/%s", userID, sanitizeFilename(filename))

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return key, nil
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = "avatar"
	}
	return name
}
