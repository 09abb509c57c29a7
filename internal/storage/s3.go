package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 stores blobs in an S3-compatible bucket (Cloudflare R2 works with a
// custom base endpoint). Locators are the public URL when a base URL is
// configured, otherwise the bare object key.
type S3 struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3(client *s3.Client, bucket, baseURL string) *S3 {
	return &S3{client: client, bucket: bucket, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *S3) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}
	if s.baseURL == "" {
		return key, nil
	}
	return s.baseURL + "/" + key, nil
}

func (s *S3) Remove(ctx context.Context, locator string) error {
	key := locator
	if s.baseURL != "" {
		key = strings.TrimPrefix(key, s.baseURL+"/")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}
