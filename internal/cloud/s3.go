package cloud

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// LinkTTL is how long presigned spreadsheet links stay valid.
const LinkTTL = 7 * 24 * time.Hour

// S3Client stores spreadsheet exports.
type S3Client struct {
	svc    *s3.Client
	bucket string
}

func NewS3Client(cfg aws.Config, bucket string) *S3Client {
	return &S3Client{svc: s3.NewFromConfig(cfg), bucket: bucket}
}

// ExportKey names an object under prefix with a random suffix, e.g.
// exports/2024-06/<uuid>.xlsx.
func ExportKey(prefix, ext string) string {
	return path.Join(prefix, uuid.NewString()+ext)
}

// UploadSpreadsheet stores data at key and returns a presigned GET link.
func (c *S3Client) UploadSpreadsheet(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := c.svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"uploaded-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return c.Presign(ctx, key)
}

func (c *S3Client) Presign(ctx context.Context, key string) (string, error) {
	presigner := s3.NewPresignClient(c.svc)
	res, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = LinkTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return res.URL, nil
}

// ListExports returns the object keys under prefix.
func (c *S3Client) ListExports(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(c.svc, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}
