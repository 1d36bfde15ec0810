// Package mirror replicates stored files to an S3-compatible bucket.
package mirror

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/zots0127/locker/internal/domain/repository"
)

// Config describes the target bucket
type Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
	Prefix         string
}

// S3Mirror implements repository.Mirror with the AWS SDK
type S3Mirror struct {
	client s3iface.S3API
	bucket string
	prefix string
}

var _ repository.Mirror = (*S3Mirror)(nil)

// NewS3Mirror builds an S3 client from cfg
func NewS3Mirror(cfg Config) (*S3Mirror, error) {
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	return NewS3MirrorWithClient(s3.New(sess), cfg.Bucket, cfg.Prefix), nil
}

// NewS3MirrorWithClient wraps an existing client
func NewS3MirrorWithClient(client s3iface.S3API, bucket, prefix string) *S3Mirror {
	return &S3Mirror{client: client, bucket: bucket, prefix: prefix}
}

func (m *S3Mirror) objectKey(key string) string {
	if m.prefix == "" {
		return key
	}
	return path.Join(m.prefix, key)
}

// Put uploads the file at localPath under key
func (m *S3Mirror) Put(ctx context.Context, key string, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s for mirroring: %w", localPath, err)
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(m.objectKey(key)),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := m.client.PutObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to mirror %s: %w", key, err)
	}
	return nil
}

// Delete removes a single object
func (m *S3Mirror) Delete(ctx context.Context, key string) error {
	_, err := m.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(m.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete mirrored %s: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every object below prefix, one listing page at a time
func (m *S3Mirror) DeletePrefix(ctx context.Context, prefix string) error {
	fullPrefix := m.objectKey(prefix)
	if prefix != "" && prefix[len(prefix)-1] == '/' && fullPrefix[len(fullPrefix)-1] != '/' {
		fullPrefix += "/"
	}

	var deleteErr error
	err := m.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.bucket),
		Prefix: aws.String(fullPrefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		if len(page.Contents) == 0 {
			return true
		}
		objects := make([]*s3.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, &s3.ObjectIdentifier{Key: obj.Key})
		}
		_, deleteErr = m.client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(m.bucket),
			Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		return deleteErr == nil
	})
	if err != nil {
		return fmt.Errorf("failed to list mirrored objects under %s: %w", prefix, err)
	}
	if deleteErr != nil {
		return fmt.Errorf("failed to delete mirrored objects under %s: %w", prefix, deleteErr)
	}
	return nil
}
