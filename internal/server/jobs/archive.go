package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// LogArchive keeps the output of sync runs.
type LogArchive interface {
	// Store saves output for userID and returns the object key.
	Store(ctx context.Context, userID string, output []byte) (string, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config addresses an S3 compatible bucket (AWS or MinIO).
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// S3LogArchive writes sync output to an S3 bucket.
type S3LogArchive struct {
	client objectPutter
	bucket string
	now    func() time.Time
	newID  func() string
}

var _ LogArchive = (*S3LogArchive)(nil)

func NewS3LogArchive(ctx context.Context, cfg S3Config) (*S3LogArchive, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("jobs: s3 bucket is required")
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3LogArchive{
		client: client,
		bucket: cfg.Bucket,
		now:    time.Now,
		newID:  uuid.NewString,
	}, nil
}

// Key returns the object key for a run of userID at t.
func (a *S3LogArchive) Key(userID string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("sync-logs/%s/%04d/%02d/%02d/%s.log", userID, t.Year(), int(t.Month()), t.Day(), a.newID())
}

func (a *S3LogArchive) Store(ctx context.Context, userID string, output []byte) (string, error) {
	key := a.Key(userID, a.now())

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(output),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}
