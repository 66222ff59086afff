package mailer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/google/uuid"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Test seams.
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Outbox stores every message in a bucket instead of delivering it.
type S3Outbox struct {
	client objectPutter
	bucket string
	now    func() time.Time
}

func NewS3Outbox(ctx context.Context, cfg *config.Config) (*S3Outbox, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
		// MinIO serves buckets by path, not by virtual host.
		o.UsePathStyle = true
	})

	return &S3Outbox{client: client, bucket: cfg.S3Bucket, now: time.Now}, nil
}

// OutboxKey is the object key for a message stored at t.
func OutboxKey(t time.Time, id string) string {
	return fmt.Sprintf("outbox/%04d/%02d/%02d/%s.eml", t.Year(), int(t.Month()), t.Day(), id)
}

func (o *S3Outbox) Send(ctx context.Context, msg Message) error {
	now := o.now().UTC()
	key := OutboxKey(now, uuid.NewString())

	_, err := o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(o.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(msg.Bytes(now)),
		ContentType: aws.String("message/rfc822"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
