package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// ObjectPutter is the subset of *s3.Client used by the outbox.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures the S3-compatible outbox bucket (MinIO in development).
type S3Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
}

// NewS3Client builds an S3 client with static credentials and a custom base
// endpoint.
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(o.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(so *s3.Options) {
		so.BaseEndpoint = aws.String(o.BaseEndpoint)
		so.UsePathStyle = true
	}), nil
}

// S3OutboxMailer stores each message as a JSON object under
// outbox/YYYY/MM/DD/<uuid>.json; a separate delivery worker picks them up.
type S3OutboxMailer struct {
	client ObjectPutter
	bucket string
	now    func() time.Time
}

func NewS3OutboxMailer(client ObjectPutter, bucket string) *S3OutboxMailer {
	return &S3OutboxMailer{client: client, bucket: bucket, now: time.Now}
}

func (m *S3OutboxMailer) Send(ctx context.Context, msg Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = m.now()
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error encoding message: %w", err)
	}

	key := OutboxKey(msg.CreatedAt)
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("error storing message %s: %w", key, err)
	}
	return nil
}

// OutboxKey returns a fresh object key for a message created at t.
func OutboxKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("outbox/%04d/%02d/%02d/%s.json", t.Year(), t.Month(), t.Day(), uuid.NewString())
}
