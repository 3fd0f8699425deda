// Package archive ships question-bank snapshots to S3-compatible object
// storage (MinIO in development). Snapshots are best-effort: the bank
// store never waits on, or fails because of, the archive.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/examhub/examhub/internal/server/config"
)

type S3Archiver struct {
	config *sc.Config
}

func NewS3Archiver(config *sc.Config) *S3Archiver {
	return &S3Archiver{config: config}
}

func (a *S3Archiver) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(a.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.config.S3RootUser,
			a.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(a.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// snapshotKey builds a date-partitioned object key, one object per
// snapshot.
func snapshotKey(bankID string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("banks/%s/%d/%d/%d/%v.json", bankID, d.Year(), d.Month(), d.Day(), uuid.New())
}

// StoreBankSnapshot uploads one JSON snapshot of a bank.
func (a *S3Archiver) StoreBankSnapshot(ctx context.Context, bankID string, snapshot []byte) error {
	client, err := a.getClient(ctx)
	if err != nil {
		return err
	}

	bucket := a.config.S3Bucket
	key := snapshotKey(bankID)

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(snapshot),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot %s: %w", key, err)
	}

	return nil
}

// NoopArchiver discards snapshots. Used when no S3 bucket is configured.
type NoopArchiver struct{}

func (NoopArchiver) StoreBankSnapshot(ctx context.Context, bankID string, snapshot []byte) error {
	return nil
}
