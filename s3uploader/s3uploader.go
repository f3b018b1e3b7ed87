// Package s3uploader ships run snapshots to S3 when AWS credentials are
// configured.
package s3uploader

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Uploader struct {
	accessKey string
	secretKey string
	region    string
}

func New(accessKey, secretKey, region string) *Uploader {
	return &Uploader{
		accessKey: accessKey,
		secretKey: secretKey,
		region:    region,
	}
}

func (u *Uploader) Upload(ctx context.Context, bucketName, key string, body io.Reader) error {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(u.region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(u.accessKey, u.secretKey, ""),
		),
	)
	if err != nil {
		return err
	}

	client := s3.NewFromConfig(cfg)

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
		Body:   body,
	})

	return err
}
