package s3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"palmr-api/config"
	"palmr-api/pkg/filename"
)

type objectAPI interface {
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Client issues presigned URLs against an S3 compatible bucket. Clients
// upload and download directly; object bytes never pass through the API.
type Client struct {
	logger  *zap.Logger
	bucket  string
	api     objectAPI
	presign presigner
}

func New(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.S3,
) (*Client, error) {
	if cfg.BucketUploads == "" {
		return nil, errors.New("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	logger.Info("s3 storage configured",
		zap.String("bucket", cfg.BucketUploads),
		zap.String("endpoint", cfg.Endpoint),
	)

	return &Client{
		logger:  logger,
		bucket:  cfg.BucketUploads,
		api:     client,
		presign: s3.NewPresignClient(client),
	}, nil
}

func (c *Client) PresignUpload(ctx context.Context, objectName string, expires time.Duration) (string, error) {
	req, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectName),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", objectName, err)
	}
	return req.URL, nil
}

// PresignDownload asks S3 to answer with the original file name and a
// content type derived from it, since object keys carry no extension.
func (c *Client) PresignDownload(ctx context.Context, objectName, fileName string, expires time.Duration) (string, error) {
	in := &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectName),
	}
	if fileName != "" {
		in.ResponseContentDisposition = aws.String(filename.ContentDisposition("inline", fileName))
		in.ResponseContentType = aws.String(filename.ContentType(fileName))
	}

	req, err := c.presign.PresignGetObject(ctx, in, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", objectName, err)
	}
	return req.URL, nil
}

func (c *Client) DeleteObject(ctx context.Context, objectName string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", c.bucket, objectName, err)
	}
	return nil
}

func (c *Client) GetBucket() string { return c.bucket }
