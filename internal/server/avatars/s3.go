// Package avatars resolves stored avatar names into time-limited download
// URLs on an S3-compatible object store.
package avatars

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// KeyPrefix is prepended to avatar names to form object keys.
const KeyPrefix = "avatars"

var ErrEmptyAvatar = errors.New("empty avatar name")

type Options struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	URLTTL       time.Duration
}

// S3Signer presigns GET requests for avatar objects.
type S3Signer struct {
	bucket  string
	ttl     time.Duration
	presign *s3.PresignClient
}

// NewS3Signer loads AWS configuration and builds the presign client. Static
// credentials are used when AccessKey is set, the default chain otherwise.
// A custom BaseEndpoint (MinIO and similar) switches to path-style addressing.
func NewS3Signer(ctx context.Context, o Options) (*S3Signer, error) {
	if o.Bucket == "" {
		return nil, errors.New("avatars: bucket is required")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("avatars: load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
			so.UsePathStyle = true
		}
	})

	return &S3Signer{bucket: o.Bucket, ttl: o.URLTTL, presign: newS3PresignClient(client)}, nil
}

// ObjectKey maps an avatar name to its object key. Path elements in the name
// are discarded so a stored value cannot address outside KeyPrefix.
func ObjectKey(avatar string) string {
	return path.Join(KeyPrefix, path.Base("/"+strings.TrimSpace(avatar)))
}

// AvatarURL returns a presigned GET URL for avatar, valid for the configured TTL.
func (s *S3Signer) AvatarURL(ctx context.Context, avatar string) (string, error) {
	if strings.TrimSpace(avatar) == "" {
		return "", ErrEmptyAvatar
	}

	bucket := s.bucket
	key := ObjectKey(avatar)

	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("avatars: presign %s: %w", key, err)
	}

	return req.URL, nil
}
