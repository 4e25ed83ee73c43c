// Package keys loads the process-wide token signing key from the source
// selected in configuration: a literal value, a local file or an S3 object.
package keys

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
)

// maxKeySize caps how much of a key file or object is read.
const maxKeySize = 64 * 1024

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in, optFns...)
	}
)

// SigningKey returns the signing key described by cfg. Surrounding
// whitespace is trimmed from file and S3 contents. Keys shorter than
// config.MinSecretKeyLength are rejected.
func SigningKey(ctx context.Context, cfg *config.Config) ([]byte, error) {
	var (
		key []byte
		err error
	)

	switch cfg.SigningKeySource {
	case config.KeySourceLiteral, "":
		key = []byte(cfg.SecretKey)
	case config.KeySourceFile:
		key, err = fromFile(cfg.SigningKeyFile)
	case config.KeySourceS3:
		key, err = fromS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown signing key source %q", cfg.SigningKeySource)
	}
	if err != nil {
		return nil, err
	}

	if len(key) < config.MinSecretKeyLength {
		return nil, fmt.Errorf("signing key must be at least %d bytes", config.MinSecretKeyLength)
	}
	return key, nil
}

func fromFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open signing key file: %w", err)
	}
	defer f.Close()

	return readKey(f)
}

func fromS3(ctx context.Context, cfg *config.Config) ([]byte, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	out, err := getObject(client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(cfg.S3Bucket),
		Key:    aws.String(cfg.S3Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get signing key s3://%s/%s: %w", cfg.S3Bucket, cfg.S3Key, err)
	}
	defer out.Body.Close()

	return readKey(out.Body)
}

func readKey(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxKeySize))
	if err != nil {
		return nil, fmt.Errorf("read signing key: %w", err)
	}
	return bytes.TrimSpace(b), nil
}
