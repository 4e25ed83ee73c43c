package keys

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodKey = "0123456789abcdef0123456789abcdef"

func TestSigningKey_Literal(t *testing.T) {
	key, err := SigningKey(context.Background(), &config.Config{SigningKeySource: config.KeySourceLiteral, SecretKey: goodKey})
	require.NoError(t, err)
	assert.Equal(t, []byte(goodKey), key)

	_, err = SigningKey(context.Background(), &config.Config{SigningKeySource: config.KeySourceLiteral, SecretKey: "short"})
	assert.Error(t, err)
}

func TestSigningKey_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt.key")
	require.NoError(t, os.WriteFile(path, []byte("  "+goodKey+"\n"), 0o600))

	key, err := SigningKey(context.Background(), &config.Config{SigningKeySource: config.KeySourceFile, SigningKeyFile: path})
	require.NoError(t, err)
	assert.Equal(t, []byte(goodKey), key)

	_, err = SigningKey(context.Background(), &config.Config{SigningKeySource: config.KeySourceFile, SigningKeyFile: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestSigningKey_UnknownSource(t *testing.T) {
	_, err := SigningKey(context.Background(), &config.Config{SigningKeySource: "vault"})
	assert.Error(t, err)
}

func stubS3(t *testing.T, body string, getErr error) (*s3.Options, *s3.GetObjectInput) {
	t.Helper()

	origLoad, origNew, origGet := loadDefaultAWSConfig, newS3ClientFromConfig, getObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, getObject = origLoad, origNew, origGet
	})

	opts := &s3.Options{}
	in := &s3.GetObjectInput{}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{Region: "us-east-1"}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(opts)
		}
		return &s3.Client{}
	}
	getObject = func(c *s3.Client, ctx context.Context, got *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		*in = *got
		if getErr != nil {
			return nil, getErr
		}
		return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
	}

	return opts, in
}

func TestSigningKey_S3(t *testing.T) {
	opts, in := stubS3(t, goodKey+"\n", nil)

	cfg := &config.Config{
		SigningKeySource: config.KeySourceS3,
		S3Bucket:         "secrets",
		S3Key:            "gophauth/signing.key",
		S3Region:         "us-east-1",
		S3BaseEndpoint:   "http://127.0.0.1:9000",
		S3AccessKey:      "admin",
		S3SecretKey:      "password",
	}

	key, err := SigningKey(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []byte(goodKey), key)

	assert.Equal(t, "secrets", aws.ToString(in.Bucket))
	assert.Equal(t, "gophauth/signing.key", aws.ToString(in.Key))
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}

func TestSigningKey_S3Errors(t *testing.T) {
	cfg := &config.Config{SigningKeySource: config.KeySourceS3, S3Bucket: "b", S3Key: "k"}

	t.Run("get object fails", func(t *testing.T) {
		stubS3(t, "", errors.New("access denied"))
		_, err := SigningKey(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})

	t.Run("object too short", func(t *testing.T) {
		stubS3(t, "tiny", nil)
		_, err := SigningKey(context.Background(), cfg)
		assert.Error(t, err)
	})

	t.Run("aws config fails", func(t *testing.T) {
		stubS3(t, goodKey, nil)
		loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, errors.New("no region")
		}
		_, err := SigningKey(context.Background(), cfg)
		assert.Error(t, err)
	})
}
