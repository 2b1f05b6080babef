// Package archivesvc stores exported reports, on S3 or in a local directory.
package archivesvc

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core"
)

// ErrNotConfigured is returned when neither a bucket nor a local directory is configured.
var ErrNotConfigured = errors.New("report archive is not configured")

// Archiver stores `content` under `key` and returns its location.
type Archiver interface {
	Archive(ctx context.Context, key string, content []byte, contentType string) (string, error)
}

// putObjectAPI is the part of the s3 client we use.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Archiver struct {
	client putObjectAPI
	bucket string
	prefix string
}

var _ Archiver = (*s3Archiver)(nil)

func newS3Archiver(client putObjectAPI, bucket, prefix string) *s3Archiver {
	return &s3Archiver{client: client, bucket: bucket, prefix: prefix}
}

func (a *s3Archiver) Archive(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	objectKey := path.Join(a.prefix, key)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrapf(err, "uploading s3://%s/%s", a.bucket, objectKey)
	}
	return "s3://" + a.bucket + "/" + objectKey, nil
}

type localArchiver struct {
	dir string
}

var _ Archiver = (*localArchiver)(nil)

func newLocalArchiver(dir string) *localArchiver {
	return &localArchiver{dir: dir}
}

func (a *localArchiver) Archive(_ context.Context, key string, content []byte, _ string) (string, error) {
	dest := filepath.Join(a.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", errors.Wrap(err, "creating archive directory")
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", dest)
	}
	return dest, nil
}

type noopArchiver struct{}

func (noopArchiver) Archive(context.Context, string, []byte, string) (string, error) {
	return "", ErrNotConfigured
}

// NewArchiver picks S3 when a bucket is configured, a local directory when one is set,
// and an archiver that always fails with ErrNotConfigured otherwise.
func NewArchiver(ctx context.Context, conf *core.Config) (Archiver, error) {
	switch {
	case conf.Archive.S3Bucket != "":
		awsConf, err := config.LoadDefaultConfig(ctx, config.WithRegion(conf.Archive.S3Region))
		if err != nil {
			return nil, errors.Wrap(err, "loading aws config")
		}
		return newS3Archiver(s3.NewFromConfig(awsConf), conf.Archive.S3Bucket, conf.Archive.S3Prefix), nil
	case conf.Archive.LocalDir != "":
		return newLocalArchiver(conf.Archive.LocalDir), nil
	default:
		return noopArchiver{}, nil
	}
}
