package archivesvc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kipimo/core"
)

type mockPutObject struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (m *mockPutObject) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.input = params
	if params.Body != nil {
		m.body, _ = io.ReadAll(params.Body)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &s3.PutObjectOutput{ETag: aws.String(`"etag"`)}, nil
}

func TestS3Archiver_Archive(t *testing.T) {
	client := new(mockPutObject)
	a := newS3Archiver(client, "reports", "exports")

	loc, err := a.Archive(context.Background(), "lincoln/report.csv", []byte("a,b\n"), "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "s3://reports/exports/lincoln/report.csv", loc)
	assert.Equal(t, "reports", aws.ToString(client.input.Bucket))
	assert.Equal(t, "exports/lincoln/report.csv", aws.ToString(client.input.Key))
	assert.Equal(t, "text/csv", aws.ToString(client.input.ContentType))
	assert.Equal(t, "a,b\n", string(client.body))
}

func TestS3Archiver_ArchiveError(t *testing.T) {
	a := newS3Archiver(&mockPutObject{err: errors.New("access denied")}, "reports", "")

	_, err := a.Archive(context.Background(), "report.csv", nil, "text/csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://reports/report.csv")
	assert.Contains(t, err.Error(), "access denied")
}

func TestLocalArchiver_Archive(t *testing.T) {
	dir := t.TempDir()
	a := newLocalArchiver(dir)

	loc, err := a.Archive(context.Background(), "lincoln/report.json", []byte(`{}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lincoln", "report.json"), loc)

	content, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(content))
}

func TestNewArchiver(t *testing.T) {
	conf := core.NewTestConfig("")

	a, err := NewArchiver(context.Background(), conf)
	require.NoError(t, err)
	_, err = a.Archive(context.Background(), "report.csv", nil, "text/csv")
	assert.ErrorIs(t, err, ErrNotConfigured)

	conf.Archive.LocalDir = t.TempDir()
	a, err = NewArchiver(context.Background(), conf)
	require.NoError(t, err)
	assert.IsType(t, &localArchiver{}, a)
}
