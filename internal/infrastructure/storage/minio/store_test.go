package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"testing"
	"time"

	miniosdk "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/appealgen/internal/config"
	"github.com/careloop/appealgen/internal/infrastructure/monitoring/logging"
	"github.com/careloop/appealgen/pkg/errors"
)

type putCall struct {
	bucket      string
	key         string
	contentType string
	data        []byte
}

type mockObjectAPI struct {
	puts    []putCall
	putErr  error
	buckets map[string]bool
	made    []string
}

func (m *mockObjectAPI) PutObject(_ context.Context, bucket, key string, reader io.Reader, _ int64, opts miniosdk.PutObjectOptions) (miniosdk.UploadInfo, error) {
	if m.putErr != nil {
		return miniosdk.UploadInfo{}, m.putErr
	}
	data, _ := io.ReadAll(reader)
	m.puts = append(m.puts, putCall{bucket: bucket, key: key, contentType: opts.ContentType, data: data})
	return miniosdk.UploadInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (m *mockObjectAPI) GetObject(context.Context, string, string, miniosdk.GetObjectOptions) (*miniosdk.Object, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockObjectAPI) BucketExists(_ context.Context, bucket string) (bool, error) {
	return m.buckets[bucket], nil
}

func (m *mockObjectAPI) MakeBucket(_ context.Context, bucket string, _ miniosdk.MakeBucketOptions) error {
	m.made = append(m.made, bucket)
	return nil
}

func (m *mockObjectAPI) PresignedGetObject(_ context.Context, bucket, key string, _ time.Duration, _ url.Values) (*url.URL, error) {
	return url.Parse("https://storage.local/" + bucket + "/" + key + "?sig=abc")
}

func newTestStore(api objectAPI) *ArchiveStore {
	client := &Client{
		api: api,
		cfg: config.MinIOConfig{
			DocumentsBucket: "denial-documents",
			LettersBucket:   "appeal-letters",
			PresignExpiry:   time.Hour,
		},
	}
	return NewArchiveStore(client, nil)
}

func TestPutLetter(t *testing.T) {
	api := &mockObjectAPI{}
	store := newTestStore(api)

	key, err := store.PutLetter(context.Background(), "abc-123", []byte("Dear Appeals Department"))
	require.NoError(t, err)
	assert.Equal(t, "letters/abc-123.txt", key)

	require.Len(t, api.puts, 1)
	assert.Equal(t, "appeal-letters", api.puts[0].bucket)
	assert.Equal(t, "text/plain; charset=utf-8", api.puts[0].contentType)
	assert.Equal(t, []byte("Dear Appeals Department"), api.puts[0].data)
}

func TestPutLetterUploadError(t *testing.T) {
	api := &mockObjectAPI{putErr: fmt.Errorf("access denied")}
	store := newTestStore(api)

	_, err := store.PutLetter(context.Background(), "abc-123", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeStorageUploadFailed))
}

func TestPutDocumentExtensions(t *testing.T) {
	api := &mockObjectAPI{}
	store := newTestStore(api)

	cases := map[string]string{
		"application/pdf": "denials/id-1.pdf",
		"image/png":       "denials/id-1.png",
		"image/jpeg":      "denials/id-1.jpg",
		"image/tiff":      "denials/id-1.tif",
	}
	for contentType, wantKey := range cases {
		key, err := store.PutDocument(context.Background(), "id-1", contentType, []byte{0x1})
		require.NoError(t, err, contentType)
		assert.Equal(t, wantKey, key)
	}
	assert.Len(t, api.puts, len(cases))
	for _, p := range api.puts {
		assert.Equal(t, "denial-documents", p.bucket)
	}
}

func TestPutDocumentUnsupportedType(t *testing.T) {
	api := &mockObjectAPI{}
	store := newTestStore(api)

	_, err := store.PutDocument(context.Background(), "id-1", "text/html", []byte("<html>"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConversionUnsupported))
	assert.Empty(t, api.puts, "nothing must be uploaded for a rejected type")
}

func TestPresignLetterURL(t *testing.T) {
	store := newTestStore(&mockObjectAPI{})

	u, err := store.PresignLetterURL(context.Background(), "abc-123", 0)
	require.NoError(t, err)
	assert.Contains(t, u, "appeal-letters/letters/abc-123.txt")
}

func TestEnsureBucketsCreatesMissing(t *testing.T) {
	api := &mockObjectAPI{buckets: map[string]bool{"appeal-letters": true}}
	client := &Client{api: api, cfg: config.MinIOConfig{
		DocumentsBucket: "denial-documents",
		LettersBucket:   "appeal-letters",
	}, logger: logging.NewNopLogger()}

	require.NoError(t, client.EnsureBuckets(context.Background()))
	assert.Equal(t, []string{"denial-documents"}, api.made)
}
