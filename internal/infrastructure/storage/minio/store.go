package minio

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/careloop/appealgen/internal/application/appeal"
	"github.com/careloop/appealgen/internal/infrastructure/monitoring/logging"
	"github.com/careloop/appealgen/pkg/errors"
)

// Object key prefixes within the buckets.
const (
	documentPrefix = "denials/"
	letterPrefix   = "letters/"
)

// extensionForContentType maps accepted document types to stored extensions.
var extensionForContentType = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/tiff":      ".tif",
}

// ArchiveStore persists denial documents and appeal letters.  It satisfies
// the orchestrator's LetterStore contract.
type ArchiveStore struct {
	client *Client
	logger logging.Logger
}

// NewArchiveStore builds the store over a connected client.
func NewArchiveStore(client *Client, logger logging.Logger) *ArchiveStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ArchiveStore{client: client, logger: logger.Named("archive")}
}

var _ appeal.LetterStore = (*ArchiveStore)(nil)

// PutLetter archives a composed letter under letters/<appealID>.txt and
// returns the object key.
func (s *ArchiveStore) PutLetter(ctx context.Context, appealID string, letter []byte) (string, error) {
	key := letterPrefix + appealID + ".txt"
	_, err := s.client.api.PutObject(ctx, s.client.cfg.LettersBucket, key,
		bytes.NewReader(letter), int64(len(letter)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageUploadFailed, "failed to archive letter").
			WithDetail("key=" + key)
	}
	s.logger.Debug("letter archived", logging.String("key", key))
	return key, nil
}

// PutDocument archives an uploaded denial document under
// denials/<appealID><ext> and returns the object key.  Unknown content types
// are rejected before any bytes move.
func (s *ArchiveStore) PutDocument(ctx context.Context, appealID, contentType string, data []byte) (string, error) {
	ext, ok := extensionForContentType[contentType]
	if !ok {
		return "", errors.New(errors.ErrCodeConversionUnsupported, "unsupported document type").
			WithDetail("content_type=" + contentType)
	}
	key := documentPrefix + appealID + ext
	_, err := s.client.api.PutObject(ctx, s.client.cfg.DocumentsBucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageUploadFailed, "failed to archive document").
			WithDetail("key=" + key)
	}
	return key, nil
}

// GetLetter reads an archived letter back.
func (s *ArchiveStore) GetLetter(ctx context.Context, appealID string) ([]byte, error) {
	key := letterPrefix + appealID + ".txt"
	obj, err := s.client.api.GetObject(ctx, s.client.cfg.LettersBucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageDownloadFailed, "failed to read letter").
			WithDetail("key=" + key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, errors.New(errors.ErrCodeStorageNotFound, "letter not found").
				WithDetail("key=" + key)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageDownloadFailed, "failed to read letter").
			WithDetail("key=" + key)
	}
	return data, nil
}

// PresignLetterURL returns a time-limited download URL for an archived
// letter.
func (s *ArchiveStore) PresignLetterURL(ctx context.Context, appealID string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = s.client.cfg.PresignExpiry
	}
	key := letterPrefix + appealID + ".txt"
	u, err := s.client.api.PresignedGetObject(ctx, s.client.cfg.LettersBucket, key, expiry, url.Values{})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageDownloadFailed, "failed to presign letter URL").
			WithDetail("key=" + key)
	}
	return u.String(), nil
}
