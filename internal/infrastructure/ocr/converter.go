// Package ocr converts uploaded denial documents to plain text through an
// external conversion service.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/careloop/appealgen/internal/config"
	"github.com/careloop/appealgen/internal/infrastructure/monitoring/logging"
	"github.com/careloop/appealgen/pkg/errors"
)

// Converter turns a denial document into the raw text the pipeline consumes.
type Converter interface {
	Convert(ctx context.Context, data []byte, mimeType string) (string, error)
}

// SupportedTypes lists the document content types the converter accepts.
var SupportedTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/tiff":      true,
}

const convertPath = "/v1/convert"

// HTTPConverter calls the conversion service over HTTP.
type HTTPConverter struct {
	baseURL  string
	maxBytes int64
	client   *http.Client
	logger   logging.Logger
}

// NewHTTPConverter builds a converter against the configured service.
func NewHTTPConverter(cfg config.OCRConfig, logger logging.Logger) *HTTPConverter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPConverter{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		maxBytes: cfg.MaxUploadBytes,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.Named("ocr"),
	}
}

var _ Converter = (*HTTPConverter)(nil)

type convertResponse struct {
	Text string `json:"text"`
}

// Convert posts the document and returns the extracted text.  The document is
// validated before any bytes leave the process.
func (c *HTTPConverter) Convert(ctx context.Context, data []byte, mimeType string) (string, error) {
	if !SupportedTypes[mimeType] {
		return "", errors.New(errors.ErrCodeConversionUnsupported, "unsupported document type").
			WithDetail("content_type=" + mimeType)
	}
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return "", errors.New(errors.ErrCodeConversionTooLarge, "document exceeds size limit").
			WithDetail(fmt.Sprintf("size=%d max=%d", len(data), c.maxBytes))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+convertPath, bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeConversionFailed, "failed to build conversion request")
	}
	req.Header.Set("Content-Type", mimeType)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeConversionFailed, "conversion service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.New(errors.ErrCodeConversionFailed, "conversion service returned an error").
			WithDetail(fmt.Sprintf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var out convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeConversionFailed, "failed to decode conversion response")
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", errors.New(errors.ErrCodeConversionEmptyOutput, "conversion produced no text")
	}

	c.logger.Debug("document converted",
		logging.String("content_type", mimeType),
		logging.Int("bytes_in", len(data)),
		logging.Int("chars_out", len(text)),
		logging.Duration("elapsed", time.Since(start)))
	return text, nil
}
