// Package build submits compiled bundles to the build service and returns the
// artifact it produces.
package build

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/compose-network/rollup-configurator/internal/bundle"
	"github.com/compose-network/rollup-configurator/internal/logger"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
)

const (
	DefaultTimeout  = 2 * time.Minute
	DefaultFileName = "config.zip"

	RequestIDHeader = "X-Request-ID"

	buildPath        = "/build"
	maxResponseBytes = 256 << 20
)

var (
	ErrEmptyResponse = errors.New("build service returned an empty body")
	ErrNotArchive    = errors.New("build service response is not a zip archive")
)

type (
	// Payload is the opaque artifact returned by the build service.
	Payload struct {
		Data        []byte
		ContentType string
		FileName    string
		RequestID   string
	}

	// TransportError covers every way a build call can fail after the bundle
	// was assembled: network errors, non-2xx statuses and unusable bodies.
	TransportError struct {
		Op         string
		StatusCode int
		RequestID  string
		Err        error
	}

	Requestor struct {
		baseURL    string
		httpClient *http.Client
		logger     *slog.Logger
	}

	Option func(*Requestor)

	requestBody struct {
		Config *bundle.Bundle `json:"config"`
	}
)

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("build %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("build %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func WithHTTPClient(c *http.Client) Option {
	return func(r *Requestor) {
		r.httpClient = c
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(r *Requestor) {
		r.httpClient.Timeout = timeout
	}
}

func NewRequestor(baseURL string, opts ...Option) *Requestor {
	r := &Requestor{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger.Named("build"),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Submit posts the bundle and returns the artifact. Any failure is a
// *TransportError; nothing is retried.
func (r *Requestor) Submit(ctx context.Context, b *bundle.Bundle) (*Payload, error) {
	requestID := uuid.NewString()
	log := r.logger.With("request_id", requestID, "l1_chain_id", b.L1ChainID())

	body, err := json.Marshal(requestBody{Config: b})
	if err != nil {
		return nil, &TransportError{Op: "encode", RequestID: requestID, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+buildPath, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "request", RequestID: requestID, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/zip, application/octet-stream")
	req.Header.Set(RequestIDHeader, requestID)

	log.Debug("submitting bundle to build service", "url", req.URL.String())

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "request", RequestID: requestID, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: "read", StatusCode: resp.StatusCode, RequestID: requestID, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.With("status", resp.StatusCode).Warn("build service rejected bundle")
		return nil, &TransportError{
			Op:         "response",
			StatusCode: resp.StatusCode,
			RequestID:  requestID,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(truncate(data, 512)))),
		}
	}

	if len(data) == 0 {
		return nil, &TransportError{Op: "response", StatusCode: resp.StatusCode, RequestID: requestID, Err: ErrEmptyResponse}
	}
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, &TransportError{
			Op:         "response",
			StatusCode: resp.StatusCode,
			RequestID:  requestID,
			Err:        fmt.Errorf("%w: %w", ErrNotArchive, err),
		}
	}

	payload := &Payload{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		FileName:    fileName(resp.Header.Get("Content-Disposition")),
		RequestID:   requestID,
	}

	log.With("bytes", len(data), "file", payload.FileName).Info("build artifact received")

	return payload, nil
}

func fileName(disposition string) string {
	if disposition == "" {
		return DefaultFileName
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return DefaultFileName
	}
	return filepath.Base(params["filename"])
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
