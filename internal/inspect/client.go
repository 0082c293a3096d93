package inspect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/compose-network/rollup-configurator/internal/catalog"
	"github.com/compose-network/rollup-configurator/internal/logger"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
)

const (
	DefaultTimeout = time.Minute

	RequestIDHeader = "X-Request-ID"

	formField        = "file"
	maxResponseBytes = 32 << 20
)

var (
	ErrUnsupportedFile   = errors.New("artifact is not a zip archive")
	ErrMalformedResponse = errors.New("malformed inspection response")
)

type (
	// InspectionError reports a failed inspection with its cause attached.
	InspectionError struct {
		Kind       Kind
		Op         string
		StatusCode int
		RequestID  string
		Err        error
	}

	Client struct {
		baseURL    string
		catalog    *catalog.Catalog
		httpClient *http.Client
		logger     *slog.Logger
	}

	Option func(*Client)
)

func (e *InspectionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("inspect %s: %s failed with status %d: %v", e.Kind, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("inspect %s: %s failed: %v", e.Kind, e.Op, e.Err)
}

func (e *InspectionError) Unwrap() error {
	return e.Err
}

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(cl *Client) {
		cl.httpClient.Timeout = timeout
	}
}

// WithCatalog sets the catalog used to map deploy-config keys back to
// parameter ids.
func WithCatalog(c *catalog.Catalog) Option {
	return func(cl *Client) {
		cl.catalog = c
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		catalog:    catalog.Default(),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger.Named("inspect"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Inspect uploads an artifact to the endpoint for its kind. Any failure is an
// *InspectionError.
func (c *Client) Inspect(ctx context.Context, kind Kind, fileName string, data []byte) (*Result, error) {
	requestID := uuid.NewString()
	fail := func(op string, status int, err error) (*Result, error) {
		return nil, &InspectionError{Kind: kind, Op: op, StatusCode: status, RequestID: requestID, Err: err}
	}

	if _, err := ParseKind(string(kind)); err != nil {
		return fail("request", 0, err)
	}
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		return fail("file", 0, fmt.Errorf("%w: %w", ErrUnsupportedFile, err))
	}

	body, contentType, err := multipartBody(fileName, data)
	if err != nil {
		return fail("encode", 0, err)
	}

	log := c.logger.With("request_id", requestID, "kind", kind, "file", fileName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/inspect/"+string(kind), body)
	if err != nil {
		return fail("request", 0, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	log.Debug("uploading artifact", "bytes", len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail("request", 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fail("read", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.With("status", resp.StatusCode).Warn("inspection service rejected artifact")
		msg := strings.TrimSpace(string(respBody))
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return fail("response", resp.StatusCode, fmt.Errorf("unexpected status: %s", msg))
	}

	result, err := decodeResult(kind, respBody, c.catalog)
	if err != nil {
		return fail("decode", resp.StatusCode, fmt.Errorf("%w: %w", ErrMalformedResponse, err))
	}

	log.Info("artifact inspected")

	return result, nil
}

func multipartBody(fileName string, data []byte) (*bytes.Buffer, string, error) {
	if fileName == "" {
		fileName = "artifact.zip"
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(formField, filepath.Base(fileName))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
