// Package api is the HTTP gateway to the Durianostics backend. Every
// remote operation the app performs goes through the one Client here,
// which owns auth headers, request logging, metrics, and the mapping
// from transport and HTTP failures onto the client error codes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/durianostics/durianostics-client/pkg/config"
	pkgerrors "github.com/durianostics/durianostics-client/pkg/errors"
	"github.com/durianostics/durianostics-client/pkg/logger"
	"github.com/durianostics/durianostics-client/pkg/metrics"
)

var (
	errBaseURLRequired = errors.New("api base url is required")
	errLoggerRequired  = errors.New("api logger is required")
)

// TokenSource supplies the bearer token attached to authenticated
// calls. A miss means the request goes out unauthenticated; the backend
// decides whether that matters.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Client wraps the backend REST contract with centralized auth,
// logging, metrics, and error mapping.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	tokens    TokenSource
	logger    *logger.Logger
	metrics   *metrics.APIMetrics
}

// NewClient builds the backend client. The base URL is resolved once
// here; nothing else in the app carries its own copy. tokens and m may
// be nil for unauthenticated or unmetered use.
func NewClient(cfg config.APIConfig, tokens TokenSource, logg *logger.Logger, m *metrics.APIMetrics) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		userAgent: strings.TrimSpace(cfg.UserAgent),
		tokens:    tokens,
		logger:    logg,
		metrics:   m,
	}, nil
}

// BaseURL reports the resolved backend address.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// envelope is the wrapper most backend handlers respond with. Success
// is a pointer because plain payload responses omit the flag entirely.
type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e envelope) failed() bool {
	return e.Success != nil && !*e.Success
}

func (e envelope) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// Upload is an in-memory file attached to a multipart request.
type Upload struct {
	FileName    string
	ContentType string
	Reader      io.Reader
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	return c.do(ctx, endpoint, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, endpoint, method, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding "+endpoint+" request")
	}
	return c.do(ctx, endpoint, method, path, nil, bytes.NewReader(raw), "application/json", out)
}

func (c *Client) sendMultipart(ctx context.Context, endpoint, method, path string, fields map[string]string, files map[string]Upload, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building "+endpoint+" request")
		}
	}
	for field, file := range files {
		part, err := createFilePart(writer, field, file)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building "+endpoint+" request")
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading "+endpoint+" upload")
		}
	}
	if err := writer.Close(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building "+endpoint+" request")
	}
	return c.do(ctx, endpoint, method, path, nil, &buf, writer.FormDataContentType(), out)
}

func createFilePart(writer *multipart.Writer, field string, file Upload) (io.Writer, error) {
	if file.ContentType == "" {
		return writer.CreateFormFile(field, file.FileName)
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.FileName))
	header.Set("Content-Type", file.ContentType)
	return writer.CreatePart(header)
}

// do executes one request and decodes the response into out when
// non-nil. Transport failures come back as NETWORK_ERROR, non-2xx
// statuses map by status code, and a 200 carrying success:false is a
// SERVER_ERROR with the backend's own message attached for display.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building "+endpoint+" request")
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logCtx := c.logger.WithFields(ctx, map[string]any{
		"request_id": uuid.NewString(),
		"endpoint":   endpoint,
	})
	c.logger.Debug(logCtx, "calling backend")

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveDuration(endpoint, time.Since(start))
	if err != nil {
		c.metrics.IncOutcome(endpoint, "network_error")
		c.logger.Error(logCtx, "backend unreachable", err)
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, endpoint+" request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncOutcome(endpoint, "network_error")
		c.logger.Error(logCtx, "reading backend response", err)
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "reading "+endpoint+" response")
	}

	// Best effort: a handful of error bodies are not JSON at all.
	var env envelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.IncOutcome(endpoint, "server_error")
		c.logger.Warn(c.logger.WithField(logCtx, "status", resp.StatusCode), "backend rejected request")
		return pkgerrors.New(domainCodeForStatus(resp.StatusCode),
			fmt.Sprintf("%s returned status %d", endpoint, resp.StatusCode)).
			WithServerMessage(env.text())
	}
	if env.failed() {
		c.metrics.IncOutcome(endpoint, "server_error")
		c.logger.Warn(logCtx, "backend reported failure")
		return pkgerrors.New(pkgerrors.CodeServer, endpoint+" reported failure").
			WithServerMessage(env.text())
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			c.metrics.IncOutcome(endpoint, "decode_error")
			c.logger.Error(logCtx, "decoding backend response", err)
			return pkgerrors.Wrap(pkgerrors.CodeServer, err, "decoding "+endpoint+" response")
		}
	}

	c.metrics.IncOutcome(endpoint, "success")
	return nil
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	}
	return pkgerrors.CodeServer
}
