// Package defectapi implements the REST client for the railway-defect
// detection service.
package defectapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/railwatch/railwatch-go/internal/errors"
	"github.com/railwatch/railwatch-go/internal/httpclient"
	"github.com/railwatch/railwatch-go/internal/logging"
	"github.com/railwatch/railwatch-go/internal/model"
)

// Package-level logger specific to the defect API client
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "defectapi.log")
	initialLevel := slog.LevelDebug
	serviceLevelVar.Set(initialLevel)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "defectapi", serviceLevelVar)
	if err != nil {
		// Fallback: Log error to standard log and disable service file logging
		log.Printf("FATAL: Failed to initialize defectapi file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "defectapi")
		closeLogger = func() error { return nil }
	}
}

// Authorizer supplies the Authorization header value for authenticated calls.
// It is satisfied by the operator's session context.
type Authorizer interface {
	Authorization() string
}

// Client provides methods for interacting with the detection service API.
type Client struct {
	config Config
	http   *httpclient.Client
	auth   Authorizer
}

// NewClient creates a new detection service API client. The authorizer may be
// nil, in which case only unauthenticated calls are possible.
func NewClient(config Config, auth Authorizer) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.Newf("detection service base URL is required").
			Category(errors.CategoryConfiguration).
			Component("defectapi").
			Build()
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.PageSize == 0 {
		config.PageSize = DefaultConfig().PageSize
	}

	client := &Client{
		config: config,
		http: httpclient.New(&httpclient.Config{
			DefaultTimeout: config.Timeout,
		}),
		auth: auth,
	}

	logger.Info("defect API client initialized",
		"base_url", config.BaseURL,
		"timeout", config.Timeout,
		"page_size", config.PageSize,
		"authenticated", auth != nil)

	return client, nil
}

// Close releases client resources.
func (c *Client) Close() {
	c.http.Close()
	logger.Info("closing defect API client")
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("error closing defectapi logger: %v", err)
		}
	}
}

// ListDefects retrieves the full current defect set, paging through the
// listing endpoint until a short page signals the end.
func (c *Client) ListDefects(ctx context.Context) ([]model.Defect, error) {
	var all []model.Defect
	skip := 0

	for {
		url := fmt.Sprintf("%s/defects?skip=%d&limit=%d", c.config.BaseURL, skip, c.config.PageSize)

		var page []model.Defect
		if err := c.doJSON(ctx, http.MethodGet, url, nil, &page); err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < c.config.PageSize {
			break
		}
		skip += len(page)
	}

	logger.Debug("listed defects", "count", len(all))
	return all, nil
}

// ResolveDefect marks an open defect as resolved.
func (c *Client) ResolveDefect(ctx context.Context, id int) error {
	url := fmt.Sprintf("%s/defects/%d/resolve", c.config.BaseURL, id)
	return c.doJSON(ctx, http.MethodPatch, url, struct{}{}, nil)
}

// ReopenDefect returns a resolved defect to the open state.
func (c *Client) ReopenDefect(ctx context.Context, id int) error {
	url := fmt.Sprintf("%s/defects/%d/reopen", c.config.BaseURL, id)
	return c.doJSON(ctx, http.MethodPatch, url, struct{}{}, nil)
}

// DeleteDefect permanently removes a defect record.
func (c *Client) DeleteDefect(ctx context.Context, id int) error {
	url := fmt.Sprintf("%s/defects/%d", c.config.BaseURL, id)
	return c.doJSON(ctx, http.MethodDelete, url, nil, nil)
}

// BulkDeleteDefects permanently removes a set of defect records as a single
// logical request. The service treats the set all-or-nothing.
func (c *Client) BulkDeleteDefects(ctx context.Context, ids []int) error {
	url := fmt.Sprintf("%s/defects/bulk-delete", c.config.BaseURL)
	return c.doJSON(ctx, http.MethodPost, url, bulkDeleteRequest{DefectIDs: ids}, nil)
}

// ExportExcel requests the report artifact for the current record set. The
// filename is taken from the Content-Disposition header when present,
// otherwise a date-templated default is used.
func (c *Client) ExportExcel(ctx context.Context) (*ExportResult, error) {
	url := fmt.Sprintf("%s/defects/export/excel", c.config.BaseURL)

	resp, err := c.execute(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Debug("error closing export response body", "error", cerr)
		}
	}()

	if resp.StatusCode >= 400 {
		return nil, c.statusError(resp, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Newf("failed to read export payload: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", url).
			Component("defectapi").
			Build()
	}

	filename := exportFilename(resp.Header.Get("Content-Disposition"))
	logger.Info("export artifact received", "bytes", len(data), "filename", filename)
	return &ExportResult{Data: data, Filename: filename}, nil
}

// exportFilename derives the artifact filename from a Content-Disposition
// header value, falling back to a date-templated default.
func exportFilename(contentDisposition string) string {
	if contentDisposition != "" {
		if _, params, err := mime.ParseMediaType(contentDisposition); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}
	return fmt.Sprintf("railway_defects_report_%s.xlsx", time.Now().Format("2006-01-02"))
}

// doJSON executes a request and decodes a JSON response into result when
// result is non-nil. Empty response bodies are tolerated.
func (c *Client) doJSON(ctx context.Context, method, url string, body, result any) error {
	resp, err := c.execute(ctx, method, url, body)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Debug("error closing response body", "error", cerr)
		}
	}()

	if resp.StatusCode >= 400 {
		return c.statusError(resp, url)
	}

	if result == nil {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", url).
			Context("status_code", resp.StatusCode).
			Component("defectapi").
			Build()
	}
	if len(bodyBytes) == 0 {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, result); err != nil {
		return errors.Newf("failed to decode response: %w", err).
			Category(errors.CategoryValidation).
			Context("url", url).
			Context("status_code", resp.StatusCode).
			Component("defectapi").
			Build()
	}
	return nil
}

// execute dispatches a single request with correlation ID and, where an
// authorizer is configured, the bearer credential.
func (c *Client) execute(ctx context.Context, method, url string, body any) (*http.Response, error) {
	start := time.Now()
	requestID := uuid.NewString()

	var resp *http.Response
	var err error
	switch method {
	case http.MethodGet:
		resp, err = c.get(ctx, url, requestID)
	default:
		resp, err = c.send(ctx, method, url, body, requestID)
	}

	if err != nil {
		category := errors.CategoryNetwork
		if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.DeadlineExceeded) {
			category = errors.CategoryTimeout
		}
		logger.Error("request failed",
			"method", method,
			"url", url,
			"request_id", requestID,
			"error", err)
		return nil, errors.Newf("request to detection service failed: %w", err).
			Category(category).
			Context("method", method).
			Context("url", url).
			Context("request_id", requestID).
			Timing("http_request", time.Since(start)).
			Component("defectapi").
			Build()
	}

	logger.Debug("request completed",
		"method", method,
		"url", url,
		"request_id", requestID,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}

func (c *Client) get(ctx context.Context, url, requestID string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	c.decorate(req, requestID)
	return c.http.Do(ctx, req)
}

func (c *Client) send(ctx context.Context, method, url string, body any, requestID string) (*http.Response, error) {
	var bodyReader io.Reader = http.NoBody
	hasBody := false
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		hasBody = true
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	c.decorate(req, requestID)
	return c.http.Do(ctx, req)
}

// decorate adds the correlation and authorization headers.
func (c *Client) decorate(req *http.Request, requestID string) {
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if c.auth != nil {
		req.Header.Set("Authorization", c.auth.Authorization())
	}
}

// statusError converts a non-2xx response into an enhanced error carrying the
// server-supplied detail text when the payload provides one.
func (c *Client) statusError(resp *http.Response, url string) error {
	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		bodyBytes = nil
	}

	detail := ""
	var payload apiError
	if len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, &payload); err == nil {
			detail = payload.Detail
		}
	}

	category := errors.CategoryHTTP
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		category = errors.CategoryAuthorization
	case resp.StatusCode == http.StatusNotFound:
		category = errors.CategoryNotFound
	case resp.StatusCode == http.StatusConflict:
		category = errors.CategoryState
	case resp.StatusCode >= 500:
		category = errors.CategoryNetwork
	}

	logger.Warn("detection service returned an error",
		"url", url,
		"status_code", resp.StatusCode,
		"detail", detail)

	return errors.Newf("detection service returned status %d", resp.StatusCode).
		Category(category).
		Context("url", url).
		Context("status_code", resp.StatusCode).
		Context("detail", detail).
		Component("defectapi").
		Build()
}
