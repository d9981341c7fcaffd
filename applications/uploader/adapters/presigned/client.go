// Package presigned implements the two-phase upload: ask the issuance
// endpoint for a presigned URL, then PUT the file bytes to it.
package presigned

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
)

const defaultContentType = "text/csv"

const (
	opIssue = "Failed to get upload URL"
	opSync  = "Failed to trigger sync"
)

type Client struct {
	issuerURL    string
	sendFileType bool
	httpClient   *http.Client
	now          func() time.Time
	logger       log.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithFileType controls whether fileType is sent to the issuance endpoint.
func WithFileType(send bool) Option {
	return func(c *Client) {
		c.sendFileType = send
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func New(issuerURL string, logger log.Logger, opts ...Option) *Client {
	c := &Client{
		issuerURL:    issuerURL,
		sendFileType: true,
		httpClient:   &http.Client{},
		now:          time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Upload runs both phases once. A failed attempt is retried by calling Upload
// again, which asks for a fresh URL.
func (c *Client) Upload(ctx context.Context, file domain.FileHandle, targetName string, samples chan<- domain.TransferSample) error {
	out := newEmitter(samples)
	defer out.close()

	target, err := c.requestTarget(ctx, file, targetName)
	if err != nil {
		return err
	}

	level.Debug(c.logger).Log("msg", "upload URL issued",
		"target", targetName,
	)

	if err = c.put(ctx, target, file, out); err != nil {
		return err
	}

	level.Info(c.logger).Log("msg", "file uploaded",
		"file", file.Name(),
		"target", targetName,
		"size", humanize.IBytes(uint64(file.Size())),
	)

	return nil
}

func (c *Client) requestTarget(ctx context.Context, file domain.FileHandle, targetName string) (domain.UploadTarget, error) {
	payload := domain.UploadURLRequest{FileName: targetName}
	if c.sendFileType {
		payload.FileType = file.MimeType()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.UploadTarget{}, fmt.Errorf("can't encode upload URL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.issuerURL, bytes.NewReader(body))
	if err != nil {
		return domain.UploadTarget{}, &RequestFailedError{Op: opIssue, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.UploadTarget{}, &RequestFailedError{Op: opIssue, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.UploadTarget{}, &RequestFailedError{Op: opIssue, Status: resp.StatusCode, Err: err}
	}

	if !success(resp.StatusCode) {
		return domain.UploadTarget{}, &RequestFailedError{
			Op:     opIssue,
			Status: resp.StatusCode,
			Text:   responseText(resp.StatusCode, respBody),
		}
	}

	var target domain.UploadTarget
	if err = json.Unmarshal(respBody, &target); err != nil {
		return domain.UploadTarget{}, &RequestFailedError{Op: opIssue, Status: resp.StatusCode, Text: "malformed response", Err: err}
	}
	if target.URL == "" {
		return domain.UploadTarget{}, &RequestFailedError{Op: opIssue, Status: resp.StatusCode, Text: "response has no url"}
	}

	return target, nil
}

func (c *Client) put(ctx context.Context, target domain.UploadTarget, file domain.FileHandle, out *emitter) error {
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("can't open %s: %w", file.Name(), err)
	}
	defer rc.Close()

	total := uint64(file.Size())
	body := &progressReader{
		r:     rc,
		total: total,
		now:   c.now,
		out:   out,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.URL, body)
	if err != nil {
		return &NetworkError{Err: err}
	}
	req.ContentLength = file.Size()
	if file.Size() == 0 {
		req.Body = http.NoBody
	}

	contentType := file.MimeType()
	if contentType == "" {
		contentType = defaultContentType
	}
	req.Header.Set("Content-Type", contentType)

	out.send(domain.TransferSample{BytesTotal: total, At: c.now()})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !success(resp.StatusCode) {
		return &TransferFailedError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
		}
	}

	return nil
}

// TriggerSync posts to a sync endpoint with no body.
func (c *Client) TriggerSync(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, http.NoBody)
	if err != nil {
		return &RequestFailedError{Op: opSync, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestFailedError{Op: opSync, Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if !success(resp.StatusCode) {
		return &RequestFailedError{
			Op:     opSync,
			Status: resp.StatusCode,
			Text:   responseText(resp.StatusCode, respBody),
		}
	}

	level.Info(c.logger).Log("msg", "sync triggered", "url", url)

	return nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func responseText(status int, body []byte) string {
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}

	return http.StatusText(status)
}
