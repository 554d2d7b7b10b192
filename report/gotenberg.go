// Package report converts HTML documents to PDF through a Gotenberg server.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrUnavailable indicates Gotenberg could not be reached.
var ErrUnavailable = errors.New("gotenberg unavailable")

// Paper describes the page setup in inches.
type Paper struct {
	Width     float64
	Height    float64
	Margin    float64
	Landscape bool
}

// Common page setups.
var (
	A4Portrait  = Paper{Width: 8.27, Height: 11.7, Margin: 0.4}
	A4Landscape = Paper{Width: 8.27, Height: 11.7, Margin: 0.4, Landscape: true}
)

// Document is one HTML page to convert.
type Document struct {
	Name  string
	HTML  []byte
	Paper Paper
}

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client. A zero timeout defaults to 30s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts doc into a PDF document.
func (c *Client) RenderHTML(ctx context.Context, doc Document) ([]byte, error) {
	if len(doc.HTML) == 0 {
		return nil, errors.New("report: empty document")
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// Gotenberg only accepts index.html as the entry file.
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(doc.HTML); err != nil {
		return nil, err
	}
	for _, field := range doc.Paper.fields() {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/forms/chromium/convert/html", c.baseURL), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if doc.Name != "" {
		req.Header.Set("Gotenberg-Output-Filename", strings.TrimSuffix(doc.Name, ".pdf"))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("render %s failed with status %d: %s", doc.Name, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return io.ReadAll(resp.Body)
}

func (p Paper) fields() [][2]string {
	if p == (Paper{}) {
		p = A4Portrait
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return [][2]string{
		{"paperWidth", f(p.Width)},
		{"paperHeight", f(p.Height)},
		{"marginTop", f(p.Margin)},
		{"marginBottom", f(p.Margin)},
		{"marginLeft", f(p.Margin)},
		{"marginRight", f(p.Margin)},
		{"landscape", strconv.FormatBool(p.Landscape)},
		{"printBackground", "true"},
	}
}
