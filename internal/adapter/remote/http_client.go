package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rl1809/warehouse/internal/core/domain"
)

const requestIDHeader = "X-Request-ID"

// Error is a non-2xx answer from the inventory service.
type Error struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	Message    string `json:"message,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: %d %s", e.Status, e.StatusText)
	}
	return fmt.Sprintf("remote: %d %s: %s", e.Status, e.StatusText, e.Message)
}

// IsStatus reports whether err is a remote Error with the given status.
func IsStatus(err error, status int) bool {
	var re *Error
	return errors.As(err, &re) && re.Status == status
}

// Client talks JSON over HTTP to the inventory service at baseURL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListArticles(ctx context.Context) ([]domain.Article, error) {
	var out []domain.Article
	err := c.do(ctx, http.MethodGet, "/articles/", nil, &out)
	return out, err
}

func (c *Client) CreateArticle(ctx context.Context, fields domain.ArticleFields) (domain.Article, error) {
	var out domain.Article
	err := c.do(ctx, http.MethodPost, "/articles/", fields, &out)
	return out, err
}

func (c *Client) UpdateArticle(ctx context.Context, id string, fields domain.ArticleFields) (domain.Article, error) {
	var out domain.Article
	err := c.do(ctx, http.MethodPatch, "/articles/"+url.PathEscape(id), fields, &out)
	return out, err
}

func (c *Client) BulkUpdateArticles(ctx context.Context, patches []domain.StockDeduction) ([]domain.Article, error) {
	var out []domain.Article
	err := c.do(ctx, http.MethodPatch, "/articles/", patches, &out)
	return out, err
}

func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/articles/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := c.do(ctx, http.MethodGet, "/products/", nil, &out)
	return out, err
}

func (c *Client) CreateProduct(ctx context.Context, fields domain.ProductFields) (domain.Product, error) {
	var out domain.Product
	err := c.do(ctx, http.MethodPost, "/products/", fields, &out)
	return out, err
}

func (c *Client) UpdateProduct(ctx context.Context, id string, fields domain.ProductFields) (domain.Product, error) {
	var out domain.Product
	err := c.do(ctx, http.MethodPatch, "/products/"+url.PathEscape(id), fields, &out)
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListSales(ctx context.Context) ([]domain.Sale, error) {
	var out []domain.Sale
	err := c.do(ctx, http.MethodGet, "/sales/", nil, &out)
	return out, err
}

func (c *Client) CreateSale(ctx context.Context, req domain.SaleRequest) (domain.Sale, error) {
	var out domain.Sale
	err := c.do(ctx, http.MethodPost, "/sales/", req, &out)
	return out, err
}

func (c *Client) UpdateSale(ctx context.Context, id string, fields domain.SaleFields) (domain.Sale, error) {
	var out domain.Sale
	err := c.do(ctx, http.MethodPatch, "/sales/"+url.PathEscape(id), fields, &out)
	return out, err
}

func (c *Client) DeleteSale(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sales/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.New().String())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response, data []byte) error {
	re := &Error{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
	}
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		re.Message = payload.Message
	}
	return re
}
