package espm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Service defines the operations the offline provider needs from the remote
// ESPM endpoint. *Client implements it; tests substitute fakes.
type Service interface {
	Products(ctx context.Context) ([]Product, error)
	SalesOrderHeaders(ctx context.Context) ([]SalesOrderHeader, error)
	UpdateProduct(ctx context.Context, product Product) error
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

// Client talks to an OData ESPM service over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *retryablehttp.Client
	userAgent string
	username  string
	password  string
}

// Options configure a Client.
type Options struct {
	ServiceURL string
	Username   string
	Password   string
	Timeout    time.Duration
	// RetryMax bounds transient retries; zero uses the default and a
	// negative value disables retries.
	RetryMax int
	Logger   zerolog.Logger
}

const (
	defaultServiceURL = "http://127.0.0.1:8080/odata/ESPM.svc/"
	defaultUserAgent  = "technician/0.1"
	requestTimeout    = 10 * time.Second
	defaultRetryMax   = 2
	maxErrorBody      = 512
)

// NewClient builds a Client for the given service root.
func NewClient(opts Options) (*Client, error) {
	base, err := parseServiceURL(opts.ServiceURL)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	retryMax := opts.RetryMax
	switch {
	case retryMax == 0:
		retryMax = defaultRetryMax
	case retryMax < 0:
		retryMax = 0
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Timeout: timeout}
	rc.RetryMax = retryMax
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = retryLogger{log: opts.Logger}

	return &Client{
		baseURL:   base,
		http:      rc,
		userAgent: defaultUserAgent,
		username:  opts.Username,
		password:  opts.Password,
	}, nil
}

// Products fetches the whole Products entity set.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.FetchEntitySet(ctx, EntitySetProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SalesOrderHeaders fetches the whole SalesOrderHeaders entity set.
func (c *Client) SalesOrderHeaders(ctx context.Context) ([]SalesOrderHeader, error) {
	var orders []SalesOrderHeader
	if err := c.FetchEntitySet(ctx, EntitySetSalesOrderHeaders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FetchEntitySet decodes the collection named by set into dest, which must
// be a pointer to a slice.
func (c *Client) FetchEntitySet(ctx context.Context, set EntitySet, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel := c.baseURL.JoinPath(string(set))
	rel.RawQuery = url.Values{"$format": []string{"json"}}.Encode()

	body, err := c.do(ctx, http.MethodGet, rel, nil)
	if err != nil {
		return err
	}
	return decodeCollection(body, dest)
}

// productPatch carries the fields the detail screen can edit.
type productPatch struct {
	Name             string          `json:"Name"`
	ShortDescription string          `json:"ShortDescription,omitempty"`
	Price            decimal.Decimal `json:"Price"`
	CurrencyCode     string          `json:"CurrencyCode,omitempty"`
}

// UpdateProduct writes the editable fields of product back to the service.
func (c *Client) UpdateProduct(ctx context.Context, product Product) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(product.ProductID) == "" {
		return fmt.Errorf("product id required")
	}
	payload, err := json.Marshal(productPatch{
		Name:             product.Name,
		ShortDescription: product.ShortDescription,
		Price:            product.Price,
		CurrencyCode:     product.CurrencyCode,
	})
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	rel := c.baseURL.JoinPath(entityKeyPath(EntitySetProducts, product.ProductID))
	_, err = c.do(ctx, http.MethodPatch, rel, payload)
	return err
}

func (c *Client) do(ctx context.Context, method string, reqURL *url.URL, payload []byte) ([]byte, error) {
	var body any
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("execute request: %w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("api %s: %w", reqURL.Path, ErrNotFound)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("api %s returned status %d: %w", reqURL.Path, resp.StatusCode, ErrUnavailable)
	case resp.StatusCode >= 400:
		if msg := odataErrorMessage(data); msg != "" {
			return nil, fmt.Errorf("api %s returned status %d: %s", reqURL.Path, resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("api %s returned status %d", reqURL.Path, resp.StatusCode)
	}
	return data, nil
}

// decodeCollection accepts both the V2 {"d":{"results":[...]}} envelope,
// the older V2 {"d":[...]} form and the V4 {"value":[...]} envelope.
func decodeCollection(body []byte, dest any) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("decode response: invalid json")
	}
	var results gjson.Result
	for _, path := range []string{"d.results", "value", "d"} {
		if r := gjson.GetBytes(body, path); r.Exists() && r.IsArray() {
			results = r
			break
		}
	}
	if !results.Exists() {
		return fmt.Errorf("decode response: no entity collection in payload")
	}
	if err := json.Unmarshal([]byte(results.Raw), dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// odataErrorMessage extracts the human readable message from an OData
// error payload in either protocol version.
func odataErrorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return msg
	}
	for _, path := range []string{"error.message.value", "error.message"} {
		if r := gjson.GetBytes(body, path); r.Exists() && r.Type == gjson.String {
			return r.String()
		}
	}
	return ""
}

// entityKeyPath renders Set('key'), doubling single quotes per OData rules.
func entityKeyPath(set EntitySet, key string) string {
	return fmt.Sprintf("%s('%s')", set, strings.ReplaceAll(key, "'", "''"))
}

func parseServiceURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultServiceURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse service_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse service_url %q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// retryLogger adapts zerolog to retryablehttp.LeveledLogger.
type retryLogger struct {
	log zerolog.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}
