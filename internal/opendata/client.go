package opendata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNoResults is returned when the API answers without any record.
var ErrNoResults = errors.New("no records returned")

// RecordFetcher is implemented by *Client and can be faked in tests.
type RecordFetcher interface {
	FetchRecords(ctx context.Context, stationID string) ([]Record, error)
}

var _ RecordFetcher = (*Client)(nil)

// Client talks to the explore v2.1 datasets API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	query     Query
}

const (
	DefaultBaseURL   = "https://data.toulouse-metropole.fr/api/explore/v2.1/catalog/datasets/"
	DefaultTimeout   = 30 * time.Second
	defaultUserAgent = "meteodash/0.1"
)

// Query shapes the records request.
type Query struct {
	Select  string
	Where   string
	OrderBy string
	Limit   int
}

// DefaultQuery asks for the last week of on-the-hour readings, newest first.
func DefaultQuery() Query {
	return Query{
		Select:  "heure_de_paris, temperature_en_degre_c, humidite, pression",
		Where:   "heure_de_paris >= now(days=-7) and minute(heure_de_paris) = 0",
		OrderBy: "heure_de_paris desc",
		Limit:   100,
	}
}

// NewClient builds a Client for baseURL. A zero timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		query:     DefaultQuery(),
	}, nil
}

// FetchRecords retrieves the recent hourly records of one station dataset.
func (c *Client) FetchRecords(ctx context.Context, stationID string) ([]Record, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	id := strings.Trim(strings.TrimSpace(stationID), "/")
	if id == "" {
		return nil, fmt.Errorf("station id required")
	}

	values := url.Values{}
	if c.query.Select != "" {
		values.Set("select", c.query.Select)
	}
	if c.query.Where != "" {
		values.Set("where", c.query.Where)
	}
	if c.query.OrderBy != "" {
		values.Set("order_by", c.query.OrderBy)
	}
	if c.query.Limit > 0 {
		values.Set("limit", strconv.Itoa(c.query.Limit))
	}
	rel := &url.URL{Path: url.PathEscape(id) + "/records", RawQuery: values.Encode()}

	var payload RecordsResponse
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return nil, err
	}
	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("station %s: %w", id, ErrNoResults)
	}
	return payload.Results, nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", reqURL.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseBaseURL normalizes the datasets root so that relative dataset paths
// resolve beneath it.
func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
