package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// DefaultBaseURL is the public amiibo catalog API.
const DefaultBaseURL = "https://www.amiiboapi.org/api"

// HealthTimeout bounds the upstream health probe.
const HealthTimeout = 5 * time.Second

// Client talks to the amiibo catalog API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient creates a catalog client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid catalog URL scheme %q", parsed.Scheme)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// resolveURL joins the endpoint path to the base URL, keeping any query string.
func (c *Client) resolveURL(endpoint string) string {
	pathPart, query, hasQuery := strings.Cut(endpoint, "?")
	u := c.baseURL.JoinPath(pathPart)
	if strings.HasSuffix(pathPart, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if hasQuery {
		u.RawQuery = query
	}
	return u.String()
}

// Query filters an amiibo search. Empty fields are omitted.
type Query struct {
	Name         string
	ID           string
	Type         string
	Head         string
	Tail         string
	GameSeries   string
	AmiiboSeries string
	Character    string
}

func (q Query) values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("name", q.Name)
	set("id", q.ID)
	set("type", q.Type)
	set("head", q.Head)
	set("tail", q.Tail)
	set("gameseries", q.GameSeries)
	set("amiiboSeries", q.AmiiboSeries)
	set("character", q.Character)
	return v
}

// Search returns amiibo matching the query. A search with no matches returns
// an empty slice rather than an error.
func (c *Client) Search(ctx context.Context, q Query) ([]Amiibo, error) {
	endpoint := "amiibo/"
	if enc := q.values().Encode(); enc != "" {
		endpoint += "?" + enc
	}
	resp, err := doGetJSON[amiiboResponse](ctx, c, endpoint)
	if err != nil {
		if IsNotFoundError(err) {
			return []Amiibo{}, nil
		}
		return nil, fmt.Errorf("search amiibo: %w", err)
	}
	return resp.Amiibo, nil
}

// AmiiboSeries returns all amiibo series sorted by name.
func (c *Client) AmiiboSeries(ctx context.Context) ([]KeyName, error) {
	return c.keyNames(ctx, "amiiboseries/")
}

// GameSeries returns all game series sorted by name.
func (c *Client) GameSeries(ctx context.Context) ([]KeyName, error) {
	return c.keyNames(ctx, "gameseries/")
}

// Types returns all figure types sorted by name.
func (c *Client) Types(ctx context.Context) ([]KeyName, error) {
	return c.keyNames(ctx, "type/")
}

func (c *Client) keyNames(ctx context.Context, endpoint string) ([]KeyName, error) {
	resp, err := doGetJSON[keyNameResponse](ctx, c, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", strings.TrimSuffix(endpoint, "/"), err)
	}
	out := resp.Amiibo
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// HealthStatus is the result of probing the upstream API.
type HealthStatus struct {
	Online       bool   `json:"online"`
	ResponseTime int64  `json:"responseTime"`
	Error        string `json:"error,omitempty"`
}

// Health probes the upstream API with a bounded timeout. It never returns an
// error; failures are reported in the status.
func (c *Client) Health(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	start := time.Now()
	_, err := doGetJSON[amiiboResponse](ctx, c, "amiibo/?name=mario")
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "timeout"
		}
		return HealthStatus{Online: false, ResponseTime: elapsed, Error: msg}
	}
	return HealthStatus{Online: true, ResponseTime: elapsed}
}
