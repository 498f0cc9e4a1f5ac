package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/logging"
	"go.uber.org/zap"
)

// maxBody caps how much of an answer is read.
const maxBody = 32 << 20

// StatusError is returned for a non-2xx answer.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("GET %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// HTTPClient reads snapshots from the dashboard API:
//
//	GET {base}/api/knowledge-graph?group=G&types=risks,tools
//	GET {base}/api/knowledge-graph/groups
type HTTPClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Logger  *zap.Logger
}

// NewHTTPClient returns a client for the API rooted at baseURL.
func NewHTTPClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logging.OrNop(logger),
	}
}

// Fetch implements Fetcher.
func (c *HTTPClient) Fetch(ctx context.Context, req Request) (*kgraph.Snapshot, error) {
	if req.GroupID == "" {
		return nil, ErrNoGroup
	}
	q := url.Values{}
	q.Set("group", req.GroupID)
	if req.Types != 0 {
		q.Set("types", req.Types.Plurals())
	}

	body, err := c.get(ctx, "/api/knowledge-graph", q)
	if err != nil {
		return nil, err
	}
	snap, err := kgraph.Decode(body, kgraph.JSON)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", req.GroupID, err)
	}
	return snap, nil
}

// Groups implements GroupLister.
func (c *HTTPClient) Groups(ctx context.Context) ([]kgraph.Node, error) {
	body, err := c.get(ctx, "/api/knowledge-graph/groups", nil)
	if err != nil {
		return nil, err
	}
	var groups []kgraph.Node
	if err := json.Unmarshal(body, &groups); err != nil {
		return nil, fmt.Errorf("groups parse: %w", err)
	}
	return groups, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", reqID)
	if c.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		c.Logger.Debug("request failed", zap.String("url", u), zap.String("request_id", reqID), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	c.Logger.Debug("request",
		zap.String("url", u),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u, Code: resp.StatusCode, Body: strings.TrimSpace(string(truncate(body, 200)))}
	}
	return body, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
