package xapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"flocks/internal/config"
	"flocks/internal/metrics"
	"flocks/internal/model"
	"flocks/internal/provider"
)

// Client is a bearer-token implementation of provider.RelationshipLister
// against the X API v2 following endpoint.
type Client struct {
	baseURL     string
	bearerToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
	pageSize    int
}

func NewClient(bearerToken string, rc config.RateConfig) *Client {
	if rc.MaxAttempts <= 0 {
		rc.MaxAttempts = 5
	}
	if rc.BaseBackoffMs <= 0 {
		rc.BaseBackoffMs = 500
	}
	return &Client{
		baseURL:     "https://api.twitter.com/2",
		bearerToken: bearerToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		limiter:     newWindowLimiter(rc),
		maxAttempts: rc.MaxAttempts,
		baseBackoff: time.Duration(rc.BaseBackoffMs) * time.Millisecond,
		pageSize:    1000,
	}
}

func (c *Client) auth(req *http.Request) {
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}
	req.Header.Set("Accept", "application/json")
}

// ListFollowing returns one page of accounts sourceID follows.
func (c *Client) ListFollowing(ctx context.Context, sourceID string, cursor string) (provider.Page, error) {
	var page provider.Page
	if sourceID == "" {
		return page, errors.Wrap(provider.ErrMalformed, "empty source id")
	}
	u := fmt.Sprintf("%s/users/%s/following?max_results=%d&user.fields=public_metrics,created_at,verified,protected,description,url",
		c.baseURL, url.PathEscape(sourceID), c.pageSize)
	if cursor != "" {
		u += "&pagination_token=" + url.QueryEscape(cursor)
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return page, err
	}
	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return page, err
	}
	defer resp.Body.Close()
	if err := mapStatus(resp); err != nil {
		return page, err
	}
	var raw struct {
		Data []struct {
			ID            string    `json:"id"`
			Name          string    `json:"name"`
			Username      string    `json:"username"`
			CreatedAt     time.Time `json:"created_at"`
			Verified      bool      `json:"verified"`
			Protected     bool      `json:"protected"`
			Description   string    `json:"description"`
			PublicMetrics struct {
				FollowersCount int `json:"followers_count"`
			} `json:"public_metrics"`
		} `json:"data"`
		Meta struct {
			NextToken string `json:"next_token"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return page, errors.Wrap(provider.ErrMalformed, err.Error())
	}
	page.Items = make([]provider.Raw, 0, len(raw.Data))
	for _, d := range raw.Data {
		if d.ID == "" {
			continue
		}
		page.Items = append(page.Items, provider.Raw{
			SourceID: sourceID,
			Target: model.Profile{
				ID:             d.ID,
				Handle:         d.Username,
				Name:           d.Name,
				Description:    d.Description,
				CreatedAt:      d.CreatedAt,
				FollowersCount: d.PublicMetrics.FollowersCount,
				Verified:       d.Verified,
				Protected:      d.Protected,
			},
		})
	}
	page.NextCursor = raw.Meta.NextToken
	return page, nil
}

func mapStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return provider.ErrPermissionDenied
	case resp.StatusCode == http.StatusNotFound:
		return provider.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return &provider.RateLimitError{RetryAfter: retryAfter(resp, time.Minute)}
	case resp.StatusCode >= 400:
		return fmt.Errorf("x api status %d", resp.StatusCode)
	}
	return nil
}

func retryAfter(resp *http.Response, def time.Duration) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return def
	}
	if secs, err := strconv.Atoi(ra); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(ra); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return def
}

// doWithRetry retries transient failures (5xx, transport errors) with
// jittered exponential backoff. 429 responses propagate as rate-limit
// conditions for the caller's window accounting rather than being absorbed
// here.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err == nil {
			if resp.StatusCode >= 500 && resp.StatusCode <= 599 {
				_ = resp.Body.Close()
				lastErr = fmt.Errorf("x api status %d", resp.StatusCode)
				metrics.IncAPIRetry(req.URL.Path)
				wait := jitter(backoff)
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				backoff *= 2
				continue
			}
			return resp, nil
		}
		lastErr = err
		metrics.IncAPIRetry(req.URL.Path)
		select {
		case <-time.After(jitter(backoff)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("request failed after %d attempts: %v", c.maxAttempts, lastErr)
}

// jitter spreads a wait +/-20% to avoid retry storms.
func jitter(d time.Duration) time.Duration {
	j := time.Duration(float64(d) * 0.2)
	if j <= 0 {
		return d
	}
	return d - j + time.Duration(time.Now().UnixNano()%int64(2*j))
}
