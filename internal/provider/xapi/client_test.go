package xapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flocks/internal/config"
	"flocks/internal/provider"
)

// helper to create client with injected http client
func newTestClient(ts *httptest.Server) *Client {
	c := NewClient("test", config.RateConfig{
		RequestsPerWindow: 100,
		WindowSeconds:     1,
		MaxAttempts:       3,
		BaseBackoffMs:     10,
	})
	c.httpClient = ts.Client()
	c.baseURL = ts.URL
	return c
}

func TestDoWithRetryHandles5xx(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[],"meta":{}}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.ListFollowing(context.Background(), "123", "")
	if err != nil {
		t.Fatalf("expected success after retry, got: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestListFollowingMapsRateLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.ListFollowing(context.Background(), "123", "")
	wait, ok := provider.IsRateLimited(err)
	if !ok {
		t.Fatalf("expected rate-limit condition, got: %v", err)
	}
	if wait != 7*time.Second {
		t.Fatalf("expected 7s retry-after, got %s", wait)
	}
}

func TestListFollowingMapsPermissionDenied(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.ListFollowing(context.Background(), "123", "")
	if !provider.IsPermissionDenied(err) {
		t.Fatalf("expected permission denied, got: %v", err)
	}
}

func TestListFollowingParsesPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"data":[{"id":"9","username":"ada","name":"Ada","verified":true,
				"public_metrics":{"followers_count":1200}}],
			"meta":{"next_token":"tok2"}
		}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	page, err := c.ListFollowing(context.Background(), "123", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.Items[0].Target.Handle != "ada" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Items[0].SourceID != "123" {
		t.Fatalf("source not tagged: %+v", page.Items[0])
	}
	if page.NextCursor != "tok2" {
		t.Fatalf("expected cursor tok2, got %q", page.NextCursor)
	}
}
