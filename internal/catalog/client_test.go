package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("default base = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("example.com/mirror/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Host != "example.com" || u.Path != "/mirror" {
		t.Fatalf("url not normalized: %q", u.String())
	}
	if u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("query/fragment kept: %q", u.String())
	}
}

func TestParseBaseURL_RejectsMissingHost(t *testing.T) {
	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatal("parseBaseURL returned nil error, want missing host error")
	}
}

func TestClient_FetchLatestAndByIndex(t *testing.T) {
	t.Parallel()

	var gotUserAgent, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/info.0.json":
			_ = json.NewEncoder(w).Encode(Item{Index: 3000, Title: "Latest", Year: "2024", Month: "11", Day: "4"})
		case "/42/info.0.json":
			_ = json.NewEncoder(w).Encode(Item{Index: 42, Title: "Geico", Alt: "alt text"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithUserAgent("panels-test/1"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	latest, err := c.FetchLatest(ctx)
	if err != nil {
		t.Fatalf("FetchLatest returned error: %v", err)
	}
	if latest.Index != 3000 || latest.Title != "Latest" {
		t.Fatalf("FetchLatest = %#v, want num=3000", latest)
	}
	if latest.Date() != "2024-11-04" {
		t.Fatalf("Date() = %q, want 2024-11-04", latest.Date())
	}

	item, err := c.FetchByIndex(ctx, 42)
	if err != nil {
		t.Fatalf("FetchByIndex returned error: %v", err)
	}
	if item.Index != 42 || item.Alt != "alt text" {
		t.Fatalf("FetchByIndex = %#v, want num=42", item)
	}

	if gotUserAgent != "panels-test/1" {
		t.Fatalf("User-Agent = %q, want panels-test/1", gotUserAgent)
	}
	if gotAccept != "application/json" {
		t.Fatalf("Accept = %q, want application/json", gotAccept)
	}
}

func TestClient_BasePathIsPreserved(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(Item{Index: 7})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/mirror/")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.FetchByIndex(context.Background(), 7); err != nil {
		t.Fatalf("FetchByIndex returned error: %v", err)
	}
	if gotPath != "/mirror/7/info.0.json" {
		t.Fatalf("request path = %q, want /mirror/7/info.0.json", gotPath)
	}
}

func TestClient_ErrorClasses(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/404/info.0.json":
			http.NotFound(w, r)
		case "/500/info.0.json":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte("{not-json"))
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	_, err = c.FetchByIndex(ctx, 404)
	if !errors.Is(err, ErrNotFound) || Classify(err) != ClassNotFound {
		t.Fatalf("FetchByIndex(404) error = %v, want ErrNotFound", err)
	}

	_, err = c.FetchByIndex(ctx, 500)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != 500 || Classify(err) != ClassHTTP {
		t.Fatalf("FetchByIndex(500) error = %v, want HTTPError 500", err)
	}

	_, err = c.FetchLatest(ctx)
	if err == nil || !strings.Contains(err.Error(), "decode response") || Classify(err) != ClassDecode {
		t.Fatalf("FetchLatest error = %v, want decode error", err)
	}
}

func TestClient_NetworkError(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1", WithTimeout(500*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchLatest(context.Background())
	if Classify(err) != ClassNetwork {
		t.Fatalf("Classify(%v) = %q, want %q", err, Classify(err), ClassNetwork)
	}
}

func TestClient_FetchByIndexRejectsNonPositive(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.FetchByIndex(context.Background(), 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FetchByIndex(0) error = %v, want ErrNotFound", err)
	}
}
