package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mock "github.com/8bitbanana/music-converter/internal/testing"
)

// sleepRecorder replaces the client's real sleeps with bookkeeping so retry
// timing can be asserted against a virtual clock.
type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.delays = append(s.delays, d)
}

func (s *sleepRecorder) total() time.Duration {
	var t time.Duration
	for _, d := range s.delays {
		t += d
	}
	return t
}

func newTestClient(rt http.RoundTripper) (*Client, *sleepRecorder) {
	rec := &sleepRecorder{}
	c := NewClient(&http.Client{Transport: rt}, nil)
	c.sleep = rec.sleep
	return c, rec
}

func mustRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	return req
}

func TestExecute(t *testing.T) {
	t.Run("returns the expected response untouched", func(t *testing.T) {
		client, rec := newTestClient(mock.NewMockRoundTripper(mock.JSONResponse(200, `{"ok":true}`), nil))

		resp, err := client.Execute(context.Background(), mustRequest(t, "https://api.spotify.com/v1/me"), http.StatusOK)
		if err != nil {
			t.Fatalf("Execute() error: %v", err)
		}
		if resp.StatusCode != 200 || string(resp.Body) != `{"ok":true}` {
			t.Errorf("Execute() = %d %q", resp.StatusCode, resp.Body)
		}
		if len(rec.delays) != 0 {
			t.Errorf("slept %v on a clean request", rec.delays)
		}
	})

	t.Run("transport failures exhaust the retry budget", func(t *testing.T) {
		client, rec := newTestClient(mock.NewMockRoundTripper(nil, errors.New("connection refused")))

		_, err := client.Execute(context.Background(), mustRequest(t, "https://api.spotify.com/v1/me"), http.StatusOK)
		if err == nil {
			t.Fatal("Execute() succeeded, want exhaustion error")
		}
		if !strings.Contains(err.Error(), fmt.Sprintf("%d attempts", RetryAttempts)) {
			t.Errorf("error %q does not report %d attempts", err, RetryAttempts)
		}
		// RetryAttempts total attempts means one fewer pauses between them.
		if want := RetryAttempts - 1; len(rec.delays) != want {
			t.Errorf("slept %d times, want %d", len(rec.delays), want)
		}
		if want := time.Duration(RetryAttempts-1) * ErrDelay; rec.total() != want {
			t.Errorf("total backoff %v, want %v", rec.total(), want)
		}
	})

	t.Run("recovers when a retry succeeds", func(t *testing.T) {
		client, rec := newTestClient(mock.NewSequenceRoundTripper(
			mock.Step{Err: errors.New("reset by peer")},
			mock.Step{Response: mock.JSONResponse(200, `{}`)},
		))

		resp, err := client.Execute(context.Background(), mustRequest(t, "https://api.spotify.com/v1/me"), http.StatusOK)
		if err != nil {
			t.Fatalf("Execute() error: %v", err)
		}
		if resp.StatusCode != 200 {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
		if len(rec.delays) != 1 || rec.delays[0] != ErrDelay {
			t.Errorf("delays = %v, want one ErrDelay", rec.delays)
		}
	})

	t.Run("5xx responses retry then surface a typed error", func(t *testing.T) {
		client, rec := newTestClient(mock.NewMockRoundTripper(mock.JSONResponse(503, `{}`), nil))

		_, err := client.Execute(context.Background(), mustRequest(t, "https://api.spotify.com/v1/search"), http.StatusOK)
		var apiErr *SpotifyError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %T (%v), want *SpotifyError", err, err)
		}
		if apiErr.StatusCode() != 503 || apiErr.ExpectedCode() != 200 {
			t.Errorf("got <%d> expected <%d>", apiErr.StatusCode(), apiErr.ExpectedCode())
		}
		if want := RetryAttempts - 1; len(rec.delays) != want {
			t.Errorf("slept %d times, want %d", len(rec.delays), want)
		}
	})

	t.Run("429 backs off without spending the retry budget", func(t *testing.T) {
		client, rec := newTestClient(mock.NewSequenceRoundTripper(
			mock.Step{Response: mock.JSONResponse(429, `{}`)},
			mock.Step{Response: mock.JSONResponse(429, `{}`)},
			mock.Step{Response: mock.JSONResponse(429, `{}`)},
			mock.Step{Response: mock.JSONResponse(200, `{"ok":true}`)},
		))

		resp, err := client.Execute(context.Background(), mustRequest(t, "https://www.googleapis.com/youtube/v3/search"), http.StatusOK)
		if err != nil {
			t.Fatalf("Execute() error: %v", err)
		}
		if resp.StatusCode != 200 {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
		if len(rec.delays) != 3 {
			t.Fatalf("slept %d times, want 3", len(rec.delays))
		}
		for _, d := range rec.delays {
			if d != TooManyRequestsDelay {
				t.Errorf("delay = %v, want %v", d, TooManyRequestsDelay)
			}
		}
	})

	t.Run("unexpected status maps to the host's error type", func(t *testing.T) {
		cases := []struct {
			name string
			url  string
			want string
		}{
			{"spotify host", "https://api.spotify.com/v1/me", "spotify"},
			{"google host", "https://www.googleapis.com/youtube/v3/videos", "youtube"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				client, _ := newTestClient(mock.NewMockRoundTripper(mock.JSONResponse(403, `{}`), nil))
				_, err := client.Execute(context.Background(), mustRequest(t, tc.url), http.StatusOK)
				if err == nil {
					t.Fatal("Execute() succeeded on 403")
				}
				if !strings.HasPrefix(err.Error(), tc.want) {
					t.Errorf("error %q, want %s prefix", err, tc.want)
				}
				if !IsStatus(err, 403) {
					t.Errorf("IsStatus(err, 403) = false")
				}
			})
		}
	})

	t.Run("vendor error messages are extracted", func(t *testing.T) {
		client, _ := newTestClient(mock.NewMockRoundTripper(
			mock.JSONResponse(401, `{"error_description":"invalid client"}`), nil))

		_, err := client.Execute(context.Background(), mustRequest(t, "https://accounts.spotify.com/api/token"), http.StatusOK)
		if err == nil || !strings.Contains(err.Error(), "invalid client") {
			t.Errorf("error %q does not carry the vendor message", err)
		}
	})

	t.Run("cancelled context stops the backoff loop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client, _ := newTestClient(mock.NewMockRoundTripper(mock.JSONResponse(429, `{}`), nil))
		_, err := client.Execute(ctx, mustRequest(t, "https://api.spotify.com/v1/me"), http.StatusOK)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestPaginate(t *testing.T) {
	t.Run("follows next URLs and merges items", func(t *testing.T) {
		var srv *httptest.Server
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/page1":
				fmt.Fprintf(w, `{"items":[1,2],"next":%q}`, srv.URL+"/page2")
			case "/page2":
				fmt.Fprintf(w, `{"items":[3],"next":null}`)
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		}))
		defer srv.Close()

		client := NewClient(srv.Client(), nil)
		items, err := client.Paginate(context.Background(), mustRequest(t, srv.URL+"/page1"), http.StatusOK)
		if err != nil {
			t.Fatalf("Paginate() error: %v", err)
		}
		if len(items) != 3 {
			t.Errorf("merged %d items, want 3", len(items))
		}
	})

	t.Run("follows page tokens as query parameters", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("pageToken") {
			case "":
				fmt.Fprint(w, `{"items":["a"],"nextPageToken":"t2"}`)
			case "t2":
				fmt.Fprint(w, `{"items":["b"]}`)
			default:
				t.Errorf("unexpected token %q", r.URL.Query().Get("pageToken"))
			}
		}))
		defer srv.Close()

		client := NewClient(srv.Client(), nil)
		items, err := client.Paginate(context.Background(), mustRequest(t, srv.URL+"/playlists"), http.StatusOK)
		if err != nil {
			t.Fatalf("Paginate() error: %v", err)
		}
		if len(items) != 2 {
			t.Errorf("merged %d items, want 2", len(items))
		}
	})

	t.Run("caps runaway pagination", func(t *testing.T) {
		// The server always advertises another page; the paginator must stop
		// at the cap with everything gathered so far.
		pages := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pages++
			fmt.Fprintf(w, `{"items":[%d],"nextPageToken":"t%d"}`, pages, pages)
		}))
		defer srv.Close()

		client := NewClient(srv.Client(), nil)
		items, err := client.Paginate(context.Background(), mustRequest(t, srv.URL+"/endless"), http.StatusOK)
		if err != nil {
			t.Fatalf("Paginate() error: %v", err)
		}
		if pages != PaginationPages {
			t.Errorf("server saw %d requests, want %d", pages, PaginationPages)
		}
		if len(items) != PaginationPages {
			t.Errorf("gathered %d items, want %d", len(items), PaginationPages)
		}
	})
}

func TestNewJSONRequest(t *testing.T) {
	t.Run("body survives a retry", func(t *testing.T) {
		req, err := NewJSONRequest(context.Background(), http.MethodPost, "https://api.spotify.com/v1/x", map[string]string{"k": "v"})
		if err != nil {
			t.Fatalf("NewJSONRequest() error: %v", err)
		}
		if req.GetBody == nil {
			t.Fatal("GetBody not set, request is not retryable")
		}
		body, err := req.GetBody()
		if err != nil {
			t.Fatalf("GetBody() error: %v", err)
		}
		data, _ := io.ReadAll(body)
		var decoded map[string]string
		if err := json.Unmarshal(data, &decoded); err != nil || decoded["k"] != "v" {
			t.Errorf("rewound body = %q", data)
		}
	})

	t.Run("nil payload omits body and content type", func(t *testing.T) {
		req, err := NewJSONRequest(context.Background(), http.MethodGet, "https://api.spotify.com/v1/x", nil)
		if err != nil {
			t.Fatalf("NewJSONRequest() error: %v", err)
		}
		if req.Body != nil || req.Header.Get("Content-Type") != "" {
			t.Error("nil payload produced a body or content type")
		}
	})
}
