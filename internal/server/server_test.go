package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-jalali/internal/calendar"
	"github.com/tartampluch/go-jalali/internal/config"
)

func newTestServer() *FeedServer {
	return New("0", calendar.DefaultLocale()) // Port irrelevant for handler tests
}

// -----------------------------------------------------------------------------
// Feed Handler (White-Box Testing of Handler Logic)
// -----------------------------------------------------------------------------

// TestHandleFeed_ServingContent verifies that the handler correctly writes
// the standard HTTP headers and body content when data is available.
func TestHandleFeed_ServingContent(t *testing.T) {
	srv := newTestServer()
	expectedICS := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")

	// Pre-load data into the atomic cache
	srv.Update(expectedICS)

	req := httptest.NewRequest(http.MethodGet, config.RouteFeed, nil)
	w := httptest.NewRecorder()
	srv.handleFeed(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")

	// ETag should be generated automatically
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, expectedICS, body)
}

// TestHandleFeed_Caching verifies that the server respects ETag headers
// (If-None-Match) and returns 304 Not Modified to save bandwidth.
func TestHandleFeed_Caching(t *testing.T) {
	srv := newTestServer()
	srv.Update([]byte("DATA_VERSION_1"))

	// Step 1: Initial Request to get the ETag
	req1 := httptest.NewRequest(http.MethodGet, config.RouteFeed, nil)
	w1 := httptest.NewRecorder()
	srv.handleFeed(w1, req1)

	etag := w1.Result().Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag, "Server must provide an ETag")

	// Step 2: Second Request providing the known ETag
	req2 := httptest.NewRequest(http.MethodGet, config.RouteFeed, nil)
	req2.Header.Set(config.HeaderIfNoneMatch, etag)
	w2 := httptest.NewRecorder()

	srv.handleFeed(w2, req2)
	resp2 := w2.Result()
	defer func() { _ = resp2.Body.Close() }()

	assert.Equal(t, http.StatusNotModified, resp2.StatusCode)
	body, _ := io.ReadAll(resp2.Body)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")
}

// TestHandleFeed_MethodNotAllowed ensures strictly GET and HEAD are accepted.
func TestHandleFeed_MethodNotAllowed(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, config.RouteFeed, nil)
	w := httptest.NewRecorder()

	srv.handleFeed(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(config.HeaderAllow))
}

// TestHandleFeed_Initializing verifies the 503 behavior when data is not yet ready.
func TestHandleFeed_Initializing(t *testing.T) {
	srv := newTestServer()
	// Note: We intentionally do NOT call srv.Update() here.

	req := httptest.NewRequest(http.MethodGet, config.RouteFeed, nil)
	w := httptest.NewRecorder()

	srv.handleFeed(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

// -----------------------------------------------------------------------------
// Convert Handler
// -----------------------------------------------------------------------------

func TestHandleConvert_Jalali(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, config.RouteConvert+"?calendar=jalali&date=1389/06/14", nil)
	w := httptest.NewRecorder()
	srv.handleConvert(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))

	var result ConversionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, "1389/06/14", result.Jalali)
	assert.Equal(t, "2010/09/05", result.Gregorian)
	assert.Equal(t, "Sunday", result.Weekday)
	assert.False(t, result.LeapYear, "1389 is a common year")
}

func TestHandleConvert_Gregorian(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, config.RouteConvert+"?calendar=gregorian&date=2020/03/20", nil)
	w := httptest.NewRecorder()
	srv.handleConvert(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result ConversionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, "1399/01/01", result.Jalali)
	assert.True(t, result.LeapYear, "1399 is a leap year")
}

// TestHandleConvert_DefaultsToJalali checks that an absent calendar
// parameter is treated as jalali.
func TestHandleConvert_DefaultsToJalali(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, config.RouteConvert+"?date=1389/06/14", nil)
	w := httptest.NewRecorder()
	srv.handleConvert(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestHandleConvert_PartialLayout verifies that an omitted year defaults to
// today's date, same as the parser everywhere else.
func TestHandleConvert_PartialLayout(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, config.RouteConvert+"?calendar=jalali&date=6/14", nil)
	w := httptest.NewRecorder()
	srv.handleConvert(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result ConversionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, strings.HasSuffix(result.Jalali, "/06/14"),
		"month and day come from the query, year from today")
}

func TestHandleConvert_BadInput(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		name  string
		query string
	}{
		{"malformed jalali date", "?calendar=jalali&date=not-a-date"},
		{"nonexistent jalali day", "?calendar=jalali&date=1394/12/30"},
		{"malformed gregorian date", "?calendar=gregorian&date=2020-03-20"},
		{"unknown calendar", "?calendar=julian&date=2020/03/20"},
		{"missing date", "?calendar=jalali"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, config.RouteConvert+tt.query, nil)
			w := httptest.NewRecorder()
			srv.handleConvert(w, req)

			resp := w.Result()
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_RaceCondition validates the thread-safety of atomic.Pointer usage.
// It runs high-frequency writers and readers concurrently to trigger race conditions.
// Run this with `go test -race`.
func TestServer_RaceCondition(t *testing.T) {
	srv := newTestServer()
	var wg sync.WaitGroup

	// Duration of the stress test
	duration := 500 * time.Millisecond
	end := time.Now().Add(duration)

	// Writer Routines: Stress atomic.Pointer.Store
	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			i := 0
			for time.Now().Before(end) {
				data := fmt.Sprintf("VERSION:%d-%d", id, i)
				srv.Update([]byte(data))
				i++
				// Tiny sleep to yield processor and allow interleaving
				time.Sleep(1 * time.Microsecond)
			}
		}(w)
	}

	// Reader Routines: Stress atomic.Pointer.Load through the handler
	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req := httptest.NewRequest(http.MethodGet, config.RouteFeed, nil)
				w := httptest.NewRecorder()

				srv.handleFeed(w, req)

				// Validates that we don't get partial writes or crashes.
				code := w.Code
				if code != http.StatusOK && code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", code)
				}
			}
		}()
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

// TestServer_Lifecycle spins up the actual TCP listener to verify network
// binding, routing, and graceful shutdown logic.
func TestServer_Lifecycle(t *testing.T) {
	const port = "18098"

	srv := New(port, calendar.DefaultLocale())
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start(ctx)
	}()

	feedURL := "http://127.0.0.1:" + port + config.RouteFeed

	// Wait for server to be responsive (TCP bind takes a few milliseconds)
	require.Eventually(t, func() bool {
		resp, err := http.Get(feedURL)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	// 1. Check Initial State (503)
	resp, err := http.Get(feedURL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	// 2. Update Data
	srv.Update([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR"))

	// 3. Check Served Content (200)
	resp, err = http.Get(feedURL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")
	_ = resp.Body.Close()

	// 4. The convert endpoint is routed on the same listener.
	resp, err = http.Get("http://127.0.0.1:" + port + config.RouteConvert + "?date=1389/06/14")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// 5. Test Shutdown
	cancel() // Trigger context cancellation

	select {
	case err := <-errChan:
		// Start() returns nil on graceful shutdown
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

// TestStart_MissingPort verifies the startup guard.
func TestStart_MissingPort(t *testing.T) {
	srv := New("", calendar.DefaultLocale())
	err := srv.Start(context.Background())
	assert.EqualError(t, err, config.ErrPortRequired)
}
