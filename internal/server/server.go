// Package server exposes the generated feed and a small conversion API on
// localhost. The feed bytes are swapped in atomically so the read path
// never takes a lock.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-jalali/internal/calendar"
	"github.com/tartampluch/go-jalali/internal/config"
)

// cacheItem stores the rendered feed and its HTTP caching metadata.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// ConversionResult is the JSON body of a successful /convert call.
type ConversionResult struct {
	Jalali    string `json:"jalali"`
	Gregorian string `json:"gregorian"`
	LeapYear  bool   `json:"jalali_leap_year"`
	Weekday   string `json:"weekday"`
}

// FeedServer serves the ICS feed and the conversion endpoint.
type FeedServer struct {
	// cache uses atomic.Pointer for lock-free reads: the feed is read
	// often and replaced rarely, so a pointer swap beats an RWMutex.
	cache atomic.Pointer[cacheItem]

	Port   string
	Locale calendar.Locale
}

// New creates a server bound to the given port with formatter tables for
// the conversion endpoint.
func New(port string, loc calendar.Locale) *FeedServer {
	return &FeedServer{Port: port, Locale: loc}
}

// Start runs the HTTP server and blocks until the context is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteFeed, s.handleFeed)
	mux.HandleFunc(config.RouteConvert, s.handleConvert)

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      mux,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served feed.
func (s *FeedServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	item := &cacheItem{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}

	// Readers see either the old or the new complete item, never a
	// partial state.
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, item.etag,
	)
}

// handleFeed serves the ICS content with conditional-request support.
func (s *FeedServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	if !allowReadMethods(w, r) {
		return
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// handleConvert translates a single date between the two calendars.
// GET /convert?calendar=jalali&date=1389/06/14
func (s *FeedServer) handleConvert(w http.ResponseWriter, r *http.Request) {
	if !allowReadMethods(w, r) {
		return
	}

	q := r.URL.Query()
	input := q.Get(config.QueryParamDate)
	source := q.Get(config.QueryParamCalendar)
	if source == "" {
		source = config.CalendarJalali
	}

	var date calendar.Date
	switch source {
	case config.CalendarJalali:
		// Strict parsing rejects nonexistent days outright. Partial
		// layouts are still accepted and default omitted fields to
		// today's date.
		d, err := calendar.Parse(input, true, calendar.FromTime(time.Now()))
		if err != nil {
			http.Error(w, config.HTTPMsgBadDate, http.StatusBadRequest)
			return
		}
		date = d
	case config.CalendarGregorian:
		t, err := time.Parse(config.LayoutGregorianInput, input)
		if err != nil {
			http.Error(w, config.HTTPMsgBadDate, http.StatusBadRequest)
			return
		}
		date = calendar.FromTime(t)
	default:
		http.Error(w, config.HTTPMsgBadCalendar, http.StatusBadRequest)
		return
	}

	jy, _, _ := date.Jalali()
	gy, gm, gd := date.Gregorian()
	result := ConversionResult{
		Jalali:    calendar.Format(date, config.LayoutCanonical, s.Locale),
		Gregorian: fmt.Sprintf(config.LayoutGregorianOutput, gy, gm, gd),
		LeapYear:  calendar.IsLeapYear(jy),
		Weekday:   date.Weekday().String(),
	}

	slog.Debug(config.MsgConvertDone,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyCalendar, source,
		config.LogKeyInput, input,
	)

	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// allowReadMethods rejects anything other than GET and HEAD.
func allowReadMethods(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return false
	}
	return true
}
