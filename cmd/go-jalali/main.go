package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/tartampluch/go-jalali/internal/calendar"
	"github.com/tartampluch/go-jalali/internal/config"
	"github.com/tartampluch/go-jalali/internal/feed"
	"github.com/tartampluch/go-jalali/internal/locale"
	"github.com/tartampluch/go-jalali/internal/server"
)

// options collects the parsed CLI flags.
type options struct {
	lang      string
	convert   string
	gregorian bool
	format    string
	year      int
	serve     bool
	port      string
}

// main is the application entry point.
// It delegates execution to runMain to ensure that deferred function calls
// (like closing log files) are executed before the process terminates.
// os.Exit() does not run defers, so we must return an integer code first.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
// Returns config.ExitCodeSuccess on success, config.ExitCodeError on failure.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	var opts options
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	flag.StringVar(&opts.lang, config.FlagLang, config.DefaultLanguage, config.FlagDescLang)
	flag.StringVar(&opts.convert, config.FlagConvert, "", config.FlagDescConvert)
	flag.BoolVar(&opts.gregorian, config.FlagGregorian, false, config.FlagDescGregorian)
	flag.StringVar(&opts.format, config.FlagFormat, config.LayoutCanonical, config.FlagDescFormat)
	flag.IntVar(&opts.year, config.FlagYear, 0, config.FlagDescYear)
	flag.BoolVar(&opts.serve, config.FlagServe, false, config.FlagDescServe)
	flag.StringVar(&opts.port, config.FlagPort, config.DefaultPort, config.FlagDescPort)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	// We configure structured logging (slog) early to capture startup issues.
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	// Create a root context that cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if err := run(ctx, opts); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires the translation layer into the calendar core and dispatches on
// the selected action: one-shot conversion, year table, feed server, or the
// default "today" line.
func run(ctx context.Context, opts options) error {
	translator := locale.New(opts.lang)
	loc := translator.CalendarLocale()
	clock := feed.RealClock{}

	switch {
	case opts.convert != "":
		return runConvert(opts, loc, clock)
	case opts.year != 0:
		return runYearTable(ctx, opts.year, translator, loc, clock)
	case opts.serve:
		return runServe(ctx, opts.port, translator, loc, clock)
	default:
		return runToday(translator, loc, clock)
	}
}

// runConvert translates one date between the calendars and prints both
// renderings on a single line.
func runConvert(opts options, loc calendar.Locale, clock feed.Clock) error {
	today := calendar.FromTime(clock.Now())

	var date calendar.Date
	if opts.gregorian {
		t, err := time.Parse(config.LayoutGregorianInput, opts.convert)
		if err != nil {
			return fmt.Errorf("%s: %w", config.ErrMalformedDate, err)
		}
		date = calendar.FromTime(t)
	} else {
		d, err := calendar.Parse(opts.convert, true, today)
		if err != nil {
			return err
		}
		date = d
	}

	gy, gm, gd := date.Gregorian()
	fmt.Printf(config.MsgConvertOutput,
		calendar.Format(date, opts.format, loc),
		gy, gm, gd,
		date.Weekday(),
	)
	return nil
}

// runYearTable prints one line per month of the given Jalali year and, as a
// side effect of generating them, validates the year range.
func runYearTable(ctx context.Context, year int, translator *locale.Translator, loc calendar.Locale, clock feed.Clock) error {
	gen := newGenerator(translator, loc, clock)
	_, entries, err := gen.Generate(ctx, year)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		gy, gm, gd := entry.Start.Gregorian()
		fmt.Println(translator.MsgData(config.TKeyMonthLine, map[string]interface{}{
			"Name":  entry.Name,
			"Days":  entry.Days,
			"Start": fmt.Sprintf(config.LayoutGregorianOutput, gy, gm, gd),
		}))
	}
	return nil
}

// runServe generates the feed for the current Jalali year, publishes it, and
// blocks on the HTTP server until the context is cancelled.
func runServe(ctx context.Context, port string, translator *locale.Translator, loc calendar.Locale, clock feed.Clock) error {
	if err := validatePort(port); err != nil {
		return err
	}

	jy, _, _ := calendar.FromTime(clock.Now()).Jalali()
	gen := newGenerator(translator, loc, clock)
	data, _, err := gen.Generate(ctx, jy)
	if err != nil {
		return err
	}

	srv := server.New(port, loc)
	srv.Update(data)
	return srv.Start(ctx)
}

// runToday prints the current date in both calendars.
func runToday(translator *locale.Translator, loc calendar.Locale, clock feed.Clock) error {
	today := calendar.FromTime(clock.Now())
	gy, gm, gd := today.Gregorian()

	fmt.Println(translator.MsgData(config.TKeyTodayLine, map[string]interface{}{
		"Jalali":    calendar.Format(today, config.LayoutCanonical, loc),
		"Gregorian": fmt.Sprintf(config.LayoutGregorianOutput, gy, gm, gd),
	}))
	return nil
}

// newGenerator builds a feed generator whose event summaries go through the
// translation layer.
func newGenerator(translator *locale.Translator, loc calendar.Locale, clock feed.Clock) *feed.Generator {
	return &feed.Generator{
		Clock:  clock,
		Locale: loc,
		FormatSummary: func(data feed.SummaryData) string {
			return translator.MsgData(config.TKeyFeedSummary, map[string]interface{}{
				"Month": data.Month,
				"Year":  data.Year,
			})
		},
	}
}

// validatePort rejects non-numeric and out-of-range TCP ports before the
// server tries to bind.
func validatePort(port string) error {
	if port == "" {
		return errors.New(config.ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < config.MinPort || n > config.MaxPort {
		return errors.New(config.ErrPortRange)
	}
	return nil
}

// printVersion outputs the build information to stdout and exits.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	// 1. Always write to Stderr so feed/table output on Stdout stays clean.
	writers = append(writers, os.Stderr)

	// 2. Attempt to set up a file writer in the user's cache directory.
	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		// Use centralized permission constants for security.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	// Ensure the directory exists with restricted permissions (700).
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
