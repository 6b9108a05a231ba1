package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Jalali"
	AppID             = "com.github.tartampluch.go-jalali"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion   = "version"
	FlagDebug     = "debug"
	FlagLang      = "lang"
	FlagConvert   = "convert"
	FlagGregorian = "gregorian"
	FlagFormat    = "format"
	FlagYear      = "year"
	FlagServe     = "serve"
	FlagPort      = "port"

	FlagDescVersion   = "Show application version and exit"
	FlagDescDebug     = "Enable debug logging to stdout"
	FlagDescLang      = "Display language for month names (e.g. en, fa)"
	FlagDescConvert   = "Convert a Jalali date (Y/M/D) to Gregorian and exit"
	FlagDescGregorian = "Treat the -convert argument as Gregorian instead of Jalali"
	FlagDescFormat    = "Output layout for the converted Jalali date (codes: r R q Q e b B)"
	FlagDescYear      = "Print the month table of the given Jalali year and exit"
	FlagDescServe     = "Serve the Jalali month feed over HTTP until interrupted"
	FlagDescPort      = "TCP port for the feed server"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
	MsgConvertOutput = "%s = %04d/%02d/%02d (%s)\n"
)

// -----------------------------------------------------------------------------
// Calendar Domain Constants
// -----------------------------------------------------------------------------

const (
	// Jalali year bounds accepted by the validating layer.
	MinJalaliYear = 1
	MaxJalaliYear = 1500

	// CenturyBase is prepended to two-digit years during parsing.
	// A bare "89" is always read as 1389; this 1300s assumption is kept
	// verbatim for compatibility with the historical data it was built for.
	CenturyBase = 1300

	// NeutralHour is the fixed hour-of-day used when a calendar day is
	// materialized as a time.Time. Noon keeps the day stable across
	// DST transitions in any zone the value later travels through.
	NeutralHour = 12

	// DateSeparator splits the fields of a textual date.
	DateSeparator = "/"

	// LayoutCanonical is the zero-padded Y/M/D layout used for display
	// and accepted by the parser.
	LayoutCanonical = "B/Q/R"

	// LayoutGregorianInput is the time.Parse reference layout accepted for
	// Gregorian input; LayoutGregorianOutput is its Printf counterpart.
	LayoutGregorianInput  = "2006/01/02"
	LayoutGregorianOutput = "%04d/%02d/%02d"
)

// -----------------------------------------------------------------------------
// Default Values
// -----------------------------------------------------------------------------

const (
	DefaultPort     = "18080"
	DefaultLanguage = "en"
)

// SupportedLanguages defines the list of bundled locales (ISO 639-1).
var SupportedLanguages = []string{"en", "fa"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	// TKeyMonthPrefix and TKeyWeekdayPrefix are completed with a 1-based
	// index: month_1 .. month_12, weekday_1 .. weekday_7 (Shanbeh first).
	TKeyMonthPrefix   = "month_"
	TKeyWeekdayPrefix = "weekday_"

	TKeyFeedSummary = "feed_summary" // Requires Month, Year
	TKeyTodayLine   = "today_line"   // Requires Jalali, Gregorian
	TKeyMonthLine   = "month_line"   // Requires Name, Days, Start
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Jalali//Feed//EN"
	ICalCalName = "Jalali Months"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "gojalali"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	DefaultICalRefresh = 24 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDSalt         = "go-jalali-v1-" // Salt for deterministic UID generation
	UIDHashLength   = 16
	FormatHashInput = "%d|%d|%s"
	FormatUID       = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	RouteFeed          = "/calendar.ics"
	RouteConvert       = "/convert"
	AddrSeparator      = ":"

	// Query parameters of the convert endpoint.
	QueryParamDate     = "date"
	QueryParamCalendar = "calendar"
	CalendarJalali     = "jalali"
	CalendarGregorian  = "gregorian"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrServerStartup  = "server startup failed"
	ErrServerShutdown = "server shutdown failed"
	ErrPortRequired   = "server port is required"
	ErrPortRange      = "server port must be between 1 and 65535"
	ErrInvalidDate    = "date does not exist in the jalali calendar"
	ErrMalformedDate  = "malformed date string"
	ErrBadCalendar    = "calendar must be jalali or gregorian"
	ErrICalEncode     = "failed to encode iCalendar data"
	ErrYearRange      = "jalali year out of supported range"
	ErrLogFile        = "failed to open log file"
	ErrCacheDir       = "could not determine user cache dir"
	ErrCreateDir      = "could not create app cache dir"
	ErrAppFailed      = "application failed unexpectedly"
	ErrWriteResp      = "failed to write response body"
	ErrLocalesAccess  = "failed to access embedded locales"
	ErrLocaleLoad     = "failed to load locale file"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgBadDate      = "Invalid or malformed date"
	HTTPMsgBadCalendar  = "Unknown calendar parameter"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting   = "Starting application"
	MsgAppStop       = "Application stopped gracefully"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Feed cache updated"
	MsgFeedGenerated = "Feed generation successful"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgConvertDone   = "Conversion performed"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyYear      = "year"
	LogKeyCalendar  = "calendar"
	LogKeyInput     = "input"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyEvents    = "events"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompCalendar = "calendar"
	CompFeed     = "feed"
	CompServer   = "server"
	CompLocale   = "locale"
	CompMain     = "main"
)
