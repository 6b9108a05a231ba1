// Package locale loads the embedded translation bundle and turns it into
// the replaceable lookup tables the calendar formatter consumes.
package locale

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/go-jalali/internal/calendar"
	"github.com/tartampluch/go-jalali/internal/config"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator wraps a go-i18n bundle pinned to one language.
type Translator struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer

	// Supported lists the language codes detected in the embedded bundle.
	Supported []string
}

// New builds a Translator from the embedded locale files. Unknown languages
// fall back to English message by message, which go-i18n handles natively.
func New(lang string) *Translator {
	t := &Translator{}
	t.bundle = i18n.NewBundle(language.English)
	t.bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompLocale,
			config.LogKeyError, err,
		)
		return t
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompLocale,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompLocale,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := t.bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompLocale,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		t.Supported = append(t.Supported, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompLocale,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}
	t.localizer = i18n.NewLocalizer(t.bundle, lang)
	return t
}

// Msg translates a key, returning the key itself when no message exists so
// callers always have something printable.
func (t *Translator) Msg(key string) string {
	return t.MsgData(key, nil)
}

// MsgData translates a key with template data.
func (t *Translator) MsgData(key string, data map[string]interface{}) string {
	if t.localizer == nil {
		return key
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompLocale,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// CalendarLocale assembles the formatter tables for the bound language.
// Missing entries keep the built-in transliteration so a partial locale
// file degrades gracefully instead of rendering raw keys.
func (t *Translator) CalendarLocale() calendar.Locale {
	loc := calendar.DefaultLocale()
	for i := 0; i < 12; i++ {
		key := config.TKeyMonthPrefix + strconv.Itoa(i+1)
		if name := t.Msg(key); name != key {
			loc.MonthNames[i] = name
		}
	}
	for i := 0; i < 7; i++ {
		key := config.TKeyWeekdayPrefix + strconv.Itoa(i+1)
		if label := t.Msg(key); label != key {
			loc.WeekdayLabels[i] = label
		}
	}
	return loc
}
