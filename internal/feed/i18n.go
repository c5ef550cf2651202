package feed

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-jalali/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator localizes event summaries. A nil Translator is usable and
// falls back to the English default strings.
type Translator struct {
	localizer *i18n.Localizer
}

// NewTranslator loads the embedded locale bundle and returns a
// translator for the given language, falling back to English for
// missing keys.
func NewTranslator(lang string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyFile, name,
		)
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}
	return &Translator{
		localizer: i18n.NewLocalizer(bundle, lang, config.DefaultLanguage),
	}
}

// Summary builds the localized event summary line. Age 0 with a known
// year is the birth itself.
func (tr *Translator) Summary(name string, age int, yearKnown bool) string {
	if tr == nil || tr.localizer == nil {
		return fmt.Sprintf(config.FallbackSummary, name)
	}

	var msg string
	var err error
	switch {
	case yearKnown && age == 0:
		msg, err = tr.localizer.Localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyEvtSummaryBirth,
			TemplateData: map[string]interface{}{"Name": name},
		})
	case yearKnown:
		msg, err = tr.localizer.Localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyEvtSummaryAge,
			TemplateData: map[string]interface{}{"Name": name, "Age": age},
		})
	default:
		msg, err = tr.localizer.Localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyEvtSummary,
			TemplateData: map[string]interface{}{"Name": name},
		})
	}

	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return fmt.Sprintf(config.FallbackSummary, name)
	}
	return msg
}
