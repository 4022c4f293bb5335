package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

// Translations localizes message IDs. It implements decode.MessageResolver so
// schema messages may be written as IDs.
type Translations struct {
	bundle   *i18n.Bundle
	localize *i18n.Localizer
	lang     string
}

// NewTranslations loads the embedded locales and selects lang.
func NewTranslations(lang string) (*Translations, error) {
	if lang == "" {
		return nil, fmt.Errorf("i18n: language must not be empty")
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(locales, "locales/active.*.toml")
	if err != nil {
		return nil, fmt.Errorf("i18n: reading locales: %w", err)
	}
	for _, file := range files {
		data, err := locales.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("i18n: reading locale %s: %w", file, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, path.Base(file)); err != nil {
			return nil, fmt.Errorf("i18n: loading locale %s: %w", file, err)
		}
	}

	t := &Translations{bundle: bundle}
	if err := t.SetLanguage(lang); err != nil {
		return nil, err
	}
	return t, nil
}

// SetLanguage switches the active language.
func (t *Translations) SetLanguage(lang string) error {
	for _, tag := range t.bundle.LanguageTags() {
		if tag.String() == lang {
			t.localize = i18n.NewLocalizer(t.bundle, lang)
			t.lang = lang
			return nil
		}
	}
	return fmt.Errorf("i18n: language '%s' not supported", lang)
}

// Language returns the active language.
func (t *Translations) Language() string {
	return t.lang
}

// Languages lists the languages with a locale file.
func (t *Translations) Languages() []string {
	tags := t.bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.String())
	}
	return out
}

// GetMessage localizes messageID. Missing IDs yield a marker instead of an
// empty string so gaps show up in the UI.
func (t *Translations) GetMessage(messageID string, count int, templateData map[string]interface{}) string {
	localized, err := t.localize.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		PluralCount:  pluralCount(count, templateData),
		TemplateData: templateData,
	})
	if err != nil {
		return "Translation missing: " + messageID
	}
	return localized
}

// Resolve localizes message when it is a known ID and returns it unchanged
// otherwise, so literal schema messages keep working.
func (t *Translations) Resolve(message string) string {
	localized, err := t.localize.Localize(&i18n.LocalizeConfig{MessageID: message})
	if err != nil || localized == "" {
		return message
	}
	return localized
}

func pluralCount(count int, templateData map[string]interface{}) interface{} {
	if count > 0 {
		return count
	}
	if templateData != nil {
		if v, ok := templateData["Count"]; ok {
			return v
		}
	}
	return nil
}
