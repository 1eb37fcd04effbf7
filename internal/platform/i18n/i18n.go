// Package i18n resolves the display language for a request. The application
// is bilingual: English (ltr) and Arabic (rtl). Reference data carries both
// names; the resolved language picks which one a response surfaces.
package i18n

import (
	"strings"

	"github.com/labstack/echo/v4"
)

type Lang string

const (
	LangEnglish Lang = "en"
	LangArabic  Lang = "ar"
)

// Valid reports whether l is a supported language.
func (l Lang) Valid() bool {
	return l == LangEnglish || l == LangArabic
}

// Direction returns the text direction for the language.
func (l Lang) Direction() string {
	if l == LangArabic {
		return "rtl"
	}
	return "ltr"
}

// Parse normalizes a language tag ("ar", "ar-SA", "EN") to a supported Lang.
// Unknown tags return the empty Lang.
func Parse(tag string) Lang {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	switch Lang(tag) {
	case LangEnglish:
		return LangEnglish
	case LangArabic:
		return LangArabic
	}
	return ""
}

// Resolve picks the language for a request: the lang query parameter wins,
// then the first supported Accept-Language entry, then the fallback.
func Resolve(c echo.Context, fallback Lang) Lang {
	if l := Parse(c.QueryParam("lang")); l.Valid() {
		return l
	}
	for _, part := range strings.Split(c.Request().Header.Get("Accept-Language"), ",") {
		// Strip quality values like "ar;q=0.8"
		if i := strings.Index(part, ";"); i >= 0 {
			part = part[:i]
		}
		if l := Parse(part); l.Valid() {
			return l
		}
	}
	if fallback.Valid() {
		return fallback
	}
	return LangEnglish
}

// Localized returns the name matching the language, falling back to English
// when the Arabic text is empty.
func Localized(en, ar string, l Lang) string {
	if l == LangArabic && ar != "" {
		return ar
	}
	return en
}
