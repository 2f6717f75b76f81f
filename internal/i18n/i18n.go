// Package i18n loads the storefront string tables and resolves the best
// locale for a request. French is the fallback; Arabic renders RTL.
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/text/language"
)

// Bundle holds the loaded locale dictionaries.
type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported map[string]struct{}
	bases     []string
	matcher   language.Matcher
}

// rtlLocales lists the locales rendered right-to-left.
var rtlLocales = map[string]struct{}{"ar": {}}

// Load reads <lang>.json files from dir for each supported locale. A missing
// file is tolerated except for the fallback locale.
func Load(dir, fallback string, supported []string) (*Bundle, error) {
	if len(supported) == 0 {
		supported = []string{"fr", "en", "ar"}
	}
	b := &Bundle{
		dict:      map[string]map[string]string{},
		fallback:  fallback,
		supported: map[string]struct{}{},
	}
	for _, l := range supported {
		b.supported[l] = struct{}{}
		raw, err := os.ReadFile(filepath.Join(dir, l+".json"))
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
	}

	// matcher preference order: fallback first, then the remaining locales
	b.bases = append(b.bases, fallback)
	for _, l := range supported {
		if l != fallback {
			b.bases = append(b.bases, l)
		}
	}
	tags := make([]language.Tag, len(b.bases))
	for i, l := range b.bases {
		tags[i] = language.Make(l)
	}
	b.matcher = language.NewMatcher(tags)

	return b, nil
}

// T returns the translation for key in lang, falling back to the default
// locale and finally the key itself.
func (b *Bundle) T(lang, key string) string {
	if lang != "" {
		if m, ok := b.dict[lang]; ok {
			if v, ok := m[key]; ok {
				return v
			}
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Fallback returns the configured fallback locale.
func (b *Bundle) Fallback() string { return b.fallback }

// Supported returns the supported locales in sorted order.
func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.supported))
	for l := range b.supported {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// IsSupported reports whether lang is a supported locale.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.supported[lang]
	return ok
}

// Dir returns the writing direction ("ltr" or "rtl") for lang.
func Dir(lang string) string {
	if _, ok := rtlLocales[lang]; ok {
		return "rtl"
	}
	return "ltr"
}

// Resolve picks the best supported locale from an Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	if acceptLang == "" {
		return b.fallback
	}
	desired, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(desired) == 0 {
		return b.fallback
	}
	_, index, conf := b.matcher.Match(desired...)
	if conf == language.No {
		return b.fallback
	}
	return b.bases[index]
}
