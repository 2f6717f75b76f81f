package i18n

import "testing"

func TestResolvePrefersHighestQuality(t *testing.T) {
	b, err := Load("../../locales", "fr", []string{"fr", "en", "ar"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.Resolve("en;q=0.8, ar;q=0.9"); got != "ar" {
		t.Fatalf("expected ar, got %q", got)
	}
	if got := b.Resolve("de-DE, it"); got != "fr" {
		t.Fatalf("expected fallback fr, got %q", got)
	}
	if got := b.Resolve("en-US,en;q=0.9"); got != "en" {
		t.Fatalf("expected en, got %q", got)
	}
}

func TestTFallsBackToFrenchThenKey(t *testing.T) {
	b, err := Load("../../locales", "fr", []string{"fr", "en", "ar"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.T("en", "brand.name"); got == "brand.name" {
		t.Fatalf("expected brand name translation, got key")
	}
	if got := b.T("en", "does.not.exist"); got != "does.not.exist" {
		t.Fatalf("expected key echo, got %q", got)
	}
}

func TestDir(t *testing.T) {
	if Dir("ar") != "rtl" {
		t.Fatalf("expected ar to be rtl")
	}
	if Dir("fr") != "ltr" || Dir("") != "ltr" {
		t.Fatalf("expected ltr default")
	}
}
