package utils

import "testing"

func TestDetermineLocale_QueryParamWins(t *testing.T) {
	got := DetermineLocale("uz-UZ", "ru-RU,ru;q=0.9", []string{"ru", "uz"}, "ru")
	if got != "uz" {
		t.Fatalf("want uz, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguagePrefersHigherQ(t *testing.T) {
	got := DetermineLocale("", "uz;q=0.8,ru;q=0.9", []string{"ru", "uz"}, "ru")
	if got != "ru" {
		t.Fatalf("want ru, got %s", got)
	}
}

func TestDetermineLocale_RegionReduced(t *testing.T) {
	got := DetermineLocale("", "uz-Latn-UZ,en;q=0.5", []string{"ru", "uz"}, "ru")
	if got != "uz" {
		t.Fatalf("want uz, got %s", got)
	}
}

func TestDetermineLocale_DefaultFallback(t *testing.T) {
	got := DetermineLocale("", "fr-FR,es;q=0.9", []string{"ru", "uz"}, "ru")
	if got != "ru" {
		t.Fatalf("want ru fallback, got %s", got)
	}
}
