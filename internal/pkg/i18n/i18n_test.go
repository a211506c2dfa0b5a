package i18n

import (
	"testing"
)

func TestBundle_NegotiatesLocale(t *testing.T) {
	b := MustNew()

	cases := map[string]string{
		"":                   "en",
		"en-US,en;q=0.9":     "en",
		"vi-VN,vi;q=0.9":     "vi",
		"fr-FR,vi;q=0.5":     "vi",
		"de-DE":              "en",
		"garbage;;;q=banana": "en",
	}
	for header, want := range cases {
		if got := b.For(header).Locale(); got != want {
			t.Errorf("For(%q) = %s, want %s", header, got, want)
		}
	}
}

func TestLocalizer_RendersParams(t *testing.T) {
	l := MustNew().For("en")

	if got := l.T(LoginErrorBlocked, 12); got != "Too many failed login attempts. Please try again in 12 minutes." {
		t.Fatalf("unexpected blocked message: %q", got)
	}
	if got := l.T(LoginErrorCredentials, 3); got != "Invalid email or password. 3 attempts remaining." {
		t.Fatalf("unexpected credentials message: %q", got)
	}
}

func TestLocalizer_UnknownKeyFallsBackToKey(t *testing.T) {
	l := MustNew().For("vi")

	if got := l.T("no.such.key"); got != "no.such.key" {
		t.Fatalf("expected key fallback, got %q", got)
	}
}

func TestCatalog_LocalesHaveSameKeys(t *testing.T) {
	for key := range catalog["en"] {
		if _, ok := catalog["vi"][key]; !ok {
			t.Errorf("vi catalog missing %s", key)
		}
	}
}
