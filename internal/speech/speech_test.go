package speech

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNormalizeSupportedLang(t *testing.T) {
	p := Normalize("en-US", "")
	if p.Strategy != StrategyDirect {
		t.Errorf("strategy = %q", p.Strategy)
	}
	if p.Lang != "en-US" || p.Voice != "en-US-Wavenet-D" {
		t.Errorf("plan = %+v", p)
	}
}

func TestNormalizeKeepsMatchingVoice(t *testing.T) {
	p := Normalize("en-US", "en-US-Wavenet-F")
	if p.Voice != "en-US-Wavenet-F" {
		t.Errorf("stored voice dropped: %+v", p)
	}
}

func TestNormalizeRejectsForeignVoice(t *testing.T) {
	// A Russian voice cannot speak English text; fall back to the default.
	p := Normalize("en-US", "ru-RU-Wavenet-D")
	if p.Voice != "en-US-Wavenet-D" {
		t.Errorf("foreign voice kept: %+v", p)
	}
}

func TestNormalizeUnsupportedLangTranslates(t *testing.T) {
	p := Normalize("uz-UZ", "")
	if p.Strategy != StrategyTranslate {
		t.Errorf("strategy = %q", p.Strategy)
	}
	if p.Lang != "ru-RU" || p.TargetLang != "ru-RU" || p.Voice != "ru-RU-Wavenet-D" {
		t.Errorf("plan = %+v", p)
	}
}

func TestNormalizeEmptyLangDefaultsRussian(t *testing.T) {
	p := Normalize("", "")
	if p.Lang != "ru-RU" || p.Strategy != StrategyDirect {
		t.Errorf("plan = %+v", p)
	}
}

func TestStyleProsody(t *testing.T) {
	cases := []struct {
		style string
		want  Prosody
	}{
		{"cheerful", Prosody{Rate: 1.12, Pitch: 3.0}},
		{"calm", Prosody{Rate: 0.94, Pitch: -1.0}},
		{"neutral", Prosody{Rate: 0.98, Pitch: 1.0}},
		{"", Prosody{Rate: 0.98, Pitch: 1.0}},
		{"weird", Prosody{Rate: 0.98, Pitch: 1.0}},
	}
	for _, tc := range cases {
		if got := StyleProsody(tc.style); got != tc.want {
			t.Errorf("StyleProsody(%q) = %+v, want %+v", tc.style, got, tc.want)
		}
	}
}

func TestStripForTTS(t *testing.T) {
	got := StripForTTS("Привет 👋 смотри https://example.com/page :rocket: и  вот   это")
	if strings.Contains(got, "👋") || strings.Contains(got, "http") || strings.Contains(got, ":rocket:") {
		t.Errorf("strip incomplete: %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Errorf("whitespace not collapsed: %q", got)
	}
}

func TestToSSMLEscapesBeforeBreaks(t *testing.T) {
	got := ToSSML("a < b... Точно! Да.", StyleProsody("neutral"))

	if !strings.HasPrefix(got, "<speak><prosody rate='0.98' pitch='+1.0st'>") {
		t.Errorf("prosody envelope wrong: %q", got)
	}
	if !strings.Contains(got, "a &lt; b") {
		t.Errorf("user markup not escaped: %q", got)
	}
	if !strings.Contains(got, "<break time='400ms'/>") {
		t.Errorf("ellipsis break missing: %q", got)
	}
	if !strings.Contains(got, "!<break time='220ms'/>") {
		t.Errorf("sentence break missing: %q", got)
	}
}

func TestDisabledSynthesizer(t *testing.T) {
	var s Synthesizer = Disabled{}
	_, err := s.Synthesize(context.Background(), "<speak/>", Normalize("", ""), StyleProsody(""))
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}
