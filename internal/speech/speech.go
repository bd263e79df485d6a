// Package speech plans text-to-speech delivery: which language and voice to
// use, whether the text needs translating first, and how the chosen style
// maps to prosody. Actual audio synthesis is behind the Synthesizer
// interface; the default backend is disabled.
package speech

import "context"

// Delivery strategies.
const (
	StrategyDirect    = "direct"
	StrategyTranslate = "translate_for_tts"
)

// supportedLangs lists languages the synthesis backend is known to handle.
var supportedLangs = map[string]bool{
	"ru-RU": true,
	"en-US": true,
}

// voicesByLang lists voices per supported language, preferred first.
var voicesByLang = map[string][]string{
	"ru-RU": {"ru-RU-Wavenet-D", "ru-RU-Wavenet-C"},
	"en-US": {"en-US-Wavenet-D", "en-US-Wavenet-F"},
}

// Plan describes how one reply should be spoken.
type Plan struct {
	Lang     string
	Voice    string
	Strategy string
	// TargetLang is set when Strategy is StrategyTranslate: the language to
	// translate into before synthesis.
	TargetLang string
}

// Normalize resolves the user's language and voice preference into a
// concrete plan. Unsupported languages fall back to Russian synthesis with a
// translate-first strategy.
func Normalize(userLang, userVoice string) Plan {
	lang := userLang
	if lang == "" {
		lang = "ru-RU"
	}

	if supportedLangs[lang] {
		voice := voicesByLang[lang][0]
		// A stored voice is honored only when it belongs to the language.
		if userVoice != "" && matchesLang(userVoice, lang) {
			voice = userVoice
		}
		return Plan{Lang: lang, Voice: voice, Strategy: StrategyDirect}
	}

	return Plan{
		Lang:       "ru-RU",
		Voice:      voicesByLang["ru-RU"][0],
		Strategy:   StrategyTranslate,
		TargetLang: "ru-RU",
	}
}

func matchesLang(voice, lang string) bool {
	return len(voice) >= len(lang) && voice[:len(lang)] == lang
}

// Voices returns the available voices for a language.
func Voices(lang string) []string {
	return voicesByLang[lang]
}

// SupportedLangs returns the languages synthesis can handle.
func SupportedLangs() []string {
	return []string{"ru-RU", "en-US"}
}

// Prosody is the delivery rate and pitch passed to the synthesis backend.
type Prosody struct {
	Rate  float64
	Pitch float64
}

// StyleProsody maps a preference style to rate and pitch. Unknown styles
// read as neutral.
func StyleProsody(style string) Prosody {
	switch style {
	case "cheerful":
		return Prosody{Rate: 1.12, Pitch: 3.0}
	case "calm":
		return Prosody{Rate: 0.94, Pitch: -1.0}
	default:
		return Prosody{Rate: 0.98, Pitch: 1.0}
	}
}

// Synthesizer produces spoken audio for an SSML document.
type Synthesizer interface {
	Synthesize(ctx context.Context, ssml string, plan Plan, prosody Prosody) ([]byte, error)
}

// Disabled is the default backend: it reports itself unavailable so callers
// fall back to text replies.
type Disabled struct{}

// ErrDisabled is returned by the Disabled backend.
var ErrDisabled = errDisabled{}

type errDisabled struct{}

func (errDisabled) Error() string { return "speech synthesis is not configured" }

func (Disabled) Synthesize(ctx context.Context, ssml string, plan Plan, prosody Prosody) ([]byte, error) {
	return nil, ErrDisabled
}
