package speech

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	emojiRe     = regexp.MustCompile(`[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}\x{2600}-\x{26FF}\x{2700}-\x{27BF}]+`)
	urlRe       = regexp.MustCompile(`https?://\S+`)
	colonCodeRe = regexp.MustCompile(`(?i):[a-z0-9_]+:`)
	multiWSRe   = regexp.MustCompile(`\s{2,}`)
	sentenceRe  = regexp.MustCompile(`([.!?])\s+`)
)

// StripForTTS removes emoji, emoji shortcodes and URLs: none of them read
// well aloud.
func StripForTTS(text string) string {
	t := emojiRe.ReplaceAllString(text, "")
	t = colonCodeRe.ReplaceAllString(t, "")
	t = urlRe.ReplaceAllString(t, "")
	return strings.TrimSpace(multiWSRe.ReplaceAllString(t, " "))
}

// ToSSML wraps cleaned text in an SSML prosody envelope with short pauses at
// sentence boundaries. The text is escaped before break tags are inserted so
// user content cannot inject markup.
func ToSSML(text string, prosody Prosody) string {
	t := html.EscapeString(StripForTTS(text))
	t = strings.ReplaceAll(t, "...", "<break time='400ms'/>")
	t = sentenceRe.ReplaceAllString(t, "$1<break time='220ms'/> ")
	return fmt.Sprintf("<speak><prosody rate='%.2f' pitch='%+.1fst'>%s</prosody></speak>", prosody.Rate, prosody.Pitch, t)
}
