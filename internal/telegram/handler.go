package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fayzullaev/resumebot/internal/prefs"
	"github.com/fayzullaev/resumebot/internal/speech"
)

// Responder answers free-form questions and serves the canned command
// replies.
type Responder interface {
	Respond(ctx context.Context, userID, message string) string
	Introduction() string
	ContactCard() string
	SkillsOverview() string
	ExperienceStory() string
}

// Diagnoser reports memory subsystem health for /status.
type Diagnoser interface {
	Diagnostics(ctx context.Context) string
}

// Sender is the outbound half of the Bot API the handler needs.
// *Client implements it.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, kb InlineKeyboardMarkup) error
	SendVoice(ctx context.Context, chatID int64, audio []byte) error
	EditMessageText(ctx context.Context, chatID, messageID int64, text string) error
	AnswerCallbackQuery(ctx context.Context, id string) error
}

// Translator renders text in another language before synthesis.
// *gemini.Client implements it.
type Translator interface {
	Translate(ctx context.Context, model, text, targetLang string) (string, error)
}

// topicQueries maps start-menu buttons to the question sent to the agent on
// the user's behalf.
var topicQueries = map[string]string{
	"experience": "Расскажи подробно про опыт работы: где работал, что делал, какие были интересные задачи и достижения?",
	"skills":     "Какой технический стек? Какие технологии использует для AI/ML проектов?",
	"projects":   "Покажи самые впечатляющие проекты. Особенно интересуют проекты с voice AI и локальными моделями.",
	"education":  "Какое образование? Где учился, какие курсы проходил?",
	"contacts":   "Дай все контакты для связи. Как лучше связаться?",
	"voice_ai":   "Расскажи про опыт с voice AI и голосовыми технологиями.",
}

var styles = []string{"neutral", "calm", "cheerful"}

// Handler dispatches webhook updates: commands, keyboard callbacks, text and
// voice messages.
type Handler struct {
	sender     Sender
	responder  Responder
	diagnoser  Diagnoser
	prefs      *prefs.Store
	translator Translator
	tts        speech.Synthesizer
	model      string
}

// NewHandler wires the update handler.
func NewHandler(sender Sender, responder Responder, diagnoser Diagnoser, prefStore *prefs.Store, translator Translator, tts speech.Synthesizer, model string) *Handler {
	return &Handler{
		sender:     sender,
		responder:  responder,
		diagnoser:  diagnoser,
		prefs:      prefStore,
		translator: translator,
		tts:        tts,
		model:      model,
	}
}

// HandleUpdate processes one webhook update. Send failures are logged, not
// returned: Telegram retries the whole update on error responses and a
// duplicate reply is worse than a dropped one.
func (h *Handler) HandleUpdate(ctx context.Context, upd Update) {
	switch {
	case upd.CallbackQuery != nil:
		h.handleCallback(ctx, *upd.CallbackQuery)
	case upd.Message != nil && upd.Message.Voice != nil:
		h.handleVoice(ctx, *upd.Message)
	case upd.Message != nil && upd.Message.Text != "":
		h.handleText(ctx, *upd.Message)
	}
}

func (h *Handler) handleText(ctx context.Context, msg Message) {
	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "/") {
		h.handleCommand(ctx, msg, text)
		return
	}

	userID := userIDOf(msg)
	reply := h.responder.Respond(ctx, userID, text)
	h.deliver(ctx, msg.Chat.ID, userID, reply)
}

func (h *Handler) handleCommand(ctx context.Context, msg Message, text string) {
	cmd := text
	if i := strings.IndexByte(cmd, ' '); i > 0 {
		cmd = cmd[:i]
	}
	// Commands may arrive as /cmd@botname in groups.
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	chatID := msg.Chat.ID
	switch cmd {
	case "/start":
		h.sendKeyboard(ctx, chatID, h.responder.Introduction(), startKeyboard())
	case "/help":
		h.send(ctx, chatID, "Краткая помощь:\n\n"+
			"- /contact — контакты\n"+
			"- /skills — технический стек\n"+
			"- /experience — опыт работы\n"+
			"- /lang — выбрать язык\n"+
			"- /voice — выбрать голос для языка\n"+
			"- /style — neutral | calm | cheerful\n"+
			"- /prefs — показать текущие настройки")
	case "/contact":
		h.send(ctx, chatID, h.responder.ContactCard())
	case "/skills":
		h.send(ctx, chatID, h.responder.SkillsOverview())
	case "/experience":
		h.send(ctx, chatID, h.responder.ExperienceStory())
	case "/prefs":
		p := h.prefs.Get(userIDOf(msg))
		h.send(ctx, chatID, fmt.Sprintf("Текущие настройки:\n- Язык: %s\n- Голос: %s\n- Стиль: %s", p.Lang, p.Voice, p.Style))
	case "/lang":
		h.sendKeyboard(ctx, chatID, "Выберите язык для распознавания/озвучки:",
			columnKeyboard("set_lang:", append(speech.SupportedLangs(), "uz-UZ")))
	case "/voice":
		lang := h.prefs.Get(userIDOf(msg)).Lang
		voices := speech.Voices(lang)
		if len(voices) == 0 {
			h.send(ctx, chatID, fmt.Sprintf("Для %s родных голосов нет, используем перевод для озвучки.", lang))
			return
		}
		h.sendKeyboard(ctx, chatID, fmt.Sprintf("Выберите голос для %s:", lang), columnKeyboard("set_voice:", voices))
	case "/style":
		h.sendKeyboard(ctx, chatID, "Выберите стиль озвучки:", columnKeyboard("set_style:", styles))
	case "/status":
		h.send(ctx, chatID, fmt.Sprintf("🔧 Статус системы:\n\n⚙️ Модель: %s\n%s", h.model, h.diagnoser.Diagnostics(ctx)))
	default:
		h.send(ctx, chatID, "Не знаю такой команды. Попробуй /help")
	}
}

func (h *Handler) handleCallback(ctx context.Context, cb CallbackQuery) {
	if err := h.sender.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		slog.Warn("answering callback failed", "error", err)
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	userID := strconv.FormatInt(cb.From.ID, 10)

	data := cb.Data
	switch {
	case strings.HasPrefix(data, "set_lang:"):
		lang := strings.TrimPrefix(data, "set_lang:")
		if _, err := h.prefs.Set(userID, prefs.Prefs{Lang: lang}); err != nil {
			slog.Warn("saving lang preference failed", "error", err)
		}
		if len(speech.Voices(lang)) == 0 {
			h.edit(ctx, chatID, cb.Message.MessageID,
				fmt.Sprintf("Язык установлен: %s.\nДля озвучки текст будет переведён на русский. Можно сменить /voice или /style.", lang))
			return
		}
		h.edit(ctx, chatID, cb.Message.MessageID, fmt.Sprintf("Язык установлен: %s. Теперь выберите голос: /voice", lang))

	case strings.HasPrefix(data, "set_voice:"):
		voice := strings.TrimPrefix(data, "set_voice:")
		if _, err := h.prefs.Set(userID, prefs.Prefs{Voice: voice}); err != nil {
			slog.Warn("saving voice preference failed", "error", err)
		}
		h.edit(ctx, chatID, cb.Message.MessageID, "Голос установлен: "+voice)

	case strings.HasPrefix(data, "set_style:"):
		style := strings.TrimPrefix(data, "set_style:")
		if !validStyle(style) {
			h.edit(ctx, chatID, cb.Message.MessageID, "Неподдерживаемый стиль")
			return
		}
		if _, err := h.prefs.Set(userID, prefs.Prefs{Style: style}); err != nil {
			slog.Warn("saving style preference failed", "error", err)
		}
		h.edit(ctx, chatID, cb.Message.MessageID, "Готово: стиль = "+style)

	default:
		if query, ok := topicQueries[data]; ok {
			reply := h.responder.Respond(ctx, userID, query)
			h.deliver(ctx, chatID, userID, reply)
		}
	}
}

func (h *Handler) handleVoice(ctx context.Context, msg Message) {
	// Transcription needs an external speech backend; until one is wired the
	// honest move is a hint rather than silence.
	h.send(ctx, msg.Chat.ID, "Пока я понимаю только текст. Напиши свой вопрос сообщением 🙂")
}

// deliver sends a generated reply as a voice note when the user's stored
// preferences allow it, falling back to plain text when synthesis is
// disabled or fails.
func (h *Handler) deliver(ctx context.Context, chatID int64, userID, reply string) {
	audio, err := h.speak(ctx, userID, reply)
	if err != nil {
		if !errors.Is(err, speech.ErrDisabled) {
			slog.Warn("voice synthesis failed, replying with text", "error", err)
		}
		h.send(ctx, chatID, reply)
		return
	}
	if err := h.sender.SendVoice(ctx, chatID, audio); err != nil {
		slog.Warn("sending voice failed, replying with text", "chat", chatID, "error", err)
		h.send(ctx, chatID, reply)
	}
}

// speak turns a reply into audio per the user's language, voice and style
// preferences. Replies in an unsupported language preference are translated
// to Russian before synthesis.
func (h *Handler) speak(ctx context.Context, userID, reply string) ([]byte, error) {
	// Skip translation and SSML work entirely when no backend is configured.
	if _, off := h.tts.(speech.Disabled); off {
		return nil, speech.ErrDisabled
	}

	p := h.prefs.Get(userID)
	plan := speech.Normalize(p.Lang, p.Voice)
	prosody := speech.StyleProsody(p.Style)

	text := reply
	if plan.Strategy == speech.StrategyTranslate {
		translated, err := h.translator.Translate(ctx, h.model, text, plan.TargetLang)
		if err != nil {
			return nil, fmt.Errorf("translating for synthesis: %w", err)
		}
		text = translated
	}

	return h.tts.Synthesize(ctx, speech.ToSSML(text, prosody), plan, prosody)
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.sender.SendMessage(ctx, chatID, text); err != nil {
		slog.Warn("sending message failed", "chat", chatID, "error", err)
	}
}

func (h *Handler) sendKeyboard(ctx context.Context, chatID int64, text string, kb InlineKeyboardMarkup) {
	if err := h.sender.SendMessageWithKeyboard(ctx, chatID, text, kb); err != nil {
		slog.Warn("sending keyboard failed", "chat", chatID, "error", err)
	}
}

func (h *Handler) edit(ctx context.Context, chatID, messageID int64, text string) {
	if err := h.sender.EditMessageText(ctx, chatID, messageID, text); err != nil {
		slog.Warn("editing message failed", "chat", chatID, "error", err)
	}
}

func userIDOf(msg Message) string {
	if msg.From != nil {
		return strconv.FormatInt(msg.From.ID, 10)
	}
	return strconv.FormatInt(msg.Chat.ID, 10)
}

func validStyle(s string) bool {
	for _, v := range styles {
		if v == s {
			return true
		}
	}
	return false
}

func startKeyboard() InlineKeyboardMarkup {
	return InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{
			{Text: "💼 Опыт работы", CallbackData: "experience"},
			{Text: "🛠 Навыки", CallbackData: "skills"},
		},
		{
			{Text: "🚀 Крутые проекты", CallbackData: "projects"},
			{Text: "🎓 Образование", CallbackData: "education"},
		},
		{
			{Text: "📱 Контакты", CallbackData: "contacts"},
			{Text: "🤖 Voice AI", CallbackData: "voice_ai"},
		},
	}}
}

func columnKeyboard(prefix string, values []string) InlineKeyboardMarkup {
	rows := make([][]InlineKeyboardButton, len(values))
	for i, v := range values {
		rows[i] = []InlineKeyboardButton{{Text: v, CallbackData: prefix + v}}
	}
	return InlineKeyboardMarkup{InlineKeyboard: rows}
}
