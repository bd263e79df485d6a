// Package agent turns an assembled memory context and a user question into a
// generated answer, and records the finished exchange back into memory.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/fayzullaev/resumebot/internal/profile"
)

// Generator produces model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Memory is the slice of the memory subsystem the agent needs.
type Memory interface {
	Context(ctx context.Context, query, userID string) string
	Remember(ctx context.Context, userID, query, response string)
}

// Agent answers questions about one résumé.
type Agent struct {
	gen     Generator
	model   string
	memory  Memory
	profile profile.Record
	rng     *rand.Rand
	now     func() time.Time
}

// New creates an agent over a generation backend and the memory subsystem.
func New(gen Generator, model string, memory Memory, p profile.Record) *Agent {
	return &Agent{
		gen:     gen,
		model:   model,
		memory:  memory,
		profile: p,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
}

// Respond generates an answer for the user's message. It never fails: a
// failed or empty generation is replaced by a fixed apologetic fallback, and
// the exchange is recorded into memory either way so the dialogue history
// stays consistent with what the user actually saw.
func (a *Agent) Respond(ctx context.Context, userID, message string) string {
	memCtx := a.memory.Context(ctx, message, userID)
	prompt := a.buildPrompt(memCtx, message)

	text, err := a.gen.Generate(ctx, a.model, prompt)
	if err != nil {
		slog.Error("generation failed", "error", err)
		text = "Упс, технические неполадки 🤔 Попробуй спросить еще раз?"
	} else if strings.TrimSpace(text) == "" {
		text = fmt.Sprintf("Хм, что-то пошло не так. Давай я лучше расскажу про опыт %s в AI?", a.firstName())
	} else {
		text = strings.TrimSpace(text)
	}

	a.memory.Remember(ctx, userID, message, text)
	return text
}

// buildPrompt wraps the question in the persona envelope: style rules, the
// current date, the assembled memory context and the question itself.
func (a *Agent) buildPrompt(memCtx, message string) string {
	name := a.profile.PersonalInfo.Name
	today := a.now().Format("02.01.2006")

	return fmt.Sprintf(`Ты личный AI-ассистент %s — опытного AI/ML инженера.
Твоя задача — помогать людям узнать о его навыках, опыте и проектах.

СТИЛЬ ОБЩЕНИЯ:
- Будь дружелюбным и естественным, как будто рассказываешь о талантливом коллеге
- Используй разговорные обороты: 'кстати', 'между прочим', 'вообще', 'на самом деле'
- Показывай энтузиазм когда говоришь о крутых проектах или достижениях
- НЕ начинай каждый ответ с 'Конечно!', 'Отлично!' или других шаблонных фраз
- Варьируй структуру ответов, не всегда делай списки, иногда просто рассказывай
- Можешь использовать эмодзи, но в меру (1-2 на сообщение максимум)

ВАЖНЫЕ ПРАВИЛА:
- Опирайся на факты из контекста CV и базы знаний, но подавай их живо и интересно
- Если чего-то не знаешь — честно скажи и предложи рассказать что-то другое
- Упоминай конкретные цифры и метрики из CV когда это уместно
- НЕ придумывай факты, которых нет в контексте

Сегодня: %s

КОНТЕКСТ:
%s

ВОПРОС ПОЛЬЗОВАТЕЛЯ:
%s

ТВОЙ ОТВЕТ (естественный и информативный):`, name, today, memCtx, message)
}

func (a *Agent) firstName() string {
	name := a.profile.PersonalInfo.Name
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}

func (a *Agent) pick(variants []string) string {
	return variants[a.rng.Intn(len(variants))]
}
