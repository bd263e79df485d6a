package agent

import (
	"fmt"
	"strings"
)

// Canned answers cover the fixed bot commands without burning a generation
// call. Variants are randomized per call; all facts come from the profile
// record.

// Introduction returns one of several greeting variants.
func (a *Agent) Introduction() string {
	pi := a.profile.PersonalInfo
	first := a.firstName()

	return a.pick([]string{
		fmt.Sprintf("Привет! Я AI-ассистент %s 👋\n\n"+
			"%s — это %s с %s+ годами опыта, специализация: %s.\n\n"+
			"Что тебя интересует? Могу рассказать про его проекты, технический стек или поделиться контактами.",
			pi.Name, first, pi.Title, pi.ExperienceYears, pi.Expertise),
		fmt.Sprintf("Здравствуй! Помогу узнать больше о %s 🚀\n\n"+
			"Его конёк — %s. Спрашивай про опыт работы, крутые проекты или навыки!",
			pi.Name, pi.Expertise),
		fmt.Sprintf("Приветствую! Я виртуальный помощник %s, AI/ML инженера (%s) 🤖\n\n"+
			"Расскажу про его опыт, проекты или техстек. С чего начнем?",
			first, pi.Location),
	})
}

// ContactCard returns a contact info variant.
func (a *Agent) ContactCard() string {
	c := a.profile.Contacts
	return a.pick([]string{
		fmt.Sprintf("📧 Email: %s\n💬 Telegram: %s\n\n%s", c.Email, c.Telegram, c.Availability),
		fmt.Sprintf("Вот как можно связаться с %s:\n\n📨 %s\n✈️ %s\n\nКстати, он сейчас в активном поиске интересных проектов в области AI!",
			a.firstName(), c.Email, c.Telegram),
	})
}

// SkillsOverview renders the skills section with short commentary.
func (a *Agent) SkillsOverview() string {
	s := a.profile.Skills
	return fmt.Sprintf("Технический арсенал %s:\n\n"+
		"🤖 Модели: %s\n\n"+
		"🛠 Фреймворки: %s\n\n"+
		"☁️ Инфраструктура: %s\n\n"+
		"💡 Работает как с облачными API, так и с локальным деплоем моделей!",
		a.firstName(),
		strings.Join(s.Models, ", "),
		strings.Join(s.Frameworks, ", "),
		strings.Join(s.Infra, ", "))
}

// ExperienceStory renders the work history in narrative order, newest first.
func (a *Agent) ExperienceStory() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "История карьеры %s:\n\n", a.firstName())
	for _, w := range a.profile.Experience {
		fmt.Fprintf(&sb, "🚀 %s — %s (%s)\n%s\n\n",
			w.Company, w.Position, w.Period, strings.Join(w.Highlights, ", "))
	}
	sb.WriteString("За эти годы он вырос от аналитика до того, кто строит AI-системы для бизнеса!")
	return sb.String()
}
