package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fayzullaev/resumebot/internal/profile"
	"github.com/fayzullaev/resumebot/internal/retrieval"
)

// smokeQueries are run after indexing as an advisory health check.
var smokeQueries = []string{"опыт работы", "контакты", "навыки", "voice AI", "LLM"}

// BuildFragments expands the résumé record into short, deliberately
// redundant natural-language fragments. Several facts appear in more than
// one phrasing: different query wordings then land on at least one of them.
//
// The function is pure and deterministic; ids depend only on the record
// structure, so re-indexing the same record always produces the same set.
func BuildFragments(p profile.Record) []retrieval.Fragment {
	var frags []retrieval.Fragment
	add := func(id, text string) {
		frags = append(frags, retrieval.Fragment{ID: id, Text: text})
	}

	pi := p.PersonalInfo
	add("cv_personal_1", fmt.Sprintf("%s — %s. Опыт: %s лет в AI/ML. Локация: %s. Специализация: %s.",
		pi.Name, pi.Title, pi.ExperienceYears, pi.Location, pi.Expertise))
	add("cv_personal_2", fmt.Sprintf("Имя: %s. Должность: %s. Экспертиза в %s. Базируется в %s.",
		pi.Name, pi.Title, pi.Expertise, pi.Location))

	c := p.Contacts
	add("cv_contacts_1", fmt.Sprintf("Контакты: Email %s, Telegram %s. %s", c.Email, c.Telegram, c.Availability))
	add("cv_contacts_2", fmt.Sprintf("Для связи: почта %s или телеграм %s", c.Email, c.Telegram))

	for i, w := range p.Experience {
		add(fmt.Sprintf("cv_work_%d_full", i),
			fmt.Sprintf("Работал в %s на позиции %s в период %s. Ключевые проекты: %s.",
				w.Company, w.Position, w.Period, strings.Join(w.Highlights, ", ")))
		add(fmt.Sprintf("cv_work_%d_brief", i),
			fmt.Sprintf("%s: %s (%s)", w.Company, w.Position, w.Period))
		for j, hl := range w.Highlights {
			add(fmt.Sprintf("cv_work_%d_hl_%d", i, j),
				fmt.Sprintf("В %s работал над: %s", w.Company, hl))
		}
	}

	sk := p.Skills
	add("cv_skills_models", fmt.Sprintf("Работает с моделями: %s.", strings.Join(sk.Models, ", ")))
	add("cv_skills_frameworks", fmt.Sprintf("Владеет фреймворками: %s.", strings.Join(sk.Frameworks, ", ")))
	add("cv_skills_infra", fmt.Sprintf("Инфраструктурный стек: %s.", strings.Join(sk.Infra, ", ")))
	add("cv_skills_all", fmt.Sprintf("Полный список технологий: %s", strings.Join(sk.All(), ", ")))

	ed := p.Education
	add("cv_education", fmt.Sprintf("Образование: %s, специальность %s, %s", ed.University, ed.Degree, ed.Period))

	for i, a := range p.Achievements {
		add(fmt.Sprintf("cv_achievement_%d", i), a)
	}

	return frags
}

// Indexer populates the two vector collections: the CV corpus from the
// structured record and the knowledge base from loose document files.
type Indexer struct {
	kb Source
	cv Source
}

// NewIndexer creates an Indexer over the kb and cv collections.
func NewIndexer(kb, cv Source) *Indexer {
	return &Indexer{kb: kb, cv: cv}
}

// IndexCV expands and stores the résumé fragments. If the collection
// already holds data the call is a no-op: ids and embeddings must not be
// duplicated across restarts over persisted storage.
func (ix *Indexer) IndexCV(ctx context.Context, p profile.Record) error {
	count, err := ix.cv.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("CV already indexed", "fragments", count)
		return nil
	}

	frags := BuildFragments(p)
	if err := ix.cv.Add(ctx, frags); err != nil {
		return err
	}
	slog.Info("CV indexed", "fragments", len(frags))

	ix.smokeCheck(ctx)
	return nil
}

// smokeCheck runs a few fixed queries against the fresh index and logs
// whether each finds anything. Advisory only; failures do not block startup.
func (ix *Indexer) smokeCheck(ctx context.Context) {
	for _, q := range smokeQueries {
		results, err := ix.cv.Query(ctx, q, 2)
		if err != nil {
			slog.Warn("CV smoke query failed", "query", q, "error", err)
			continue
		}
		if len(results) == 0 {
			slog.Warn("CV smoke query found nothing", "query", q)
			continue
		}
		slog.Debug("CV smoke query ok", "query", q, "results", len(results))
	}
}
