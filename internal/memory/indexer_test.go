package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/fayzullaev/resumebot/internal/profile"
	"github.com/fayzullaev/resumebot/internal/retrieval"
	"github.com/fayzullaev/resumebot/internal/retrieval/mock"
)

func testRecord() profile.Record {
	var p profile.Record
	p.PersonalInfo.Name = "Иван Тестов"
	p.PersonalInfo.Title = "AI Engineer"
	p.PersonalInfo.ExperienceYears = "5"
	p.PersonalInfo.Location = "Ташкент"
	p.PersonalInfo.Expertise = "voice AI"
	p.Contacts.Email = "ivan@example.com"
	p.Contacts.Telegram = "@ivan"
	p.Contacts.Availability = "Открыт к предложениям."
	p.Experience = []profile.Job{
		{
			Company:    "Acme",
			Position:   "ML Engineer",
			Period:     "2021-2024",
			Highlights: []string{"голосовой бот", "RAG пайплайн"},
		},
	}
	p.Skills.Models = []string{"GPT-4o"}
	p.Skills.Frameworks = []string{"LangChain"}
	p.Skills.Infra = []string{"Docker"}
	p.Education.University = "ТУИТ"
	p.Education.Degree = "Информатика"
	p.Education.Period = "2014-2018"
	p.Achievements = []string{"выступал на конференции", "open source контрибьютор"}
	return p
}

func TestBuildFragmentsIDs(t *testing.T) {
	frags := BuildFragments(testRecord())

	ids := make(map[string]string, len(frags))
	for _, f := range frags {
		if _, dup := ids[f.ID]; dup {
			t.Fatalf("duplicate fragment id %q", f.ID)
		}
		ids[f.ID] = f.Text
	}

	want := []string{
		"cv_personal_1", "cv_personal_2",
		"cv_contacts_1", "cv_contacts_2",
		"cv_work_0_full", "cv_work_0_brief", "cv_work_0_hl_0", "cv_work_0_hl_1",
		"cv_skills_models", "cv_skills_frameworks", "cv_skills_infra", "cv_skills_all",
		"cv_education",
		"cv_achievement_0", "cv_achievement_1",
	}
	for _, id := range want {
		if _, ok := ids[id]; !ok {
			t.Errorf("fragment %q missing", id)
		}
	}
	if len(frags) != len(want) {
		t.Errorf("got %d fragments, want %d", len(frags), len(want))
	}
}

func TestBuildFragmentsDeterministic(t *testing.T) {
	p := testRecord()
	a := BuildFragments(p)
	b := BuildFragments(p)

	if len(a) != len(b) {
		t.Fatalf("fragment count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("fragment %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestBuildFragmentsContactsText(t *testing.T) {
	frags := BuildFragments(testRecord())
	for _, f := range frags {
		if f.ID == "cv_contacts_1" {
			if !strings.Contains(f.Text, "ivan@example.com") || !strings.Contains(f.Text, "@ivan") {
				t.Errorf("contacts fragment incomplete: %q", f.Text)
			}
			return
		}
	}
	t.Fatal("cv_contacts_1 not found")
}

func newTestCollections(t *testing.T) (kb, cv *retrieval.Collection) {
	t.Helper()
	store, err := retrieval.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	emb := mock.New()
	return retrieval.NewCollection(store, emb, retrieval.KB),
		retrieval.NewCollection(store, emb, retrieval.CV)
}

func TestIndexCVIdempotent(t *testing.T) {
	kb, cv := newTestCollections(t)
	ix := NewIndexer(kb, cv)
	ctx := context.Background()

	if err := ix.IndexCV(ctx, testRecord()); err != nil {
		t.Fatalf("first index: %v", err)
	}
	first, err := cv.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first == 0 {
		t.Fatal("nothing indexed")
	}

	if err := ix.IndexCV(ctx, testRecord()); err != nil {
		t.Fatalf("second index: %v", err)
	}
	second, err := cv.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("reindex changed count: %d -> %d", first, second)
	}
}

func TestIndexCVThenQuery(t *testing.T) {
	kb, cv := newTestCollections(t)
	ix := NewIndexer(kb, cv)
	ctx := context.Background()

	if err := ix.IndexCV(ctx, testRecord()); err != nil {
		t.Fatal(err)
	}

	frags := BuildFragments(testRecord())
	var contacts string
	for _, f := range frags {
		if f.ID == "cv_contacts_1" {
			contacts = f.Text
		}
	}

	// The mock embedder is deterministic, so the identical text is the top hit.
	results, err := cv.Query(ctx, contacts, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Text != contacts {
		t.Errorf("expected verbatim contacts fragment as top hit, got %+v", results)
	}
}
