package profile

import "testing"

func TestLoad(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if r.PersonalInfo.Name == "" {
		t.Error("empty name")
	}
	if len(r.Experience) != 3 {
		t.Errorf("got %d work entries, want 3", len(r.Experience))
	}
	for i, job := range r.Experience {
		if job.Company == "" || job.Position == "" || job.Period == "" {
			t.Errorf("entry %d incomplete: %+v", i, job)
		}
		if len(job.Highlights) == 0 {
			t.Errorf("entry %d has no highlights", i)
		}
	}
	if len(r.Achievements) == 0 {
		t.Error("no achievements")
	}
}

func TestSkillsAll(t *testing.T) {
	s := Skills{
		Models:     []string{"a", "b"},
		Frameworks: []string{"c"},
		Infra:      []string{"d", "e"},
	}

	all := s.All()
	want := []string{"a", "b", "c", "d", "e"}
	if len(all) != len(want) {
		t.Fatalf("got %d skills, want %d", len(all), len(want))
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("skill %d = %q, want %q", i, all[i], want[i])
		}
	}
}
