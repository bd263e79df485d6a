package retrieval

import (
	"fmt"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeTestVector(dim int, seed float32) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = seed + float32(i)*0.001
	}
	return v
}

func TestInsertAndSearch(t *testing.T) {
	s := openTestStore(t)

	vec := makeTestVector(384, 0.1)
	err := s.Insert(CV, []Record{{
		ID:        "cv_personal_1",
		Text:      "Инженер с опытом в LLM",
		Embedding: vec,
	}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := s.Search(CV, vec, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score < 0.99 {
		t.Errorf("score = %f, want > 0.99", results[0].Score)
	}
	if results[0].Text != "Инженер с опытом в LLM" {
		t.Errorf("text = %q", results[0].Text)
	}
}

func TestInsert_UpsertReplacesByID(t *testing.T) {
	s := openTestStore(t)

	vec := makeTestVector(384, 0.1)
	for i := 0; i < 3; i++ {
		err := s.Insert(CV, []Record{{ID: "dup", Text: fmt.Sprintf("v%d", i), Embedding: vec}})
		if err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}

	count, err := s.Count(CV)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 after repeated upserts", count)
	}

	results, err := s.Search(CV, vec, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results[0].Text != "v2" {
		t.Errorf("text = %q, want last write v2", results[0].Text)
	}
}

func TestSearch_TopKOrdered(t *testing.T) {
	s := openTestStore(t)

	var records []Record
	for i := 0; i < 10; i++ {
		records = append(records, Record{
			ID:        fmt.Sprintf("r%d", i),
			Text:      fmt.Sprintf("text %d", i),
			Embedding: makeTestVector(384, float32(i)*0.05),
		})
	}
	if err := s.Insert(KB, records); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := s.Search(KB, makeTestVector(384, 0.0), 4)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted by score: %f before %f", results[i-1].Score, results[i].Score)
		}
	}
}

func TestSearch_EmptyCollection(t *testing.T) {
	s := openTestStore(t)

	results, err := s.Search(KB, makeTestVector(384, 0.1), 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestCollectionsIndependent(t *testing.T) {
	s := openTestStore(t)

	vec := makeTestVector(384, 0.1)
	if err := s.Insert(CV, []Record{{ID: "a", Text: "cv text", Embedding: vec}}); err != nil {
		t.Fatalf("Insert cv: %v", err)
	}
	if err := s.Insert(KB, []Record{{ID: "a", Text: "kb text", Embedding: vec}}); err != nil {
		t.Fatalf("Insert kb: %v", err)
	}

	cvCount, _ := s.Count(CV)
	kbCount, _ := s.Count(KB)
	if cvCount != 1 || kbCount != 1 {
		t.Errorf("counts = cv:%d kb:%d, want 1/1", cvCount, kbCount)
	}

	results, err := s.Search(KB, vec, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Text != "kb text" {
		t.Errorf("kb search leaked across collections: %+v", results)
	}
}

func TestInsert_EmptyNoOp(t *testing.T) {
	s := openTestStore(t)
	if err := s.Insert(CV, nil); err != nil {
		t.Fatalf("Insert(nil): %v", err)
	}
	count, _ := s.Count(CV)
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
