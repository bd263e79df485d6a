// Package profile holds the structured résumé record the assistant answers
// questions about. The record is loaded once at startup from an embedded
// document and never mutated.
package profile

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// Record is the source of truth for the résumé: identity, contacts, work
// history, skills, education and achievement statements.
type Record struct {
	PersonalInfo PersonalInfo `json:"personal_info"`
	Contacts     Contacts     `json:"contacts"`
	Experience   []Job        `json:"work_experience"`
	Skills       Skills       `json:"skills"`
	Education    Education    `json:"education"`
	Achievements []string     `json:"achievements"`
}

type PersonalInfo struct {
	Name            string `json:"name"`
	Title           string `json:"title"`
	ExperienceYears string `json:"experience_years"`
	Location        string `json:"location"`
	Expertise       string `json:"expertise"`
}

type Contacts struct {
	Email        string `json:"email"`
	Telegram     string `json:"telegram"`
	Availability string `json:"availability"`
}

// Job is one work-experience entry, in résumé order.
type Job struct {
	Company    string   `json:"company"`
	Period     string   `json:"period"`
	Position   string   `json:"position"`
	Highlights []string `json:"highlights"`
}

type Skills struct {
	Models     []string `json:"models"`
	Frameworks []string `json:"frameworks"`
	Infra      []string `json:"infra"`
}

// All returns every skill across categories, category order preserved.
func (s Skills) All() []string {
	all := make([]string, 0, len(s.Models)+len(s.Frameworks)+len(s.Infra))
	all = append(all, s.Models...)
	all = append(all, s.Frameworks...)
	all = append(all, s.Infra...)
	return all
}

type Education struct {
	University string `json:"university"`
	Degree     string `json:"degree"`
	Period     string `json:"period"`
}

//go:embed profile.json
var embedded []byte

// Load parses the embedded résumé record.
func Load() (Record, error) {
	var r Record
	if err := json.Unmarshal(embedded, &r); err != nil {
		return Record{}, fmt.Errorf("parsing embedded profile: %w", err)
	}
	if r.PersonalInfo.Name == "" {
		return Record{}, fmt.Errorf("embedded profile has no name")
	}
	return r, nil
}
