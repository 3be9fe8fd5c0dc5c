package models

import "time"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
	ProjectDraft    ProjectStatus = "draft"
)

// Project groups scenarios for one analysis effort.
type Project struct {
	ID             string         `json:"id"`
	OwnerID        string         `json:"owner_id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Status         ProjectStatus  `json:"status"`
	Classification string         `json:"classification"`
	RegionFocus    string         `json:"region_focus,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	Settings       map[string]any `json:"settings,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Scenarios      []Scenario     `json:"scenarios,omitempty"`
}

// ActiveScenarios counts embedded scenarios in the active state.
func (p Project) ActiveScenarios() int {
	n := 0
	for _, s := range p.Scenarios {
		if s.Status == ScenarioActive {
			n++
		}
	}
	return n
}

// ProjectCreate is the body for POST /projects/. For PATCH the zero-value
// fields are omitted, which makes the same type usable as a partial update.
type ProjectCreate struct {
	Name           string         `json:"name,omitempty"`
	Description    string         `json:"description,omitempty"`
	Classification string         `json:"classification,omitempty"`
	RegionFocus    string         `json:"region_focus,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	Settings       map[string]any `json:"settings,omitempty"`
}

// ProjectQuery filters GET /projects/.
type ProjectQuery struct {
	Skip   int
	Limit  int
	Status string
}
