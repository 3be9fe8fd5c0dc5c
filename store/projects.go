package store

import (
	"strings"

	"github.com/apexdefense/agd/models"
)

// Projects holds the caller's projects and the open project.
type Projects struct {
	*Collection[models.Project]
}

// NewProjects returns an empty project store.
func NewProjects() *Projects {
	return &Projects{NewCollection(func(p models.Project) string { return p.ID })}
}

// Filter returns projects whose name contains search (case-insensitive) and
// whose status equals status. An empty status or "all" matches every status.
func (p *Projects) Filter(search string, status models.ProjectStatus) []models.Project {
	needle := strings.ToLower(search)
	out := []models.Project{}
	for _, pr := range p.Items() {
		if needle != "" && !strings.Contains(strings.ToLower(pr.Name), needle) {
			continue
		}
		if status != "" && status != "all" && pr.Status != status {
			continue
		}
		out = append(out, pr)
	}
	return out
}

// ActiveScenarios counts active scenarios across all held projects.
func (p *Projects) ActiveScenarios() int {
	n := 0
	for _, pr := range p.Items() {
		n += pr.ActiveScenarios()
	}
	return n
}

// Scenarios holds the scenarios of one project and the open scenario.
type Scenarios struct {
	*Collection[models.Scenario]
}

// NewScenarios returns an empty scenario store.
func NewScenarios() *Scenarios {
	return &Scenarios{NewCollection(func(s models.Scenario) string { return s.ID })}
}
