package store

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/apexdefense/agd/models"
)

// SortKey orders Countries.Filter results.
type SortKey string

const (
	SortByName       SortKey = "name"
	SortByBudget     SortKey = "budget"
	SortByPopulation SortKey = "population"
)

// ParseSortKey validates s. An empty string selects SortByBudget.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(s)); k {
	case "":
		return SortByBudget, nil
	case SortByName, SortByBudget, SortByPopulation:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q (want name, budget or population)", s)
}

// Countries holds the country list, the selected country and the force
// summary loaded for it.
type Countries struct {
	*Collection[models.Country]

	mu         sync.Mutex
	summary    *models.ForceSummary
	summaryFor string
}

// NewCountries returns an empty country store.
func NewCountries() *Countries {
	return &Countries{Collection: NewCollection(func(c models.Country) string { return c.ID })}
}

// Reset empties the store and forgets the loaded force summary.
func (c *Countries) Reset() {
	c.mu.Lock()
	c.summary = nil
	c.summaryFor = ""
	c.mu.Unlock()
	c.Collection.Reset()
}

// SetSummary records the force summary for countryID.
func (c *Countries) SetSummary(countryID string, s *models.ForceSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaryFor = countryID
	if s == nil {
		c.summary = nil
		return
	}
	cp := *s
	c.summary = &cp
}

// Summary returns the force summary of the selected country, or nil when it
// has not been loaded.
func (c *Countries) Summary() *models.ForceSummary {
	cur := c.Current()
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur == nil || c.summary == nil || c.summaryFor != cur.ID {
		return nil
	}
	cp := *c.summary
	return &cp
}

// Filter returns countries whose name or ISO code contains search
// (case-insensitive) within region, ordered by sortBy. An empty region or
// "all" matches every region. Budget and population sort descending with
// missing values last; name sorts by English collation.
func (c *Countries) Filter(search, region string, sortBy SortKey) []models.Country {
	needle := strings.ToLower(search)
	out := []models.Country{}
	for _, co := range c.Items() {
		if needle != "" &&
			!strings.Contains(strings.ToLower(co.Name), needle) &&
			!strings.Contains(strings.ToLower(co.ISOCode), needle) {
			continue
		}
		if region != "" && region != "all" && co.Region != region {
			continue
		}
		out = append(out, co)
	}

	switch sortBy {
	case SortByName:
		col := collate.New(language.English, collate.IgnoreCase)
		slices.SortStableFunc(out, func(a, b models.Country) int {
			return col.CompareString(a.Name, b.Name)
		})
	case SortByPopulation:
		slices.SortStableFunc(out, func(a, b models.Country) int {
			return descending(deref(a.Population), deref(b.Population))
		})
	case SortByBudget:
		slices.SortStableFunc(out, func(a, b models.Country) int {
			return descending(deref(a.DefenseBudgetUSD), deref(b.DefenseBudgetUSD))
		})
	}
	return out
}

// Regions lists the distinct non-empty regions in first-seen order.
func (c *Countries) Regions() []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, co := range c.Items() {
		if co.Region == "" || seen[co.Region] {
			continue
		}
		seen[co.Region] = true
		out = append(out, co.Region)
	}
	return out
}

func deref[N int64 | float64](p *N) N {
	if p == nil {
		return 0
	}
	return *p
}

func descending[N int64 | float64](a, b N) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
