// Package catalog implements the in-memory tour filter engine. It is pure:
// filtering never touches storage and never mutates its inputs.
package catalog

import (
	"strings"

	"github.com/nazotronic/Tourify/internal/models"
)

// Criteria describes one filter state. Dimensions combine conjunctively,
// values within a dimension disjunctively. Zero values mean "inactive".
type Criteria struct {
	Query        string              `json:"query,omitempty"`
	Types        []models.TourType   `json:"type,omitempty"`
	Difficulties []models.Difficulty `json:"difficulty,omitempty"`
	Tags         []string            `json:"tags,omitempty"`
	MinPrice     *float64            `json:"minPrice,omitempty"`
	MaxPrice     *float64            `json:"maxPrice,omitempty"`
}

// IsZero reports whether no dimension is active.
func (c Criteria) IsZero() bool {
	return c.Query == "" && len(c.Types) == 0 && len(c.Difficulties) == 0 &&
		len(c.Tags) == 0 && c.MinPrice == nil && c.MaxPrice == nil
}

// Filter returns the tours matching the criteria, preserving input order.
// An inverted price range (min above max) matches nothing; it is a valid
// filter state, not an error.
func Filter(tours []models.Tour, c Criteria) []models.Tour {
	result := make([]models.Tour, 0, len(tours))
	query := strings.ToLower(strings.TrimSpace(c.Query))
	for _, t := range tours {
		if matches(t, c, query) {
			result = append(result, t)
		}
	}
	return result
}

func matches(t models.Tour, c Criteria, query string) bool {
	if query != "" {
		hay := strings.ToLower(t.Title + t.Country + strings.Join(t.Tags, " "))
		if !strings.Contains(hay, query) {
			return false
		}
	}
	if len(c.Types) > 0 && !containsType(c.Types, t.Type) {
		return false
	}
	if len(c.Difficulties) > 0 && !containsDifficulty(c.Difficulties, t.Difficulty) {
		return false
	}
	if len(c.Tags) > 0 && !hasAnyTag(t.Tags, c.Tags) {
		return false
	}
	if c.MinPrice != nil && t.PriceFrom < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && t.PriceFrom > *c.MaxPrice {
		return false
	}
	return true
}

func containsType(types []models.TourType, t models.TourType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

func containsDifficulty(difficulties []models.Difficulty, d models.Difficulty) bool {
	for _, v := range difficulties {
		if v == d {
			return true
		}
	}
	return false
}

func hasAnyTag(tourTags, wanted []string) bool {
	for _, w := range wanted {
		for _, tag := range tourTags {
			if strings.EqualFold(tag, w) {
				return true
			}
		}
	}
	return false
}

// FromPreferences seeds a criteria from saved traveller preferences. It is
// applied once per visit; explicit user edits afterwards win.
func FromPreferences(p *models.Preferences) Criteria {
	if p == nil {
		return Criteria{}
	}
	var c Criteria
	if len(p.Type) > 0 {
		c.Types = append([]models.TourType(nil), p.Type...)
	}
	if len(p.Difficulty) > 0 {
		c.Difficulties = append([]models.Difficulty(nil), p.Difficulty...)
	}
	if len(p.Tags) > 0 {
		c.Tags = append([]string(nil), p.Tags...)
	}
	if p.BudgetFrom != nil {
		v := *p.BudgetFrom
		c.MinPrice = &v
	}
	if p.BudgetTo != nil {
		v := *p.BudgetTo
		c.MaxPrice = &v
	}
	return c
}
