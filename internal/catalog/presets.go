package catalog

import (
	"github.com/nazotronic/Tourify/internal/models"
)

// Preset is a curated filter shortcut shown above the catalog.
type Preset struct {
	ID           string              `json:"id"`
	Label        string              `json:"label"`
	Types        []models.TourType   `json:"type"`
	Difficulties []models.Difficulty `json:"difficulty"`
}

// Presets are the built-in filter shortcuts.
var Presets = []Preset{
	{
		ID:           "sea-relax",
		Label:        "Beach relax",
		Types:        []models.TourType{models.TourTypeSea},
		Difficulties: []models.Difficulty{models.DifficultyRelax},
	},
	{
		ID:           "mountain-drive",
		Label:        "Mountain drive",
		Types:        []models.TourType{models.TourTypeMountain},
		Difficulties: []models.Difficulty{models.DifficultyActive},
	},
	{
		ID:           "city-breaks",
		Label:        "City breaks",
		Types:        []models.TourType{models.TourTypeCity},
		Difficulties: []models.Difficulty{models.DifficultyMedium},
	},
	{
		ID:           "adventures",
		Label:        "Adventures",
		Types:        []models.TourType{models.TourTypeAdventure},
		Difficulties: []models.Difficulty{models.DifficultyActive},
	},
}

// PresetByID looks up a built-in preset.
func PresetByID(id string) (Preset, bool) {
	for _, p := range Presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// ApplyPreset returns c with the type, difficulty and tag selection replaced
// by the preset's values. Presets carry no tags, so the tag selection is
// cleared. Query and price bounds are kept as they are.
func ApplyPreset(c Criteria, p Preset) Criteria {
	c.Types = append([]models.TourType(nil), p.Types...)
	c.Difficulties = append([]models.Difficulty(nil), p.Difficulties...)
	c.Tags = nil
	return c
}
