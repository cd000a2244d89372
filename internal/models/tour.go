package models

import (
	"time"
)

// Difficulty grades the physical demand of a tour.
type Difficulty string

const (
	DifficultyRelax  Difficulty = "relax"
	DifficultyMedium Difficulty = "medium"
	DifficultyActive Difficulty = "active"
)

// ValidDifficulty reports whether d is one of the known difficulty grades.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyRelax, DifficultyMedium, DifficultyActive:
		return true
	}
	return false
}

// TourType categorizes a tour by destination style.
type TourType string

const (
	TourTypeSea       TourType = "sea"
	TourTypeMountain  TourType = "mountain"
	TourTypeCity      TourType = "city"
	TourTypeAdventure TourType = "adventure"
)

// ValidTourType reports whether t is one of the known tour types.
func ValidTourType(t TourType) bool {
	switch t {
	case TourTypeSea, TourTypeMountain, TourTypeCity, TourTypeAdventure:
		return true
	}
	return false
}

// Tour represents a bookable tour offering.
type Tour struct {
	Base         `bson:",inline"`
	Title        string     `bson:"title" json:"title"`
	Country      string     `bson:"country" json:"country"`
	DurationDays int        `bson:"duration_days" json:"durationDays"`
	PriceFrom    float64    `bson:"price_from" json:"priceFrom"`
	Rating       float64    `bson:"rating" json:"rating"`
	ReviewsCount int        `bson:"reviews_count" json:"reviewsCount"`
	Difficulty   Difficulty `bson:"difficulty" json:"difficulty"`
	Type         TourType   `bson:"type" json:"type"`
	Tags         []string   `bson:"tags" json:"tags"`
	Description  string     `bson:"description" json:"description"`
	Highlights   []string   `bson:"highlights" json:"highlights"`
	NextStart    *time.Time `bson:"next_start,omitempty" json:"nextStart,omitempty"`
	Image        string     `bson:"image" json:"image"` // S3 key or external URL
	SeatsLeft    *int       `bson:"seats_left,omitempty" json:"seatsLeft,omitempty"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updatedAt"`
	CreatedAt    time.Time  `bson:"created_at" json:"createdAt"`
}
