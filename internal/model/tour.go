package model

import "time"

// Difficulty values accepted in tours.difficulty.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// Tour mirrors the `tours` table. Secret tours never appear in public
// listings or aggregates. The start_* columns hold the departure point used
// by the geo endpoints. Guides and StartDates are loaded from their join
// tables only when a single tour is fetched.
type Tour struct {
	ID               uint64    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Slug             string    `db:"slug" json:"slug"`
	Duration         int       `db:"duration" json:"duration"`
	MaxGroupSize     int       `db:"max_group_size" json:"max_group_size"`
	Difficulty       string    `db:"difficulty" json:"difficulty"`
	RatingsAverage   float64   `db:"ratings_average" json:"ratings_average"`
	RatingsQuantity  int       `db:"ratings_quantity" json:"ratings_quantity"`
	Price            float64   `db:"price" json:"price"`
	PriceDiscount    *float64  `db:"price_discount" json:"price_discount,omitempty"`
	Summary          string    `db:"summary" json:"summary"`
	Description      string    `db:"description" json:"description,omitempty"`
	ImageCover       string    `db:"image_cover" json:"image_cover,omitempty"`
	Secret           bool      `db:"secret" json:"-"`
	StartLat         *float64  `db:"start_lat" json:"start_lat,omitempty"`
	StartLng         *float64  `db:"start_lng" json:"start_lng,omitempty"`
	StartAddress     string    `db:"start_address" json:"start_address,omitempty"`
	StartDescription string    `db:"start_description" json:"start_description,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`

	Guides     []User      `db:"-" json:"guides,omitempty"`
	StartDates []time.Time `db:"-" json:"start_dates,omitempty"`
}

// ValidDifficulty reports whether s is an accepted difficulty value.
func ValidDifficulty(s string) bool {
	switch s {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	}
	return false
}
