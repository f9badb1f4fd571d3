package model

import "time"

// Review mirrors the `reviews` table. The (tour_id, user_id) pair is unique
// so a user can review a tour at most once. Every review write triggers a
// recomputation of the parent tour's rating aggregate.
type Review struct {
	ID        uint64    `db:"id" json:"id"`
	Body      string    `db:"body" json:"body"`
	Rating    int       `db:"rating" json:"rating"`
	TourID    uint64    `db:"tour_id" json:"tour_id"`
	UserID    uint64    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
