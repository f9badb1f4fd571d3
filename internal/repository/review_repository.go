package repository

import (
	"context"
	"database/sql"
	"math"

	"github.com/jmoiron/sqlx"
)

// Rating defaults applied to a tour with no reviews. They match the column
// defaults in the schema so a tour reads the same before its first review
// and after its last one is deleted.
const (
	defaultRatingsAverage  = 4.5
	defaultRatingsQuantity = 0
)

// ReviewRepo owns the rating aggregate. The generic store handles review
// CRUD; this repository only recomputes the parent tour's numbers.
type ReviewRepo struct{ DB *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

// Recalc recomputes a tour's ratings_average and ratings_quantity from a
// fresh aggregate over current reviews. Deriving from scratch instead of
// nudging counters keeps the numbers right under interleaved writes and
// makes the operation idempotent.
func (r *ReviewRepo) Recalc(ctx context.Context, tourID uint64) error {
	var n int
	var avg sql.NullFloat64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), AVG(rating) FROM reviews WHERE tour_id=?", tourID).Scan(&n, &avg)
	if err != nil {
		return err
	}
	quantity, average := statsOrDefault(n, avg)
	_, err = r.DB.ExecContext(ctx,
		"UPDATE tours SET ratings_quantity=?, ratings_average=? WHERE id=?",
		quantity, average, tourID)
	return err
}

// statsOrDefault shapes the aggregate result: no reviews fall back to the
// schema defaults, otherwise the average is rounded to one decimal.
func statsOrDefault(n int, avg sql.NullFloat64) (int, float64) {
	if n == 0 || !avg.Valid {
		return defaultRatingsQuantity, defaultRatingsAverage
	}
	return n, math.Round(avg.Float64*10) / 10
}
