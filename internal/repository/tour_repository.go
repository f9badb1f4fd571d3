package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hkravch/tour-booking-api/internal/model"
)

// Earth radii used by the geo queries, matching the unit the client asked
// for. Distances are computed with the spherical law of cosines, which is
// plenty for "tours near me" precision.
const (
	earthRadiusMi = 3963.2
	earthRadiusKm = 6378.1
)

// haversine computes the great-circle angle (radians) between the tour's
// start point and the placeholder-bound center. Multiplying by an earth
// radius turns it into a distance.
const haversine = "ACOS(LEAST(1.0, COS(RADIANS(?)) * COS(RADIANS(start_lat)) * COS(RADIANS(start_lng) - RADIANS(?)) + SIN(RADIANS(?)) * SIN(RADIANS(start_lat))))"

// TourRepo holds the tour reads that do not fit the generic store: the
// aggregate reports, the geo queries and the join-table loads for a single
// tour's guides and start dates.
type TourRepo struct{ DB *sqlx.DB }

func NewTourRepo(db *sqlx.DB) *TourRepo { return &TourRepo{DB: db} }

// TourStats is one row of the per-difficulty report.
type TourStats struct {
	Difficulty string  `db:"difficulty" json:"difficulty"`
	NumTours   int     `db:"num_tours" json:"num_tours"`
	NumRatings int     `db:"num_ratings" json:"num_ratings"`
	AvgRating  float64 `db:"avg_rating" json:"avg_rating"`
	AvgPrice   float64 `db:"avg_price" json:"avg_price"`
	MinPrice   float64 `db:"min_price" json:"min_price"`
	MaxPrice   float64 `db:"max_price" json:"max_price"`
}

// Stats groups well-rated tours (average >= 4.5) by difficulty and reports
// counts and price spreads per group, cheapest group first.
func (r *TourRepo) Stats(ctx context.Context) ([]TourStats, error) {
	out := []TourStats{}
	err := r.DB.SelectContext(ctx, &out, `
		SELECT UPPER(difficulty)        AS difficulty,
		       COUNT(*)                 AS num_tours,
		       SUM(ratings_quantity)    AS num_ratings,
		       AVG(ratings_average)     AS avg_rating,
		       AVG(price)               AS avg_price,
		       MIN(price)               AS min_price,
		       MAX(price)               AS max_price
		FROM tours
		WHERE ratings_average >= 4.5 AND secret = 0
		GROUP BY difficulty
		ORDER BY avg_price ASC`)
	return out, err
}

// MonthlyPlanRow reports how many tours start in one month of a year and
// which ones they are.
type MonthlyPlanRow struct {
	Month         int      `json:"month"`
	NumTourStarts int      `json:"num_tour_starts"`
	Tours         []string `json:"tours"`
}

// MonthlyPlan unrolls the start dates of the given year into a busiest-first
// histogram of tour starts per month.
func (r *TourRepo) MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT MONTH(d.starts_at)              AS month,
		       COUNT(*)                        AS num_tour_starts,
		       GROUP_CONCAT(t.name SEPARATOR ',') AS tours
		FROM tour_start_dates d
		JOIN tours t ON t.id = d.tour_id
		WHERE YEAR(d.starts_at) = ? AND t.secret = 0
		GROUP BY MONTH(d.starts_at)
		ORDER BY num_tour_starts DESC, month ASC
		LIMIT 12`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MonthlyPlanRow{}
	for rows.Next() {
		var row MonthlyPlanRow
		var names string
		if err := rows.Scan(&row.Month, &row.NumTourStarts, &names); err != nil {
			return nil, err
		}
		if names != "" {
			row.Tours = strings.Split(names, ",")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Within returns the non-secret tours whose start point lies inside the
// given radius around (lat, lng). Unit is "mi" or "km".
func (r *TourRepo) Within(ctx context.Context, distance, lat, lng float64, unit string) ([]model.Tour, error) {
	radius := earthRadiusKm
	if unit == "mi" {
		radius = earthRadiusMi
	}
	out := []model.Tour{}
	err := r.DB.SelectContext(ctx, &out, `
		SELECT id,name,slug,duration,max_group_size,difficulty,ratings_average,ratings_quantity,
		       price,price_discount,summary,description,image_cover,start_lat,start_lng,
		       start_address,start_description,created_at,updated_at
		FROM tours
		WHERE secret = 0
		  AND start_lat IS NOT NULL
		  AND `+haversine+` <= ?`,
		lat, lng, lat, distance/radius)
	return out, err
}

// TourDistance pairs a tour with its distance from a center point.
type TourDistance struct {
	ID       uint64  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Distance float64 `db:"distance" json:"distance"`
}

// Distances ranks every non-secret tour by its distance from (lat, lng),
// closest first, in the requested unit.
func (r *TourRepo) Distances(ctx context.Context, lat, lng float64, unit string) ([]TourDistance, error) {
	radius := earthRadiusKm
	if unit == "mi" {
		radius = earthRadiusMi
	}
	out := []TourDistance{}
	err := r.DB.SelectContext(ctx, &out, `
		SELECT id, name, `+haversine+` * ? AS distance
		FROM tours
		WHERE secret = 0 AND start_lat IS NOT NULL
		ORDER BY distance ASC`,
		lat, lng, lat, radius)
	return out, err
}

// GuidesFor loads the guide users assigned to a tour.
func (r *TourRepo) GuidesFor(ctx context.Context, tourID uint64) ([]model.User, error) {
	out := []model.User{}
	err := r.DB.SelectContext(ctx, &out, `
		SELECT u.id,u.name,u.email,u.photo,u.role,u.password_hash,u.password_changed_at,
		       u.reset_token_hash,u.reset_expires_at,u.active,u.created_at,u.updated_at
		FROM users u
		JOIN tour_guides g ON g.user_id = u.id
		WHERE g.tour_id = ? AND u.active = 1
		ORDER BY u.id ASC`, tourID)
	return out, err
}

// StartDatesFor loads a tour's departure dates in chronological order.
func (r *TourRepo) StartDatesFor(ctx context.Context, tourID uint64) ([]time.Time, error) {
	out := []time.Time{}
	err := r.DB.SelectContext(ctx, &out,
		"SELECT starts_at FROM tour_start_dates WHERE tour_id=? ORDER BY starts_at ASC", tourID)
	return out, err
}

// SetStartDates replaces a tour's departure dates with the given set.
func (r *TourRepo) SetStartDates(ctx context.Context, tourID uint64, dates []time.Time) error {
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM tour_start_dates WHERE tour_id=?", tourID); err != nil {
		return err
	}
	for _, d := range dates {
		if _, err := r.DB.ExecContext(ctx,
			"INSERT INTO tour_start_dates (tour_id, starts_at) VALUES (?,?)", tourID, d.UTC()); err != nil {
			return err
		}
	}
	return nil
}

// SetGuides replaces a tour's guide assignments with the given user ids.
func (r *TourRepo) SetGuides(ctx context.Context, tourID uint64, userIDs []uint64) error {
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM tour_guides WHERE tour_id=?", tourID); err != nil {
		return err
	}
	for _, id := range userIDs {
		if _, err := r.DB.ExecContext(ctx,
			"INSERT INTO tour_guides (tour_id, user_id) VALUES (?,?)", tourID, id); err != nil {
			return err
		}
	}
	return nil
}
