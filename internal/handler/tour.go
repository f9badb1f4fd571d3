package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/labstack/echo/v4"

	"github.com/hkravch/tour-booking-api/internal/apperr"
	"github.com/hkravch/tour-booking-api/internal/model"
	"github.com/hkravch/tour-booking-api/internal/repository"
)

// TourHandler implements the tour endpoints that go beyond generic CRUD:
// the aliased top-five listing, the aggregate reports and the geo queries.
// It also supplies the Binder used by the generic create/update handlers.
type TourHandler struct {
	Tours *repository.TourRepo
}

func NewTourHandler(tours *repository.TourRepo) *TourHandler {
	return &TourHandler{Tours: tours}
}

type tourReq struct {
	Name             *string     `json:"name"`
	Duration         *int        `json:"duration"`
	MaxGroupSize     *int        `json:"max_group_size"`
	Difficulty       *string     `json:"difficulty"`
	Price            *float64    `json:"price"`
	PriceDiscount    *float64    `json:"price_discount"`
	Summary          *string     `json:"summary"`
	Description      *string     `json:"description"`
	ImageCover       *string     `json:"image_cover"`
	Secret           *bool       `json:"secret"`
	StartLat         *float64    `json:"start_lat"`
	StartLng         *float64    `json:"start_lng"`
	StartAddress     *string     `json:"start_address"`
	StartDescription *string     `json:"start_description"`
	StartDates       []time.Time `json:"start_dates"`
	Guides           []uint64    `json:"guides"`
}

// Bind validates a tour payload into an insert/update record. Creates
// require the core fields; updates only touch what the payload carries.
// Start dates and guides live in join tables, so when either is present
// the returned hook writes them once the tour row exists.
func (h *TourHandler) Bind(c echo.Context, partial bool) (goqu.Record, Hook[model.Tour], error) {
	var req tourReq
	if err := c.Bind(&req); err != nil {
		return nil, nil, apperr.Validation("invalid request body")
	}

	rec := goqu.Record{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 10 || len(name) > 40 {
			return nil, nil, apperr.Validation("a tour name must have between 10 and 40 characters")
		}
		rec["name"] = name
		rec["slug"] = slugify(name)
	}
	if req.Duration != nil {
		if *req.Duration <= 0 {
			return nil, nil, apperr.Validation("a tour must have a positive duration")
		}
		rec["duration"] = *req.Duration
	}
	if req.MaxGroupSize != nil {
		if *req.MaxGroupSize <= 0 {
			return nil, nil, apperr.Validation("a tour must have a positive group size")
		}
		rec["max_group_size"] = *req.MaxGroupSize
	}
	if req.Difficulty != nil {
		if !model.ValidDifficulty(*req.Difficulty) {
			return nil, nil, apperr.Validation("difficulty is either: easy, medium, difficult")
		}
		rec["difficulty"] = *req.Difficulty
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, nil, apperr.Validation("a tour must have a positive price")
		}
		rec["price"] = *req.Price
	}
	if req.PriceDiscount != nil {
		// comparable only when the price travels in the same payload
		if req.Price != nil && *req.PriceDiscount >= *req.Price {
			return nil, nil, apperr.Validation("discount price should be below the regular price")
		}
		if *req.PriceDiscount < 0 {
			return nil, nil, apperr.Validation("discount price cannot be negative")
		}
		rec["price_discount"] = *req.PriceDiscount
	}
	if req.Summary != nil {
		summary := strings.TrimSpace(*req.Summary)
		if summary == "" {
			return nil, nil, apperr.Validation("a tour must have a summary")
		}
		rec["summary"] = summary
	}
	if req.Description != nil {
		rec["description"] = strings.TrimSpace(*req.Description)
	}
	if req.ImageCover != nil {
		rec["image_cover"] = *req.ImageCover
	}
	if req.Secret != nil {
		rec["secret"] = *req.Secret
	}
	if req.StartLat != nil {
		rec["start_lat"] = *req.StartLat
	}
	if req.StartLng != nil {
		rec["start_lng"] = *req.StartLng
	}
	if req.StartAddress != nil {
		rec["start_address"] = strings.TrimSpace(*req.StartAddress)
	}
	if req.StartDescription != nil {
		rec["start_description"] = strings.TrimSpace(*req.StartDescription)
	}

	if !partial {
		for _, required := range []string{"name", "duration", "max_group_size", "difficulty", "price", "summary"} {
			if _, ok := rec[required]; !ok {
				return nil, nil, apperr.Validation("a tour must have a " + strings.ReplaceAll(required, "_", " "))
			}
		}
	}

	var hook Hook[model.Tour]
	if req.StartDates != nil || req.Guides != nil {
		dates, guides := req.StartDates, req.Guides
		hook = func(ctx context.Context, t model.Tour) error {
			if dates != nil {
				if err := h.Tours.SetStartDates(ctx, t.ID, dates); err != nil {
					return err
				}
			}
			if guides != nil {
				if err := h.Tours.SetGuides(ctx, t.ID, guides); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return rec, hook, nil
}

// Expand fills in a fetched tour's guides and start dates from the join
// tables, for use as the GetOne expand step.
func (h *TourHandler) Expand(ctx context.Context, t *model.Tour) error {
	guides, err := h.Tours.GuidesFor(ctx, t.ID)
	if err != nil {
		return err
	}
	dates, err := h.Tours.StartDatesFor(ctx, t.ID)
	if err != nil {
		return err
	}
	t.Guides = guides
	t.StartDates = dates
	return nil
}

// AliasTopTours rewrites the query string so the plain listing handler
// serves "the five best cheap tours" without its own code path.
func AliasTopTours(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := url.Values{}
		q.Set("limit", "5")
		q.Set("sort", "-ratings_average,price")
		q.Set("fields", "name,price,ratings_average,summary,difficulty")
		c.Request().URL.RawQuery = q.Encode()
		return next(c)
	}
}

// Stats serves the per-difficulty aggregate report.
func (h *TourHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.Tours.Stats(ctx)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, "stats", stats)
}

// MonthlyPlan serves the busiest-month histogram for the year in the path.
func (h *TourHandler) MonthlyPlan(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1000 || year > 9999 {
		return apperr.Validation("invalid year: " + c.Param("year"))
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	plan, err := h.Tours.MonthlyPlan(ctx, year)
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, "plan", len(plan), plan)
}

// Within serves GET /tours-within/:distance/center/:latlng/unit/:unit.
func (h *TourHandler) Within(c echo.Context) error {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil || distance <= 0 {
		return apperr.Validation("invalid distance: " + c.Param("distance"))
	}
	lat, lng, err := parseLatLng(c.Param("latlng"))
	if err != nil {
		return err
	}
	unit, err := parseUnit(c.Param("unit"))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tours, err := h.Tours.Within(ctx, distance, lat, lng, unit)
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, "tours", len(tours), tours)
}

// Distances serves GET /distances/:latlng/unit/:unit, every tour ranked by
// distance from the given point.
func (h *TourHandler) Distances(c echo.Context) error {
	lat, lng, err := parseLatLng(c.Param("latlng"))
	if err != nil {
		return err
	}
	unit, err := parseUnit(c.Param("unit"))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	distances, err := h.Tours.Distances(ctx, lat, lng, unit)
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, "distances", len(distances), distances)
}

// parseLatLng splits the "lat,lng" path segment used by the geo routes.
func parseLatLng(raw string) (lat, lng float64, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, apperr.Validation("please provide latitude and longitude in the format lat,lng")
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, apperr.Validation("please provide latitude and longitude in the format lat,lng")
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, apperr.Validation("please provide latitude and longitude in the format lat,lng")
	}
	return lat, lng, nil
}

func parseUnit(raw string) (string, error) {
	if raw != "mi" && raw != "km" {
		return "", apperr.Validation("unit must be mi or km")
	}
	return raw, nil
}

// slugify lowercases the name and collapses everything that is not a
// letter or digit into single hyphens.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
