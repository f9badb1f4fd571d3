package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/labstack/echo/v4"

	"github.com/hkravch/tour-booking-api/internal/apperr"
	"github.com/hkravch/tour-booking-api/internal/model"
	"github.com/hkravch/tour-booking-api/internal/repository"
)

// ReviewHandler supplies the Binder and hooks for review CRUD. Every write
// finishes by recomputing the parent tour's rating aggregate, so the
// denormalized columns on tours never drift from the review rows.
type ReviewHandler struct {
	Reviews *repository.ReviewRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews}
}

type reviewReq struct {
	Body   *string  `json:"body"`
	Rating *float64 `json:"rating"`
	TourID uint64   `json:"tour_id"`
}

// Bind validates a review payload. On create the tour comes from the
// nested route param when present, the body otherwise, and the author is
// always the authenticated principal. Updates may only touch body and
// rating; reviews never move between tours or users.
func (h *ReviewHandler) Bind(c echo.Context, partial bool) (goqu.Record, Hook[model.Review], error) {
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return nil, nil, apperr.Validation("invalid request body")
	}

	rec := goqu.Record{}
	if req.Body != nil {
		body := strings.TrimSpace(*req.Body)
		if body == "" {
			return nil, nil, apperr.Validation("review cannot be empty")
		}
		rec["body"] = body
	}
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, nil, apperr.Validation("rating must be between 1 and 5")
		}
		rec["rating"] = *req.Rating
	}

	if !partial {
		if _, ok := rec["body"]; !ok {
			return nil, nil, apperr.Validation("review cannot be empty")
		}
		if _, ok := rec["rating"]; !ok {
			return nil, nil, apperr.Validation("rating must be between 1 and 5")
		}

		tourID := req.TourID
		if raw := c.Param("id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				return nil, nil, apperr.Validation("invalid tour id: " + raw)
			}
			tourID = id
		}
		if tourID == 0 {
			return nil, nil, apperr.Validation("review must belong to a tour")
		}
		rec["tour_id"] = tourID

		u, ok := currentUser(c)
		if !ok {
			return nil, nil, apperr.Unauthorized("you are not logged in, please log in to get access")
		}
		rec["user_id"] = u.ID
	}

	return rec, h.RecalcHook(), nil
}

// RecalcHook refreshes the parent tour's rating aggregate. DeleteOne runs
// it with the pre-deletion record, so the recompute targets the right tour.
func (h *ReviewHandler) RecalcHook() Hook[model.Review] {
	return func(ctx context.Context, rev model.Review) error {
		return h.Reviews.Recalc(ctx, rev.TourID)
	}
}

// ScopeToTour narrows the nested review listing to the tour in the path by
// injecting a tour_id filter before the generic handler reads the query.
func ScopeToTour(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Param("id")
		if raw == "" {
			return next(c)
		}
		if _, err := strconv.ParseUint(raw, 10, 64); err != nil {
			return apperr.Validation("invalid tour id: " + raw)
		}
		q := c.Request().URL.Query()
		q.Set("tour_id", raw)
		c.Request().URL.RawQuery = q.Encode()
		return next(c)
	}
}
