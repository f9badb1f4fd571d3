package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/hkravch/tour-booking-api/internal/config"
	"github.com/hkravch/tour-booking-api/internal/handler"
	"github.com/hkravch/tour-booking-api/internal/middleware"
	"github.com/hkravch/tour-booking-api/internal/model"
	"github.com/hkravch/tour-booking-api/internal/repository"
	"github.com/hkravch/tour-booking-api/internal/store"
)

// Deps carries everything route registration needs: the shared config, the
// per-resource stores and handlers, and the Redis client backing the cache
// and rate-limit middleware (nil Redis disables both).
type Deps struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Tours   *store.Store[model.Tour]
	UsersDS *store.Store[model.User]
	Reviews *store.Store[model.Review]

	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Tour    *handler.TourHandler
	Review  *handler.ReviewHandler
	Redis   *redis.Client
	Cache   config.CacheConfig
	Limiter config.RateLimitConfig
}

// Register wires every route onto the Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	registerAuth(e, d)
	registerTours(e, d)
	registerUsers(e, d)
	registerReviews(e, d)
}

// registerAuth mounts the credential lifecycle under /api/v1/users. The
// open endpoints sit behind the fixed-window rate limiter so password
// guessing and reset-token fishing stay slow.
func registerAuth(e *echo.Echo, d Deps) {
	limited := middleware.RateLimit(d.Limiter, d.Redis)

	g := e.Group("/api/v1/users")
	g.POST("/signup", d.Auth.Signup, limited)
	g.POST("/login", d.Auth.Login, limited)
	g.GET("/logout", d.Auth.Logout)
	g.POST("/forgotPassword", d.Auth.ForgotPassword, limited)
	g.PATCH("/resetPassword/:token", d.Auth.ResetPassword, limited)
}

// registerTours mounts the tour routes. Reads are public and cached;
// writes require admin or lead-guide.
func registerTours(e *echo.Echo, d Deps) {
	protect := middleware.Protect(d.Cfg.JWTSecret, d.Users)
	staff := middleware.RestrictTo(model.RoleAdmin, model.RoleLeadGuide)
	cached := middleware.ResponseCache(d.Cache, d.Redis)

	g := e.Group("/api/v1/tours")
	g.GET("", handler.List(d.Tours, "tours"), cached)
	g.GET("/top-5-cheap", handler.AliasTopTours(handler.List(d.Tours, "tours")), cached)
	g.GET("/tour-stats", d.Tour.Stats, cached)
	g.GET("/monthly-plan/:year", d.Tour.MonthlyPlan, protect, middleware.RestrictTo(model.RoleAdmin, model.RoleLeadGuide, model.RoleGuide))
	g.GET("/tours-within/:distance/center/:latlng/unit/:unit", d.Tour.Within)
	g.GET("/distances/:latlng/unit/:unit", d.Tour.Distances)
	g.GET("/:id", handler.GetOne(d.Tours, "tour", d.Tour.Expand), cached)

	g.POST("", handler.CreateOne(d.Tours, "tour", d.Tour.Bind), protect, staff)
	g.PATCH("/:id", handler.UpdateOne(d.Tours, "tour", d.Tour.Bind), protect, staff)
	g.DELETE("/:id", handler.DeleteOne(d.Tours, "tour"), protect, staff)
}

// registerUsers mounts the self-service account routes and the
// admin-only user CRUD.
func registerUsers(e *echo.Echo, d Deps) {
	protect := middleware.Protect(d.Cfg.JWTSecret, d.Users)
	admin := middleware.RestrictTo(model.RoleAdmin)

	g := e.Group("/api/v1/users", protect)
	g.PATCH("/updateMyPassword", d.Auth.UpdatePassword)
	g.GET("/me", d.User.Me)
	g.PATCH("/updateMe", d.User.UpdateMe)
	g.DELETE("/deleteMe", d.User.DeleteMe)

	g.GET("", handler.List(d.UsersDS, "users"), admin)
	g.POST("", d.User.CreateUser, admin)
	g.GET("/:id", handler.GetOne(d.UsersDS, "user", nil), admin)
	g.PATCH("/:id", handler.UpdateOne(d.UsersDS, "user", d.User.BindAdminUpdate), admin)
	g.DELETE("/:id", handler.DeleteOne(d.UsersDS, "user"), admin)
}

// registerReviews mounts review CRUD twice: flat under /api/v1/reviews and
// nested under a tour, where the listing is scoped and creates inherit the
// tour id from the path. Everything requires login; creating is for
// regular users, editing for the author role or an admin.
func registerReviews(e *echo.Echo, d Deps) {
	protect := middleware.Protect(d.Cfg.JWTSecret, d.Users)
	userOnly := middleware.RestrictTo(model.RoleUser)
	userOrAdmin := middleware.RestrictTo(model.RoleUser, model.RoleAdmin)

	list := handler.List(d.Reviews, "reviews")
	create := handler.CreateOne(d.Reviews, "review", d.Review.Bind)

	g := e.Group("/api/v1/reviews", protect)
	g.GET("", list)
	g.POST("", create, userOnly)
	g.GET("/:id", handler.GetOne(d.Reviews, "review", nil))
	g.PATCH("/:id", handler.UpdateOne(d.Reviews, "review", d.Review.Bind), userOrAdmin)
	g.DELETE("/:id", handler.DeleteOne(d.Reviews, "review", d.Review.RecalcHook()), userOrAdmin)

	// the param must be named :id to match the flat tour routes, echo
	// rejects two names for the same position
	nested := e.Group("/api/v1/tours/:id/reviews", protect)
	nested.GET("", handler.ScopeToTour(list))
	nested.POST("", create, userOnly)
}
