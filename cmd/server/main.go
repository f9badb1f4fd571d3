package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/hkravch/tour-booking-api/internal/apperr"
	"github.com/hkravch/tour-booking-api/internal/config"
	"github.com/hkravch/tour-booking-api/internal/database"
	"github.com/hkravch/tour-booking-api/internal/handler"
	"github.com/hkravch/tour-booking-api/internal/model"
	"github.com/hkravch/tour-booking-api/internal/queue"
	"github.com/hkravch/tour-booking-api/internal/repository"
	"github.com/hkravch/tour-booking-api/internal/router"
	"github.com/hkravch/tour-booking-api/internal/store"
)

func main() {
	// .env is a development convenience; real deployments set the vars
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; features degrade

	// mail consumer reconnects on its own, a startup failure is not fatal
	go func() {
		if err := queue.StartMailConsumer(); err != nil {
			log.Printf("mail consumer: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	tours := repository.NewTourRepo(db)
	reviews := repository.NewReviewRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(cfg.IsDev())
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Deps{
		Cfg:     cfg,
		Users:   users,
		Tours:   store.New[model.Tour](db, store.Tours()),
		UsersDS: store.New[model.User](db, store.Users()),
		Reviews: store.New[model.Review](db, store.Reviews()),
		Auth:    handler.NewAuthHandler(cfg, users),
		User:    handler.NewUserHandler(users),
		Tour:    handler.NewTourHandler(tours),
		Review:  handler.NewReviewHandler(reviews),
		Redis:   rdb,
		Cache:   config.LoadCacheConfig(),
		Limiter: config.LoadRateLimitConfig(),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
