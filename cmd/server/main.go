package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-staffing/internal/config"
	"github.com/iliyamo/venue-staffing/internal/database"
	"github.com/iliyamo/venue-staffing/internal/handler"
	"github.com/iliyamo/venue-staffing/internal/middleware"
	"github.com/iliyamo/venue-staffing/internal/queue"
	"github.com/iliyamo/venue-staffing/internal/repository"
	"github.com/iliyamo/venue-staffing/internal/router"
	"github.com/iliyamo/venue-staffing/internal/schedule"
	"github.com/iliyamo/venue-staffing/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: rate limiting and response caching disable
	// themselves, and the store adapter caches probes in process.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	adapter := store.New(store.NewSQLProber(db), rdb, store.Config{
		FallbackEnabled: cfg.StoreFallbackEnabled,
		ProbeTTL:        cfg.StoreProbeTTL,
	})

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	postings := repository.NewPostingRepo(db, adapter)
	applications := repository.NewApplicationRepo(db, adapter)
	templates := repository.NewTemplateRepo(db, adapter)
	candidates := repository.NewCandidateRepo(db, adapter)
	staff := repository.NewStaffRepo(db, adapter)
	zones := repository.NewZoneRepo(db, adapter)
	shifts := repository.NewShiftRepo(db, adapter)
	perfMetrics := repository.NewMetricRepo(db, adapter)

	allocator := schedule.NewAllocator(shifts, zones)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	postingH := handler.NewPostingHandler(postings, applications)
	screeningH := handler.NewScreeningHandler(postings, applications)
	onboardingH := handler.NewOnboardingHandler(templates, candidates, applications, postings, staff)
	scheduleH := handler.NewScheduleHandler(allocator, zones, shifts, staff)
	staffH := handler.NewStaffHandler(staff)
	metricsH := handler.NewMetricsHandler(perfMetrics, staff)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterLifecycle(e, postingH, screeningH, onboardingH, cfg.JWTSecret)
	router.RegisterSchedule(e, scheduleH, staffH, metricsH, cfg.JWTSecret)

	// Consume lifecycle events in the background; the consumer owns
	// its own reconnect loop and never returns in normal operation.
	go func() {
		if err := queue.StartStaffingConsumer(); err != nil {
			log.Printf("staffing consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
