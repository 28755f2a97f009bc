package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance_backend/attendance"
	"attendance_backend/config"
	"attendance_backend/db"
	"attendance_backend/directory"
	"attendance_backend/guard"
	"attendance_backend/ledger"
	"attendance_backend/logger"
	"attendance_backend/middleware"
	"attendance_backend/models"
	"attendance_backend/notify"
	"attendance_backend/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		log.Fatal("Error connecting to the database", "driver", cfg.DBDriver, "error", err)
	}
	defer database.Close()

	// Initialize database schema
	if err := db.InitSchema(ctx, database); err != nil {
		log.Fatal("Error initializing database schema", "error", err)
	}
	if cfg.SeedData {
		if err := db.SeedData(ctx, database); err != nil {
			log.Warn("Error seeding initial data", "error", err)
		}
	}

	dir := directory.NewStore(database)
	store := ledger.NewStore(database)

	var (
		lock   guard.Guard      = guard.NewLocal()
		events notify.Publisher = notify.Nop{}
	)
	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("Error connecting to redis", "addr", cfg.RedisAddr, "error", err)
		}
		redisGuard, err := guard.NewRedis(log, rdb, cfg.LockTTL)
		if err != nil {
			log.Fatal("Error creating redis guard", "error", err)
		}
		publisher, err := notify.NewRedis(log, rdb, cfg.RedisChannel)
		if err != nil {
			log.Fatal("Error creating redis notifier", "error", err)
		}
		if err := publisher.Subscribe(ctx, func(ev models.AttendanceEvent) {
			log.Debug("attendance event", "activity_id", ev.ActivityID, "person_id", ev.PersonID, "direction", ev.Direction)
		}); err != nil {
			log.Warn("attendance event subscription failed", "error", err)
		}
		lock = redisGuard
		events = notify.NewAsync(publisher, log)
		log.Info("redis enabled", "addr", cfg.RedisAddr, "channel", cfg.RedisChannel)
	}

	service, err := attendance.NewService(attendance.ServiceDeps{
		Ledger:     store,
		Activities: dir,
		Staff:      dir,
		Guard:      lock,
		Events:     events,
		Log:        log,
	})
	if err != nil {
		log.Fatal("Error creating attendance service", "error", err)
	}
	reports := attendance.NewReports(store, dir, dir, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log))

	// Setup CORS - Simplified for mobile app
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
		middleware.HeaderRequestID,
	}
	corsConfig.AllowMethods = []string{"GET", "POST"}
	r.Use(cors.New(corsConfig))

	routes.SetupRoutes(r, routes.Deps{
		DB:        database,
		Directory: dir,
		Service:   service,
		Reports:   reports,
		JWTSecret: []byte(cfg.JWTSecret),
		Log:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", "port", cfg.ServerPort, "driver", database.Dialect.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
}

func openDatabase(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return db.OpenSQLite(ctx, cfg.SQLitePath)
	case "postgres":
		return db.OpenPostgres(ctx, cfg.PostgresURL())
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
