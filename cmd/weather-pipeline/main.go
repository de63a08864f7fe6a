package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	httpapi "github.com/MHamoud95/Berlin-weather-pipeline/internal/api/http"
	"github.com/MHamoud95/Berlin-weather-pipeline/internal/config"
	"github.com/MHamoud95/Berlin-weather-pipeline/internal/scheduler"
	"github.com/MHamoud95/Berlin-weather-pipeline/internal/store"
	"github.com/MHamoud95/Berlin-weather-pipeline/internal/weather"
	"github.com/MHamoud95/Berlin-weather-pipeline/internal/weather/providers"
)

const serviceName = "weather-pipeline"

// pinger is implemented by stores that can report connectivity.
type pinger interface {
	Ping(ctx context.Context) error
}

// InitLogger parses the level string and configures the logrus standard logger.
func InitLogger(logLevel string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	log.SetLevel(level)
	return nil
}

func main() {
	once := flag.Bool("once", false, "perform a single run and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Infof("No .env file found or error loading it: %v", err)
	}

	if err := run(*once); err != nil {
		log.Errorf("[%s] %v", serviceName, err)
		os.Exit(1)
	}
}

func run(once bool) error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := InitLogger(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// HTTP client for the forecast API.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	source := providers.NewOpenMeteoClient(httpClient, cfg.APIBaseURL)

	// Destination store: PostgreSQL when configured, otherwise in-memory.
	var (
		dest   weather.Destination
		reader weather.Reader
	)
	if cfg.DatabaseURL != "" {
		pool, err := store.OpenPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		pg := store.NewPostgresStore(pool)
		dest, reader = pg, pg
		log.Info("using PostgreSQL store")
	} else {
		mem := store.NewMemoryStore(cfg.StoreMaxHistory)
		dest, reader = mem, mem
		log.Warn("DATABASE_URL not set; rows are kept in memory only")
	}

	pipeline := weather.NewPipeline(source, dest, cfg.Location, log.StandardLogger())
	sched := scheduler.New(cfg.Schedule, cfg.RunTimeout, pipeline, log.StandardLogger())

	if once {
		r, err := sched.Trigger(context.Background())
		if err != nil {
			return fmt.Errorf("run %s failed: %w", r.ID, err)
		}
		log.WithField("run_id", r.ID).Infof("run stored %+v", *r.Record)
		return nil
	}

	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.RunTimeout + 10*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		if p, ok := reader.(pinger); ok {
			if err := p.Ping(c.UserContext()); err != nil {
				log.WithError(err).Warn("store health check failed")
				status = "degraded"
			}
		}
		return c.JSON(fiber.Map{
			"status":   status,
			"service":  serviceName,
			"location": pipeline.Location(),
			"nextRun":  sched.NextRun(),
		})
	})

	httpapi.RegisterRoutes(app, sched, reader)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()
	log.WithFields(log.Fields{
		"port":     cfg.Port,
		"schedule": cfg.Schedule,
		"source":   source.Name(),
		"location": cfg.Location.Key(),
	}).Info("weather pipeline started")

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
	return nil
}
