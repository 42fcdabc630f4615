package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"punogaria/internal/config"
	"punogaria/internal/gateway"
	"punogaria/internal/handlers"
	"punogaria/internal/logger"
	"punogaria/internal/metrics"
	"punogaria/internal/publisher"
	"punogaria/internal/repository"
	"punogaria/internal/repository/db"
	"punogaria/internal/server"
	"punogaria/internal/service"
)

// @title        PUNOGARIA plant watering API
// @version      1.0
// @description  Simulated automatic plant-watering controller: sensor polling, sky classification, pump decisions and manual override.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	conn, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	m := metrics.New()
	pub := newPublisher(cfg, log)
	defer func() {
		if cerr := pub.Close(); cerr != nil {
			log.Errorw("failed to close publisher", "err", cerr)
		}
	}()

	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Options{
		Sensor:    gateway.NewSensorGateway(cfg.Sensor.URL, cfg.Sensor.Timeout, log),
		Sky:       gateway.NewSkyClassifier(cfg.Camera.URL, cfg.Camera.Timeout, log),
		Publisher: pub,
		Metrics:   m,
		Fallback:  cfg.Simulation.Fallback,
		Defaults: service.Defaults{
			Iterations: cfg.Simulation.Iterations,
			Interval:   cfg.Simulation.Interval,
			Threshold:  cfg.Simulation.HumidityThreshold,
		},
		Log: log,
	})
	apiHandler := handlers.NewHandler(services, log, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := startScheduler(ctx, cfg, services, log)

	srv := &server.Server{WriteTimeout: cfg.Server.WriteTimeout}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, srv, sched, cfg.Server.ShutdownTimeout, log)
}

// openDB opens the in-process SQLite store.
func openDB(cfg config.Config, log *logger.Logger) (*sql.DB, error) {
	dsn := cfg.DB.DSN
	if dsn == "" {
		dsn = db.MemoryDSN
	}
	log.Infow("opening sqlite", "dsn", dsn)
	return db.InitDB(dsn)
}

func newPublisher(cfg config.Config, log *logger.Logger) publisher.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Infow("kafka.brokers not set; pump commands are not published")
		return publisher.Nop{}
	}
	log.Infow("publishing pump commands", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	return publisher.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
}

// startScheduler returns nil when no schedule is configured.
func startScheduler(ctx context.Context, cfg config.Config, services *service.Service, log *logger.Logger) *service.Scheduler {
	if cfg.Schedule.Cron == "" {
		return nil
	}
	sched, err := service.NewScheduler(cfg.Schedule.Cron, services.Sessions, services.Simulation, service.RunParams{}, log)
	if err != nil {
		log.Fatalw("invalid schedule", "err", err)
	}
	if err := sched.Start(ctx); err != nil {
		log.Fatalw("failed to start scheduler", "err", err)
	}
	return sched
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, sched *service.Scheduler, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if sched != nil {
		sched.Stop(ctx)
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
