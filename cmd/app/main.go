package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fulfillment/cmd"
	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/mail"
	"fulfillment/internal/adapters/out/payment"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/rabbitmq"
	"fulfillment/internal/adapters/out/redis"
	"fulfillment/internal/pkg/logger"
	"fulfillment/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := cmd.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "fulfillment",
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("service stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cmd.Config, log zerolog.Logger) error {
	db, err := postgres.Open(cfg.DB.DSN())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err = postgres.Migrate(ctx, db); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, redis.Config{
		URL:          cfg.Redis.URL,
		Address:      cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	rabbit, err := rabbitmq.Dial(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange})
	if err != nil {
		return err
	}
	defer rabbit.Close()

	statusPublisher := kafka.NewStatusPublisher(kafka.NewWriter(kafka.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.StatusTopic,
	}))
	defer func() {
		if closeErr := statusPublisher.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("close kafka writer")
		}
	}()

	payments, err := payment.NewClient(payment.Config{
		BaseURL:    cfg.Payment.BaseURL,
		KeyID:      cfg.Payment.KeyID,
		KeySecret:  cfg.Payment.KeySecret,
		Timeout:    cfg.Payment.Timeout,
		MaxRetries: cfg.Payment.MaxRetries,
	})
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := cmd.NewCompositionRoot(
		cfg,
		cmd.Dependencies{
			DB:        db,
			Locator:   redis.NewWorkerLocator(redisClient, cfg.Redis.WorkersKey),
			Notifier:  rabbitmq.NewNotifier(rabbit, cfg.RabbitMQ.Exchange),
			Publisher: statusPublisher,
			OtpSender: mail.NewOtpSender(mail.Config{
				Host:     cfg.SMTP.Host,
				Port:     cfg.SMTP.Port,
				Username: cfg.SMTP.Username,
				Password: cfg.SMTP.Password,
				From:     cfg.SMTP.From,
				FromName: cfg.SMTP.FromName,
			}),
			Payments: payments,
		},
		metrics.NewBrokerMetrics(registry),
		metrics.NewCronJobMetrics(registry),
		log,
	)

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	e := httpin.NewEcho(log)
	e.GET("/health", func(c echo.Context) error {
		if pingErr := sqlDB.PingContext(c.Request().Context()); pingErr != nil {
			return c.String(http.StatusServiceUnavailable, "database unavailable")
		}
		if pingErr := redisClient.Ping(c.Request().Context()).Err(); pingErr != nil {
			return c.String(http.StatusServiceUnavailable, "redis unavailable")
		}
		if pingErr := rabbit.Ping(); pingErr != nil {
			return c.String(http.StatusServiceUnavailable, "rabbitmq unavailable")
		}
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	app.CreateHTTPServer().Register(e, []byte(cfg.JWT.Secret))

	return serve(ctx, e, cfg.HTTP, log)
}

func serve(ctx context.Context, e *echo.Echo, cfg cmd.HTTPConfig, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
