package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"Gated_Community/internal/metrics"
	"Gated_Community/internal/pkg"
	"Gated_Community/internal/repository"
	"Gated_Community/internal/repository/memory"
	"Gated_Community/internal/repository/mysql"
	"Gated_Community/internal/repository/redis"
	"Gated_Community/internal/router"
	"Gated_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

var config struct {
	Addr          string        `long:"addr" env:"GATED_ADDR" description:"http listen addr" default:":8080"`
	Store         string        `long:"store" env:"GATED_STORE" description:"store backend" choice:"redis" choice:"mysql" choice:"memory" default:"redis"`
	RedisAddr     string        `long:"redis-addr" env:"GATED_REDIS_ADDR" description:"redis addr" default:"127.0.0.1:6379"`
	RedisPassword string        `long:"redis-password" env:"GATED_REDIS_PASSWORD" description:"redis password"`
	RedisDB       int           `long:"redis-db" env:"GATED_REDIS_DB" description:"redis db" default:"0"`
	MySQLDSN      string        `long:"mysql-dsn" env:"GATED_MYSQL_DSN" description:"mysql dsn" default:"user:password@tcp(127.0.0.1:3306)/community?charset=utf8mb4&parseTime=True"`
	KafkaBrokers  string        `long:"kafka-brokers" env:"GATED_KAFKA_BROKERS" description:"comma separated kafka brokers, empty disables events"`
	KafkaTopic    string        `long:"kafka-topic" env:"GATED_KAFKA_TOPIC" description:"kafka topic" default:"community-events"`
	SessionSecret string        `long:"session-secret" env:"GATED_SESSION_SECRET" description:"jwt secret for wallet sessions" required:"true"`
	SessionTTL    time.Duration `long:"session-ttl" env:"GATED_SESSION_TTL" description:"wallet session ttl" default:"2h"`
	ProofLatency  time.Duration `long:"proof-latency" env:"GATED_PROOF_LATENCY" description:"simulated proof latency" default:"2s"`
	SuccessHold   time.Duration `long:"success-hold" env:"GATED_SUCCESS_HOLD" description:"how long a success status stays visible" default:"2s"`
	ErrorHold     time.Duration `long:"error-hold" env:"GATED_ERROR_HOLD" description:"how long an error status stays visible" default:"3s"`
	LogLevel      string        `long:"log-level" env:"GATED_LOG_LEVEL" description:"log level" default:"info"`
	Dev           bool          `long:"dev" env:"GATED_DEV" description:"development logging and gin debug mode"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := flags.ParseArgs(&config, os.Args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	logger, err := pkg.NewLogger(config.Dev, config.LogLevel)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	kv, closeStore, err := openStore(ctx)
	if err != nil {
		logger.Fatal("open store failed", zap.String("store", config.Store), zap.Error(err))
	}
	defer closeStore()
	store := repository.NewObservedStore(kv, metrics.NewStore(config.Store))

	var events service.EventPublisher
	if config.KafkaBrokers != "" {
		producer := pkg.NewEventProducer(pkg.KafkaConfig{
			Brokers: strings.Split(config.KafkaBrokers, ","),
			Topic:   config.KafkaTopic,
		})
		logger.Info("publishing community events", zap.String("topic", config.KafkaTopic))
		defer func() {
			_ = producer.Close()
		}()
		events = producer
	}

	m := metrics.NewCommunity()
	registry := service.NewRegistry(store, logger, service.WithRegistryMetrics(m))
	verifier := service.NewVerifier(store, config.ProofLatency, m, logger)
	status := service.NewStatusTracker(config.SuccessHold, config.ErrorHold)
	sessions := service.NewSessionService(store, pkg.NewTokenIssuer(config.SessionSecret, config.SessionTTL), logger)

	if !config.Dev {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.InitRouter(router.Services{
		Community: service.NewCommunityService(registry, verifier, status, events, logger),
		Session:   sessions,
	})

	s := &http.Server{
		Addr:              config.Addr,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server", zap.String("addr", config.Addr), zap.String("store", config.Store))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to listen and serve", zap.Error(err))
	}
}

func openStore(ctx context.Context) (repository.KV, func(), error) {
	switch config.Store {
	case "mysql":
		db, err := mysql.InitDB(config.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return &mysql.KVRepository{DB: db}, func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}, nil
	case "memory":
		return memory.NewStore(), func() {}, nil
	default:
		client, err := redis.Init(ctx, redis.Config{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redis.NewStore(client), func() {
			_ = redis.Close()
		}, nil
	}
}
