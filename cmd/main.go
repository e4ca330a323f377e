package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"kitchenpos/internal/cache"
	"kitchenpos/internal/config"
	"kitchenpos/internal/database"
	"kitchenpos/internal/logger"
	"kitchenpos/internal/messaging"
	"kitchenpos/internal/server"
	"kitchenpos/internal/services/menu"
	"kitchenpos/internal/services/notification"
	"kitchenpos/internal/services/order"
	"kitchenpos/internal/services/table"
	"kitchenpos/internal/store/memory"
	"kitchenpos/internal/store/postgres"
)

// store is what the API needs from a storage backend
type store interface {
	server.Pinger
	order.Repository
	table.Repository
	menu.Repository
}

func main() {
	var (
		mode       = flag.String("mode", "api-server", "Service mode (api-server, notification-subscriber)")
		port       = flag.Int("port", 0, "HTTP port, overrides server.port from the config file")
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		storeKind  = flag.String("store", "postgres", "Storage backend for api-server (postgres, memory)")
		prefetch   = flag.Int("prefetch", 10, "RabbitMQ prefetch count")
	)
	flag.Parse()

	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.New(*mode, cfg.Log.Level)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode":  *mode,
		"port":  cfg.Server.Port,
		"store": *storeKind,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api-server":
		err = runAPIServer(ctx, cfg, log, *storeKind)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log, *prefetch)
	default:
		err = fmt.Errorf("unknown mode: %s", *mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

func runAPIServer(ctx context.Context, cfg *config.Config, log *logger.Logger, storeKind string) error {
	requestID := logger.GenerateRequestID()

	st, closeStore, err := openStore(ctx, cfg, log, storeKind)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher order.EventPublisher
	if cfg.MessagingEnabled() {
		conn, err := messaging.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize messaging: %w", err)
		}
		defer conn.Close()

		log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)
		publisher = messaging.NewPublisher(conn, log)
	}

	var menus order.MenuCatalog = st
	if cfg.CacheEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis_unavailable", "Menu cache disabled, Redis is unreachable", requestID, map[string]interface{}{
				"addr":  cfg.Redis.Addr,
				"error": err.Error(),
			})
		} else {
			log.Info("redis_connected", "Menu cache enabled", requestID, map[string]interface{}{"addr": cfg.Redis.Addr})
			menus = cache.NewMenuCatalog(rdb, st, log)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(log, cfg.Server.RequestTimeout, st,
		table.NewHandler(table.NewService(st, log), log),
		menu.NewHandler(menu.NewService(st, log), log),
		order.NewHandler(order.NewService(st, menus, publisher, log), log),
	)

	return server.New(cfg.Server.Port, router, log).Run(ctx)
}

// openStore returns the selected backend and a function releasing it
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger, kind string) (store, func(), error) {
	requestID := logger.GenerateRequestID()

	switch kind {
	case "memory":
		log.Info("store_selected", "Using in-memory store, data is lost on exit", requestID, nil)
		return memory.New(), func() {}, nil
	case "postgres":
		if err := cfg.ValidateDatabase(); err != nil {
			return nil, nil, err
		}

		connectCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		db, err := database.New(connectCtx, cfg, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

		if err := db.RunMigrations(connectCtx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return postgres.New(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store: %s", kind)
	}
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	if !cfg.MessagingEnabled() {
		return errors.New("notification-subscriber requires rabbitmq.host to be configured")
	}

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	hostname, _ := os.Hostname()
	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber-"+hostname, prefetch)

	return notification.NewSubscriber(consumer, log, os.Stdout).Start(ctx)
}
