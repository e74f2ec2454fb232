package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/offsettrade/visa-checker-bot/internal/adapters/in/http"
	"github.com/offsettrade/visa-checker-bot/internal/adapters/out/cache"
	"github.com/offsettrade/visa-checker-bot/internal/adapters/out/logger"
	"github.com/offsettrade/visa-checker-bot/internal/adapters/out/notify"
	"github.com/offsettrade/visa-checker-bot/internal/adapters/out/portal"
	"github.com/offsettrade/visa-checker-bot/internal/config"
	"github.com/offsettrade/visa-checker-bot/internal/core/ports/out"
	"github.com/offsettrade/visa-checker-bot/internal/core/services/slot_watcher_service"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера с таймзоной
	// Вне локального окружения debug-логи отключаем
	minLevel := out.LogLevelDebug
	if cfg.IsNotLocal() {
		minLevel = out.LogLevelInfo
	}
	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone, minLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := mainLogger.WithModule("Main")

	logger.Info("app.starting", out.LogFields{
		"version":              cfg.App.Version,
		"env":                  cfg.App.Env,
		"timezone":             cfg.App.Timezone,
		"fromDate":             cfg.Watcher.Window.FromString(),
		"toDate":               cfg.Watcher.Window.ToString(),
		"pollInterval":         cfg.Watcher.PollInterval.String(),
		"rabbitmqEnabled":      cfg.RabbitMQ.Enabled,
		"conflictCacheEnabled": cfg.ConflictCache.Enabled,
	})

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Инициализация адаптеров
	portalAdapter := portal.NewPortalAdapter(cfg, mainLogger.WithModule("PortalAdapter"))

	var attemptCache out.AttemptCachePort
	if cfg.ConflictCache.Enabled {
		cacheAdapter, err := cache.NewConflictCacheAdapter(cfg, mainLogger.WithModule("ConflictCacheAdapter"))
		if err != nil {
			logger.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		attemptCache = cacheAdapter
	}

	var notifier out.NotifierPort
	if cfg.RabbitMQ.Enabled {
		rabbitNotifier, err := notify.NewRabbitMqNotifier(cfg, mainLogger.WithModule("RabbitMqNotifier"))
		if err != nil {
			logger.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		notifier = rabbitNotifier

		defer func() {
			if err := rabbitNotifier.Close(); err != nil {
				logger.Error("app.rabbitmq.close_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	// Инициализация сервиса
	watcherService := slot_watcher_service.NewSlotWatcherService(
		portalAdapter,
		attemptCache,
		notifier,
		cfg,
		mainLogger,
	)

	// Опрос стартует сразу, останавливать и запускать можно через API
	if err := watcherService.StartPolling(); err != nil {
		logger.Error("app.watcher.start_failed", out.LogFields{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer watcherService.StopPolling()

	// Настройка HTTP сервера
	router := gin.Default()
	controller := http.NewWatcherController(watcherService, cfg)
	controller.RegisterRoutes(router)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			logger.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	logger.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})
}
