package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	httpin "github.com/peacemind-dev/psy-schedule-board/internal/adapters/in/http"
	"github.com/peacemind-dev/psy-schedule-board/internal/adapters/out/cache"
	"github.com/peacemind-dev/psy-schedule-board/internal/adapters/out/docstore"
	"github.com/peacemind-dev/psy-schedule-board/internal/adapters/out/localstore"
	"github.com/peacemind-dev/psy-schedule-board/internal/adapters/out/logger"
	"github.com/peacemind-dev/psy-schedule-board/internal/config"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/ports/out"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/services/schedule_board_service"
)

func main() {
	// Подхватываем .env, если он есть рядом или выше
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера с таймзоной
	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := mainLogger.WithModule("Main")

	log.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"storeDriver":     cfg.Store.Driver,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
	})

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Выбор стора на этапе композиции: ядро не знает, какой из них активен
	var storeAdapter out.StorePort
	var docStore *docstore.DocStoreAdapter
	switch cfg.Store.Driver {
	case config.StoreDriverLocal:
		localStore, err := localstore.NewLocalStoreAdapter(cfg, mainLogger.WithModule("LocalStoreAdapter"))
		if err != nil {
			log.Error("app.store.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		storeAdapter = localStore
	default:
		docStore, err = docstore.NewDocStoreAdapter(cfg, mainLogger.WithModule("DocStoreAdapter"))
		if err != nil {
			log.Error("app.store.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		storeAdapter = docStore
	}

	var cacheAdapter out.CachePort
	if cfg.Cache.Enabled {
		boardCache, err := cache.NewBoardCacheAdapter(cfg, mainLogger.WithModule("BoardCacheAdapter"))
		if err != nil {
			log.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		cacheAdapter = boardCache
	}

	// Инициализация сервиса
	boardService := schedule_board_service.NewScheduleBoardService(
		storeAdapter,
		cacheAdapter,
		mainLogger,
		cfg,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Загрузка снапшота и подписка на ленту изменений; битые или
	// отсутствующие удаленные данные не мешают старту
	if err := boardService.Initialize(ctx); err != nil {
		log.Error("app.board.init_failed", out.LogFields{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Настройка HTTP сервера
	router := gin.Default()
	controller := httpin.NewScheduleBoardController(boardService, cfg)
	controller.RegisterRoutes(router)

	server := &http.Server{
		Addr:    cfg.HTTP.Host + ":" + cfg.HTTP.Port,
		Handler: router,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	log.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})

	cancel()

	// Сначала гасим HTTP, чтобы живые обработчики не писали в
	// останавливаемую очередь
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("app.http.shutdown_failed", out.LogFields{
			"error": err.Error(),
		})
	}

	// Дожидаемся выгрузки очереди записи, потом закрываем ленту изменений
	boardService.Stop()

	if docStore != nil {
		if err := docStore.Close(); err != nil {
			log.Error("app.docstore.close_failed", out.LogFields{
				"error": err.Error(),
			})
		}
	}

	log.Info("app.shutdown.completed", out.LogFields{})
}
