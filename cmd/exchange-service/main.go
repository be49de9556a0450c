package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/rajivgeraev/flippy-exchange/internal/config"
	"github.com/rajivgeraev/flippy-exchange/internal/db"
	"github.com/rajivgeraev/flippy-exchange/internal/middleware"
	"github.com/rajivgeraev/flippy-exchange/internal/monitoring"
	"github.com/rajivgeraev/flippy-exchange/internal/pubsub"
	"github.com/rajivgeraev/flippy-exchange/internal/services/chat"
	"github.com/rajivgeraev/flippy-exchange/internal/services/item"
	"github.com/rajivgeraev/flippy-exchange/internal/services/trade"
	"github.com/rajivgeraev/flippy-exchange/internal/store"
	"github.com/rajivgeraev/flippy-exchange/internal/store/memory"
	"github.com/rajivgeraev/flippy-exchange/internal/store/postgres"
	"github.com/rajivgeraev/flippy-exchange/internal/utils"
	"github.com/rajivgeraev/flippy-exchange/internal/websocket"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()
	clock := utils.NewRealClock()

	st := initStore(cfg, clock)
	defer db.CloseDB()

	broker, redisClient := initBroker(cfg)
	defer broker.Close()
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Создаём сервисы
	jwtService := utils.NewJWTService(cfg.JWTSecret)
	itemService := item.NewItemService(st, clock)
	tradeService := trade.NewTradeService(st, clock, cfg.ConfirmMaxRetries)
	chatService := chat.NewChatService(st, broker)

	wsManager := websocket.NewManager()
	tradeService.SetNotifier(wsManager)

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Flippy Exchange",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))
	app.Use(monitoring.FiberMiddleware())

	// Регистрируем маршруты; все маршруты /api требуют авторизации
	api := app.Group("/api", middleware.AuthMiddleware(jwtService))
	itemService.SetupRoutes(api)
	tradeService.SetupRoutes(api)
	chatService.SetupRoutes(api)

	// Realtime и метрики на отдельном порту
	realtime := monitoring.NewServer(cfg.RealtimeAddr)
	realtime.Handle("/ws", wsManager.Handler(jwtService, chatService))

	go func() {
		log.Printf("✅ Realtime и метрики доступны на %s", cfg.RealtimeAddr)
		if err := realtime.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Ошибка realtime сервера: %v", err)
		}
	}()

	go func() {
		log.Printf("✅ Flippy Exchange запущен на порту %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("❌ Ошибка HTTP сервера: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("Завершение работы...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsManager.Shutdown()
	if err := realtime.Stop(shutdownCtx); err != nil {
		log.Printf("Ошибка остановки realtime сервера: %v", err)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Ошибка остановки HTTP сервера: %v", err)
	}
}

// initStore выбирает хранилище по STORE_DRIVER
func initStore(cfg *config.Config, clock utils.Clock) store.Store {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Println("⚠️ Используется хранилище в памяти, данные не сохраняются между запусками")
		return memory.New(clock)
	}

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("❌ Ошибка миграций: %v", err)
		}
	}

	// Инициализируем базу данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	return postgres.New(db.Pool)
}

// initBroker использует Redis, если он настроен, иначе рассылка работает в пределах процесса
func initBroker(cfg *config.Config) (pubsub.Broker, *redis.Client) {
	if cfg.RedisConfig.Addr == "" {
		return pubsub.NewMemoryBroker(pubsub.DefaultBufferSize), nil
	}

	client, err := pubsub.ConnectRedis(cfg.RedisConfig)
	if err != nil {
		log.Fatalf("❌ Ошибка подключения к Redis: %v", err)
	}
	log.Printf("✅ Подключение к Redis %s", cfg.RedisConfig.Addr)
	return pubsub.NewRedisBroker(client, pubsub.DefaultBufferSize), client
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
