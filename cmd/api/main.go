package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/config"
	"github.com/yourusername/exam-api/internal/fetcher"
	"github.com/yourusername/exam-api/internal/handler"
	"github.com/yourusername/exam-api/internal/judge"
	"github.com/yourusername/exam-api/internal/middleware"
	pgRepo "github.com/yourusername/exam-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/exam-api/internal/repository/redis"
	"github.com/yourusername/exam-api/internal/service"
	"github.com/yourusername/exam-api/pkg/auth"
	"github.com/yourusername/exam-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	testRepo := pgRepo.NewTestRepo(db)
	assessmentRepo := pgRepo.NewAssessmentRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWTService
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Клиент judge и загрузчик файлов тест-кейсов
	judgeClient := judge.NewClient(cfg.Judge.BaseURL, cfg.Judge.APIKey, cfg.Judge.JudgeTimeout())
	fileFetcher := fetcher.NewHTTPFetcher(cfg.Fetcher.FetchTimeout(), cfg.Fetcher.MaxBodyBytes)

	// Инициализируем сервисы
	clock := service.NewRealClock()
	testService := service.NewTestService(testRepo, clock)
	assessmentService := service.NewAssessmentService(testRepo, assessmentRepo, judgeClient, fileFetcher, clock, cfg.Judge.Languages)
	leaderboardService := service.NewLeaderboardService(testRepo, assessmentRepo, userRepo, cacheRepo)

	// Инициализируем обработчики
	testHandler := handler.NewTestHandler(testService, leaderboardService)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService, testService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Тесты
		tests := api.Group("/test")
		tests.Use(authMiddleware.RequireAuth())
		{
			tests.GET("/join/:testCode", testHandler.JoinTest)

			// Маршруты для администраторов
			adminTests := tests.Group("")
			adminTests.Use(authMiddleware.AdminOnly())
			{
				adminTests.POST("/create", testHandler.CreateTest)
				adminTests.GET("/:id/leaderboard", testHandler.GetLeaderboard)
			}
		}

		// Попытки
		assessments := api.Group("/assessment")
		assessments.Use(authMiddleware.RequireAuth())
		{
			assessments.POST("/start", assessmentHandler.StartAssessment)
			assessments.POST("/submit", assessmentHandler.SubmitAssessment)
			assessments.POST("/run-code", assessmentHandler.RunCode)
			assessments.GET("/my", assessmentHandler.GetMyAssessments)
			assessments.GET("/:id", assessmentHandler.GetAssessment)
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	// Ожидаем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
