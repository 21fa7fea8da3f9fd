package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rioraa/pos-backend/internal/modules/audit"
	"github.com/rioraa/pos-backend/internal/modules/reporting"
	"github.com/rioraa/pos-backend/internal/modules/sales"
	"github.com/rioraa/pos-backend/internal/platform/database"
)

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.Open(os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	logger.Info("database ready")

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	recorder := audit.NewPostgresRecorder(db)
	auditService := audit.NewService(recorder, logger)
	audit.NewHandler(auditService).RegisterRoutes(router)

	salesRepo := sales.NewPostgresRepository(db, recorder)
	salesService := sales.NewService(salesRepo, logger)
	sales.NewHandler(salesService).RegisterRoutes(router)

	reportingRepo := reporting.NewPostgresRepository(db)
	reportingService := reporting.NewService(reportingRepo, logger)
	reporting.NewHandler(reportingService).RegisterRoutes(router)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("POS ledger API starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
