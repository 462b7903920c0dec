package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"sanctum/internal/auth"
	"sanctum/internal/config"
	notionSvc "sanctum/internal/domain/services/notion"
	"sanctum/internal/handler"
	"sanctum/internal/middleware"
	"sanctum/internal/repository"
	serviceAI "sanctum/internal/service/ai"
	serviceLibrary "sanctum/internal/service/library"
	serviceNotion "sanctum/internal/service/notion"
	"sanctum/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"postgres", cfg.IsPostgres(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	nodeService := serviceLibrary.NewNodeService(db.Nodes, db.Tx, logger)
	if err := nodeService.EnsureRoot(ctx); err != nil {
		log.Fatalf("Failed to seed library: %v", err)
	}

	blobs, err := storage.New(storage.Config{
		Backend:   cfg.UploadBackend,
		LocalDir:  cfg.UploadDir,
		PublicURL: cfg.PublicBaseURL,
		S3: storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		},
	})
	if err != nil {
		log.Fatalf("Failed to set up uploads: %v", err)
	}
	logger.Info("upload backend ready", "backend", blobs.Name())

	generator, err := serviceAI.NewGenerator(cfg.AIProvider, cfg.AnthropicAPIKey, cfg.AIModel, logger)
	if err != nil {
		log.Fatalf("Failed to set up AI provider: %v", err)
	}
	prompts, err := serviceAI.LoadPrompts()
	if err != nil {
		log.Fatalf("Failed to load prompts: %v", err)
	}
	librarian := serviceAI.NewLibrarian(generator, prompts, logger)

	importer := serviceNotion.NewImporter(logger)

	routes := &handler.Routes{
		Files:  handler.NewFileHandler(nodeService, logger),
		Upload: handler.NewUploadHandler(blobs, logger),
		AI:     handler.NewAIHandler(librarian, logger),
		Notion: handler.NewNotionHandler(importer, logger),
	}
	if local, ok := blobs.(*storage.LocalStore); ok {
		routes.Uploads = http.FileServer(http.Dir(local.Dir()))
	}

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	routes.Register(mux)

	var verifier auth.JWTVerifier
	if cfg.SupabaseJWKSURL != "" {
		verifier, err = auth.NewJWTVerifier(ctx, cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
	} else {
		logger.Warn("SUPABASE_URL is not set, the API is open")
	}

	// Order: CORS → Recovery → Auth → Routes
	var h http.Handler = mux
	h = middleware.Auth(verifier, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", notionSvc.TokenHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
