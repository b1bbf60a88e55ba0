package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/streamvault/account-service/internal/handlers"
	"github.com/streamvault/account-service/internal/jwt"
	"github.com/streamvault/account-service/internal/logger"
	"github.com/streamvault/account-service/internal/media"
	"github.com/streamvault/account-service/internal/middlewares"
	"github.com/streamvault/account-service/internal/password"
	"github.com/streamvault/account-service/internal/repositories"
	"github.com/streamvault/account-service/internal/services"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// config holds all application settings, loaded once in parseConfig and
// passed explicitly to the components that need them.
type config struct {
	AppHost    string
	AppPort    string
	LogLevel   string
	CORSOrigin string

	MongoURI string
	MongoDB  string

	AccessSecret  string
	RefreshSecret string
	AccessExp     time.Duration
	RefreshExp    time.Duration

	BcryptCost   int
	UploadTmpDir string

	S3Endpoint      string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicBaseURL string
}

// @title account-service API
// @version 1.0.0
// @description User-account backend: registration with media upload, login, logout, and JWT sessions
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and collects all
// application, database, token, and media-host settings into one struct.
func parseConfig(path string) (*config, error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	cfg := &config{
		AppHost:    getEnv("APP_HOST", "localhost"),
		AppPort:    getEnv("APP_PORT", "8080"),
		LogLevel:   getEnv("APP_LOG_LEVEL", "info"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),

		MongoURI: getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGODB_DATABASE", "accounts"),

		AccessSecret:  getEnv("ACCESS_TOKEN_SECRET", "access_token_secret"),
		RefreshSecret: getEnv("REFRESH_TOKEN_SECRET", "refresh_token_secret"),

		UploadTmpDir: getEnv("UPLOAD_TMP_DIR", os.TempDir()),

		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3Bucket:        getEnv("S3_BUCKET", "media"),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
	}

	var err error
	if cfg.AccessExp, err = time.ParseDuration(getEnv("ACCESS_TOKEN_EXPIRY", "15m")); err != nil {
		return nil, err
	}
	if cfg.RefreshExp, err = time.ParseDuration(getEnv("REFRESH_TOKEN_EXPIRY", "240h")); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", "10")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// run initializes the logger, MongoDB, the media host client, repositories,
// services, and the HTTP server, and handles graceful shutdown.
func run(ctx context.Context, cfg *config) error {
	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer log.Sync()
	log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("MongoDB connection error:", err)
	}
	defer client.Disconnect(ctx)
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal("MongoDB ping failed:", err)
	}
	db := client.Database(cfg.MongoDB)

	// Media host client
	mediaClient, err := media.NewClient(ctx, media.Config{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicBaseURL,
	}, log)
	if err != nil {
		log.Fatal("media host client error:", err)
	}

	// Token issuer and password hasher
	tokens := jwt.New(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessExp, cfg.RefreshExp)
	hasher := password.New(cfg.BcryptCost)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db, log)
	userWriteRepo := repositories.NewUserWriteRepository(db, hasher, log)
	if err := userWriteRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal("failed to create user indexes:", err)
	}

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, tokens, hasher, mediaClient, log)

	// Initialize handlers
	registerHandler := handlers.NewRegisterHandler(authService, cfg.UploadTmpDir, log)
	loginHandler := handlers.NewLoginHandler(authService, log)
	logoutHandler := handlers.NewLogoutHandler(authService, log)
	refreshHandler := handlers.NewRefreshHandler(authService, log)
	currentUserHandler := handlers.NewCurrentUserHandler(log)
	changePasswordHandler := handlers.NewChangePasswordHandler(authService, log)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middlewares.LoggingMiddleware(log))

	// Public routes
	r.Post("/register", registerHandler)
	r.Post("/login", loginHandler)
	r.Post("/refresh-token", refreshHandler)

	// Protected routes with JWT middleware
	authMiddleware := middlewares.AuthMiddleware(tokens, userReadRepo, log)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/logout", logoutHandler)
		r.Post("/change-password", changePasswordHandler)
		r.Get("/me", currentUserHandler)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	}

	log.Info("HTTP server stopped gracefully")
	return nil
}
