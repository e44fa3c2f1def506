package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/auth"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/config"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/db"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/sequence"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store/embedded"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store/remote"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := newLogger(cfg.App.Dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *migrateOnlyFlag {
		if cfg.Store.Backend != config.BackendRemote {
			log.Fatal("migrate-only requires STORE_BACKEND=remote")
		}
		if _, err := db.ConnectAndMigrate(cfg.Store.DSN, true, log); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migrations completed")
		return
	}

	stores, userDB, err := openBackend(cfg, log)
	if err != nil {
		log.Fatal("store backend", zap.String("backend", string(cfg.Store.Backend)), zap.Error(err))
	}

	// Sessions carry only the user id; each request resolves the full actor
	// from the users table.
	auth.SetActorResolver(func(ctx context.Context, userID string) (auth.Actor, bool) {
		var u models.User
		if err := userDB.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
			return auth.Actor{}, false
		}
		return auth.Actor{
			ID:         u.ID,
			Email:      u.Email,
			Role:       auth.Role(u.Role),
			DealerID:   u.DealerID,
			ProviderID: u.ProviderID,
		}, true
	})

	seq, err := sequence.New(cfg.Store.NodeID)
	if err != nil {
		log.Fatal("sequence node", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(NewApp(stores, seq, log), log),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("backend", string(cfg.Store.Backend)),
			zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

// openBackend builds the store bundle for the configured backend and
// returns the gorm handle used for user lookups.
func openBackend(cfg *config.Config, log *zap.Logger) (store.Stores, *gorm.DB, error) {
	switch cfg.Store.Backend {
	case config.BackendEmbedded:
		gdb, err := gorm.Open(sqlite.Open(cfg.Store.SQLitePath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return store.Stores{}, nil, fmt.Errorf("open sqlite: %w", err)
		}
		// Users live in a plain table beside the blob kinds so sessions can
		// resolve without a remote backend.
		if err := gdb.AutoMigrate(&models.User{}); err != nil {
			return store.Stores{}, nil, fmt.Errorf("migrate users: %w", err)
		}
		s, err := embedded.New(gdb, log)
		if err != nil {
			return store.Stores{}, nil, err
		}
		return s.Stores(), gdb, nil

	case config.BackendRemote:
		gdb, err := db.ConnectAndMigrate(cfg.Store.DSN, cfg.App.Migrations, log)
		if err != nil {
			return store.Stores{}, nil, err
		}
		s, err := remote.New(gdb)
		if err != nil {
			return store.Stores{}, nil, err
		}
		return s.Stores(), gdb, nil

	default:
		return store.Stores{}, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}
