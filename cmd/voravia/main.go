package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voraviaadmin/voravia/internal/backup"
	"github.com/voraviaadmin/voravia/internal/database"
	"github.com/voraviaadmin/voravia/internal/directory"
	"github.com/voraviaadmin/voravia/internal/email"
	"github.com/voraviaadmin/voravia/internal/logging"
	"github.com/voraviaadmin/voravia/internal/nutrition"
	"github.com/voraviaadmin/voravia/internal/push"
	"github.com/voraviaadmin/voravia/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.Setup(os.Getenv("VORAVIA_LOG_LEVEL"))

	port := os.Getenv("VORAVIA_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("VORAVIA_DB_PATH")
	if dbPath == "" {
		dbPath = "voravia.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient := email.NewClient(
		os.Getenv("VORAVIA_POSTMARK_TOKEN"),
		os.Getenv("VORAVIA_FROM_EMAIL"),
		os.Getenv("VORAVIA_BASE_URL"),
	)

	cfg := server.Config{
		InviteSecret: []byte(os.Getenv("VORAVIA_INVITE_SECRET")),
		Nutrition: nutrition.Config{
			BaseURL: os.Getenv("VORAVIA_NUTRITION_URL"),
		},
		Directory: directory.Config{
			BaseURL: os.Getenv("VORAVIA_DIRECTORY_URL"),
			APIKey:  os.Getenv("VORAVIA_DIRECTORY_API_KEY"),
		},
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("VORAVIA_S3_ENDPOINT"),
				Bucket:    os.Getenv("VORAVIA_S3_BUCKET"),
				Region:    os.Getenv("VORAVIA_S3_REGION"),
				AccessKey: os.Getenv("VORAVIA_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("VORAVIA_S3_SECRET_KEY"),
			},
			DBPath: dbPath,
		},
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("VORAVIA_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("VORAVIA_VAPID_PRIVATE_KEY"),
		},
	}

	srv := server.New(db, cfg, emailClient, logger)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	srv.BackupManager().Start(bgCtx)
	srv.DirectoryClient().Start(bgCtx)
	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(bgCtx)
	}

	// Background cleanup goroutine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-bgCtx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("voravia starting", "addr", ":"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	bgCancel()
	if sched := srv.PushScheduler(); sched != nil {
		sched.Stop()
	}
	srv.DirectoryClient().Stop()
	srv.BackupManager().Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
