package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diyari_backend/internal/model"
	"diyari_backend/internal/router"
	"diyari_backend/pkg/cache"
	"diyari_backend/pkg/config"
	"diyari_backend/pkg/cron"
	"diyari_backend/pkg/database"
	"diyari_backend/pkg/email"
	"diyari_backend/pkg/push"
	"diyari_backend/pkg/seed"
	"diyari_backend/pkg/utils/jwt"
	"diyari_backend/pkg/utils/location"
	"diyari_backend/pkg/utils/storage"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	jwt.Configure(cfg.JWT.Secret, cfg.JWT.TTL)

	if err := location.Init(); err != nil {
		log.Fatal("Could not initialize location data:", err)
	}

	if cfg.Database.Driver == "sqlite" {
		database.InitSQLite(cfg.Database.SQLitePath)
	} else {
		database.InitDB(cfg.Database.DSN())
	}
	if err := database.MigrateDatabase(model.All()...); err != nil {
		log.Fatal("Migration failed:", err)
	}

	db := database.GetDB()
	if _, err := seed.SeedAdmin(db, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal("Could not seed admin user:", err)
	}
	if cfg.SeedDemo {
		if _, err := seed.SeedDemoUser(db); err != nil {
			log.Printf("Could not seed demo user: %v", err)
		}
	}

	initIntegrations(ctx, cfg)

	scheduler, err := cron.Start(db)
	if err != nil {
		log.Fatal("Could not start cron jobs:", err)
	}

	app := router.New(cfg)

	go func() {
		log.Printf("Server is running on port %s", cfg.Server.Port)
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	<-scheduler.Stop().Done()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if cache.RedisClient != nil {
		cache.RedisClient.Close()
	}
}

// initIntegrations wires the optional services. Each one stays disabled
// when its settings are missing or it fails to start.
func initIntegrations(ctx context.Context, cfg *config.Config) {
	switch cfg.Upload.Driver {
	case "r2":
		r2, err := storage.NewR2Storage(ctx, storage.R2Config{
			AccountID: cfg.R2.AccountID,
			AccessKey: cfg.R2.AccessKey,
			SecretKey: cfg.R2.SecretKey,
			Bucket:    cfg.R2.Bucket,
			PublicURL: cfg.R2.PublicURL,
		})
		if err != nil {
			log.Printf("R2 storage disabled: %v", err)
			break
		}
		storage.Default = r2
	default:
		local, err := storage.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.PublicPath)
		if err != nil {
			log.Printf("Local storage disabled: %v", err)
			break
		}
		storage.Default = local
	}

	if cfg.Redis.Addr != "" {
		if err := cache.InitRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			log.Printf("Redis disabled: %v", err)
		} else {
			log.Println("Redis connected")
		}
	}

	if cfg.SMTP.Host != "" {
		err := email.InitEmailService(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		})
		if err != nil {
			log.Printf("Email service disabled: %v", err)
		} else {
			log.Println("Email service initialized")
		}
	}

	if cfg.Firebase.CredentialsFile != "" {
		client, err := push.NewFCMClient(ctx, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Printf("Push notifications disabled: %v", err)
		} else {
			push.Client = client
		}
	}
}
