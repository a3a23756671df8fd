package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/core/auth"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/core/cache"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/core/config"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/core/database"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/core/logger"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/core/server"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/crm"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/feature/form"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/feature/stats"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/feature/template"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/feature/user"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/repo"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/storage"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(
			&domain.User{},
			&domain.Template{},
			&domain.Question{},
			&domain.Tag{},
			&domain.Form{},
			&domain.Answer{},
			&domain.Like{},
			&domain.Comment{},
		); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	var rdb *cache.Cache
	if cfg.Redis.Addr != "" {
		rdb = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	var blobs *storage.Cloudinary
	if cfg.Cloudinary.CloudName != "" {
		var err error
		blobs, err = storage.NewCloudinary(cfg.Cloudinary)
		if err != nil {
			log.Fatal("cloudinary init failed", zap.Error(err))
		}
		log.Info("cloudinary storage enabled", zap.String("folder", cfg.Cloudinary.Folder))
	}

	var pusher crm.Pusher
	if cfg.Salesforce.Username != "" {
		pusher = crm.NewSalesforce(cfg.Salesforce)
		log.Info("salesforce crm enabled")
	}

	// 仓库
	userRepo := repo.NewUserRepo(db)
	templateRepo := repo.NewTemplateRepo(db)
	formRepo := repo.NewFormRepo(db)
	tagRepo := repo.NewTagRepo(db)
	socialRepo := repo.NewSocialRepo(db)

	// 服务
	deps := router.Deps{
		Log:       log,
		JWT:       jwter,
		Users:     user.NewService(userRepo),
		Templates: template.NewService(templateRepo, tagRepo, formRepo, socialRepo, blobStore(blobs), rdb, log),
		Forms:     form.NewService(formRepo, templateRepo),
		Stats:     stats.NewService(templateRepo, formRepo, socialRepo),
		Uploads:   blobs,
		CRM:       pusher,
	}

	r := router.NewAPIEngine(deps)

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	log.Info("api started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("api stopped gracefully")
}

// blobStore *Cloudinary 为 nil 时返回 nil 接口，service 里按 nil 短路
func blobStore(c *storage.Cloudinary) template.BlobStore {
	if c == nil {
		return nil
	}
	return c
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	if cfg.Log.File != "" {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
			Enable:     true,
			Filename:   cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		})
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
