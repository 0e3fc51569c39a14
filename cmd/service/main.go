// File: cmd/service/main.go
// @title        Taskflow API
// @version      1.0
// @description  多使用者任務管理 API：任務建立、指派、狀態更新與管理員使用者管理
// @host         localhost:8080
// @BasePath     /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"taskflow/internal/cache"
	"taskflow/internal/config"
	"taskflow/internal/database"
	"taskflow/internal/logger"
	mw "taskflow/internal/middleware"
	"taskflow/internal/router"
	"taskflow/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "taskflow/docs" // 引入 swag 產出的 docs
)

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var (
	loadConfig      = config.Load
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	exitFunc        = os.Exit
)

func newServer(cfg *config.Config, lg *logger.Logger, db database.DB, rdb cache.Cache) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Use(middleware.Recover())
	e.Use(mw.RequestLogger(lg))

	router.Setup(e, db, rdb, service.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL})
	return e
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lg := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	db, err := newPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %v", err)
	}
	defer db.Close()

	rdb, err := newRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("Redis 連線失敗: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			lg.ErrorContextf(ctx, "關閉 Redis 連線失敗: %v", err)
		}
	}()

	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("Migration 執行失敗: %v", err)
	}

	e := newServer(cfg, lg, db, rdb)
	lg.InfoContextf(ctx, "listening on %s", cfg.HTTPAddr)
	return startServer(e, cfg.HTTPAddr)
}

func main() {
	if err := run(); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
