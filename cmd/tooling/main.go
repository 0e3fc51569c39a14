// Command tooling 執行資料庫維運：migrate、rollback、seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"taskflow/internal/config"
	"taskflow/internal/database"
	"taskflow/internal/logger"
	"taskflow/internal/model"
	"taskflow/internal/service"
	"taskflow/internal/store"
)

var (
	loadConfig    = config.Load
	newPgxPool    = database.NewPgxPool
	runMigrations = database.RunMigrations
	rollbackAll   = database.RollbackAll
	createUser    = service.CreateUser
	exitFunc      = os.Exit
)

// seedUsers 開發用帳號
var seedUsers = []service.CreateUserInput{
	{Name: "Test User", Email: "test@example.com", Password: "password123", Role: model.RoleUser},
	{Name: "Admin User", Email: "admin@example.com", Password: "admin123", Role: model.RoleAdmin},
}

const usage = "usage: tooling <migrate|rollback|seed>"

func seed(ctx context.Context, lg *logger.Logger, db database.DB) error {
	for _, in := range seedUsers {
		u, err := createUser(ctx, db, in)
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			// 已存在則略過
			lg.InfoContextf(ctx, "skip %s: %v", in.Email, err)
		case err != nil:
			return fmt.Errorf("seed %s: %w", in.Email, err)
		default:
			lg.InfoContextf(ctx, "seeded %s (id=%d, role=%s)", u.Email, u.ID, u.Role)
		}
	}
	return nil
}

func run(args []string) error {
	if len(args) != 1 {
		return errors.New(usage)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lg := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	switch args[0] {
	case "migrate":
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("Migration 執行失敗: %v", err)
		}
		lg.InfoContextf(ctx, "migrations applied")
	case "rollback":
		if err := rollbackAll(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("RollbackAll 失敗: %v", err)
		}
		lg.InfoContextf(ctx, "migrations rolled back")
	case "seed":
		db, err := newPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("DB 連線失敗: %v", err)
		}
		defer db.Close()
		return seed(ctx, lg, db)
	default:
		return fmt.Errorf("unknown command %q; %s", args[0], usage)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
