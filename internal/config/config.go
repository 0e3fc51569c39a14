// Package config 從環境變數（可選 .env 檔）讀取服務設定。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
	HTTPAddr      string
	TokenTTL      time.Duration
	LogLevel      string
	LogFormat     string
}

var loadDotEnv = func() error { return godotenv.Load() }

// Load 讀取 .env（不存在時略過）後解析環境變數
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		HTTPAddr:      getEnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "INFO"),
		LogFormat:     getEnvOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("環境變數 DATABASE_URL 未設定")
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("環境變數 REDIS_ADDR 未設定")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("環境變數 JWT_SECRET 未設定")
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("無效的 REDIS_DB: %v", err)
	}
	cfg.RedisDB = redisDB

	ttl, err := time.ParseDuration(getEnvOrDefault("TOKEN_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("無效的 TOKEN_TTL: %q", os.Getenv("TOKEN_TTL"))
	}
	cfg.TokenTTL = ttl

	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
