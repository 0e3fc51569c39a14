// File: internal/handler/ping.go
package handler

import (
	"net/http"

	"taskflow/internal/api"
	"taskflow/internal/cache"
	"taskflow/internal/database"
	"taskflow/internal/middleware"

	"github.com/labstack/echo/v4"
)

// PingResponse 健康檢查回應模型
// swagger:model PingResponse
type PingResponse struct {
	// 回應訊息
	Message string `json:"message" example:"pong"`
}

// PingHandler 健康檢查
// @Summary     Health Check
// @Description 回傳 pong，並檢查資料庫與 Redis 連線是否正常
// @Tags        health
// @Produce     json
// @Success     200 {object} PingResponse
// @Failure     503 {object} api.ErrorResponse
// @Router      /ping [get]
func PingHandler(db database.DB, store cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := db.Ping(ctx); err != nil {
			c.Set(middleware.ContextErrorKey, err)
			return c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Message: "database unhealthy"})
		}
		if err := store.Ping(ctx).Err(); err != nil {
			c.Set(middleware.ContextErrorKey, err)
			return c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Message: "cache unhealthy"})
		}
		return c.JSON(http.StatusOK, PingResponse{Message: "pong"})
	}
}
