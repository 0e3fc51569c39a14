package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"taskflow/internal/cache"
	"taskflow/internal/database"
	"taskflow/internal/service"
	"taskflow/internal/store"

	"github.com/labstack/echo/v4"
)

const (
	ContextUserKey  = "user"
	ContextErrorKey = "handler_error"
)

var (
	verifyAccessToken = service.VerifyAccessToken
	isTokenRevoked    = service.IsTokenRevoked
	getUserByID       = store.GetUserByID
)

func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
	}
	return parts[1], nil
}

func extractClaims(c echo.Context, rdb cache.Cache, secret string) (*service.CustomClaims, error) {
	tokenString, err := extractToken(c)
	if err != nil {
		return nil, err
	}
	claims, err := verifyAccessToken(secret, tokenString)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("invalid token: %v", err))
	}
	if claims.ID != "" {
		revoked, err := isTokenRevoked(c.Request().Context(), rdb, claims.ID)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "token check unavailable").SetInternal(err)
		}
		if revoked {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
		}
	}
	return claims, nil
}

// loadCurrentUser 以資料庫為準：帳號已刪除則 401，角色改用目前儲存的值
func loadCurrentUser(c echo.Context, db database.DB, claims *service.CustomClaims) error {
	user, err := getUserByID(c.Request().Context(), db, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusUnauthorized, "user no longer exists")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	claims.Role = user.Role
	return nil
}

// RequireAuth 驗證 Bearer token、確認使用者仍存在，並把 claims 放進 context
func RequireAuth(db database.DB, rdb cache.Cache, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := extractClaims(c, rdb, secret)
			if err != nil {
				return err
			}
			if err := loadCurrentUser(c, db, claims); err != nil {
				return err
			}
			c.Set(ContextUserKey, claims)
			return next(c)
		}
	}
}

// RequireAdmin 先驗證 token，再檢查資料庫中的角色
func RequireAdmin(db database.DB, rdb cache.Cache, secret string) echo.MiddlewareFunc {
	auth := RequireAuth(db, rdb, secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return auth(func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok || !claims.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
			}
			return next(c)
		})
	}
}

// ClaimsFrom 取出 RequireAuth 放入的 claims
func ClaimsFrom(c echo.Context) (*service.CustomClaims, bool) {
	claims, ok := c.Get(ContextUserKey).(*service.CustomClaims)
	if !ok || claims == nil || claims.UserID == 0 {
		return nil, false
	}
	return claims, true
}
