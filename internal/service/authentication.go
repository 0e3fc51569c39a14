// File: internal/service/authentication.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"taskflow/internal/cache"
	"taskflow/internal/errs"
	"taskflow/internal/model"
	"taskflow/internal/policy"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

var (
	timeNow         = time.Now
	newTokenID      = uuid.NewString
	parseWithClaims = jwt.ParseWithClaims
)

// CustomClaims 定義 JWT 負載內容
type CustomClaims struct {
	UserID int        `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *CustomClaims) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// Requester 轉成授權判斷用的請求者
func (c *CustomClaims) Requester() policy.Requester {
	return policy.Requester{ID: c.UserID, Role: c.Role}
}

// TokenConfig JWT 簽章金鑰與有效期限，來自 config.Config
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

var errNoSecret = errors.New("jwt secret not set")

// AccessToken 發行結果
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
	Claims    *CustomClaims
}

// AuthenticateUser 比對使用者密碼
func AuthenticateUser(user model.User, password string) error {
	if user.PasswordHash == "" {
		return errors.New("invalid password")
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return errors.New("invalid password")
	}
	return nil
}

// IssueAccessToken 依據使用者資訊與 TTL 產生 JWT，jti 用於登出撤銷
func IssueAccessToken(tc TokenConfig, user model.User) (*AccessToken, error) {
	if tc.Secret == "" {
		return nil, errNoSecret
	}

	now := timeNow()
	claims := &CustomClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        newTokenID(),
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tc.Secret))
	if err != nil {
		return nil, err
	}
	return &AccessToken{Token: signed, ExpiresAt: claims.ExpiresAt.Time, Claims: claims}, nil
}

// VerifyAccessToken 驗證並解析 JWT 令牌
func VerifyAccessToken(secret, tokenString string) (*CustomClaims, error) {
	if secret == "" {
		return nil, errNoSecret
	}

	token, err := parseWithClaims(tokenString, &CustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if !claims.Role.Valid() || claims.UserID == 0 {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// RevokeToken 將 jti 寫入 Redis，保留到 token 原本的到期時間
func RevokeToken(ctx context.Context, c cache.Cache, claims *CustomClaims) error {
	if claims.ID == "" {
		return errs.Newf(errs.Unauthenticated, "token cannot be revoked")
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(timeNow())
	}
	if ttl <= 0 {
		return nil
	}
	if err := c.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("RevokeToken: %w", err)
	}
	return nil
}

// IsTokenRevoked 檢查 jti 是否已登出
func IsTokenRevoked(ctx context.Context, c cache.Cache, jti string) (bool, error) {
	n, err := c.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("IsTokenRevoked: %w", err)
	}
	return n > 0, nil
}
