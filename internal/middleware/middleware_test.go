package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskflow/internal/cache"
	"taskflow/internal/database"
	"taskflow/internal/logger"
	"taskflow/internal/model"
	"taskflow/internal/service"
	"taskflow/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newContext(auth string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func notRevoked() *cache.FakeCache {
	return &cache.FakeCache{ExistsFn: func(context.Context, ...string) *redis.IntCmd {
		return redis.NewIntResult(0, nil)
	}}
}

const testSecret = "testsecret"

func issue(t *testing.T, id int, role model.Role) string {
	t.Helper()
	tok, err := service.IssueAccessToken(service.TokenConfig{Secret: testSecret, TTL: time.Minute}, model.User{ID: id, Role: role})
	require.NoError(t, err)
	return tok.Token
}

// stubUsers 以 map 取代資料庫中的使用者角色
func stubUsers(t *testing.T, roles map[int]model.Role) {
	t.Helper()
	t.Cleanup(func() { getUserByID = store.GetUserByID })
	getUserByID = func(_ context.Context, _ database.DB, id int) (*model.User, error) {
		role, ok := roles[id]
		if !ok {
			return nil, fmt.Errorf("GetUserByID: %w", store.ErrNotFound)
		}
		return &model.User{ID: id, Role: role}, nil
	}
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	return he.Code
}

func TestExtractClaims(t *testing.T) {
	// missing header
	ctx, _ := newContext("")
	_, err := extractClaims(ctx, notRevoked(), testSecret)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))

	// bad format
	ctx, _ = newContext("BadHeader")
	_, err = extractClaims(ctx, notRevoked(), testSecret)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))

	// invalid token
	ctx, _ = newContext("Bearer invalid")
	_, err = extractClaims(ctx, notRevoked(), testSecret)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))

	// valid token
	ctx, _ = newContext("Bearer " + issue(t, 1, model.RoleAdmin))
	claims, err := extractClaims(ctx, notRevoked(), testSecret)
	require.NoError(t, err)
	require.Equal(t, 1, claims.UserID)
	require.True(t, claims.IsAdmin())

	// wrong secret
	ctx, _ = newContext("Bearer " + issue(t, 1, model.RoleAdmin))
	_, err = extractClaims(ctx, notRevoked(), "other")
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestExtractClaimsRevocation(t *testing.T) {
	tok := issue(t, 5, model.RoleUser)

	var gotKey string
	revoked := &cache.FakeCache{ExistsFn: func(_ context.Context, keys ...string) *redis.IntCmd {
		gotKey = keys[0]
		return redis.NewIntResult(1, nil)
	}}
	ctx, _ := newContext("Bearer " + tok)
	_, err := extractClaims(ctx, revoked, testSecret)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))
	require.Contains(t, gotKey, "revoked:")

	broken := &cache.FakeCache{ExistsFn: func(context.Context, ...string) *redis.IntCmd {
		return redis.NewIntResult(0, errors.New("conn refused"))
	}}
	ctx, _ = newContext("Bearer " + tok)
	_, err = extractClaims(ctx, broken, testSecret)
	require.Equal(t, http.StatusServiceUnavailable, httpCode(t, err))
}

func TestRequireAuth(t *testing.T) {
	stubUsers(t, map[int]model.Role{2: model.RoleUser})
	db := &database.FakeDB{}
	tok := issue(t, 2, model.RoleUser)

	// success path
	ctx, rec := newContext("Bearer " + tok)
	called := false
	handler := RequireAuth(db, notRevoked(), testSecret)(func(c echo.Context) error {
		called = true
		cl, ok := ClaimsFrom(c)
		require.True(t, ok)
		require.Equal(t, 2, cl.UserID)
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, handler(ctx))
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)

	// missing token
	ctx, _ = newContext("")
	called = false
	err := RequireAuth(db, notRevoked(), testSecret)(func(echo.Context) error { called = true; return nil })(ctx)
	require.Error(t, err)
	require.False(t, called)
}

func TestRequireAuthDeletedUser(t *testing.T) {
	stubUsers(t, map[int]model.Role{})
	tok := issue(t, 9, model.RoleAdmin)

	ctx, _ := newContext("Bearer " + tok)
	called := false
	err := RequireAuth(&database.FakeDB{}, notRevoked(), testSecret)(func(echo.Context) error { called = true; return nil })(ctx)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))
	require.False(t, called)

	// 資料庫錯誤不是 401
	t.Cleanup(func() { getUserByID = store.GetUserByID })
	getUserByID = func(context.Context, database.DB, int) (*model.User, error) {
		return nil, errors.New("conn reset")
	}
	ctx, _ = newContext("Bearer " + tok)
	err = RequireAuth(&database.FakeDB{}, notRevoked(), testSecret)(func(echo.Context) error { return nil })(ctx)
	require.Equal(t, http.StatusInternalServerError, httpCode(t, err))
}

func TestRequireAuthUsesStoredRole(t *testing.T) {
	// token 簽發時是 admin，之後被降級
	stubUsers(t, map[int]model.Role{6: model.RoleUser})
	ctx, _ := newContext("Bearer " + issue(t, 6, model.RoleAdmin))

	var got model.Role
	err := RequireAuth(&database.FakeDB{}, notRevoked(), testSecret)(func(c echo.Context) error {
		cl, _ := ClaimsFrom(c)
		got = cl.Requester().Role
		return nil
	})(ctx)
	require.NoError(t, err)
	require.Equal(t, model.RoleUser, got)
}

func TestRequireAdmin(t *testing.T) {
	stubUsers(t, map[int]model.Role{3: model.RoleAdmin, 4: model.RoleUser, 5: model.RoleUser, 8: model.RoleAdmin})
	db := &database.FakeDB{}
	adminTok := issue(t, 3, model.RoleAdmin)
	userTok := issue(t, 4, model.RoleUser)

	// admin ok
	ctx, rec := newContext("Bearer " + adminTok)
	called := false
	err := RequireAdmin(db, notRevoked(), testSecret)(func(c echo.Context) error { called = true; return c.String(http.StatusOK, "admin") })(ctx)
	require.NoError(t, err)
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)

	// non-admin should fail
	ctx, _ = newContext("Bearer " + userTok)
	called = false
	err = RequireAdmin(db, notRevoked(), testSecret)(func(c echo.Context) error { called = true; return nil })(ctx)
	require.Equal(t, http.StatusForbidden, httpCode(t, err))
	require.False(t, called)

	// demoted admin: token says admin, stored role is user
	ctx, _ = newContext("Bearer " + issue(t, 5, model.RoleAdmin))
	called = false
	err = RequireAdmin(db, notRevoked(), testSecret)(func(c echo.Context) error { called = true; return nil })(ctx)
	require.Equal(t, http.StatusForbidden, httpCode(t, err))
	require.False(t, called)

	// promoted user: token says user, stored role is admin
	ctx, _ = newContext("Bearer " + issue(t, 8, model.RoleUser))
	err = RequireAdmin(db, notRevoked(), testSecret)(func(c echo.Context) error { return nil })(ctx)
	require.NoError(t, err)

	// deleted admin
	ctx, _ = newContext("Bearer " + issue(t, 99, model.RoleAdmin))
	err = RequireAdmin(db, notRevoked(), testSecret)(func(c echo.Context) error { return nil })(ctx)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))

	// no token is 401, not 403
	ctx, _ = newContext("")
	err = RequireAdmin(db, notRevoked(), testSecret)(func(c echo.Context) error { return nil })(ctx)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestClaimsFrom(t *testing.T) {
	ctx, _ := newContext("")
	_, ok := ClaimsFrom(ctx)
	require.False(t, ok)

	ctx.Set(ContextUserKey, &service.CustomClaims{UserID: 7, Role: model.RoleUser})
	cl, ok := ClaimsFrom(ctx)
	require.True(t, ok)
	require.Equal(t, 7, cl.Requester().ID)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "INFO", "json")

	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/boom", func(c echo.Context) error {
		c.Set(ContextErrorKey, errors.New("db down"))
		return c.String(http.StatusInternalServerError, "internal")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, buf.String(), `"uri":"/ok"`)
	require.Contains(t, buf.String(), `"level":"INFO"`)

	buf.Reset()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Contains(t, buf.String(), `"level":"ERROR"`)
	require.Contains(t, buf.String(), "db down")
}
