// File: internal/handler/auth/auth.go
package auth

import (
	"net/http"

	"taskflow/internal/api"
	"taskflow/internal/cache"
	"taskflow/internal/database"
	"taskflow/internal/handler"
	"taskflow/internal/middleware"
	"taskflow/internal/model"
	"taskflow/internal/service"

	"github.com/labstack/echo/v4"
)

var (
	register         = service.Register
	authenticate     = service.Authenticate
	issueAccessToken = service.IssueAccessToken
	revokeToken      = service.RevokeToken
	getUser          = service.GetUser
)

func tokenResponse(tc service.TokenConfig, user model.User) (*api.TokenResponse, error) {
	tok, err := issueAccessToken(tc, user)
	if err != nil {
		return nil, err
	}
	return &api.TokenResponse{
		AccessToken: tok.Token,
		TokenType:   "Bearer",
		ExpiresAt:   tok.ExpiresAt,
		User:        user,
	}, nil
}

// RegisterHandler 建立一般使用者並直接回傳存取令牌
// @Summary     註冊
// @Description 建立 role=user 的帳號，Email 會轉為小寫
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.RegisterRequest true "註冊資料"
// @Success     201  {object} api.TokenResponse
// @Failure     422  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /register [post]
func RegisterHandler(db database.DB, tc service.TokenConfig) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.RegisterRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.ErrorJSON(c, err)
		}

		user, err := register(c.Request().Context(), db, req.Name, req.Email, req.Password)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		resp, err := tokenResponse(tc, *user)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusCreated, resp)
	}
}

// LoginHandler 使用 Email/Password 驗證並回傳 JWT
// @Summary     登入使用者
// @Description 使用 Email 與 Password 進行驗證，回傳存取令牌與到期時間
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.LoginRequest true "登入資料"
// @Success     200  {object} api.TokenResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     422  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /login [post]
func LoginHandler(db database.DB, tc service.TokenConfig) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.LoginRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.ErrorJSON(c, err)
		}

		// 帳號不存在與密碼錯誤回傳相同訊息
		user, err := authenticate(c.Request().Context(), db, req.Email, req.Password)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}

		resp, err := tokenResponse(tc, *user)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// LogoutHandler 撤銷目前使用的 token
// @Summary     登出
// @Tags        auth
// @Produce     json
// @Success     200 {object} api.MessageResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /logout [post]
func LogoutHandler(store cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := middleware.ClaimsFrom(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "unauthenticated"})
		}
		if err := revokeToken(c.Request().Context(), store, claims); err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, api.MessageResponse{Message: "logged out"})
	}
}

// MeHandler 取得目前登入的使用者
// @Summary     Get current user
// @Tags        auth
// @Produce     json
// @Success     200 {object} model.User
// @Failure     401 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /user [get]
func MeHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		r, err := handler.Requester(c)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		user, err := getUser(c.Request().Context(), db, r.ID)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, user)
	}
}
