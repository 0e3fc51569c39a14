package handler

import (
	"net/http"
	"strconv"

	"taskflow/internal/api"
	"taskflow/internal/errs"
	"taskflow/internal/middleware"
	"taskflow/internal/policy"

	"github.com/labstack/echo/v4"
)

// ErrorJSON 依錯誤分類寫出回應；內部錯誤只回通用訊息，細節交給 request logger
func ErrorJSON(c echo.Context, err error) error {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		c.Set(middleware.ContextErrorKey, err)
		return c.JSON(status, api.ErrorResponse{Message: "internal server error"})
	}
	return c.JSON(status, api.ErrorResponse{Message: err.Error()})
}

// Bind 解析並驗證請求內容，失敗一律視為 Validation
func Bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errs.Newf(errs.Validation, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return errs.Newf(errs.Validation, "%s", err.Error())
	}
	return nil
}

// Requester 取出已驗證的請求者
func Requester(c echo.Context) (policy.Requester, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return policy.Requester{}, errs.Newf(errs.Unauthenticated, "unauthenticated")
	}
	return claims.Requester(), nil
}

// ParamID 解析路徑上的數字 ID，無法解析時視為找不到該資源
func ParamID(c echo.Context, name, resource string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, errs.Newf(errs.NotFound, "%s not found", resource)
	}
	return id, nil
}
