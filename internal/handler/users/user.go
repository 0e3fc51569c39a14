package users

import (
	"net/http"

	"taskflow/internal/api"
	"taskflow/internal/database"
	"taskflow/internal/handler"
	"taskflow/internal/model"
	"taskflow/internal/service"

	"github.com/labstack/echo/v4"
)

var (
	listUsers        = service.ListUsers
	createUser       = service.CreateUser
	getUser          = service.GetUser
	getUserWithTasks = service.GetUserWithTasks
	updateUser       = service.UpdateUser
	deleteUser       = service.DeleteUser
)

// @Summary     List users
// @Description 管理員列出所有使用者
// @Tags        admin
// @Produce     json
// @Success     200 {array}  model.User
// @Failure     401 {object} api.ErrorResponse
// @Failure     403 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/users [get]
func ListUsersHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := listUsers(c.Request().Context(), db)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, users)
	}
}

// @Summary     Create a new user
// @Description 管理員建立帳號並指定角色 (Email 會自動轉小寫)
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       body body     api.CreateUserRequest true "使用者資料"
// @Success     201  {object} api.UserCreatedResponse
// @Failure     422  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/users [post]
func CreateUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.CreateUserRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.ErrorJSON(c, err)
		}

		user, err := createUser(c.Request().Context(), db, service.CreateUserInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     model.Role(req.Role),
		})
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusCreated, api.UserCreatedResponse{Message: "user created", User: *user})
	}
}

// @Summary     Get a user by ID
// @Tags        admin
// @Produce     json
// @Param       id  path     int true "使用者 ID"
// @Success     200 {object} model.User
// @Failure     404 {object} api.ErrorResponse "使用者不存在"
// @Security    BearerAuth
// @Router      /admin/users/{id} [get]
func GetUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id", "user")
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		user, err := getUser(c.Request().Context(), db, id)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, user)
	}
}

// @Summary     Get a user with tasks
// @Description 回傳使用者資料，以及其建立與被指派的任務
// @Tags        admin
// @Produce     json
// @Param       id  path     int true "使用者 ID"
// @Success     200 {object} service.UserDetails
// @Failure     404 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/users/{id}/details [get]
func GetUserDetailsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id", "user")
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		details, err := getUserWithTasks(c.Request().Context(), db, id)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, details)
	}
}

// @Summary     Update a user by ID
// @Description 只更新出現的欄位；password 為空字串時保留原密碼
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       id   path     int                   true "使用者 ID"
// @Param       body body     api.UpdateUserRequest true "要變更的欄位"
// @Success     200  {object} model.User
// @Failure     404  {object} api.ErrorResponse
// @Failure     422  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/users/{id} [put]
func UpdateUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id", "user")
		if err != nil {
			return handler.ErrorJSON(c, err)
		}

		var req api.UpdateUserRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.ErrorJSON(c, err)
		}

		user, err := updateUser(c.Request().Context(), db, id, service.UpdateUserInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     req.Role,
		})
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, user)
	}
}

// @Summary     Delete a user by ID
// @Description 刪除使用者；其建立的任務一併刪除，被指派的任務改為未指派
// @Tags        admin
// @Produce     json
// @Param       id  path     int true "使用者 ID"
// @Success     200 {object} api.MessageResponse
// @Failure     404 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/users/{id} [delete]
func DeleteUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id", "user")
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		if err := deleteUser(c.Request().Context(), db, id); err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, api.MessageResponse{Message: "user deleted"})
	}
}
