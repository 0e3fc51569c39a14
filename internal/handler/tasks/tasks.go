// File: internal/handler/tasks/tasks.go
package tasks

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
	listTasks    = service.ListTasks
	listAllTasks = service.ListAllTasks
	createTask   = service.CreateTask
	getTask      = service.GetTask
	updateTask   = service.UpdateTask
	deleteTask   = service.DeleteTask
	assignTask   = service.AssignTask
)

// ListTasksHandler 列出自己建立或被指派的任務
// @Summary     List my tasks
// @Description 回傳建立者或被指派者為目前使用者的任務，依建立時間新到舊
// @Tags        tasks
// @Produce     json
// @Success     200 {array}  model.Task
// @Failure     401 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /tasks [get]
func ListTasksHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		r, err := handler.Requester(c)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		tasks, err := listTasks(c.Request().Context(), db, r)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, tasks)
	}
}

// ListAllTasksHandler 管理員列出全部任務
// @Summary     List all tasks
// @Tags        admin
// @Produce     json
// @Success     200 {array}  model.Task
// @Failure     401 {object} api.ErrorResponse
// @Failure     403 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/tasks [get]
func ListAllTasksHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		r, err := handler.Requester(c)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		tasks, err := listAllTasks(c.Request().Context(), db, r)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, tasks)
	}
}

// CreateTaskHandler 建立任務，建立者一律為目前使用者
// @Summary     Create a task
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Param       body body     api.CreateTaskRequest true "任務內容"
// @Success     201  {object} model.Task
// @Failure     401  {object} api.ErrorResponse
// @Failure     422  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /tasks [post]
func CreateTaskHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		r, err := handler.Requester(c)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		var req api.CreateTaskRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.ErrorJSON(c, err)
		}

		task, err := createTask(c.Request().Context(), db, r, service.CreateTaskInput{
			Title:       req.Title,
			Description: req.Description,
			Status:      model.TaskStatus(req.Status),
			Priority:    model.TaskPriority(req.Priority),
			DueDate:     req.DueDate,
			AssignedTo:  req.AssignedTo,
		})
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

// GetTaskHandler 取得單一任務
// @Summary     Get a task
// @Tags        tasks
// @Produce     json
// @Param       id  path     int true "任務 ID"
// @Success     200 {object} model.Task
// @Failure     403 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /tasks/{id} [get]
func GetTaskHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		r, err := handler.Requester(c)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		id, err := handler.ParamID(c, "id", "task")
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		task, err := getTask(c.Request().Context(), db, r, id)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

// UpdateTaskHandler 部分更新任務
// @Summary     Update a task
// @Description 建立者與管理員可更新所有欄位；被指派者只能更新 status，夾帶其他欄位即拒絕
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Param       id   path     int                   true "任務 ID"
// @Param       body body     api.UpdateTaskRequest true "要變更的欄位"
// @Success     200  {object} model.Task
// @Failure     403  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     422  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /tasks/{id} [put]
func UpdateTaskHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		r, err := handler.Requester(c)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		id, err := handler.ParamID(c, "id", "task")
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		var req api.UpdateTaskRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.ErrorJSON(c, err)
		}

		task, err := updateTask(c.Request().Context(), db, r, id, service.UpdateTaskInput{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
			Priority:    req.Priority,
			DueDate:     req.DueDate,
			AssignedTo:  req.AssignedTo,
		})
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

// DeleteTaskHandler 刪除任務
// @Summary     Delete a task
// @Tags        tasks
// @Produce     json
// @Param       id  path     int true "任務 ID"
// @Success     200 {object} api.MessageResponse
// @Failure     403 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /tasks/{id} [delete]
func DeleteTaskHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		r, err := handler.Requester(c)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		id, err := handler.ParamID(c, "id", "task")
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		if err := deleteTask(c.Request().Context(), db, r, id); err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, api.MessageResponse{Message: "task deleted"})
	}
}

// AssignTaskHandler 指派任務給其他使用者
// @Summary     Assign a task
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Param       id   path     int                   true "任務 ID"
// @Param       body body     api.AssignTaskRequest true "被指派者"
// @Success     200  {object} model.Task
// @Failure     403  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     422  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /tasks/{id}/assign [post]
func AssignTaskHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		r, err := handler.Requester(c)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		id, err := handler.ParamID(c, "id", "task")
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		var req api.AssignTaskRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.ErrorJSON(c, err)
		}
		task, err := assignTask(c.Request().Context(), db, r, id, req.AssignedTo)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}
