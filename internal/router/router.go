// File: internal/router/router.go
package router

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"taskflow/internal/cache"
	"taskflow/internal/database"
	"taskflow/internal/handler"
	"taskflow/internal/handler/auth"
	"taskflow/internal/handler/tasks"
	"taskflow/internal/handler/users"
	"taskflow/internal/middleware"
	"taskflow/internal/service"
)

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, db database.DB, store cache.Cache, tokens service.TokenConfig) {
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	requireAuth := middleware.RequireAuth(db, store, tokens.Secret)

	// 健康檢查
	api.GET("/ping", handler.PingHandler(db, store))

	// 註冊、登入、登出
	api.POST("/register", auth.RegisterHandler(db, tokens))
	api.POST("/login", auth.LoginHandler(db, tokens))
	api.POST("/logout", auth.LogoutHandler(store), requireAuth)
	api.GET("/user", auth.MeHandler(db), requireAuth)

	// 任務，授權在 service 內依建立者與被指派者判斷
	apiTasks := api.Group("/tasks", requireAuth)
	apiTasks.GET("", tasks.ListTasksHandler(db))
	apiTasks.POST("", tasks.CreateTaskHandler(db))
	apiTasks.GET("/:id", tasks.GetTaskHandler(db))
	apiTasks.PUT("/:id", tasks.UpdateTaskHandler(db))
	apiTasks.DELETE("/:id", tasks.DeleteTaskHandler(db))
	apiTasks.POST("/:id/assign", tasks.AssignTaskHandler(db))

	// 管理員專屬
	apiAdmin := api.Group("/admin", middleware.RequireAdmin(db, store, tokens.Secret))
	apiAdmin.GET("/users", users.ListUsersHandler(db))
	apiAdmin.POST("/users", users.CreateUserHandler(db))
	apiAdmin.GET("/users/:id", users.GetUserHandler(db))
	apiAdmin.PUT("/users/:id", users.UpdateUserHandler(db))
	apiAdmin.DELETE("/users/:id", users.DeleteUserHandler(db))
	apiAdmin.GET("/users/:id/details", users.GetUserDetailsHandler(db))
	apiAdmin.GET("/tasks", tasks.ListAllTasksHandler(db))
}
