package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"EstateLink/internal/handler"
	"EstateLink/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.RequestIDMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", handler.Login)
		auth.POST("/token/refresh", handler.RefreshToken)
	}

	tasks := v1.Group("/tasks")
	tasks.Use(middleware.AuthMiddleware())
	{
		tasks.GET("", handler.ListTasks)
		tasks.POST("", handler.CreateTask)
		tasks.GET("/stats", handler.GetTaskStats)
		tasks.GET("/:task_code", handler.GetTask)
		tasks.POST("/:task_code/cancel", handler.CancelTask)
	}

	jobs := v1.Group("/jobs")
	jobs.Use(middleware.AuthMiddleware())
	{
		jobs.POST("/scan", handler.TriggerScan)
		jobs.POST("/dispatch", handler.TriggerDispatch)
	}
}
