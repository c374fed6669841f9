package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/focus/api/handler"
)

type Handlers struct {
	Task     *apiHandler.TaskHandler
	Timer    *apiHandler.TimerHandler
	Goal     *apiHandler.GoalHandler
	Category *apiHandler.CategoryHandler
	Report   *apiHandler.ReportHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	api := r.Group("/api/v1")

	api.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	api.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	api.GET("/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	api.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	api.GET("/tasks/{id}/entries", authMiddleware(handlers.Task.GetEntries))

	api.POST("/tasks/{id}/start", authMiddleware(handlers.Timer.Start))
	api.POST("/tasks/{id}/stop", authMiddleware(handlers.Timer.Stop))
	api.POST("/tasks/{id}/complete", authMiddleware(handlers.Timer.Complete))
	api.GET("/timers/open", authMiddleware(handlers.Timer.OpenIntervals))
	api.POST("/timers/reconcile", authMiddleware(handlers.Timer.Reconcile))

	api.GET("/goals", authMiddleware(handlers.Goal.GetGoals))
	api.POST("/goals", authMiddleware(handlers.Goal.CreateGoal))
	api.GET("/goals/{id}", authMiddleware(handlers.Goal.GetGoal))
	api.PUT("/goals/{id}/status", authMiddleware(handlers.Goal.UpdateStatus))

	api.GET("/categories", authMiddleware(handlers.Category.GetCategories))
	api.POST("/categories", authMiddleware(handlers.Category.CreateCategory))

	api.GET("/aggregate", authMiddleware(handlers.Report.Aggregate))

	return r
}
