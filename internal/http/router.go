package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"lifeboard/internal/auth"
	"lifeboard/internal/cache"
	"lifeboard/internal/config"
	"lifeboard/internal/http/handlers"
	"lifeboard/internal/http/middlewares"
	"lifeboard/internal/observability"
	"lifeboard/internal/repo/postgres"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type RouterDeps struct {
	Cfg         config.Config
	Log         *slog.Logger
	Pool        *pgxpool.Pool
	Prom        *observability.Prom
	Registry    *prometheus.Registry
	ReportCache cache.Store
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(otelgin.Middleware("lifeboard"))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health + metrics
	ping := func() error {
		if d.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return d.Pool.Ping(ctx)
	}

	r.GET("/health", handlers.NewHealthHandler(ping).Health)

	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(d.Pool)
	expensesRepo := postgres.NewExpensesRepo(d.Pool, d.Prom)
	todosRepo := postgres.NewTodosRepo(d.Pool)
	notesRepo := postgres.NewNotesRepo(d.Pool)
	jobsRepo := postgres.NewJobsRepo(d.Pool, d.Prom)

	jwtManager := auth.NewManager(d.Cfg.JWTSecret, d.Cfg.AccessTTL)
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	rl := middlewares.NewRateLimiter(d.Cfg.RateLimit, d.Cfg.RateLimitWindow)
	limitByIP := rl.RateLimiterMiddleware(middlewares.KeyByIP)
	limitByUser := rl.RateLimiterMiddleware(middlewares.KeyByUserOrIP)

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager, jobsRepo, d.Log)
	profileHandler := handlers.NewProfileHandler(usersRepo, todosRepo, expensesRepo, d.Log)
	expensesHandler := handlers.NewExpensesHandler(expensesRepo, d.ReportCache, d.Log)
	analysisHandler := handlers.NewAnalysisHandler(expensesRepo, d.ReportCache, d.Log)
	todosHandler := handlers.NewTodosHandler(todosRepo, d.Log)
	notesHandler := handlers.NewNotesHandler(notesRepo, d.Log)

	api := r.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/signup", limitByIP, authHandler.SignUp)
		users.POST("/login", limitByIP, authHandler.Login)
		users.POST("/forgot-password", limitByIP, authHandler.ForgotPassword)

		users.POST("/changePassword", authMW.RequireAuth(), limitByUser, authHandler.ChangePassword)
		users.GET("/profile/:userId", authMW.RequireAuth(), limitByUser, profileHandler.Dashboard)
	}

	todo := api.Group("/users/todo", authMW.RequireAuth(), limitByUser)
	{
		todo.POST("/lists/addList", todosHandler.AddNewList)
		todo.POST("/lists/addTask/:listId", todosHandler.AddTaskToList)
		todo.GET("/lists", todosHandler.GetAllLists)
		todo.GET("/lists/summary", todosHandler.GetSummary)
		todo.GET("/lists/getList/:listId", todosHandler.GetAllTasksFromList)
		todo.PUT("/lists/rename/:listName", todosHandler.UpdateListName)
		todo.DELETE("/lists/:listId", todosHandler.DeleteList)
		todo.GET("/lists/:listId/task/:taskId", todosHandler.GetTaskByID)
		todo.PUT("/lists/:listId/task/:taskId", todosHandler.UpdateTaskByID)
		todo.DELETE("/lists/:listId/task/:taskId", todosHandler.DeleteTaskByID)
	}

	expenses := api.Group("/expenses", authMW.RequireAuth(), limitByUser)
	{
		expenses.POST("", expensesHandler.AddExpense)
		expenses.GET("", expensesHandler.GetAllExpenses)
		expenses.GET("/:expenseId", expensesHandler.GetExpenseByID)
		expenses.PUT("/:expenseId", expensesHandler.UpdateExpense)
		expenses.DELETE("/:expenseId", expensesHandler.DeleteExpense)

		expenses.GET("/filter/date", expensesHandler.GetExpensesByDate)
		expenses.GET("/filter/month", expensesHandler.GetExpensesByMonth)
		expenses.GET("/filter/two-months", expensesHandler.GetExpensesForTwoMonths)

		expenses.GET("/analysis/category-breakdown", analysisHandler.CategoryBreakdown)
		expenses.GET("/analysis/spending-trends", analysisHandler.SpendingTrends)
		expenses.GET("/analysis/top-expenses", analysisHandler.TopExpenses)
		expenses.GET("/analysis/low-expenses", analysisHandler.LowestExpenses)

		expenses.GET("/dashboard/report", analysisHandler.DashboardReport)
	}

	notes := api.Group("/sticky-notes", authMW.RequireAuth(), limitByUser)
	{
		notes.POST("", notesHandler.CreateStickyNote)
		notes.GET("", notesHandler.GetStickyNotes)
		notes.PUT("/:id", notesHandler.UpdateStickyNote)
		notes.DELETE("/:id", notesHandler.DeleteStickyNote)
	}

	return r
}
