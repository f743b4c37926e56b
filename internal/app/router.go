// Package app assembles the HTTP surface: services, handlers, middleware and
// routes.
package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"ronin/internal/events"
	"ronin/internal/handlers"
	"ronin/internal/middleware"
	"ronin/internal/realtime"
	"ronin/internal/rollover"
	"ronin/internal/services"
	"ronin/internal/validator"
)

// Deps are the external collaborators of the router.
type Deps struct {
	DB        *gorm.DB
	Publisher events.Publisher
	// Hub is optional. Without it budget websockets answer 503.
	Hub                 *realtime.Hub
	AllowedOrigins      []string
	PipelineAPIKey      string
	RolloverConcurrency int
}

// NewRouter wires services and handlers into a gin engine.
func NewRouter(deps Deps) *gin.Engine {
	validator.Register()

	db := deps.DB

	userService := services.NewUserService(db)
	cardService := services.NewCardService(db)
	categoryService := services.NewCategoryService(db)
	budgetService := services.NewBudgetService(db)
	transactionService := services.NewTransactionService(db)
	auditService := services.NewAuditService(db)

	var broadcaster services.Broadcaster
	var subscriber handlers.BudgetSubscriber
	if deps.Hub != nil {
		broadcaster = deps.Hub
		subscriber = deps.Hub
	}
	notifier := services.NewNotifier(deps.Publisher, broadcaster, budgetService)
	processor := rollover.NewProcessor(db, deps.Publisher, deps.RolloverConcurrency)

	authHandler := handlers.NewAuthHandler(userService, auditService)
	cardHandler := handlers.NewCardHandler(cardService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService, notifier, subscriber)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService, notifier)
	rolloverHandler := handlers.NewRolloverHandler(processor)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     deps.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(deps.PipelineAPIKey))
	pipeline.POST("/rollover", rolloverHandler.RunRollover)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	cards := protected.Group("/cards")
	cards.POST("", cardHandler.CreateCard)
	cards.GET("", cardHandler.GetCards)
	cards.GET("/:id", cardHandler.GetCard)
	cards.PUT("/:id", cardHandler.UpdateCard)
	cards.DELETE("/:id", cardHandler.DeleteCard)
	cards.GET("/:id/balance", cardHandler.GetCardBalance)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/totals", budgetHandler.GetBudgetTotals)
	budgets.GET("/:id/recommendations", budgetHandler.GetRecommendations)
	budgets.GET("/:id/transactions", transactionHandler.GetBudgetTransactions)
	budgets.GET("/:id/ws", budgetHandler.Subscribe)
	budgets.POST("/:id/categories", budgetHandler.AddBudgetCategory)
	budgets.PUT("/:id/categories/:budgetCategoryId", budgetHandler.UpdateBudgetCategory)
	budgets.DELETE("/:id/categories/:budgetCategoryId", budgetHandler.RemoveBudgetCategory)
	budgets.GET("/:id/categories/:budgetCategoryId/summary", budgetHandler.GetCategorySummary)
	budgets.POST("/:id/incomes", budgetHandler.AddIncome)
	budgets.PUT("/:id/incomes/:incomeId", budgetHandler.UpdateIncome)
	budgets.DELETE("/:id/incomes/:incomeId", budgetHandler.RemoveIncome)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.POST("/card-payment", transactionHandler.CreateCardPayment)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.POST("/:id/duplicate", transactionHandler.DuplicateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	return router
}
