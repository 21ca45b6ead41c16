package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bajeti/bajeti-backend/internal/middleware"
)

// Handlers bundles the handlers the router wires up
type Handlers struct {
	Auth        *AuthHandler
	Profile     *ProfileHandler
	Category    *CategoryHandler
	Account     *AccountHandler
	Transaction *TransactionHandler
	Budget      *BudgetHandler
	Report      *ReportHandler
	Dashboard   *DashboardHandler
	WebSocket   *WebSocketHandler
}

// RegisterRoutes registers all API routes under /api/v1
func RegisterRoutes(e *echo.Echo, h Handlers, auth *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter) {
	v1 := e.Group("/api/v1")

	// WebSocket authenticates via query token inside the handler
	v1.GET("/ws", h.WebSocket.HandleConnection)

	api := v1.Group("", auth.Authenticate())
	if rateLimiter != nil {
		api.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	api.POST("/auth/callback", h.Auth.Callback)
	api.GET("/auth/me", h.Auth.Me)

	api.GET("/profile", h.Profile.GetProfile)
	api.PUT("/profile", h.Profile.UpdateProfile)

	api.GET("/categories", h.Category.GetCategories)
	api.POST("/categories", h.Category.CreateCategory)
	api.DELETE("/categories/:id", h.Category.DeleteCategory)

	api.GET("/accounts", h.Account.GetAccounts)
	api.POST("/accounts", h.Account.CreateAccount)
	api.PUT("/accounts/:id", h.Account.UpdateAccount)
	api.PATCH("/accounts/:id/balance", h.Account.UpdateBalance)
	api.DELETE("/accounts/:id", h.Account.ArchiveAccount)

	api.GET("/transactions", h.Transaction.GetTransactions)
	api.POST("/transactions", h.Transaction.CreateTransaction)
	api.POST("/transactions/:id/receipt", h.Transaction.AttachReceipt)
	api.GET("/transactions/:id/receipt", h.Transaction.GetReceipt)

	api.GET("/budgets", h.Budget.GetBudgets)
	api.POST("/budgets", h.Budget.CreateBudget)
	api.POST("/budgets/preview", h.Budget.PreviewAllocation)
	api.POST("/budgets/rebalance", h.Budget.Rebalance)
	api.GET("/budgets/:year/:month", h.Budget.GetRollup)

	api.GET("/reports/spending/:year/:month", h.Report.GetSpendingReport)

	api.GET("/dashboard/summary", h.Dashboard.GetSummary)
}
