package routes

import (
	"database/sql"

	"pettycash-api/handlers"
	"pettycash-api/services"
	"pettycash-api/store"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, db *sql.DB) {
	authHandler := &handlers.AuthHandler{DB: db}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
}

// SetupLedgerRoutes sets up the protected wallet, expense and dashboard routes.
func SetupLedgerRoutes(rg *gin.RouterGroup, st store.LedgerStore, ledger *services.LedgerService, dashboards *services.DashboardService) {
	dashboardHandler := &handlers.DashboardHandler{Store: st, Dashboards: dashboards}
	expenseHandler := &handlers.ExpenseHandler{Store: st, Ledger: ledger}
	walletHandler := &handlers.WalletHandler{Store: st, Ledger: ledger}

	rg.GET("/dashboard", dashboardHandler.GetDashboard)

	rg.GET("/expenses", expenseHandler.ListExpenses)
	rg.POST("/expenses", expenseHandler.CreateExpense)
	rg.DELETE("/expenses/:id", expenseHandler.DeleteExpense)

	rg.GET("/wallet", walletHandler.GetWallet)
	rg.POST("/wallet/:id/topup", walletHandler.TopUp)
}

// SetupCategoryRoutes sets up protected category management routes.
func SetupCategoryRoutes(rg *gin.RouterGroup, db *sql.DB) {
	categoryHandler := &handlers.CategoryHandler{DB: db}

	rg.GET("/categories", categoryHandler.ListCategories)
	rg.POST("/categories", categoryHandler.CreateCategory)
	rg.PUT("/categories/:id", categoryHandler.UpdateCategory)
	rg.DELETE("/categories/:id", categoryHandler.DeleteCategory)
}

// SetupUserRoutes sets up protected user routes.
func SetupUserRoutes(rg *gin.RouterGroup, db *sql.DB) {
	userHandler := &handlers.UserHandler{DB: db}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.PUT("/user/profile", userHandler.UpdateProfile)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
}
