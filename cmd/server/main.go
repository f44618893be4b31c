package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Solorzano97/LaCazuelaChapina/internal/ai"
	"github.com/Solorzano97/LaCazuelaChapina/internal/auth"
	"github.com/Solorzano97/LaCazuelaChapina/internal/branch"
	"github.com/Solorzano97/LaCazuelaChapina/internal/catalog"
	"github.com/Solorzano97/LaCazuelaChapina/internal/combo"
	"github.com/Solorzano97/LaCazuelaChapina/internal/dashboard"
	"github.com/Solorzano97/LaCazuelaChapina/internal/inventory"
	"github.com/Solorzano97/LaCazuelaChapina/internal/recipe"
	"github.com/Solorzano97/LaCazuelaChapina/internal/reports"
	"github.com/Solorzano97/LaCazuelaChapina/internal/sale"
	"github.com/Solorzano97/LaCazuelaChapina/internal/user"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/config"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/logger"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/middleware"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	logger.Init(cfg.Env)

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Requests())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		authHandler := auth.NewHandler(db, cfg)
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)

		// Google OAuth routes
		v1.POST("/auth/google", authHandler.GoogleLogin)
		v1.GET("/auth/google", authHandler.GoogleRedirect)
		v1.GET("/auth/google/callback", authHandler.GoogleCallback)

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired(cfg.JWTSecret))
		{
			// Auth - get current user
			protected.GET("/auth/me", authHandler.Me)

			// Catalog routes
			catalogHandler := catalog.NewHandler(db)
			protected.GET("/products", catalogHandler.ListProducts)
			protected.POST("/products", middleware.RequireRole(database.RoleAdmin, database.RoleManager), catalogHandler.CreateProduct)
			protected.GET("/products/:id", catalogHandler.GetProduct)
			protected.PUT("/products/:id", middleware.RequireRole(database.RoleAdmin, database.RoleManager), catalogHandler.UpdateProduct)
			protected.PATCH("/products/:id/toggle", middleware.RequireRole(database.RoleAdmin, database.RoleManager), catalogHandler.ToggleProduct)

			protected.GET("/attributes", catalogHandler.ListAttributes)
			protected.POST("/attributes", middleware.RequireRole(database.RoleAdmin, database.RoleManager), catalogHandler.CreateAttribute)
			protected.PUT("/attributes/:id", middleware.RequireRole(database.RoleAdmin, database.RoleManager), catalogHandler.UpdateAttribute)
			protected.PATCH("/attributes/:id/toggle", middleware.RequireRole(database.RoleAdmin, database.RoleManager), catalogHandler.ToggleAttribute)

			// Combo routes
			comboHandler := combo.NewHandler(db)
			protected.GET("/combos", comboHandler.List)
			protected.GET("/combos/seasonal", comboHandler.GetSeasonal)
			protected.GET("/combos/:id", comboHandler.Get)
			protected.POST("/combos", middleware.RequireRole(database.RoleAdmin, database.RoleManager), comboHandler.Create)
			protected.PUT("/combos/:id", middleware.RequireRole(database.RoleAdmin, database.RoleManager), comboHandler.Update)
			protected.DELETE("/combos/:id", middleware.RequireRole(database.RoleAdmin, database.RoleManager), comboHandler.Deactivate)

			// Sale routes
			saleHandler := sale.NewHandler(db, cfg)
			protected.GET("/sales", saleHandler.List)
			protected.POST("/sales", saleHandler.Create)
			protected.GET("/sales/:id", saleHandler.Get)
			protected.PATCH("/sales/:id/status", saleHandler.UpdateStatus)

			// Inventory routes
			inventoryHandler := inventory.NewHandler(db)
			protected.GET("/materials", inventoryHandler.ListMaterials)
			protected.POST("/materials", middleware.RequireRole(database.RoleAdmin, database.RoleManager), inventoryHandler.CreateMaterial)
			protected.GET("/materials/:id", inventoryHandler.GetMaterial)
			protected.PUT("/materials/:id", middleware.RequireRole(database.RoleAdmin, database.RoleManager), inventoryHandler.UpdateMaterial)
			protected.GET("/inventory/movements", inventoryHandler.ListMovements)
			protected.POST("/inventory/movements", inventoryHandler.RecordMovementHandler)
			protected.GET("/inventory/alerts", inventoryHandler.Alerts)

			// Recipe routes
			recipeHandler := recipe.NewHandler(db)
			protected.GET("/recipes/:product_id", recipeHandler.ListByProduct)
			protected.POST("/recipes/:product_id", middleware.RequireRole(database.RoleAdmin, database.RoleManager), recipeHandler.Upsert)
			protected.DELETE("/recipes/entries/:id", middleware.RequireRole(database.RoleAdmin, database.RoleManager), recipeHandler.Delete)
			protected.GET("/recipes/:product_id/consumption", recipeHandler.Consumption)

			// Dashboard routes
			dashboardHandler := dashboard.NewHandler(db)
			protected.GET("/dashboard", dashboardHandler.GetFull)
			protected.GET("/dashboard/kpis", dashboardHandler.GetKPIs)
			protected.GET("/dashboard/top-tamales", dashboardHandler.GetTopTamales)
			protected.GET("/dashboard/beverages-by-timeband", dashboardHandler.GetBeveragesByTimeband)
			protected.GET("/dashboard/profit-by-line", dashboardHandler.GetProfitByLine)
			protected.GET("/dashboard/waste", dashboardHandler.GetWaste)

			// Reports routes
			reportsHandler := reports.NewHandler(db)
			protected.GET("/reports/sales", reportsHandler.GetSalesReport)
			protected.GET("/reports/sales/export", middleware.RequireRole(database.RoleAdmin, database.RoleManager), reportsHandler.ExportSalesReport)

			// Branch routes
			branchHandler := branch.NewHandler(db)
			protected.GET("/branches", branchHandler.List)
			protected.POST("/branches", middleware.RequireRole(database.RoleAdmin), branchHandler.Create)
			protected.GET("/branches/:id", branchHandler.Get)
			protected.PUT("/branches/:id", middleware.RequireRole(database.RoleAdmin), branchHandler.Update)
			protected.PATCH("/branches/:id/toggle", middleware.RequireRole(database.RoleAdmin), branchHandler.Toggle)
			protected.GET("/branches/:id/stats", branchHandler.Stats)

			// User management routes (admin only)
			userHandler := user.NewHandler(db)
			admin := protected.Group("/users", middleware.RequireRole(database.RoleAdmin))
			admin.GET("", userHandler.List)
			admin.POST("", userHandler.Create)
			admin.GET("/:id", userHandler.Get)
			admin.PUT("/:id", userHandler.Update)
			admin.PATCH("/:id/toggle", userHandler.Toggle)

			// AI assistant routes
			assistant := ai.New(&cfg)
			aiHandler := ai.NewHandler(db, assistant)
			protected.POST("/ai/ask", aiHandler.Ask)
			protected.POST("/ai/suggest-combo", aiHandler.SuggestCombo)
			protected.GET("/ai/analyze-sales", aiHandler.AnalyzeSales)
			protected.GET("/ai/recommend-products", aiHandler.RecommendProducts)
			protected.GET("/ai/optimize-inventory", aiHandler.OptimizeInventory)
		}
	}

	// Start server
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
