package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ocna/restaurant-pos/controllers"
	"github.com/ocna/restaurant-pos/middlewares"
	"github.com/ocna/restaurant-pos/models"
	"github.com/ocna/restaurant-pos/services"
)

// Deps are the services the API is built on.
type Deps struct {
	Auth       *services.Authenticator
	Ledger     *services.Ledger
	Kitchen    *services.Kitchen
	Catalog    *services.Catalog
	Reports    *services.Reports
	Tables     *services.TableRegistry
	Monitor    *services.ActiveMonitor
	PrintWidth int
	CORSOrigin string
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(d.Auth)
	tableCtrl := controllers.NewTableController(d.Tables, d.Ledger, d.Monitor)
	categoryCtrl := controllers.NewMenuCategoryController(d.Catalog)
	menuCtrl := controllers.NewMenuController(d.Catalog)
	orderCtrl := controllers.NewOrderController(d.Ledger, d.Kitchen)
	adminCtrl := controllers.NewAdminController(d.Reports)
	receiptCtrl := controllers.NewReceiptController(d.Ledger, d.PrintWidth)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	loginLimiter := middlewares.NewLoginRateLimiter()
	r.POST("/login", loginLimiter.RateLimit(), userCtrl.Login)

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	auth.POST("/logout", userCtrl.Logout)

	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.GET("/tables/active", tableCtrl.GetActiveTables)
	auth.GET("/categories", categoryCtrl.GetAllCategories)
	auth.GET("/menu-items", menuCtrl.GetAllMenus)
	auth.GET("/menu-items/:menu_id", menuCtrl.GetMenuByID)

	auth.GET("/tables/:name/order", orderCtrl.GetTableOrder)
	auth.POST("/tables/:name/items", orderCtrl.AdjustItem)
	auth.POST("/tables/:name/kitchen-ticket", middlewares.TicketLoggerMiddleware("kitchen"), orderCtrl.SendKitchenTicket)
	auth.POST("/tables/:name/checkout", middlewares.TicketLoggerMiddleware("payment"), orderCtrl.Checkout)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := auth.Group("/")
	admin.Use(middlewares.RequireRole(models.RoleAdmin))

	admin.POST("/tables", tableCtrl.CreateTable)
	admin.DELETE("/tables/:name", tableCtrl.DeleteTable)

	admin.POST("/categories", categoryCtrl.CreateCategory)
	admin.PUT("/categories/:cat_id", categoryCtrl.UpdateCategory)
	admin.DELETE("/categories/:cat_id", categoryCtrl.DeleteCategory)

	admin.POST("/menu-items", menuCtrl.CreateMenu)
	admin.PUT("/menu-items/:menu_id", menuCtrl.UpdateMenu)
	admin.DELETE("/menu-items/:menu_id", menuCtrl.DeleteMenu)

	admin.POST("/orders/:order_id/close", orderCtrl.CloseOrder)
	admin.GET("/orders/:order_id/receipt", receiptCtrl.GetReceipt)

	admin.GET("/reports/revenue", adminCtrl.GetRevenue)
	admin.GET("/reports/top-sellers", adminCtrl.GetTopSellers)
	admin.GET("/reports/summary", adminCtrl.GetSalesReport)

	return r
}
