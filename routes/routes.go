package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"bookwise/app"
	"bookwise/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	bookCtl := controllers.NewBookController(s)
	borrowCtl := controllers.NewBorrowController(s)
	adminBorrowCtl := controllers.NewAdminBorrowController(s)
	adminUserCtl := controllers.NewAdminUserController(s)
	adminBookCtl := controllers.NewAdminBookController(s)
	statsCtl := controllers.NewStatsController(s)

	authMW := app.AuthRequired(a.AppSessions(), s.Repo)
	adminMW := app.AdminOnly()
	approvedMW := app.ApprovedOnly()
	seenMW := app.TouchLastActivity(s.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// Auth (public)
	// ------------------------------
	auth := r.Group("/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
	}

	authed := r.Group("/auth", authMW, seenMW)
	{
		authed.POST("/logout", authCtl.Logout)
		authed.GET("/whoami", authCtl.WhoAmI)
	}

	// ------------------------------
	// Catalog and favorites
	// ------------------------------
	books := r.Group("/api/books", authMW, seenMW)
	{
		books.GET("", bookCtl.ListBooks)
		books.GET("/:id", bookCtl.GetBook)
		books.POST("/:id/favorite", bookCtl.ToggleFavorite)
	}

	// ------------------------------
	// Borrowing (approved accounts only)
	// ------------------------------
	borrow := r.Group("/api", authMW, seenMW, approvedMW)
	{
		borrow.POST("/books/:id/borrow", borrowCtl.CreateRequest)
		borrow.POST("/books/:id/renew", borrowCtl.Renew)
		borrow.POST("/requests/:requestId/cancel", borrowCtl.Cancel)
		borrow.POST("/requests/:requestId/return", borrowCtl.Return)
	}

	me := r.Group("/api/my", authMW, seenMW)
	{
		me.GET("/requests", borrowCtl.ListMine)
		me.GET("/favorites", bookCtl.ListFavorites)
	}

	// ------------------------------
	// Admin
	// ------------------------------
	admin := r.Group("/api/admin", authMW, adminMW)
	{
		admin.GET("/users", adminUserCtl.ListUsers)
		admin.PATCH("/users/:id/status", adminUserCtl.SetStatus)

		admin.POST("/books", adminBookCtl.CreateBook)
		admin.PUT("/books/:id", adminBookCtl.UpdateBook)
		admin.DELETE("/books/:id", adminBookCtl.DeleteBook)

		admin.GET("/requests", adminBorrowCtl.ListRequests)
		admin.PATCH("/requests/:requestId/status", adminBorrowCtl.SetStatus)

		admin.GET("/stats", statsCtl.Dashboard)
	}
}
