package handlers

import (
	"github.com/gin-gonic/gin"

	"verdant/internal/auth"
	"verdant/internal/authz"
	"verdant/internal/middleware"
	"verdant/internal/services"
)

// StoreDeps are the services behind the plant store API.
type StoreDeps struct {
	Tokens   *auth.Tokens
	Enforcer *authz.Enforcer
	Accounts *services.Accounts
	Catalog  *services.Catalog
	Orders   *services.Orders
}

func RegisterStoreRoutes(r gin.IRouter, d StoreDeps) {
	guard := middleware.AuthGuard(d.Tokens)

	registerAuthRoutes(r, guard, d.Enforcer, d.Accounts)

	products := r.Group("/api/products")
	{
		products.GET("", GetProducts(d.Catalog))
		products.GET("/:id", GetProduct(d.Catalog))

		admin := products.Group("", guard, middleware.RequirePermission(d.Enforcer, authz.ResourceProducts, authz.ActionWrite))
		admin.POST("", CreateProduct(d.Catalog))
		admin.PUT("/:id", UpdateProduct(d.Catalog))
		admin.DELETE("/:id", DeleteProduct(d.Catalog))
	}

	orders := r.Group("/api/orders", guard)
	{
		orders.POST("", middleware.RequirePermission(d.Enforcer, authz.ResourceOrders, authz.ActionCreate), CreateOrder(d.Orders))
		orders.GET("/my", middleware.RequirePermission(d.Enforcer, authz.ResourceOrders, authz.ActionReadOwn), GetMyOrders(d.Orders))

		manage := middleware.RequirePermission(d.Enforcer, authz.ResourceOrders, authz.ActionManage)
		orders.GET("", manage, GetAllOrders(d.Orders))
		orders.PUT("/:id", manage, UpdateOrderStatus(d.Orders))
	}
}

// ProjectHubDeps are the services behind the project tool API.
type ProjectHubDeps struct {
	Tokens   *auth.Tokens
	Enforcer *authz.Enforcer
	Accounts *services.Accounts
	Projects *services.Projects
	Tasks    *services.Tasks
	Comments *services.Comments
}

// RegisterProjectHubRoutes mounts the project tool API. Every route needs a
// token; ownership and membership are checked by the services.
func RegisterProjectHubRoutes(r gin.IRouter, d ProjectHubDeps) {
	guard := middleware.AuthGuard(d.Tokens)

	registerAuthRoutes(r, guard, d.Enforcer, d.Accounts)

	projects := r.Group("/api/projects", guard)
	{
		projects.GET("", GetProjects(d.Projects))
		projects.POST("", CreateProject(d.Projects))
		projects.GET("/count", CountProjects(d.Projects))
		projects.GET("/due/today", GetProjectsDueToday(d.Projects))
		projects.GET("/:id", GetProject(d.Projects))
		projects.PUT("/:id", UpdateProject(d.Projects))
		projects.DELETE("/:id", DeleteProject(d.Projects))
		projects.GET("/:id/members", GetProjectMembers(d.Projects))
	}

	tasks := r.Group("/api/tasks", guard)
	{
		tasks.GET("", GetTasks(d.Tasks))
		tasks.POST("", CreateTask(d.Tasks))
		tasks.GET("/count", CountTasks(d.Tasks))
		tasks.GET("/count/user", CountMyTasks(d.Tasks))
		tasks.GET("/user", GetMyTasks(d.Tasks))
		tasks.GET("/due/today", GetTasksDueToday(d.Tasks))
		tasks.GET("/project/:projectId", GetProjectTasks(d.Tasks))
		tasks.GET("/:id", GetTask(d.Tasks))
		tasks.PUT("/:id", UpdateTask(d.Tasks))
		tasks.DELETE("/:id", DeleteTask(d.Tasks))
	}

	comments := r.Group("/api/comments", guard)
	{
		comments.POST("", CreateComment(d.Comments))
		comments.GET("/task/:taskId", GetTaskComments(d.Comments))
		comments.PUT("/:commentId", UpdateComment(d.Comments))
		comments.DELETE("/:commentId", DeleteComment(d.Comments))
	}
}

func registerAuthRoutes(r gin.IRouter, guard gin.HandlerFunc, enforcer *authz.Enforcer, accounts *services.Accounts) {
	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", Register(accounts))
	authGroup.POST("/login", Login(accounts))
	authGroup.GET("/me", guard, middleware.RequirePermission(enforcer, authz.ResourceProfile, authz.ActionRead), GetMe(accounts))
}
