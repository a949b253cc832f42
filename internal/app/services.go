package app

import (
	"github.com/gin-gonic/gin"

	"verdant/internal/database"
	"verdant/internal/handlers"
	"verdant/internal/services"
)

// PlantStore serves the catalog, accounts and orders.
var PlantStore = Spec{
	Name:          "plantstore",
	DefaultPort:   8000,
	Banner:        "Plant store API is running",
	EnsureIndexes: database.EnsureStoreIndexes,
	Mount: func(r gin.IRouter, rt *Runtime) {
		handlers.RegisterStoreRoutes(r, handlers.StoreDeps{
			Tokens:   rt.Tokens,
			Enforcer: rt.Enforcer,
			Accounts: services.NewAccounts(rt.Store.Users, rt.Tokens, rt.Clock, rt.Config.Auth.AllowRoleSignup),
			Catalog:  services.NewCatalog(rt.Store.Products, rt.Clock),
			Orders:   services.NewOrders(rt.Store.Orders, rt.Clock),
		})
	},
}

// ProjectHub serves projects, tasks and comments.
var ProjectHub = Spec{
	Name:          "projecthub",
	DefaultPort:   5174,
	Banner:        "Project management API is running",
	EnsureIndexes: database.EnsureProjectHubIndexes,
	Mount: func(r gin.IRouter, rt *Runtime) {
		handlers.RegisterProjectHubRoutes(r, handlers.ProjectHubDeps{
			Tokens:   rt.Tokens,
			Enforcer: rt.Enforcer,
			Accounts: services.NewAccounts(rt.Store.Users, rt.Tokens, rt.Clock, rt.Config.Auth.AllowRoleSignup),
			Projects: services.NewProjects(rt.Store, rt.Clock),
			Tasks:    services.NewTasks(rt.Store, rt.Clock),
			Comments: services.NewComments(rt.Store, rt.Clock, rt.Config.Database.Transactions),
		})
	},
}
