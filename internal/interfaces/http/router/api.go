package router

import (
	"github.com/gin-gonic/gin"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/interfaces/http/handler"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/interfaces/http/middleware"
)

// Handlers bundles the handlers served under /api/<version>
type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Loan   *handler.LoanHandler
	Asset  *handler.AssetHandler
	System *handler.SystemHandler
}

// Guards are the access checks placed in front of API routes. Authenticate
// must store the caller's identity.Actor; LoginLimit may be nil.
type Guards struct {
	Authenticate gin.HandlerFunc
	LoginLimit   gin.HandlerFunc
}

// APIGroups returns the route groups of the lending API. Everything except
// login and refresh requires a token; catalog changes, stock changes, loan
// transitions, export and user creation also require the ADMIN role.
func APIGroups(h Handlers, g Guards) []RouteRegistrar {
	admin := middleware.RequireAdmin()

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", withOptional(g.LoginLimit, h.Auth.Login)...)
	authRoutes.POST("/refresh", h.Auth.RefreshToken)
	authRoutes.Group("session", "").
		Use(g.Authenticate).
		GET("/me", h.Auth.Me)

	userRoutes := NewDomainGroup("users", "/users").Use(g.Authenticate)
	userRoutes.POST("", admin, h.User.Create)
	userRoutes.GET("/:id", h.User.Get)

	loanRoutes := NewDomainGroup("loans", "/loans").Use(g.Authenticate)
	loanRoutes.POST("", h.Loan.Create)
	loanRoutes.GET("", h.Loan.List)
	loanRoutes.GET("/:id", h.Loan.Get)
	loanRoutes.PATCH("/:id", admin, h.Loan.Transition)

	assetRoutes := NewDomainGroup("assets", "/assets").Use(g.Authenticate)
	assetRoutes.GET("", h.Asset.List)
	assetRoutes.GET("/export", admin, h.Asset.Export)
	assetRoutes.PUT("/stock", admin, h.Asset.SetStock)
	assetRoutes.POST("/stock", admin, h.Asset.AdjustStock)
	assetRoutes.GET("/:id", h.Asset.Get)
	assetRoutes.POST("", admin, h.Asset.Create)
	assetRoutes.PATCH("/:id", admin, h.Asset.Update)
	assetRoutes.DELETE("/:id", admin, h.Asset.Delete)

	systemRoutes := NewDomainGroup("system", "/system").Use(g.Authenticate)
	systemRoutes.GET("/info", h.System.GetSystemInfo)

	return []RouteRegistrar{authRoutes, userRoutes, loanRoutes, assetRoutes, systemRoutes}
}

func withOptional(guard gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if guard == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{guard, h}
}
