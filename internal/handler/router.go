package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MIDevJourney/invoice-analyzer/internal/middleware"
)

// Version is reported by the health endpoint. Overridable at build time via
// -ldflags "-X .../internal/handler.Version=...".
var Version = "dev"

// NewRouter wires all HTTP routes. Everything under /invoices requires a
// valid Bearer token.
func NewRouter(auth *AuthHandler, invoices *InvoiceHandler, jwtSecret []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.Register)
		authGroup.POST("/token", auth.Token)
	}

	invGroup := r.Group("/invoices", middleware.JWTAuth(jwtSecret))
	{
		invGroup.GET("", invoices.List)
		invGroup.POST("", invoices.Upload)
		invGroup.GET("/export", invoices.Export)
		invGroup.GET("/:id", invoices.Get)
		invGroup.PUT("/:id", invoices.Update)
		invGroup.DELETE("/:id", invoices.Delete)
		invGroup.POST("/:id/extract", invoices.Extract)
	}

	return r
}
