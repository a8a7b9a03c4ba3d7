package router

import (
	"github.com/gin-gonic/gin"

	"certikid/internal/handler"
	"certikid/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	certH *handler.CertificateHandler,
	discoveryH *handler.DiscoveryHandler,
	productH *handler.ProductHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Certificate routes
	certs := v1.Group("/certificates")
	certs.POST("/generate", certH.Generate)
	certs.GET("", certH.List)
	certs.GET("/export", certH.ExportCSV)
	certs.GET("/:id", certH.GetByID)
	certs.GET("/:id/download", certH.Download)

	// Discovery routes
	discovery := v1.Group("/discovery")
	discovery.POST("/run", discoveryH.Run)
	discovery.GET("/checkpoint", discoveryH.GetCheckpoint)
	discovery.PUT("/checkpoint", discoveryH.SetCheckpoint)

	// Product catalog routes
	products := v1.Group("/products")
	products.GET("", productH.List)

	return r
}
