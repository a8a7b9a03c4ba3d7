package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db           *sqlx.DB
	templatePath string
}

// NewHealthHandler creates a new HealthHandler. templatePath is the
// certificate template whose presence readiness verifies.
func NewHealthHandler(db *sqlx.DB, templatePath string) *HealthHandler {
	return &HealthHandler{db: db, templatePath: templatePath}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The instance is ready when the certificate
// register answers and the certificate template is in place; without either,
// generation requests can only fail.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}
	if _, err := os.Stat(h.templatePath); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "certificate template not readable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
