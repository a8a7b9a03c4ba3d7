package handler

import (
	"github.com/gin-gonic/gin"

	"certikid/internal/port"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	products port.ProductRepository
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products port.ProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	products, err := h.products.GetAll(c.Request.Context(), includeInactive)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, products)
}
