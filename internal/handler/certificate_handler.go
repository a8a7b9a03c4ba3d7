package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"certikid/internal/csvexport"
	"certikid/internal/port"
	"certikid/internal/service"
)

// CertificateHandler handles warranty certificate endpoints.
type CertificateHandler struct {
	certService   *service.CertificateService
	certRepo      port.CertificateRepository
	storage       port.ObjectStorage
	bucket        string
	presignExpiry int64
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(
	certService *service.CertificateService,
	certRepo port.CertificateRepository,
	storage port.ObjectStorage,
	bucket string,
	presignExpiry int64,
) *CertificateHandler {
	return &CertificateHandler{
		certService:   certService,
		certRepo:      certRepo,
		storage:       storage,
		bucket:        bucket,
		presignExpiry: presignExpiry,
	}
}

// Generate handles POST /api/v1/certificates/generate
func (h *CertificateHandler) Generate(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "identifier is required")
		return
	}

	result, err := h.certService.GenerateFromInput(c.Request.Context(), req.Identifier)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, result)
}

// List handles GET /api/v1/certificates
func (h *CertificateHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	certs, total, err := h.certRepo.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, certs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/certificates/:id
func (h *CertificateHandler) GetByID(c *gin.Context) {
	certID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid certificate ID")
		return
	}

	cert, err := h.certRepo.GetByID(c.Request.Context(), certID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, cert)
}

// Download handles GET /api/v1/certificates/:id/download
func (h *CertificateHandler) Download(c *gin.Context) {
	certID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid certificate ID")
		return
	}

	cert, err := h.certRepo.GetByID(c.Request.Context(), certID)
	if err != nil {
		HandleError(c, err)
		return
	}

	url, err := h.storage.GetPresignedURL(c.Request.Context(), h.bucket, cert.OutputPath, h.presignExpiry)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url, "expires_in": h.presignExpiry})
}

// csvExportBatchSize is the page size used when streaming the register export.
const csvExportBatchSize = 500

// ExportCSV handles GET /api/v1/certificates/export
func (h *CertificateHandler) ExportCSV(c *gin.Context) {
	filename := csvexport.BuildFilename("certificate_register")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	// The response body is streaming from the BOM on; errors past this point
	// can only be logged, not returned as a JSON envelope.
	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		log.Printf("certificateHandler.ExportCSV: writing BOM: %v", err)
		return
	}

	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		log.Printf("certificateHandler.ExportCSV: writing header: %v", err)
		return
	}

	for offset := 0; ; offset += csvExportBatchSize {
		certs, total, err := h.certRepo.List(c.Request.Context(), offset, csvExportBatchSize)
		if err != nil {
			log.Printf("certificateHandler.ExportCSV: listing certificates: %v", err)
			return
		}
		if err := w.WriteCertificates(certs); err != nil {
			log.Printf("certificateHandler.ExportCSV: writing rows: %v", err)
			return
		}
		if offset+len(certs) >= total || len(certs) == 0 {
			break
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Printf("certificateHandler.ExportCSV: flushing export: %v", err)
	}
}
