package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"certikid/internal/domain"
	"certikid/internal/handler"
	"certikid/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvoiceNotFound, http.StatusNotFound, "INVOICE_NOT_FOUND"},
		{domain.ErrInvalidIdentifier, http.StatusBadRequest, "INVALID_IDENTIFIER"},
		{domain.ErrNoCheckpoint, http.StatusBadRequest, "NO_CHECKPOINT"},
		{domain.ErrDiscoveryRunning, http.StatusConflict, "DISCOVERY_RUNNING"},
		{domain.ErrTemplateMissing, http.StatusInternalServerError, "TEMPLATE_MISSING"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		status, code, _ := handler.MapDomainError(tt.err)
		assert.Equal(t, tt.status, status, tt.code)
		assert.Equal(t, tt.code, code)
	}
}

func TestDiscoveryHandler_GetCheckpoint(t *testing.T) {
	checkpoint := new(mocks.MockCheckpointStore)
	checkpoint.On("Get", mock.Anything).Return("PK202124601", nil)
	h := handler.NewDiscoveryHandler(nil, checkpoint)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/discovery/checkpoint", nil)

	h.GetCheckpoint(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "PK202124601", data["checkpoint"])
}

// An absent checkpoint reads back as empty rather than a 404: the register
// starts out without one.
func TestDiscoveryHandler_GetCheckpoint_Absent(t *testing.T) {
	checkpoint := new(mocks.MockCheckpointStore)
	checkpoint.On("Get", mock.Anything).Return("", domain.ErrNotFound)
	h := handler.NewDiscoveryHandler(nil, checkpoint)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/discovery/checkpoint", nil)

	h.GetCheckpoint(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "", data["checkpoint"])
}

// The stored checkpoint is the normalized form, whatever shape came in.
func TestDiscoveryHandler_SetCheckpoint_Normalizes(t *testing.T) {
	checkpoint := new(mocks.MockCheckpointStore)
	checkpoint.On("Set", mock.Anything, "PK202124601").Return(nil)
	h := handler.NewDiscoveryHandler(nil, checkpoint)

	body, _ := json.Marshal(map[string]string{"checkpoint": "pk2021 24601"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPut, "/api/v1/discovery/checkpoint", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.SetCheckpoint(c)

	assert.Equal(t, http.StatusOK, w.Code)
	checkpoint.AssertExpectations(t)
}

func TestDiscoveryHandler_SetCheckpoint_Invalid(t *testing.T) {
	h := handler.NewDiscoveryHandler(nil, new(mocks.MockCheckpointStore))

	body, _ := json.Marshal(map[string]string{"checkpoint": "!!!"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPut, "/api/v1/discovery/checkpoint", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.SetCheckpoint(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCertificateHandler_GetByID_InvalidID(t *testing.T) {
	h := handler.NewCertificateHandler(nil, new(mocks.MockCertificateRepo), nil, "", 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/certificates/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCertificateHandler_Download(t *testing.T) {
	certRepo := new(mocks.MockCertificateRepo)
	storage := new(mocks.MockObjectStorage)
	h := handler.NewCertificateHandler(nil, certRepo, storage, "test-bucket", 3600)

	certID := uuid.New()
	cert := &domain.Certificate{ID: certID, OutputPath: "certificates/Certificate_PK202124601.pdf"}
	certRepo.On("GetByID", mock.Anything, certID).Return(cert, nil)
	storage.On("GetPresignedURL", mock.Anything, "test-bucket", cert.OutputPath, int64(3600)).
		Return("https://s3/signed", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/certificates/"+certID.String()+"/download", nil)
	c.Params = gin.Params{{Key: "id", Value: certID.String()}}

	h.Download(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "https://s3/signed", data["url"])

	certRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestCertificateHandler_ExportCSV(t *testing.T) {
	products, err := json.Marshal([]domain.MatchedProduct{
		{Code: "PK-1234", Name: "Masinuta electrica PREMIER Rio", WarrantyMonths: 24, Matched: true},
	})
	require.NoError(t, err)

	certRepo := new(mocks.MockCertificateRepo)
	certRepo.On("List", mock.Anything, 0, 500).Return([]domain.Certificate{
		{ID: uuid.New(), InvoiceNumber: "PK202124601", ClientName: "POPESCU ION", Products: products},
	}, 1, nil)
	h := handler.NewCertificateHandler(nil, certRepo, nil, "", 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/certificates/export", nil)

	h.ExportCSV(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(body), "Invoice Number")
	assert.Contains(t, string(body), "PK202124601")
	certRepo.AssertExpectations(t)
}

func TestProductHandler_List(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	repo.On("GetAll", mock.Anything, false).Return([]domain.Product{
		{Code: "PK-1234", Name: "Masinuta electrica PREMIER Rio", IsActive: true},
	}, nil)
	h := handler.NewProductHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/products", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestProductHandler_List_IncludeInactive(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	repo.On("GetAll", mock.Anything, true).Return([]domain.Product{}, nil)
	h := handler.NewProductHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/products?include_inactive=true", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}
