package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"certikid/internal/domain"
	"certikid/internal/port"
	"certikid/internal/service"
	"certikid/mocks"
)

func notFoundErr(number string) error {
	return fmt.Errorf("%w: PK2021 %s", domain.ErrInvoiceNotFound, number)
}

// expectExisting wires the full pipeline mocks for one invoice number that
// exists and yields a certificate.
func expectExisting(m *certServiceMocks, number string) {
	pdfIn := []byte("%PDF-1.4 factura " + number)
	m.source.On("Fetch", mock.Anything, "PK2021", number).Return(pdfIn, nil)
	m.converter.On("Convert", pdfIn).Return(invoiceText(number), nil)
	m.composer.On("Compose", mock.AnythingOfType("*port.CertificateData")).
		Return([]byte("%PDF out"), "Certificate_PK2021"+number+".pdf", nil)
	m.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{}, nil)
	m.certRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Certificate")).Return(nil)
}

func TestDiscoveryRun_StopsAfterConsecutiveNotFound(t *testing.T) {
	certSvc, m := newTestCertService("PK")
	catalog := testCatalog()
	m.productRepo.On("GetAll", mock.Anything, true).Return(catalog, nil)
	m.productRepo.On("GetByCode", mock.Anything, "PK-1234").Return(&catalog[0], nil)

	expectExisting(m, "24602")
	m.source.On("Fetch", mock.Anything, "PK2021", "24603").Return(nil, notFoundErr("24603"))
	m.source.On("Fetch", mock.Anything, "PK2021", "24604").Return(nil, notFoundErr("24604"))

	checkpoint := new(mocks.MockCheckpointStore)
	checkpoint.On("Get", mock.Anything).Return("PK202124601", nil)
	checkpoint.On("Set", mock.Anything, "PK202124602").Return(nil)

	svc := service.NewDiscoveryService(certSvc, checkpoint, service.DiscoveryConfig{
		MaxAttempts:   10,
		NotFoundLimit: 2,
	})

	run, err := svc.Run(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, run.Attempted)
	assert.Equal(t, 1, run.Existed)
	assert.Equal(t, 1, run.Generated)
	assert.Equal(t, 2, run.NotFound)
	assert.Empty(t, run.Errors)
	assert.Equal(t, "PK202124602", run.Checkpoint)

	checkpoint.AssertExpectations(t)
	m.source.AssertExpectations(t)
}

// When nothing past the checkpoint exists, the checkpoint must not move and
// must not be rewritten.
func TestDiscoveryRun_CheckpointNotPersistedWhenUnmoved(t *testing.T) {
	certSvc, m := newTestCertService("PK")
	m.source.On("Fetch", mock.Anything, "PK2021", "24602").Return(nil, notFoundErr("24602"))
	m.source.On("Fetch", mock.Anything, "PK2021", "24603").Return(nil, notFoundErr("24603"))

	checkpoint := new(mocks.MockCheckpointStore)
	checkpoint.On("Get", mock.Anything).Return("PK202124601", nil)

	svc := service.NewDiscoveryService(certSvc, checkpoint, service.DiscoveryConfig{
		MaxAttempts:   10,
		NotFoundLimit: 2,
	})

	run, err := svc.Run(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, run.Attempted)
	assert.Equal(t, 0, run.Existed)
	assert.Equal(t, "PK202124601", run.Checkpoint)
	checkpoint.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

// A not-found attempt followed by an existing one advances the checkpoint to
// the existing invoice only; the unconfirmed number is never written.
func TestDiscoveryRun_CheckpointSkipsUnconfirmedNumber(t *testing.T) {
	certSvc, m := newTestCertService("PK")
	catalog := testCatalog()
	m.productRepo.On("GetAll", mock.Anything, true).Return(catalog, nil)
	m.productRepo.On("GetByCode", mock.Anything, "PK-1234").Return(&catalog[0], nil)

	m.source.On("Fetch", mock.Anything, "PK2021", "24602").Return(nil, notFoundErr("24602"))
	expectExisting(m, "24603")

	checkpoint := new(mocks.MockCheckpointStore)
	checkpoint.On("Get", mock.Anything).Return("PK202124601", nil)
	checkpoint.On("Set", mock.Anything, "PK202124603").Return(nil)

	svc := service.NewDiscoveryService(certSvc, checkpoint, service.DiscoveryConfig{
		MaxAttempts:   50,
		NotFoundLimit: 2,
	})

	run, err := svc.Run(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, run.Attempted)
	assert.Equal(t, 1, run.NotFound)
	assert.Equal(t, 1, run.Existed)
	assert.Equal(t, "PK202124603", run.Checkpoint)
	checkpoint.AssertNumberOfCalls(t, "Set", 1)
	checkpoint.AssertNotCalled(t, "Set", mock.Anything, "PK202124602")
	checkpoint.AssertExpectations(t)
}

// Transient failures are collected per attempt, reset the not-found streak,
// and never terminate the loop on their own.
func TestDiscoveryRun_TransientErrorDoesNotStop(t *testing.T) {
	certSvc, m := newTestCertService("PK")
	m.source.On("Fetch", mock.Anything, "PK2021", "24602").Return(nil, notFoundErr("24602"))
	m.source.On("Fetch", mock.Anything, "PK2021", "24603").Return(nil, errors.New("billing API: status 502"))
	m.source.On("Fetch", mock.Anything, "PK2021", "24604").Return(nil, notFoundErr("24604"))
	m.source.On("Fetch", mock.Anything, "PK2021", "24605").Return(nil, notFoundErr("24605"))

	checkpoint := new(mocks.MockCheckpointStore)
	checkpoint.On("Get", mock.Anything).Return("PK202124601", nil)

	svc := service.NewDiscoveryService(certSvc, checkpoint, service.DiscoveryConfig{
		MaxAttempts:   10,
		NotFoundLimit: 2,
	})

	run, err := svc.Run(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 4, run.Attempted)
	assert.Equal(t, 3, run.NotFound)
	require.Len(t, run.Errors, 1)
	assert.Contains(t, run.Errors[0], "502")
}

func TestDiscoveryRun_NoCheckpoint(t *testing.T) {
	certSvc, _ := newTestCertService("PK")

	checkpoint := new(mocks.MockCheckpointStore)
	checkpoint.On("Get", mock.Anything).Return("", domain.ErrNotFound)

	svc := service.NewDiscoveryService(certSvc, checkpoint, service.DiscoveryConfig{})
	_, err := svc.Run(context.Background(), 0)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoCheckpoint))
}

func TestDiscoveryRun_InvalidCheckpoint(t *testing.T) {
	certSvc, _ := newTestCertService("PK")

	checkpoint := new(mocks.MockCheckpointStore)
	checkpoint.On("Get", mock.Anything).Return("!!!", nil)

	svc := service.NewDiscoveryService(certSvc, checkpoint, service.DiscoveryConfig{})
	_, err := svc.Run(context.Background(), 0)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidIdentifier))
}

// maxAttempts bounds the run even when every number exists.
func TestDiscoveryRun_MaxAttemptsBound(t *testing.T) {
	certSvc, m := newTestCertService("PK")
	catalog := testCatalog()
	m.productRepo.On("GetAll", mock.Anything, true).Return(catalog, nil)
	m.productRepo.On("GetByCode", mock.Anything, "PK-1234").Return(&catalog[0], nil)

	expectExisting(m, "24602")
	expectExisting(m, "24603")

	checkpoint := new(mocks.MockCheckpointStore)
	checkpoint.On("Get", mock.Anything).Return("PK202124601", nil)
	checkpoint.On("Set", mock.Anything, "PK202124603").Return(nil)

	svc := service.NewDiscoveryService(certSvc, checkpoint, service.DiscoveryConfig{
		MaxAttempts:   50,
		NotFoundLimit: 2,
	})

	run, err := svc.Run(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, run.Attempted)
	assert.Equal(t, 2, run.Existed)
	assert.Equal(t, "PK202124603", run.Checkpoint)
	checkpoint.AssertExpectations(t)
}
