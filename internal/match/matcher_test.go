package match_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"certikid/internal/domain"
	"certikid/internal/invoice"
	"certikid/internal/match"
	"certikid/mocks"
)

func testCatalog() []domain.Product {
	return []domain.Product{
		{
			Code:             "PK-1234",
			Name:             "Masinuta electrica PREMIER Rio 12V, culoare roz",
			WarrantyMonthsPF: 24,
			WarrantyMonthsPJ: 12,
			MinVoltage:       12,
			IsActive:         true,
		},
		{
			Code:             "PK-5678",
			Name:             "ATV electric PREMIER Hercules 24V",
			WarrantyMonthsPF: 36,
			WarrantyMonthsPJ: 12,
			MinVoltage:       24,
			IsActive:         true,
		},
		{
			Code:             "PK-9999",
			Name:             "Kart electric PREMIER Drift",
			WarrantyMonthsPF: 24,
			WarrantyMonthsPJ: 12,
			IsActive:         false,
		},
	}
}

func TestMatch_ByCode(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	catalog := testCatalog()
	repo.On("GetAll", mock.Anything, true).Return(catalog, nil)
	repo.On("GetByCode", mock.Anything, "PK-1234").Return(&catalog[0], nil)

	m := match.NewMatcher(repo)
	got, err := m.Match(context.Background(), []invoice.LineItem{
		{Code: "PK-1234", Name: "ceva complet diferit", Quantity: 2},
	}, false)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Matched)
	assert.Equal(t, "PK-1234", got[0].Code)
	assert.Equal(t, 24, got[0].WarrantyMonths)
	assert.Equal(t, 2, got[0].Quantity)
	repo.AssertExpectations(t)
}

func TestMatch_ByExactName(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	repo.On("GetAll", mock.Anything, true).Return(testCatalog(), nil)

	m := match.NewMatcher(repo)
	got, err := m.Match(context.Background(), []invoice.LineItem{
		{Name: "masinuta ELECTRICA premier rio 12v, CULOARE roz", Quantity: 1},
	}, false)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Matched)
	assert.Equal(t, "PK-1234", got[0].Code)
}

// An extracted description with trailing extras still matches when it
// contains the full catalog name.
func TestMatch_ExtractedContainsCatalogName(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	repo.On("GetAll", mock.Anything, true).Return(testCatalog(), nil)

	m := match.NewMatcher(repo)
	got, err := m.Match(context.Background(), []invoice.LineItem{
		{Name: "ATV electric PREMIER Hercules 24V, culoare verde, roti EVA", Quantity: 1},
	}, false)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Matched)
	assert.Equal(t, "PK-5678", got[0].Code)
	assert.Equal(t, 36, got[0].WarrantyMonths)
}

func TestMatch_VATPayerSelectsCompanyTerm(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	catalog := testCatalog()
	repo.On("GetAll", mock.Anything, true).Return(catalog, nil)
	repo.On("GetByCode", mock.Anything, "PK-1234").Return(&catalog[0], nil)

	m := match.NewMatcher(repo)
	got, err := m.Match(context.Background(), []invoice.LineItem{
		{Code: "PK-1234", Name: "Masinuta", Quantity: 1},
	}, true)

	require.NoError(t, err)
	assert.Equal(t, 12, got[0].WarrantyMonths)
}

func TestMatch_InactiveProductNotConfigured(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	catalog := testCatalog()
	repo.On("GetAll", mock.Anything, true).Return(catalog, nil)
	repo.On("GetByCode", mock.Anything, "PK-9999").Return(&catalog[2], nil)

	m := match.NewMatcher(repo)
	got, err := m.Match(context.Background(), []invoice.LineItem{
		{Code: "PK-9999", Name: "Kart electric PREMIER Drift", Quantity: 1},
	}, false)

	require.NoError(t, err)
	assert.False(t, got[0].Matched)
	assert.Equal(t, match.ReasonNotConfigured, got[0].Reason)
}

func TestMatch_UnknownProduct(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	repo.On("GetAll", mock.Anything, true).Return(testCatalog(), nil)

	m := match.NewMatcher(repo)
	got, err := m.Match(context.Background(), []invoice.LineItem{
		{Name: "Bicicleta obisnuita fara motor", Quantity: 1},
	}, false)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Matched)
	assert.Equal(t, match.ReasonNotFound, got[0].Reason)
	assert.Equal(t, "Bicicleta obisnuita fara motor", got[0].Name)
}

func TestMatch_PreservesOrder(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	catalog := testCatalog()
	repo.On("GetAll", mock.Anything, true).Return(catalog, nil)
	repo.On("GetByCode", mock.Anything, "PK-5678").Return(&catalog[1], nil)

	m := match.NewMatcher(repo)
	got, err := m.Match(context.Background(), []invoice.LineItem{
		{Name: "produs necunoscut complet", Quantity: 1},
		{Code: "PK-5678", Name: "ATV", Quantity: 1},
	}, false)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].Matched)
	assert.True(t, got[1].Matched)
}

func TestMatch_EmptyInput(t *testing.T) {
	m := match.NewMatcher(new(mocks.MockProductRepo))
	got, err := m.Match(context.Background(), nil, false)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMinVoltage(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	catalog := testCatalog()
	repo.On("GetByCode", mock.Anything, "PK-1234").Return(&catalog[0], nil)
	repo.On("GetByCode", mock.Anything, "PK-5678").Return(&catalog[1], nil)

	m := match.NewMatcher(repo)
	minV := m.MinVoltage(context.Background(), []domain.MatchedProduct{
		{Code: "PK-5678", Matched: true},
		{Code: "PK-1234", Matched: true},
		{Name: "nepotrivit", Matched: false},
	})

	assert.Equal(t, 12, minV)
}

func TestMinVoltage_NoneKnown(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	repo.On("GetByCode", mock.Anything, "PK-0000").Return(nil, domain.ErrNotFound)

	m := match.NewMatcher(repo)
	assert.Equal(t, 0, m.MinVoltage(context.Background(), []domain.MatchedProduct{
		{Code: "PK-0000", Matched: true},
	}))
}
