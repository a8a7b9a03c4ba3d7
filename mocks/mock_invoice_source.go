package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockInvoiceSource is a mock implementation of port.InvoiceSource.
type MockInvoiceSource struct {
	mock.Mock
}

func (m *MockInvoiceSource) Fetch(ctx context.Context, series, number string) ([]byte, error) {
	args := m.Called(ctx, series, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockTextConverter is a mock implementation of port.TextConverter.
type MockTextConverter struct {
	mock.Mock
}

func (m *MockTextConverter) Convert(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}
