package mocks

import (
	"github.com/stretchr/testify/mock"

	"certikid/internal/port"
)

// MockComposer is a mock implementation of port.Composer.
type MockComposer struct {
	mock.Mock
}

func (m *MockComposer) Compose(data *port.CertificateData) ([]byte, string, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}
