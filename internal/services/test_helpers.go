package services

import (
	"github.com/stretchr/testify/mock"
)

// MockProgressReporter is a mock for the ProgressReporter interface
type MockProgressReporter struct {
	mock.Mock
}

func (m *MockProgressReporter) SendProgress(step, message string, progress int) {
	m.Called(step, message, progress)
}

func (m *MockProgressReporter) SendComplete(step, message string, success bool) {
	m.Called(step, message, success)
}
