package mocks

import (
	"context"
	"sync"

	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

// MockEventPublisher implements ports.EventPublisher for testing.
// This mock allows us to test the gateways without a real RabbitMQ connection.
type MockEventPublisher struct {
	mu sync.RWMutex

	// Track published events for verification
	AlertEvents  []ports.AlertResolvedEvent
	SurveyEvents []ports.SurveySubmittedEvent

	// Error injection for testing error scenarios
	PublishError error
}

// Ensure MockEventPublisher implements ports.EventPublisher at compile time.
var _ ports.EventPublisher = (*MockEventPublisher)(nil)

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) PublishAlertResolved(ctx context.Context, evt ports.AlertResolvedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PublishError != nil {
		return m.PublishError
	}
	m.AlertEvents = append(m.AlertEvents, evt)
	return nil
}

func (m *MockEventPublisher) PublishSurveySubmitted(ctx context.Context, evt ports.SurveySubmittedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PublishError != nil {
		return m.PublishError
	}
	m.SurveyEvents = append(m.SurveyEvents, evt)
	return nil
}

// GetAlertEvents returns a copy of the published alert events.
func (m *MockEventPublisher) GetAlertEvents() []ports.AlertResolvedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]ports.AlertResolvedEvent, len(m.AlertEvents))
	copy(events, m.AlertEvents)
	return events
}

// GetSurveyEvents returns a copy of the published survey events.
func (m *MockEventPublisher) GetSurveyEvents() []ports.SurveySubmittedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]ports.SurveySubmittedEvent, len(m.SurveyEvents))
	copy(events, m.SurveyEvents)
	return events
}
