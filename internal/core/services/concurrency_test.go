package services_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniempresarial/bienestar-client/internal/adapters/session"
	"github.com/uniempresarial/bienestar-client/internal/core/domain"
	"github.com/uniempresarial/bienestar-client/internal/core/services"
	"github.com/uniempresarial/bienestar-client/test/mocks"
)

// Gateways share one transport, publisher and session store; run with
// -race to check calls can be issued concurrently.
func TestGateways_ConcurrentCalls(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport()
	transport.RespondJSON("login", http.StatusOK, map[string]any{
		"access_token": mocks.CreateTestToken("ana@estudiantes.uniempresarial.edu.co", 12, "usuario", time.Now().Add(time.Hour)),
		"token_type":   "bearer",
		"usuario":      map[string]any{"id": 12},
	})
	transport.RespondJSON("get_metrics", http.StatusOK, map[string]any{})
	transport.RespondJSON("list_alerts", http.StatusOK, []map[string]any{})
	transport.RespondJSON("get_questions", http.StatusOK, map[string]any{
		"preguntas": []map[string]any{{"id": 1, "texto": "Me he sentido alegre y de buen humor"}},
	})
	transport.RespondJSON("submit_survey", http.StatusCreated, map[string]any{
		"id": 31, "usuario_id": 12, "created_at": "2026-03-01T10:00:00Z",
	})

	publisher := mocks.NewMockEventPublisher()
	auth := services.NewAuthGateway(transport, session.NewMemoryStore())
	analytics := services.NewAnalyticsGateway(transport, publisher, quietLogger())
	survey := services.NewSurveyGateway(transport, publisher, quietLogger())

	const workers = 8
	calls := []func(ctx context.Context) error{
		func(ctx context.Context) error {
			_, err := auth.Login(ctx, "ana@estudiantes.uniempresarial.edu.co", "Segura123")
			return err
		},
		func(ctx context.Context) error {
			_, err := analytics.GetMetrics(ctx, domain.MetricsFilter{Program: domain.Some("Psicología")})
			return err
		},
		func(ctx context.Context) error {
			_, err := analytics.ListAlerts(ctx, "")
			return err
		},
		func(ctx context.Context) error {
			_, err := survey.GetQuestions(ctx)
			return err
		},
		func(ctx context.Context) error {
			_, err := survey.SubmitSurvey(ctx, mocks.CreateTestSubmission(3))
			return err
		},
	}

	ctx := context.Background()
	errs := make(chan error, workers*len(calls))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		for _, call := range calls {
			wg.Add(1)
			go func(call func(context.Context) error) {
				defer wg.Done()
				errs <- call(ctx)
			}(call)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	for _, op := range []string{"login", "get_metrics", "list_alerts", "get_questions", "submit_survey"} {
		assert.Equal(t, workers, transport.CallCount(op), op)
	}
	assert.Len(t, publisher.GetSurveyEvents(), workers)
}
