package ports

import (
	"context"

	"github.com/uniempresarial/bienestar-client/internal/core/domain"
)

type AuthGateway interface {
	Register(ctx context.Context, reg domain.Registration) (*domain.AccountSummary, error)
	RegisterStudent(ctx context.Context, reg domain.StudentRegistration) (*domain.AccountSummary, error)
	RegisterStaff(ctx context.Context, reg domain.StaffRegistration) (*domain.AccountSummary, error)
	Login(ctx context.Context, identifier, secret string) (*domain.AccountSummary, error)
	Logout(ctx context.Context) error
	ListPrograms(ctx context.Context) ([]string, error)
	ListPositions(ctx context.Context) ([]string, error)
}

type AnalyticsGateway interface {
	GetMetrics(ctx context.Context, filter domain.MetricsFilter) (*domain.MetricsSnapshot, error)
	ListAlerts(ctx context.Context, state string) ([]domain.Alert, error)
	ResolveAlert(ctx context.Context, alertID int, resolution domain.AlertResolution) (*domain.Alert, error)
	ExportExcel(ctx context.Context, filter domain.ExportFilter) (*domain.ExportFile, error)
}

type SurveyGateway interface {
	RecordConsent(ctx context.Context, canContact bool) (*domain.ConsentAck, error)
	GetQuestions(ctx context.Context) ([]domain.SurveyQuestion, error)
	SubmitSurvey(ctx context.Context, submission domain.SurveySubmission) (*domain.SurveyRecord, error)
	ListMySurveys(ctx context.Context) ([]domain.SurveyRecord, error)
	GetResult(ctx context.Context, surveyID int) (*domain.SurveyResult, error)
}
