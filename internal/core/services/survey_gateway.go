package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/uniempresarial/bienestar-client/internal/core/domain"
	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

type SurveyGateway struct {
	transport ports.Transport
	publisher ports.EventPublisher
	log       logrus.FieldLogger
}

var _ ports.SurveyGateway = (*SurveyGateway)(nil)

func NewSurveyGateway(transport ports.Transport, publisher ports.EventPublisher, log logrus.FieldLogger) *SurveyGateway {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SurveyGateway{
		transport: transport,
		publisher: publisher,
		log:       log,
	}
}

func (g *SurveyGateway) RecordConsent(ctx context.Context, canContact bool) (*domain.ConsentAck, error) {
	const op = "record_consent"
	resp, err := g.transport.Do(ctx, &ports.Request{
		Operation: op,
		Method:    http.MethodPost,
		Path:      "/api/encuestas/consentimiento",
		Query:     url.Values{"can_contact": {strconv.FormatBool(canContact)}},
	})
	if err != nil {
		return nil, err
	}
	return decode[domain.ConsentAck](op, resp)
}

func (g *SurveyGateway) GetQuestions(ctx context.Context) ([]domain.SurveyQuestion, error) {
	const op = "get_questions"
	resp, err := g.transport.Do(ctx, &ports.Request{
		Operation: op,
		Method:    http.MethodGet,
		Path:      "/api/encuestas/preguntas",
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		Questions []domain.SurveyQuestion `json:"preguntas"`
	}
	if err := decodeInto(op, resp, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// SubmitSurvey stores a new survey. Every call creates a new record; missing
// answers are reported by the backend as ErrValidation.
func (g *SurveyGateway) SubmitSurvey(ctx context.Context, submission domain.SurveySubmission) (*domain.SurveyRecord, error) {
	const op = "submit_survey"
	resp, err := g.transport.Do(ctx, &ports.Request{
		Operation: op,
		Method:    http.MethodPost,
		Path:      "/api/encuestas/",
		JSON:      submission,
	})
	if err != nil {
		return nil, err
	}
	record, err := decode[domain.SurveyRecord](op, resp)
	if err != nil {
		return nil, err
	}

	if g.publisher != nil {
		evt := ports.SurveySubmittedEvent{
			SurveyID:    record.ID,
			UserID:      record.UserID,
			SubmittedAt: record.SubmittedAt,
		}
		if err := g.publisher.PublishSurveySubmitted(ctx, evt); err != nil {
			g.log.WithError(err).WithField("survey_id", record.ID).Warn("failed to publish survey submission")
		}
	}
	return record, nil
}

func (g *SurveyGateway) ListMySurveys(ctx context.Context) ([]domain.SurveyRecord, error) {
	const op = "list_my_surveys"
	resp, err := g.transport.Do(ctx, &ports.Request{
		Operation: op,
		Method:    http.MethodGet,
		Path:      "/api/encuestas/mis-encuestas",
	})
	if err != nil {
		return nil, err
	}
	var records []domain.SurveyRecord
	if err := decodeInto(op, resp, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (g *SurveyGateway) GetResult(ctx context.Context, surveyID int) (*domain.SurveyResult, error) {
	const op = "get_result"
	resp, err := g.transport.Do(ctx, &ports.Request{
		Operation: op,
		Method:    http.MethodGet,
		Path:      "/api/encuestas/" + strconv.Itoa(surveyID) + "/resultado",
	})
	if err != nil {
		return nil, err
	}
	return decode[domain.SurveyResult](op, resp)
}
