package ports

import (
	"context"
	"time"
)

type AlertResolvedEvent struct {
	AlertID     int       `json:"alert_id"`
	UserID      int       `json:"user_id"`
	ActionTaken string    `json:"action_taken"`
	ResolvedAt  time.Time `json:"resolved_at"`
}

type SurveySubmittedEvent struct {
	SurveyID    int       `json:"survey_id"`
	UserID      int       `json:"user_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type EventPublisher interface {
	PublishAlertResolved(ctx context.Context, evt AlertResolvedEvent) error
	PublishSurveySubmitted(ctx context.Context, evt SurveySubmittedEvent) error
}
