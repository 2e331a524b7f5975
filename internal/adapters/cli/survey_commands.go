package cli

import (
	"context"
	"fmt"

	"github.com/uniempresarial/bienestar-client/internal/core/domain"
)

func (a *App) consent(ctx context.Context, args []string) error {
	fs := a.flagSet("consent")
	canContact := fs.Bool("can-contact", false, "allow wellbeing staff to contact you")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	ack, err := a.survey.RecordConsent(ctx, *canContact)
	if err != nil {
		return err
	}
	return a.writeJSON(ack)
}

func (a *App) questions(ctx context.Context, args []string) error {
	if err := a.parse(a.flagSet("questions"), args); err != nil {
		return err
	}
	questions, err := a.survey.GetQuestions(ctx)
	if err != nil {
		return err
	}
	return a.writeJSON(questions)
}

func (a *App) submit(ctx context.Context, args []string) error {
	fs := a.flagSet("submit")
	collected := answers{submission: domain.NewSurveySubmission()}
	fs.Var(&collected, "answer", "<question>=<value>, repeat once per question")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	record, err := a.survey.SubmitSurvey(ctx, collected.submission)
	if err != nil {
		return err
	}
	return a.writeJSON(record)
}

func (a *App) surveys(ctx context.Context, args []string) error {
	if err := a.parse(a.flagSet("surveys"), args); err != nil {
		return err
	}
	records, err := a.survey.ListMySurveys(ctx)
	if err != nil {
		return err
	}
	return a.writeJSON(records)
}

func (a *App) result(ctx context.Context, args []string) error {
	fs := a.flagSet("result")
	id := fs.Int("id", 0, "survey id")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}

	result, err := a.survey.GetResult(ctx, *id)
	if err != nil {
		return err
	}
	return a.writeJSON(result)
}
