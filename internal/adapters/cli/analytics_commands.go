package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/uniempresarial/bienestar-client/internal/core/domain"
)

func (a *App) metrics(ctx context.Context, args []string) error {
	fs := a.flagSet("metrics")
	period := fs.String("period", domain.DefaultMetricsPeriod, "period, e.g. 7d, 30d, 90d")
	var userKind, program optionalString
	fs.Var(&userKind, "user-kind", "estudiante or personal")
	fs.Var(&program, "program", "academic program")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	snapshot, err := a.analytics.GetMetrics(ctx, domain.MetricsFilter{
		Period:   *period,
		UserKind: userKind.value,
		Program:  program.value,
	})
	if err != nil {
		return err
	}
	return a.writeJSON(snapshot)
}

func (a *App) alerts(ctx context.Context, args []string) error {
	fs := a.flagSet("alerts")
	state := fs.String("state", domain.AlertStateAll, "alert state filter")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	alerts, err := a.analytics.ListAlerts(ctx, *state)
	if err != nil {
		return err
	}
	return a.writeJSON(alerts)
}

func (a *App) resolveAlert(ctx context.Context, args []string) error {
	fs := a.flagSet("resolve-alert")
	id := fs.Int("id", 0, "alert id")
	action := fs.String("action", "", "action taken")
	var notes optionalString
	fs.Var(&notes, "notes", "free-text notes")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}
	if err := requireFlag("action", *action); err != nil {
		return err
	}

	alert, err := a.analytics.ResolveAlert(ctx, *id, domain.AlertResolution{
		ActionTaken: *action,
		Notes:       notes.value,
	})
	if err != nil {
		return err
	}
	return a.writeJSON(alert)
}

type exportOutput struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Bytes       int    `json:"bytes"`
}

func (a *App) export(ctx context.Context, args []string) error {
	fs := a.flagSet("export")
	var userKind, program optionalString
	var isAlert optionalBool
	fs.Var(&userKind, "user-kind", "estudiante or personal")
	fs.Var(&program, "program", "academic program")
	fs.Var(&isAlert, "alert", "only surveys that raised an alert (true/false)")
	dir := fs.String("dir", ".", "directory to write the file to")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	file, err := a.analytics.ExportExcel(ctx, domain.ExportFilter{
		UserKind: userKind.value,
		Program:  program.value,
		IsAlert:  isAlert.value,
	})
	if err != nil {
		return err
	}

	path := filepath.Join(*dir, filepath.Base(file.Filename))
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return err
	}
	a.log.WithField("path", path).Info("export written")
	return a.writeJSON(exportOutput{
		Path:        path,
		ContentType: file.ContentType,
		Bytes:       len(file.Data),
	})
}
