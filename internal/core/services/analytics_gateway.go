package services

import (
	"context"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/uniempresarial/bienestar-client/internal/core/domain"
	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

type AnalyticsGateway struct {
	transport ports.Transport
	publisher ports.EventPublisher
	log       logrus.FieldLogger
}

var _ ports.AnalyticsGateway = (*AnalyticsGateway)(nil)

func NewAnalyticsGateway(transport ports.Transport, publisher ports.EventPublisher, log logrus.FieldLogger) *AnalyticsGateway {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AnalyticsGateway{
		transport: transport,
		publisher: publisher,
		log:       log,
	}
}

func (g *AnalyticsGateway) GetMetrics(ctx context.Context, filter domain.MetricsFilter) (*domain.MetricsSnapshot, error) {
	const op = "get_metrics"
	period := filter.Period
	if period == "" {
		period = domain.DefaultMetricsPeriod
	}
	q := url.Values{}
	q.Set("periodo", period)
	setOptional(q, "tipo_usuario", filter.UserKind)
	setOptional(q, "programa", filter.Program)

	resp, err := g.transport.Do(ctx, &ports.Request{
		Operation: op,
		Method:    http.MethodGet,
		Path:      "/api/dashboard/metricas",
		Query:     q,
	})
	if err != nil {
		return nil, err
	}
	return decode[domain.MetricsSnapshot](op, resp)
}

func (g *AnalyticsGateway) ListAlerts(ctx context.Context, state string) ([]domain.Alert, error) {
	const op = "list_alerts"
	if state == "" {
		state = domain.AlertStateAll
	}
	resp, err := g.transport.Do(ctx, &ports.Request{
		Operation: op,
		Method:    http.MethodGet,
		Path:      "/api/dashboard/alertas",
		Query:     url.Values{"estado": {state}},
	})
	if err != nil {
		return nil, err
	}
	var alerts []domain.Alert
	if err := decodeInto(op, resp, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// ResolveAlert asks the backend to close an alert. Whether the alert may be
// closed is decided remotely; a rejected transition is ErrInvalidState.
func (g *AnalyticsGateway) ResolveAlert(ctx context.Context, alertID int, resolution domain.AlertResolution) (*domain.Alert, error) {
	const op = "resolve_alert"
	q := url.Values{}
	q.Set("accion_tomada", resolution.ActionTaken)
	setOptional(q, "notas", resolution.Notes)

	resp, err := g.transport.Do(ctx, &ports.Request{
		Operation: op,
		Method:    http.MethodPatch,
		Path:      "/api/dashboard/alertas/" + strconv.Itoa(alertID) + "/resolver",
		Query:     q,
		StatusKinds: map[int]error{
			http.StatusBadRequest: domain.ErrInvalidState,
			http.StatusConflict:   domain.ErrInvalidState,
		},
	})
	if err != nil {
		return nil, err
	}
	alert, err := decode[domain.Alert](op, resp)
	if err != nil {
		return nil, err
	}

	if g.publisher != nil {
		resolvedAt := time.Now().UTC()
		if alert.ResolvedAt != nil {
			resolvedAt = *alert.ResolvedAt
		}
		evt := ports.AlertResolvedEvent{
			AlertID:     alertID,
			UserID:      alert.UserID,
			ActionTaken: resolution.ActionTaken,
			ResolvedAt:  resolvedAt,
		}
		if err := g.publisher.PublishAlertResolved(ctx, evt); err != nil {
			g.log.WithError(err).WithField("alert_id", alertID).Warn("failed to publish alert resolution")
		}
	}
	return alert, nil
}

func (g *AnalyticsGateway) ExportExcel(ctx context.Context, filter domain.ExportFilter) (*domain.ExportFile, error) {
	q := url.Values{}
	setOptional(q, "tipo_usuario", filter.UserKind)
	setOptional(q, "programa", filter.Program)
	setOptionalBool(q, "es_alerta", filter.IsAlert)

	resp, err := g.transport.Do(ctx, &ports.Request{
		Operation: "export_excel",
		Method:    http.MethodGet,
		Path:      "/api/dashboard/export/excel",
		Query:     q,
	})
	if err != nil {
		return nil, err
	}

	file := &domain.ExportFile{
		Filename:    "bienestar_export.xlsx",
		ContentType: resp.Header.Get("Content-Type"),
		Data:        resp.Body,
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			file.Filename = params["filename"]
		}
	}
	return file, nil
}
