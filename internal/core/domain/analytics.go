package domain

import "time"

const (
	DefaultMetricsPeriod = "30d"
	AlertStateAll        = "all"
)

type AlertState string

const (
	AlertOpen     AlertState = "pendiente"
	AlertResolved AlertState = "resuelta"
)

// MetricsFilter selects the population a MetricsSnapshot covers.
// An empty Period means DefaultMetricsPeriod.
type MetricsFilter struct {
	Period   string
	UserKind Optional[string]
	Program  Optional[string]
}

type MetricsSnapshot struct {
	Period            string         `json:"periodo"`
	TotalUsers        int            `json:"total_usuarios"`
	TotalSurveys      int            `json:"total_encuestas"`
	AverageScore      float64        `json:"promedio_puntaje"`
	AlertRate         float64        `json:"tasa_alerta"`
	OpenAlerts        int            `json:"alertas_activas"`
	CategoryBreakdown map[string]int `json:"distribucion_categorias,omitempty"`
	Filters           *MetricsEcho   `json:"filtros,omitempty"`
}

// MetricsEcho repeats the filters the backend applied.
type MetricsEcho struct {
	UserKind *string `json:"tipo_usuario,omitempty"`
	Program  *string `json:"programa,omitempty"`
}

type Alert struct {
	ID          int        `json:"id"`
	UserID      int        `json:"usuario_id"`
	SurveyID    *int       `json:"encuesta_id,omitempty"`
	Type        string     `json:"tipo_alerta"`
	State       AlertState `json:"estado"`
	Score       *float64   `json:"puntaje,omitempty"`
	ActionTaken *string    `json:"accion_tomada,omitempty"`
	Notes       *string    `json:"notas,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// AlertResolution is what a reviewer records when closing an alert.
type AlertResolution struct {
	ActionTaken string
	Notes       Optional[string]
}

// ExportFilter narrows an Excel export; every field may be omitted.
type ExportFilter struct {
	UserKind Optional[string]
	Program  Optional[string]
	IsAlert  Optional[bool]
}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
