package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniempresarial/bienestar-client/internal/adapters/health"
	"github.com/uniempresarial/bienestar-client/internal/adapters/session"
	"github.com/uniempresarial/bienestar-client/internal/core/domain"
	"github.com/uniempresarial/bienestar-client/internal/core/services"
	"github.com/uniempresarial/bienestar-client/test/mocks"
)

type harness struct {
	app       *App
	out       *bytes.Buffer
	errOut    *bytes.Buffer
	transport *mocks.MockTransport
	sessions  *session.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log, _ := test.NewNullLogger()
	tr := mocks.NewMockTransport()
	store := session.NewMemoryStore()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	app := NewApp(Deps{
		Auth:      services.NewAuthGateway(tr, store),
		Analytics: services.NewAnalyticsGateway(tr, nil, log),
		Survey:    services.NewSurveyGateway(tr, nil, log),
		Sessions:  store,
		Health:    health.NewChecker(tr, nil, "test"),
		Out:       out,
		ErrOut:    errOut,
		Logger:    log,
	})
	return &harness{app: app, out: out, errOut: errOut, transport: tr, sessions: store}
}

func (h *harness) lastQuery(t *testing.T) url.Values {
	t.Helper()
	req, ok := h.transport.LastRequest()
	require.True(t, ok)
	return req.Query
}

func TestRun_Usage(t *testing.T) {
	h := newHarness(t)

	err := h.app.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, h.errOut.String(), "register-student")
	assert.Empty(t, h.out.String())

	err = h.app.Run(context.Background(), []string{"dance"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestRun_BadFlagIsUsageError(t *testing.T) {
	h := newHarness(t)
	err := h.app.Run(context.Background(), []string{"metrics", "-nope"})
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, h.errOut.String(), "-nope")
	assert.Empty(t, h.out.String(), "stdout carries JSON only")
}

func TestRun_StrayArgumentsAreUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		call string
	}{
		{name: "consent_extra", args: []string{"consent", "-can-contact", "true", "extra"}, call: "record_consent"},
		{name: "consent_bool_value", args: []string{"consent", "-can-contact", "false"}, call: "record_consent"},
		{name: "alerts_extra", args: []string{"alerts", "pendiente"}, call: "list_alerts"},
		{name: "export_extra", args: []string{"export", "-alert", "true", "now"}, call: "export_excel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			err := h.app.Run(context.Background(), tt.args)
			assert.ErrorIs(t, err, ErrUsage)
			assert.Equal(t, 0, h.transport.CallCount(tt.call))
		})
	}
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)
	token := mocks.CreateTestToken("ana@estudiantes.uniempresarial.edu.co", 12, "usuario", time.Now().Add(time.Hour))
	h.transport.RespondJSON("login", http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"usuario":      map[string]any{"id": 12, "correo": "ana@estudiantes.uniempresarial.edu.co", "rol": "usuario"},
	})
	ctx := context.Background()

	require.NoError(t, h.app.Run(ctx, []string{"login", "-email", "ana@estudiantes.uniempresarial.edu.co", "-password", "Segura123"}))
	assert.Contains(t, h.out.String(), "Login successful")

	h.out.Reset()
	require.NoError(t, h.app.Run(ctx, []string{"whoami"}))
	var claims session.Claims
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &claims))
	assert.Equal(t, 12, claims.UserID)

	require.NoError(t, h.app.Run(ctx, []string{"logout"}))
	err := h.app.Run(ctx, []string{"whoami"})
	assert.EqualError(t, err, "not logged in")
}

func TestLogin_PasswordFromEnv(t *testing.T) {
	h := newHarness(t)
	t.Setenv(passwordEnv, "FromEnv1")
	h.transport.RespondJSON("login", http.StatusOK, map[string]any{"usuario": map[string]any{"id": 1}})

	require.NoError(t, h.app.Run(context.Background(), []string{"login", "-email", "a@uniempresarial.edu.co"}))

	req, _ := h.transport.LastRequest()
	assert.Equal(t, "FromEnv1", req.Form[1].Value)
}

func TestLogin_MissingEmail(t *testing.T) {
	h := newHarness(t)
	err := h.app.Run(context.Background(), []string{"login", "-password", "x"})
	assert.ErrorIs(t, err, ErrUsage)
	assert.Equal(t, 0, h.transport.CallCount("login"))
}

func TestRegisterStudent(t *testing.T) {
	h := newHarness(t)
	h.transport.RespondJSON("register_estudiante", http.StatusCreated, map[string]any{"id": 3, "tipo_usuario": "estudiante"})

	err := h.app.Run(context.Background(), []string{
		"register-student",
		"-first-names", "Ana", "-last-names", "Rojas",
		"-document-number", "1012345678",
		"-email", "ana@estudiantes.uniempresarial.edu.co", "-password", "Segura123",
		"-program", "Psicología", "-cohort", "2024-1",
	})
	require.NoError(t, err)

	req, _ := h.transport.LastRequest()
	reg, ok := req.JSON.(domain.Registration)
	require.True(t, ok)
	student := reg.(domain.StudentRegistration)
	assert.Equal(t, domain.DocumentCC, student.DocumentType)
	assert.Equal(t, "2024-1", student.Cohort)
}

func TestRegisterStaff(t *testing.T) {
	h := newHarness(t)
	h.transport.RespondJSON("register_personal", http.StatusCreated, map[string]any{"id": 4, "tipo_usuario": "personal"})

	err := h.app.Run(context.Background(), []string{"register-staff", "-email", "c@uniempresarial.edu.co", "-position", "Docente", "-document-type", "CE"})
	require.NoError(t, err)

	req, _ := h.transport.LastRequest()
	staff := req.JSON.(domain.StaffRegistration)
	assert.Equal(t, "Docente", staff.Position)
	assert.Equal(t, domain.DocumentCE, staff.DocumentType)
}

func TestMetrics_FlagsMapToFilters(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want url.Values
	}{
		{name: "defaults", args: nil, want: url.Values{"periodo": {"30d"}}},
		{name: "period", args: []string{"-period", "7d"}, want: url.Values{"periodo": {"7d"}}},
		{name: "empty_program_is_sent", args: []string{"-program", ""}, want: url.Values{"periodo": {"30d"}, "programa": {""}}},
		{name: "kind", args: []string{"-user-kind", "personal"}, want: url.Values{"periodo": {"30d"}, "tipo_usuario": {"personal"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.transport.RespondJSON("get_metrics", http.StatusOK, map[string]any{"periodo": "30d"})

			require.NoError(t, h.app.Run(context.Background(), append([]string{"metrics"}, tt.args...)))
			assert.Equal(t, tt.want, h.lastQuery(t))
		})
	}
}

func TestAlerts(t *testing.T) {
	h := newHarness(t)
	h.transport.RespondJSON("list_alerts", http.StatusOK, []map[string]any{})

	require.NoError(t, h.app.Run(context.Background(), []string{"alerts", "-state", "pendiente"}))
	assert.Equal(t, url.Values{"estado": {"pendiente"}}, h.lastQuery(t))
}

func TestResolveAlert(t *testing.T) {
	h := newHarness(t)
	h.transport.RespondJSON("resolve_alert", http.StatusOK, map[string]any{"id": 4, "estado": "resuelta", "created_at": "2026-03-01T10:00:00Z"})

	require.NoError(t, h.app.Run(context.Background(), []string{"resolve-alert", "-id", "4", "-action", "Llamada", "-notes", "ok"}))

	req, _ := h.transport.LastRequest()
	assert.Equal(t, "/api/dashboard/alertas/4/resolver", req.Path)
	assert.Equal(t, url.Values{"accion_tomada": {"Llamada"}, "notas": {"ok"}}, req.Query)
}

func TestResolveAlert_RequiresIDAndAction(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.app.Run(ctx, []string{"resolve-alert", "-action", "x"}), ErrUsage)
	assert.ErrorIs(t, h.app.Run(ctx, []string{"resolve-alert", "-id", "4"}), ErrUsage)
	assert.Equal(t, 0, h.transport.CallCount("resolve_alert"))
}

func TestExport_WritesFile(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	h.transport.RespondRaw("export_excel", http.StatusOK, http.Header{
		"Content-Disposition": {`attachment; filename="../who5.xlsx"`},
	}, []byte("PK\x03\x04"))

	require.NoError(t, h.app.Run(context.Background(), []string{"export", "-alert", "true", "-dir", dir}))

	assert.Equal(t, url.Values{"es_alerta": {"true"}}, h.lastQuery(t))
	data, err := os.ReadFile(filepath.Join(dir, "who5.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, []byte("PK\x03\x04"), data)
}

func TestExport_AlertFalse(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "equals", args: []string{"export", "-alert=false", "-dir", t.TempDir()}},
		{name: "separate_value", args: []string{"export", "-dir", t.TempDir(), "-alert", "false"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.transport.RespondRaw("export_excel", http.StatusOK, http.Header{}, []byte("PK"))

			require.NoError(t, h.app.Run(context.Background(), tt.args))
			assert.Equal(t, url.Values{"es_alerta": {"false"}}, h.lastQuery(t))
		})
	}
}

func TestExport_AlertNeedsValue(t *testing.T) {
	h := newHarness(t)
	err := h.app.Run(context.Background(), []string{"export", "-alert", "maybe"})
	assert.ErrorIs(t, err, ErrUsage)
	assert.Equal(t, 0, h.transport.CallCount("export_excel"))
}

func TestConsent(t *testing.T) {
	h := newHarness(t)
	h.transport.RespondJSON("record_consent", http.StatusOK, map[string]any{"consent_accepted": true, "can_contact": true})

	require.NoError(t, h.app.Run(context.Background(), []string{"consent", "-can-contact"}))
	assert.Equal(t, url.Values{"can_contact": {"true"}}, h.lastQuery(t))
}

func TestSubmit_CollectsAnswers(t *testing.T) {
	h := newHarness(t)
	h.transport.RespondJSON("submit_survey", http.StatusCreated, map[string]any{"id": 31, "usuario_id": 12, "created_at": "2026-03-01T10:00:00Z"})

	err := h.app.Run(context.Background(), []string{"submit", "-answer", "1=5", "-answer", "2=4", "-answer", " 3 = 3 "})
	require.NoError(t, err)

	req, _ := h.transport.LastRequest()
	sub := req.JSON.(domain.SurveySubmission)
	assert.Equal(t, map[int]int{1: 5, 2: 4, 3: 3}, sub.Answers)
}

func TestSubmit_BadAnswer(t *testing.T) {
	h := newHarness(t)
	err := h.app.Run(context.Background(), []string{"submit", "-answer", "five"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestResult_RequiresID(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.app.Run(context.Background(), []string{"result"}), ErrUsage)
}

func TestResult_PassesBackendError(t *testing.T) {
	h := newHarness(t)
	h.transport.Fail("get_result", &domain.APIError{Kind: domain.ErrNotFound, Operation: "get_result", Status: 404})

	err := h.app.Run(context.Background(), []string{"result", "-id", "77"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	h.transport.RespondJSON("health", http.StatusOK, map[string]string{"status": "ok"})

	require.NoError(t, h.app.Run(context.Background(), []string{"health"}))

	var report health.Report
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &report))
	assert.Equal(t, health.StatusUp, report.Status)
}

func TestHealth_Down(t *testing.T) {
	h := newHarness(t)
	h.transport.RespondJSON("health", http.StatusOK, map[string]string{"status": "starting"})

	err := h.app.Run(context.Background(), []string{"health"})
	assert.Error(t, err)
}

func TestCatalogCommands(t *testing.T) {
	h := newHarness(t)
	h.transport.RespondJSON("list_programs", http.StatusOK, map[string]any{"programas": []string{"Derecho"}})
	h.transport.RespondJSON("list_positions", http.StatusOK, map[string]any{"cargos": []string{"Docente"}})
	h.transport.RespondJSON("get_questions", http.StatusOK, map[string]any{"preguntas": []any{}})
	h.transport.RespondJSON("list_my_surveys", http.StatusOK, []any{})

	for _, name := range []string{"programs", "positions", "questions", "surveys"} {
		require.NoError(t, h.app.Run(context.Background(), []string{name}), name)
	}
	assert.Contains(t, h.out.String(), "Derecho")
	assert.Contains(t, h.out.String(), "Docente")
}
