package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniempresarial/bienestar-client/internal/core/domain"
	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

type staticSessions struct {
	token string
	err   error
}

func (s staticSessions) SaveToken(context.Context, string) error { return nil }
func (s staticSessions) Token(context.Context) (string, error) { return s.token, s.err }
func (s staticSessions) Clear(context.Context) error { return nil }

func newTestTransport(t *testing.T, srv *httptest.Server, sessions ports.SessionStore) (*HTTPTransport, *prometheus.Registry) {
	t.Helper()
	log, _ := test.NewNullLogger()
	reg := prometheus.NewRegistry()
	tr, err := New(Config{
		BaseURL:  srv.URL + "/",
		Timeout:  5 * time.Second,
		Sessions: sessions,
		Metrics:  NewMetrics(reg),
		Logger:   log,
	})
	require.NoError(t, err)
	return tr, reg
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestDo_MultipartForm(t *testing.T) {
	var (
		gotFields url.Values
		gotType   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotFields = url.Values(r.MultipartForm.Value)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"t"}`)
	}))
	defer srv.Close()
	tr, _ := newTestTransport(t, srv, nil)

	resp, err := tr.Do(context.Background(), &ports.Request{
		Operation: "login",
		Method:    http.MethodPost,
		Path:      "/api/auth/login",
		Form: []ports.FormField{
			{Name: "username", Value: "ana@uniempresarial.edu.co"},
			{Name: "password", Value: "Segura123"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	assert.Contains(t, gotType, "multipart/form-data")
	assert.Equal(t, url.Values{
		"username": {"ana@uniempresarial.edu.co"},
		"password": {"Segura123"},
	}, gotFields)
}

func TestDo_JSONBodyAndQuery(t *testing.T) {
	var (
		gotBody  map[string]any
		gotQuery url.Values
		gotType  string
		gotReqID string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		gotQuery = r.URL.Query()
		gotReqID = r.Header.Get("X-Request-ID")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()
	tr, _ := newTestTransport(t, srv, nil)

	_, err := tr.Do(context.Background(), &ports.Request{
		Operation: "submit_survey",
		Method:    http.MethodPost,
		Path:      "/api/encuestas/",
		Query:     url.Values{"a": {"1"}},
		JSON:      map[string]int{"pregunta_1": 3},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, map[string]any{"pregunta_1": float64(3)}, gotBody)
	assert.Equal(t, url.Values{"a": {"1"}}, gotQuery)
	assert.NotEmpty(t, gotReqID)
}

func TestDo_RejectsJSONAndForm(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	tr, _ := newTestTransport(t, srv, nil)

	_, err := tr.Do(context.Background(), &ports.Request{
		Operation: "bad",
		Method:    http.MethodPost,
		JSON:      map[string]string{},
		Form:      []ports.FormField{{Name: "a", Value: "b"}},
	})
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestDo_BearerToken(t *testing.T) {
	tests := []struct {
		name     string
		sessions ports.SessionStore
		want     string
	}{
		{name: "no_store", sessions: nil, want: ""},
		{name: "logged_out", sessions: staticSessions{}, want: ""},
		{name: "logged_in", sessions: staticSessions{token: "abc"}, want: "Bearer abc"},
		{name: "store_error_sends_anonymous", sessions: staticSessions{err: errors.New("redis down")}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				_, _ = io.WriteString(w, `{}`)
			}))
			defer srv.Close()
			tr, _ := newTestTransport(t, srv, tt.sessions)

			_, err := tr.Do(context.Background(), &ports.Request{Operation: "get_questions", Method: http.MethodGet, Path: "/api/encuestas/preguntas"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDo_StatusClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		kinds      map[int]error
		wantKind   error
		wantDetail string
	}{
		{name: "bad_request", status: 400, body: `{"detail":"Programa inválido"}`, wantKind: domain.ErrValidation, wantDetail: "Programa inválido"},
		{
			name:       "unprocessable_issue_list",
			status:     422,
			body:       `{"detail":[{"loc":["body","correo_institucional"],"msg":"value is not a valid email address"},{"loc":["body","password"],"msg":"too short"}]}`,
			wantKind:   domain.ErrValidation,
			wantDetail: "correo_institucional: value is not a valid email address; password: too short",
		},
		{name: "unauthorized", status: 401, body: `{"detail":"Credenciales inválidas"}`, wantKind: domain.ErrAuthentication, wantDetail: "Credenciales inválidas"},
		{name: "forbidden", status: 403, body: `{"detail":"No autorizado"}`, wantKind: domain.ErrAuthentication, wantDetail: "No autorizado"},
		{name: "not_found", status: 404, body: `{"detail":"Encuesta no encontrada"}`, wantKind: domain.ErrNotFound, wantDetail: "Encuesta no encontrada"},
		{name: "conflict", status: 409, body: `{"detail":"El correo ya está registrado"}`, wantKind: domain.ErrConflict, wantDetail: "El correo ya está registrado"},
		{name: "teapot_is_unexpected", status: 418, body: `short and stout`, wantKind: domain.ErrUnexpectedStatus, wantDetail: "short and stout"},
		{
			name:       "request_override",
			status:     400,
			body:       `{"detail":"La alerta ya fue resuelta"}`,
			kinds:      map[int]error{400: domain.ErrInvalidState},
			wantKind:   domain.ErrInvalidState,
			wantDetail: "La alerta ya fue resuelta",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()
			tr, _ := newTestTransport(t, srv, nil)

			_, err := tr.Do(context.Background(), &ports.Request{
				Operation:   "op",
				Method:      http.MethodGet,
				Path:        "/x",
				StatusKinds: tt.kinds,
			})

			var apiErr *domain.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
		})
	}
}

func TestDo_ServerErrorIsUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	tr, _ := newTestTransport(t, srv, nil)

	_, err := tr.Do(context.Background(), &ports.Request{Operation: "get_metrics", Method: http.MethodGet, Path: "/"})

	assert.ErrorIs(t, err, domain.ErrUnexpectedStatus)
	assert.NotErrorIs(t, err, domain.ErrTransport)
}

func TestDo_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	tr, _ := newTestTransport(t, srv, nil)
	srv.Close()

	_, err := tr.Do(context.Background(), &ports.Request{Operation: "list_programs", Method: http.MethodGet, Path: "/api/auth/programas"})

	var trErr *domain.TransportError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, "list_programs", trErr.Operation)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestDo_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()
	tr, _ := newTestTransport(t, srv, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tr.Do(ctx, &ports.Request{Operation: "get_questions", Method: http.MethodGet, Path: "/"})

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "closed", tr.breaker.State().String())
}

func TestDo_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	tr, reg := newTestTransport(t, srv, nil)
	req := &ports.Request{Operation: "get_metrics", Method: http.MethodGet, Path: "/"}

	for i := 0; i < 3; i++ {
		_, err := tr.Do(context.Background(), req)
		require.ErrorIs(t, err, domain.ErrUnexpectedStatus)
	}

	_, err := tr.Do(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, int32(3), calls.Load())

	requests := tr.metrics.requests
	assert.Equal(t, float64(3), testutil.ToFloat64(requests.WithLabelValues("get_metrics", "GET", "503")))
	assert.Equal(t, float64(1), testutil.ToFloat64(requests.WithLabelValues("get_metrics", "GET", "circuit_open")))
	assert.Equal(t, 1, mustGatherAndCount(t, reg, "bienestar_client_request_duration_seconds"))
}

func TestDo_ClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	tr, _ := newTestTransport(t, srv, nil)

	for i := 0; i < 5; i++ {
		_, err := tr.Do(context.Background(), &ports.Request{Operation: "get_result", Method: http.MethodGet, Path: "/"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	}
}

func TestDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{body: `{"detail":"x"}`, want: "x"},
		{body: `{"detail":[{"loc":["query",0],"msg":"bad"}]}`, want: "bad"},
		{body: `not json `, want: "not json"},
		{body: `{"other":1}`, want: `{"other":1}`},
		{body: `{"detail":{"code":7}}`, want: `{"code":7}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, detail([]byte(tt.body)), tt.body)
	}
}

func mustGatherAndCount(t *testing.T, g prometheus.Gatherer, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(g, name)
	require.NoError(t, err)
	return n
}
