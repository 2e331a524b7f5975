// Package transport implements ports.Transport over net/http.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/uniempresarial/bienestar-client/internal/config"
	"github.com/uniempresarial/bienestar-client/internal/core/domain"
	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

const requestIDHeader = "X-Request-ID"

var errServerStatus = errors.New("server error status")

type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is then ignored.
	HTTPClient *http.Client
	Sessions   ports.SessionStore
	Breaker    *gobreaker.CircuitBreaker
	Metrics    *Metrics
	Logger     logrus.FieldLogger
}

type HTTPTransport struct {
	baseURL    string
	httpClient *http.Client
	sessions   ports.SessionStore
	breaker    *gobreaker.CircuitBreaker
	metrics    *Metrics
	log        logrus.FieldLogger
}

var _ ports.Transport = (*HTTPTransport)(nil)

func New(cfg Config) (*HTTPTransport, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	breaker := cfg.Breaker
	if breaker == nil {
		breaker = config.NewCircuitBreaker(config.BreakerBackend, log)
	}

	return &HTTPTransport{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		sessions:   cfg.Sessions,
		breaker:    breaker,
		metrics:    cfg.Metrics,
		log:        log,
	}, nil
}

type roundTrip struct {
	status int
	header http.Header
	body   []byte
	err    error
}

func (t *HTTPTransport) Do(ctx context.Context, req *ports.Request) (*ports.Response, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := t.log.WithFields(logrus.Fields{
		"operation":  req.Operation,
		"method":     req.Method,
		"path":       req.Path,
		"request_id": requestID,
	})

	httpReq, err := t.newHTTPRequest(ctx, req, requestID)
	if err != nil {
		return nil, &domain.TransportError{Operation: req.Operation, Err: err}
	}

	out, err := t.breaker.Execute(func() (interface{}, error) {
		rt := t.send(httpReq)
		switch {
		case rt.err != nil && ctx.Err() != nil:
			// Cancelled by the caller; the backend is not at fault.
			return rt, nil
		case rt.err != nil:
			return rt, rt.err
		case rt.status >= http.StatusInternalServerError:
			return rt, errServerStatus
		}
		return rt, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		t.metrics.observe(req, "circuit_open", time.Since(start))
		log.WithError(err).Warn("backend circuit open")
		return nil, &domain.TransportError{Operation: req.Operation, Err: err}
	}

	rt := out.(*roundTrip)
	if rt.err != nil {
		t.metrics.observe(req, "transport_error", time.Since(start))
		log.WithError(rt.err).Warn("request failed")
		return nil, &domain.TransportError{Operation: req.Operation, Err: rt.err}
	}

	t.metrics.observe(req, fmt.Sprint(rt.status), time.Since(start))
	log = log.WithField("status", rt.status)

	if rt.status < 200 || rt.status > 299 {
		apiErr := classify(req, rt.status, rt.body)
		log.WithField("detail", apiErr.Detail).Info("backend rejected request")
		return nil, apiErr
	}

	log.WithField("duration", time.Since(start).String()).Debug("request completed")
	return &ports.Response{
		Status: rt.status,
		Header: rt.header,
		Body:   rt.body,
	}, nil
}

func (t *HTTPTransport) send(httpReq *http.Request) *roundTrip {
	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return &roundTrip{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &roundTrip{err: fmt.Errorf("read response body: %w", err)}
	}
	return &roundTrip{status: resp.StatusCode, header: resp.Header, body: body}
}

func (t *HTTPTransport) newHTTPRequest(ctx context.Context, req *ports.Request, requestID string) (*http.Request, error) {
	if req.JSON != nil && len(req.Form) > 0 {
		return nil, fmt.Errorf("request %s sets both JSON and form bodies", req.Operation)
	}

	target := t.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case len(req.Form) > 0:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, f := range req.Form {
			if err := w.WriteField(f.Name, f.Value); err != nil {
				return nil, fmt.Errorf("failed to write form field %s: %w", f.Name, err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("failed to close form body: %w", err)
		}
		body = &buf
		contentType = w.FormDataContentType()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json, */*")
	httpReq.Header.Set(requestIDHeader, requestID)

	if t.sessions != nil {
		token, err := t.sessions.Token(ctx)
		if err != nil {
			t.log.WithError(err).Warn("session store unavailable, sending request without token")
		} else if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, nil
}
