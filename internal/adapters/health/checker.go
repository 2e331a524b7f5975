// Package health reports whether the backend and the session store are
// reachable.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

const checkTimeout = 5 * time.Second

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// Pinger is satisfied by *redis.Client.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type Checker struct {
	transport ports.Transport
	redis     Pinger
	startTime time.Time
	version   string
}

// Report follows Kubernetes/OpenShift health check conventions
type Report struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewChecker builds a checker. pinger may be nil when sessions are kept in
// memory; the check is then skipped.
func NewChecker(transport ports.Transport, pinger Pinger, version string) *Checker {
	if version == "" {
		version = "unknown"
	}
	return &Checker{
		transport: transport,
		redis:     pinger,
		startTime: time.Now(),
		version:   version,
	}
}

// Ready checks every dependency; the report is DOWN if any check fails.
func (c *Checker) Ready(ctx context.Context) Report {
	checks := map[string]Check{"backend": c.checkBackend(ctx)}
	if c.redis != nil {
		checks["redis"] = c.checkRedis(ctx)
	}

	status := StatusUp
	for _, check := range checks {
		if check.Status != StatusUp {
			status = StatusDown
		}
	}

	return Report{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Version:   c.version,
		Checks:    checks,
	}
}

func (c *Checker) checkBackend(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	resp, err := c.transport.Do(ctx, &ports.Request{
		Operation: "health",
		Method:    http.MethodGet,
		Path:      "/health",
	})
	if err != nil {
		return Check{
			Status:  StatusDown,
			Message: "Cannot reach backend: " + err.Error(),
		}
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil || body.Status != "ok" {
		return Check{
			Status:  StatusDown,
			Message: "Backend reported unhealthy status",
		}
	}
	return Check{Status: StatusUp}
}

func (c *Checker) checkRedis(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := c.redis.Ping(ctx).Err(); err != nil {
		return Check{
			Status:  StatusDown,
			Message: "Cannot connect to Redis",
		}
	}
	return Check{Status: StatusUp}
}
