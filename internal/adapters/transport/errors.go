package transport

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/uniempresarial/bienestar-client/internal/core/domain"
	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

var defaultStatusKinds = map[int]error{
	http.StatusBadRequest:          domain.ErrValidation,
	http.StatusUnprocessableEntity: domain.ErrValidation,
	http.StatusUnauthorized:        domain.ErrAuthentication,
	http.StatusForbidden:           domain.ErrAuthentication,
	http.StatusNotFound:            domain.ErrNotFound,
	http.StatusConflict:            domain.ErrConflict,
}

func classify(req *ports.Request, status int, body []byte) *domain.APIError {
	kind, ok := req.StatusKinds[status]
	if !ok {
		kind, ok = defaultStatusKinds[status]
	}
	if !ok {
		kind = domain.ErrUnexpectedStatus
	}
	return &domain.APIError{
		Kind:      kind,
		Operation: req.Operation,
		Status:    status,
		Detail:    detail(body),
	}
}

type validationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// detail extracts the error text from a FastAPI error body, where "detail"
// is either a string or a list of validation issues.
func detail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var issues []validationIssue
	if err := json.Unmarshal(envelope.Detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if field := issueField(issue.Loc); field != "" {
				msgs = append(msgs, field+": "+issue.Msg)
			} else {
				msgs = append(msgs, issue.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(envelope.Detail)
}

func issueField(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	if s, ok := loc[len(loc)-1].(string); ok {
		return s
	}
	return ""
}
