package ports

import (
	"context"
	"net/http"
	"net/url"
)

// FormField is one multipart form field; order is preserved on the wire.
type FormField struct {
	Name  string
	Value string
}

// Request describes one backend call. At most one of JSON and Form is set;
// neither means a body-less request.
type Request struct {
	// Operation names the call in logs, metrics and errors.
	Operation string
	Method    string
	Path      string
	Query     url.Values
	JSON      any
	Form      []FormField
	// StatusKinds overrides the default failure kind for given statuses.
	StatusKinds map[int]error
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Transport performs a request and returns the 2xx response, or an
// *domain.APIError / *domain.TransportError.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// SessionStore keeps the access token of the logged-in caller. Token returns
// "" and no error when nobody is logged in.
type SessionStore interface {
	SaveToken(ctx context.Context, token string) error
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
