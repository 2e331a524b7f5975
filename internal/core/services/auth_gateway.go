package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/uniempresarial/bienestar-client/internal/core/domain"
	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

var registrationPaths = map[domain.UserKind]string{
	domain.UserKindStudent: "/api/auth/registro/estudiante",
	domain.UserKindStaff:   "/api/auth/registro/personal",
}

type AuthGateway struct {
	transport ports.Transport
	sessions  ports.SessionStore
}

var _ ports.AuthGateway = (*AuthGateway)(nil)

// NewAuthGateway builds the account gateway. sessions may be nil, in which
// case Login does not remember the access token.
func NewAuthGateway(transport ports.Transport, sessions ports.SessionStore) *AuthGateway {
	return &AuthGateway{
		transport: transport,
		sessions:  sessions,
	}
}

func (g *AuthGateway) Register(ctx context.Context, reg domain.Registration) (*domain.AccountSummary, error) {
	path, ok := registrationPaths[reg.Kind()]
	if !ok {
		return nil, fmt.Errorf("register: unsupported user kind %q", reg.Kind())
	}
	op := "register_" + string(reg.Kind())
	resp, err := g.transport.Do(ctx, &ports.Request{
		Operation: op,
		Method:    http.MethodPost,
		Path:      path,
		JSON:      reg,
	})
	if err != nil {
		return nil, err
	}
	return decode[domain.AccountSummary](op, resp)
}

func (g *AuthGateway) RegisterStudent(ctx context.Context, reg domain.StudentRegistration) (*domain.AccountSummary, error) {
	return g.Register(ctx, reg)
}

func (g *AuthGateway) RegisterStaff(ctx context.Context, reg domain.StaffRegistration) (*domain.AccountSummary, error) {
	return g.Register(ctx, reg)
}

type loginAccount struct {
	ID         int             `json:"id"`
	FirstNames string          `json:"nombres"`
	LastNames  string          `json:"apellidos"`
	Email      string          `json:"correo"`
	Kind       domain.UserKind `json:"tipo_usuario"`
	Role       string          `json:"rol"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	Account     loginAccount `json:"usuario"`
}

// Login sends the credentials as a multipart form; the credential endpoint
// does not accept JSON. The login only counts once the token is stored: if
// the session store refuses it, Login returns a nil account and the error.
func (g *AuthGateway) Login(ctx context.Context, identifier, secret string) (*domain.AccountSummary, error) {
	const op = "login"
	resp, err := g.transport.Do(ctx, &ports.Request{
		Operation: op,
		Method:    http.MethodPost,
		Path:      "/api/auth/login",
		Form: []ports.FormField{
			{Name: "username", Value: identifier},
			{Name: "password", Value: secret},
		},
	})
	if err != nil {
		return nil, err
	}

	out, err := decode[loginResponse](op, resp)
	if err != nil {
		return nil, err
	}

	account := &domain.AccountSummary{
		ID:                 out.Account.ID,
		Kind:               out.Account.Kind,
		FirstNames:         out.Account.FirstNames,
		LastNames:          out.Account.LastNames,
		InstitutionalEmail: out.Account.Email,
		Role:               out.Account.Role,
	}

	if g.sessions != nil && out.AccessToken != "" {
		if err := g.sessions.SaveToken(ctx, out.AccessToken); err != nil {
			return nil, fmt.Errorf("%s: save session: %w", op, err)
		}
	}
	return account, nil
}

func (g *AuthGateway) Logout(ctx context.Context) error {
	if g.sessions == nil {
		return nil
	}
	return g.sessions.Clear(ctx)
}

func (g *AuthGateway) ListPrograms(ctx context.Context) ([]string, error) {
	var out struct {
		Programs []string `json:"programas"`
	}
	if err := g.getInto(ctx, "list_programs", "/api/auth/programas", &out); err != nil {
		return nil, err
	}
	return out.Programs, nil
}

func (g *AuthGateway) ListPositions(ctx context.Context) ([]string, error) {
	var out struct {
		Positions []string `json:"cargos"`
	}
	if err := g.getInto(ctx, "list_positions", "/api/auth/cargos", &out); err != nil {
		return nil, err
	}
	return out.Positions, nil
}

func (g *AuthGateway) getInto(ctx context.Context, op, path string, dst any) error {
	resp, err := g.transport.Do(ctx, &ports.Request{
		Operation: op,
		Method:    http.MethodGet,
		Path:      path,
	})
	if err != nil {
		return err
	}
	return decodeInto(op, resp, dst)
}
