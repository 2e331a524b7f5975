package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/uniempresarial/bienestar-client/internal/adapters/session"
)

const passwordEnv = "BIENESTAR_PASSWORD"

type loginOutput struct {
	Message string `json:"message"`
	Account any    `json:"account"`
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	email := fs.String("email", "", "institutional email")
	password := fs.String("password", "", "password (or "+passwordEnv+")")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv(passwordEnv)
	}
	if err := requireFlag("email", *email); err != nil {
		return err
	}
	if err := requireFlag("password", *password); err != nil {
		return err
	}

	account, err := a.auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	return a.writeJSON(loginOutput{
		Message: "Login successful",
		Account: account,
	})
}

func (a *App) logout(ctx context.Context, args []string) error {
	if err := a.parse(a.flagSet("logout"), args); err != nil {
		return err
	}
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	return a.writeJSON(map[string]string{"message": "Logged out"})
}

func (a *App) whoami(ctx context.Context, args []string) error {
	if err := a.parse(a.flagSet("whoami"), args); err != nil {
		return err
	}
	if a.sessions == nil {
		return fmt.Errorf("no session store configured")
	}
	token, err := a.sessions.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("not logged in")
	}
	claims, err := session.ParseClaims(token)
	if err != nil {
		return err
	}
	return a.writeJSON(claims)
}

func (a *App) programs(ctx context.Context, args []string) error {
	if err := a.parse(a.flagSet("programs"), args); err != nil {
		return err
	}
	programs, err := a.auth.ListPrograms(ctx)
	if err != nil {
		return err
	}
	return a.writeJSON(programs)
}

func (a *App) positions(ctx context.Context, args []string) error {
	if err := a.parse(a.flagSet("positions"), args); err != nil {
		return err
	}
	positions, err := a.auth.ListPositions(ctx)
	if err != nil {
		return err
	}
	return a.writeJSON(positions)
}
