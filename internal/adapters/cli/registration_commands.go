package cli

import (
	"context"
	"flag"
	"os"

	"github.com/uniempresarial/bienestar-client/internal/core/domain"
)

type identityFlags struct {
	firstNames     *string
	lastNames      *string
	documentType   *string
	documentNumber *string
	email          *string
	password       *string
}

func bindIdentity(fs *flag.FlagSet) identityFlags {
	return identityFlags{
		firstNames:     fs.String("first-names", "", "first names"),
		lastNames:      fs.String("last-names", "", "last names"),
		documentType:   fs.String("document-type", string(domain.DocumentCC), "CC, TI, CE or PA"),
		documentNumber: fs.String("document-number", "", "document number"),
		email:          fs.String("email", "", "institutional email"),
		password:       fs.String("password", "", "password (or "+passwordEnv+")"),
	}
}

func (f identityFlags) identity() domain.Identity {
	password := *f.password
	if password == "" {
		password = os.Getenv(passwordEnv)
	}
	return domain.Identity{
		FirstNames:         *f.firstNames,
		LastNames:          *f.lastNames,
		DocumentType:       domain.DocumentType(*f.documentType),
		DocumentNumber:     *f.documentNumber,
		InstitutionalEmail: *f.email,
		Password:           password,
	}
}

func (a *App) registerStudent(ctx context.Context, args []string) error {
	fs := a.flagSet("register-student")
	id := bindIdentity(fs)
	program := fs.String("program", "", "academic program, see the programs command")
	cohort := fs.String("cohort", "", "cohort, YYYY-1 or YYYY-2")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	account, err := a.auth.RegisterStudent(ctx, domain.StudentRegistration{
		Identity: id.identity(),
		Program:  *program,
		Cohort:   *cohort,
	})
	if err != nil {
		return err
	}
	return a.writeJSON(account)
}

func (a *App) registerStaff(ctx context.Context, args []string) error {
	fs := a.flagSet("register-staff")
	id := bindIdentity(fs)
	position := fs.String("position", "", "staff position, see the positions command")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	account, err := a.auth.RegisterStaff(ctx, domain.StaffRegistration{
		Identity: id.identity(),
		Position: *position,
	})
	if err != nil {
		return err
	}
	return a.writeJSON(account)
}
