package domain

import "time"

type UserKind string

const (
	UserKindStudent UserKind = "estudiante"
	UserKindStaff   UserKind = "personal"
)

type DocumentType string

const (
	DocumentCC DocumentType = "CC"
	DocumentTI DocumentType = "TI"
	DocumentCE DocumentType = "CE"
	DocumentPA DocumentType = "PA"
)

// Registration is the onboarding input for one user kind.
// New kinds add a variant; the set is closed to this package.
type Registration interface {
	Kind() UserKind
	isRegistration()
}

// Identity holds the fields every registration kind carries.
type Identity struct {
	FirstNames         string       `json:"nombres"`
	LastNames          string       `json:"apellidos"`
	DocumentType       DocumentType `json:"tipo_documento"`
	DocumentNumber     string       `json:"numero_documento"`
	InstitutionalEmail string       `json:"correo_institucional"`
	Password           string       `json:"password"`
}

type StudentRegistration struct {
	Identity
	Program string `json:"programa"`
	// Cohort uses the YYYY-1 / YYYY-2 form.
	Cohort string `json:"promocion"`
}

func (StudentRegistration) Kind() UserKind { return UserKindStudent }
func (StudentRegistration) isRegistration() {}

type StaffRegistration struct {
	Identity
	Position string `json:"cargo"`
}

func (StaffRegistration) Kind() UserKind { return UserKindStaff }
func (StaffRegistration) isRegistration() {}

// AccountSummary is the identity returned by registration and login.
// Login answers carry only the display subset.
type AccountSummary struct {
	ID                 int          `json:"id"`
	Kind               UserKind     `json:"tipo_usuario"`
	FirstNames         string       `json:"nombres"`
	LastNames          string       `json:"apellidos"`
	DocumentType       DocumentType `json:"tipo_documento,omitempty"`
	DocumentNumber     string       `json:"numero_documento,omitempty"`
	InstitutionalEmail string       `json:"correo_institucional"`
	Role               string       `json:"rol"`
	Program            *string      `json:"programa,omitempty"`
	Cohort             *string      `json:"promocion,omitempty"`
	Position           *string      `json:"cargo,omitempty"`
	ConsentAccepted    bool         `json:"consent_accepted"`
	ConsentDate        *time.Time   `json:"consent_date,omitempty"`
	CanContact         bool         `json:"can_contact"`
	CreatedAt          time.Time    `json:"created_at"`
	LastLogin          *time.Time   `json:"last_login,omitempty"`
}
