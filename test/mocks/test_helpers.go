package mocks

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/uniempresarial/bienestar-client/internal/core/domain"
)

const testSigningKey = "test-signing-key"

// CreateTestToken signs an access token shaped like the backend's.
func CreateTestToken(email string, userID int, role string, expiresAt time.Time) string {
	claims := jwt.MapClaims{
		"sub": email,
		"id":  userID,
		"rol": role,
		"exp": expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	if err != nil {
		panic(err)
	}
	return token
}

// CreateTestSubmission answers all five WHO-5 questions with value.
func CreateTestSubmission(value int) domain.SurveySubmission {
	s := domain.NewSurveySubmission()
	for id := 1; id <= 5; id++ {
		s = s.With(id, value)
	}
	return s
}

// CreateTestStudent returns a registration that passes backend validation.
func CreateTestStudent() domain.StudentRegistration {
	return domain.StudentRegistration{
		Identity: domain.Identity{
			FirstNames:         "Ana María",
			LastNames:          "Rojas",
			DocumentType:       domain.DocumentCC,
			DocumentNumber:     "1012345678",
			InstitutionalEmail: "ana.rojas@estudiantes.uniempresarial.edu.co",
			Password:           "Segura123",
		},
		Program: "Psicología",
		Cohort:  "2024-1",
	}
}
