package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SurveyQuestion is one WHO-5 item with its answer scale, lowest first.
type SurveyQuestion struct {
	ID      int      `json:"id"`
	Text    string   `json:"texto"`
	Options []string `json:"opciones"`
}

// SurveySubmission maps question IDs to the selected scale value.
// Completeness is decided by the backend.
type SurveySubmission struct {
	Answers map[int]int
}

func NewSurveySubmission() SurveySubmission {
	return SurveySubmission{Answers: make(map[int]int)}
}

func (s SurveySubmission) With(questionID, value int) SurveySubmission {
	if s.Answers == nil {
		s.Answers = make(map[int]int)
	}
	s.Answers[questionID] = value
	return s
}

const answerKeyPrefix = "pregunta_"

// MarshalJSON writes one pregunta_<id> field per answer.
func (s SurveySubmission) MarshalJSON() ([]byte, error) {
	ids := make([]int, 0, len(s.Answers))
	for id := range s.Answers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var b strings.Builder
	b.WriteByte('{')
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q:%d", answerKeyPrefix+strconv.Itoa(id), s.Answers[id])
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func (s *SurveySubmission) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Answers = make(map[int]int, len(raw))
	for key, value := range raw {
		id, err := strconv.Atoi(strings.TrimPrefix(key, answerKeyPrefix))
		if err != nil || !strings.HasPrefix(key, answerKeyPrefix) {
			return fmt.Errorf("unknown answer field %q", key)
		}
		s.Answers[id] = value
	}
	return nil
}

// SurveyRecord is a stored survey; the ID is assigned by the backend.
type SurveyRecord struct {
	ID              int       `json:"id"`
	UserID          int       `json:"usuario_id"`
	SubmittedAt     time.Time `json:"created_at"`
	TotalScore      *int      `json:"puntaje_total,omitempty"`
	PercentageScore *int      `json:"puntaje_porcentual,omitempty"`
	Category        *string   `json:"categoria,omitempty"`
}

// SurveyResult is the backend's interpretation of one SurveyRecord.
type SurveyResult struct {
	SurveyID        int     `json:"encuesta_id"`
	TotalScore      int     `json:"puntaje_total"`
	PercentageScore int     `json:"puntaje_porcentual"`
	Category        string  `json:"categoria"`
	IsAlert         bool    `json:"es_alerta"`
	Message         *string `json:"mensaje,omitempty"`
}

type ConsentAck struct {
	Message         string `json:"message"`
	ConsentAccepted bool   `json:"consent_accepted"`
	CanContact      bool   `json:"can_contact"`
}
