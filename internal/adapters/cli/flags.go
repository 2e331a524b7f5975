package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/uniempresarial/bienestar-client/internal/core/domain"
)

// optionalString records whether the flag was given at all, so that
// -program "" is sent while an absent -program is not.
type optionalString struct {
	value domain.Optional[string]
}

func (o *optionalString) String() string {
	s, _ := o.value.Get()
	return s
}

func (o *optionalString) Set(s string) error {
	o.value = domain.Some(s)
	return nil
}

// optionalBool always takes a value (-alert true, -alert=false) so a
// bare flag cannot swallow the value that follows it.
type optionalBool struct {
	value domain.Optional[bool]
}

func (o *optionalBool) String() string {
	b, ok := o.value.Get()
	if !ok {
		return ""
	}
	return strconv.FormatBool(b)
}

func (o *optionalBool) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	o.value = domain.Some(b)
	return nil
}

// answers collects repeated -answer <question>=<value> flags.
type answers struct {
	submission domain.SurveySubmission
}

func (a *answers) String() string {
	parts := make([]string, 0, len(a.submission.Answers))
	for id, v := range a.submission.Answers {
		parts = append(parts, fmt.Sprintf("%d=%d", id, v))
	}
	return strings.Join(parts, ",")
}

func (a *answers) Set(s string) error {
	qs, vs, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("answer %q must look like <question>=<value>", s)
	}
	id, err := strconv.Atoi(strings.TrimSpace(qs))
	if err != nil {
		return fmt.Errorf("answer %q: bad question id: %w", s, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(vs))
	if err != nil {
		return fmt.Errorf("answer %q: bad value: %w", s, err)
	}
	a.submission = a.submission.With(id, v)
	return nil
}
