package services

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/uniempresarial/bienestar-client/internal/core/domain"
	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

func decodeInto(op string, resp *ports.Response, dst any) error {
	if err := json.Unmarshal(resp.Body, dst); err != nil {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrMalformedResponse, err)
	}
	return nil
}

func decode[T any](op string, resp *ports.Response) (*T, error) {
	var out T
	if err := decodeInto(op, resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// setOptional writes key only when v is present.
func setOptional(q url.Values, key string, v domain.Optional[string]) {
	if s, ok := v.Get(); ok {
		q.Set(key, s)
	}
}

func setOptionalBool(q url.Values, key string, v domain.Optional[bool]) {
	if b, ok := v.Get(); ok {
		q.Set(key, strconv.FormatBool(b))
	}
}
