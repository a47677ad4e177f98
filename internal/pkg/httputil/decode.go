package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Body decoding failures. ErrEmptyBody and ErrBodyShape mean the payload
// is missing or is valid JSON of the wrong shape; ErrMalformedJSON means it
// does not parse at all.
var (
	ErrEmptyBody     = errors.New("request body is required")
	ErrBodyShape     = errors.New("request body must be a JSON object")
	ErrMalformedJSON = errors.New("request body is not valid JSON")
)

// DecodeObject unmarshals a JSON object from body into dst. Unknown fields
// are ignored.
func DecodeObject(body []byte, dst any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ErrEmptyBody
	}
	if !json.Valid(trimmed) {
		return ErrMalformedJSON
	}
	if trimmed[0] != '{' {
		return ErrBodyShape
	}

	if err := json.Unmarshal(trimmed, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("%w: field %q has the wrong type", ErrBodyShape, typeErr.Field)
		}
		return fmt.Errorf("%w: %v", ErrBodyShape, err)
	}
	return nil
}
