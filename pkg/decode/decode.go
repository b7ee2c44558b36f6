// Package decode reads typed JSON request bodies.
package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// JSON decodes a single JSON value from r into T. Unknown fields and
// trailing data are rejected.
func JSON[T any](r io.Reader) (T, error) {
	var result T

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&result); err != nil {
		if errors.Is(err, io.EOF) {
			return result, errors.New("empty body")
		}
		return result, err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return result, fmt.Errorf("unexpected data after JSON value")
	}
	return result, nil
}
