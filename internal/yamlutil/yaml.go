// Package yamlutil decodes the YAML used by lab notes: configuration files
// and note front matter. It keeps the YAML library behind one small surface.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps a YAML document at 1MB.
const MaxInputSize = 1 << 20

var (
	ErrEmpty     = errors.New("yamlutil: empty document")
	ErrNilTarget = errors.New("yamlutil: nil decode target")
	ErrTooLarge  = errors.New("yamlutil: document too large")
)

// Unmarshal decodes data into v, ignoring keys v has no field for. Front
// matter is decoded this way since notes carry keys of their own.
func Unmarshal(data []byte, v any) error {
	return decode(data, v)
}

// UnmarshalStrict decodes data into v and rejects unknown keys.
func UnmarshalStrict(data []byte, v any) error {
	return decode(data, v, yaml.Strict())
}

func decode(data []byte, v any, opts ...yaml.DecodeOption) error {
	switch {
	case len(data) == 0:
		return ErrEmpty
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), MaxInputSize)
	case v == nil:
		return ErrNilTarget
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}
