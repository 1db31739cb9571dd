// Package source decodes JSON and YAML documents into formskema models.
//
// Decoded models use the value kinds the built-in types recognise: objects
// become map[string]any, arrays []any, integers int64 and other numbers
// float64.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/formskema"
)

// Format identifies a document syntax.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

var (
	// ErrNotObject is returned when the document root is neither an object nor null.
	ErrNotObject = errors.New("document root is not an object")
	// ErrDuplicateKey is returned for repeated object keys.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUnknownFormat is returned for unsupported formats or file extensions.
	ErrUnknownFormat = errors.New("unknown format")
)

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Decode reads one document from r. A null document yields a nil model.
func Decode(format Format, r io.Reader) (formskema.Model, error) {
	var (
		v   any
		err error
	)
	switch format {
	case JSON:
		v, err = decodeJSON(r)
	case YAML:
		v, err = decodeYAML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return asModel(v)
}

// Bytes decodes data in the given format.
func Bytes(format Format, data []byte) (formskema.Model, error) {
	return Decode(format, bytes.NewReader(data))
}

// ReadFile decodes the file at path; the format follows the extension.
func ReadFile(path string) (formskema.Model, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Decode(format, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func asModel(v any) (formskema.Model, error) {
	switch m := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return m, nil
	}
	return nil, fmt.Errorf("%w: got %T", ErrNotObject, v)
}
