package format

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"

	json "github.com/goccy/go-json"
)

type Format int

const (
	YAMLFormat Format = iota
	JSONFormat
)

var ErrBadFormat = errors.New("bad format")

func ParseFormat(v string) (Format, error) {
	f, ok := map[string]Format{
		"y":    YAMLFormat,
		"yaml": YAMLFormat,
		"yml":  YAMLFormat,
		"j":    JSONFormat,
		"json": JSONFormat,
	}[v]
	if ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadFormat, v)
}

func (f Format) String() string {
	d, err := f.MarshalText()
	if err != nil {
		return err.Error()
	}
	return string(d)
}

func (f Format) MarshalText() ([]byte, error) {
	switch f {
	case YAMLFormat:
		return []byte("yaml"), nil
	case JSONFormat:
		return []byte("json"), nil
	default:
		return nil, fmt.Errorf("<err: %d is not a format>", f)
	}
}

func (f *Format) UnmarshalText(d []byte) error {
	pf, err := ParseFormat(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}

func (f Format) IsJSON() bool { return f == JSONFormat }
func (f Format) IsYAML() bool { return f == YAMLFormat }

// Suffix returns the file extension for this format (including the dot).
func (f Format) Suffix() string {
	switch f {
	case YAMLFormat:
		return ".yaml"
	case JSONFormat:
		return ".json"
	default:
		return ""
	}
}

// AllFormats returns all supported formats in preference order.
func AllFormats() []Format {
	return []Format{YAMLFormat, JSONFormat}
}

// ToJSON converts YAML or JSON input to JSON. Empty input converts to
// null.
func ToJSON(d []byte) ([]byte, error) {
	t := bytes.TrimSpace(d)
	if len(t) == 0 {
		return []byte("null"), nil
	}
	if t[0] == '{' || t[0] == '[' {
		if json.Valid(t) {
			return t, nil
		}
	}
	j, err := yaml.YAMLToJSON(d)
	if err != nil {
		return nil, fmt.Errorf("could not read yaml: %w", err)
	}
	return bytes.TrimSpace(j), nil
}

// Encode writes v in format f. v must be encodable as JSON.
func (f Format) Encode(v any) ([]byte, error) {
	j, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	switch f {
	case JSONFormat:
		return append(j, '\n'), nil
	case YAMLFormat:
		y, err := yaml.JSONToYAML(j)
		if err != nil {
			return nil, err
		}
		return y, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadFormat, f)
	}
}
