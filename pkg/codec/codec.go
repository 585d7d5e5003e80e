// Package codec reads and writes journey documents as JSON or YAML.
//
// Documents are first parsed into generic maps and then decoded with weak
// typing, so hand-edited files ("required": "true", "version": "2") load
// the same way the editor's own exports do. Every decoded journey is
// sanitized and normalized before it is returned.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/journeys/internal/validator"
	"github.com/aretw0/journeys/pkg/domain"
	"github.com/aretw0/journeys/pkg/richtext"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Extensions lists the file extensions loaders pick up.
var Extensions = []string{".json", ".yaml", ".yml"}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// Decode parses a journey document and prepares it for the engine.
func Decode(data []byte, format Format) (*domain.Journey, []validator.Issue, error) {
	raw, err := parse(data, format)
	if err != nil {
		return nil, nil, err
	}
	return FromMap(raw)
}

// FromMap decodes an already parsed document.
func FromMap(raw map[string]any) (*domain.Journey, []validator.Issue, error) {
	var j domain.Journey
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &j,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, nil, fmt.Errorf("decode journey: %w", err)
	}
	return &j, Prepare(&j), nil
}

// Prepare sanitizes and normalizes j in place.
func Prepare(j *domain.Journey) []validator.Issue {
	richtext.SanitizeJourney(j)
	return validator.Normalize(j)
}

// Encode renders j in the given format.
func Encode(j *domain.Journey, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(j, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(j); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func parse(data []byte, format Format) (map[string]any, error) {
	var raw map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if raw == nil {
		return nil, fmt.Errorf("empty journey document")
	}
	return raw, nil
}
