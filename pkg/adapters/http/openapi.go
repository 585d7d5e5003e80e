package http

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawSpec []byte

// Spec is the loaded API description with the JSON request body schema of
// every operation indexed by operationId.
type Spec struct {
	Doc    *openapi3.T
	bodies map[string]*openapi3.Schema
	routes []string
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec() (*Spec, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false

	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("openapi: loading spec: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("openapi: validating spec: %w", err)
	}

	s := &Spec{Doc: doc, bodies: make(map[string]*openapi3.Schema)}
	for path, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			s.routes = append(s.routes, method+" "+path)
			if op.RequestBody == nil || op.RequestBody.Value == nil {
				continue
			}
			if mt := op.RequestBody.Value.Content.Get("application/json"); mt != nil && mt.Schema != nil {
				s.bodies[op.OperationID] = mt.Schema.Value
			}
		}
	}
	sort.Strings(s.routes)
	return s, nil
}

// Routes lists the documented operations as "METHOD /path".
func (s *Spec) Routes() []string {
	return s.routes
}

// Version returns the API version.
func (s *Spec) Version() string {
	if s.Doc.Info == nil {
		return "unknown"
	}
	return s.Doc.Info.Version
}

// ValidateBody checks a decoded request body against the schema of the
// operation. Operations without a body schema accept anything.
func (s *Spec) ValidateBody(operationID string, body any) error {
	schema, ok := s.bodies[operationID]
	if !ok {
		return nil
	}
	if err := schema.VisitJSON(body); err != nil {
		return fmt.Errorf("invalid request body: %s", firstLine(err.Error()))
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func (s *Spec) serveYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(rawSpec)
}
