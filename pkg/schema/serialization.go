package schema

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON serializes the schema as a map of question ids to type names.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}

	names := make(map[string]string, len(s))
	for id, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("answer %s: type is nil", id)
		}
		names[id] = typ.Name()
	}
	return json.Marshal(names)
}

// UnmarshalJSON restores a schema from type names. Option restrictions are
// not part of the wire form and are lost.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}

	var names map[string]string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if names == nil {
		*s = nil
		return nil
	}

	parsed, err := ParseTypeMap(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
