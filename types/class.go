package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type ClassKind string

const (
	// ClassKindCairo0 is a legacy (Cairo 0) class definition.
	ClassKindCairo0 ClassKind = "cairo0"
	// ClassKindSierra is a Sierra (Cairo 1+) class definition.
	ClassKindSierra ClassKind = "sierra"
	// ClassKindCompiled is the CASM compiled form of a Sierra class.
	ClassKindCompiled ClassKind = "casm"
)

// ClassDefinition keeps a class definition as the raw JSON the gateway returned.
// Class definitions are large and only re-hashed or re-served by callers, so the
// client verifies their shape without decoding the program itself.
type ClassDefinition struct {
	Kind       ClassKind
	Definition json.RawMessage
}

// Marker keys that identify each class kind.
var classKindMarkers = []struct {
	key  string
	kind ClassKind
}{
	{"sierra_program", ClassKindSierra},
	{"bytecode", ClassKindCompiled},
	{"program", ClassKindCairo0},
}

func (c *ClassDefinition) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("class definition is not a JSON object: %w", err)
	}

	c.Kind = ""
	for _, marker := range classKindMarkers {
		if _, ok := fields[marker.key]; ok {
			c.Kind = marker.kind
			break
		}
	}
	c.Definition = append(c.Definition[:0], bytes.TrimSpace(data)...)
	return nil
}

func (c ClassDefinition) MarshalJSON() ([]byte, error) {
	if len(c.Definition) == 0 {
		return []byte("null"), nil
	}
	return c.Definition, nil
}

func (c *ClassDefinition) Validate() error {
	if len(c.Definition) == 0 {
		return missingField("definition")
	}
	if c.Kind == "" {
		return missingField("program")
	}
	return nil
}
