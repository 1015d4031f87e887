package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses a record bundle from JSON format.
type JSONParser struct{}

// Parse reads a JSON bundle from the reader. Line numbers are the 1-indexed
// position of each record within its list.
func (p *JSONParser) Parse(r io.Reader) (*RawBundle, error) {
	var bundle RawBundle

	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	for i := range bundle.Subjects {
		bundle.Subjects[i].LineNum = i + 1
	}
	for i := range bundle.Rules {
		bundle.Rules[i].LineNum = i + 1
	}
	for i := range bundle.Checks {
		bundle.Checks[i].LineNum = i + 1
	}
	for i := range bundle.Cases {
		bundle.Cases[i].LineNum = i + 1
	}
	for i := range bundle.Documents {
		bundle.Documents[i].LineNum = i + 1
	}

	return &bundle, nil
}
