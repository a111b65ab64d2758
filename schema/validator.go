package incidentschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"strikewatch/internal/model"
)

//go:embed incident.schema.json
var incidentSchemaJSON string

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateIncidentPayload validates one extracted incident object against
// the schema and the semantic rules the schema cannot express, returning the
// decoded record. LLM output passes through here before anything persists it.
func ValidateIncidentPayload(payload json.RawMessage) (*model.Incident, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var incident model.Incident
	if err := json.Unmarshal(normalized, &incident); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := validateSemantics(&incident); err != nil {
		return nil, err
	}

	return &incident, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("incident.schema.json", strings.NewReader(incidentSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("incident.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(incident *model.Incident) error {
	if incident == nil {
		return fmt.Errorf("payload is nil")
	}

	if _, err := time.Parse("2006-01-02", incident.Date); err != nil {
		return fmt.Errorf("date must be a real calendar date: %w", err)
	}
	if strings.TrimSpace(incident.DamageSummary) == "" {
		return fmt.Errorf("damage_summary must not be blank")
	}

	// Coordinates are all-or-nothing; a lone latitude is extraction noise.
	if (incident.Latitude == nil) != (incident.Longitude == nil) {
		return fmt.Errorf("latitude and longitude must be provided together")
	}

	return nil
}
