// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package plugin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaResource = "plugin.schema.json"

var compiledSchema = sync.OnceValues(compileSchema)

// GenerateSchema returns the JSON Schema describing plugin.toml, reflected
// from the manifest document types.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := r.Reflect(&document{})
	schema.Title = "qol-tray Plugin Manifest"
	schema.Description = "Schema for plugin.toml manifest files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// ValidateSchema checks TOML manifest content against the manifest schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("manifest data is empty")
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid TOML: %w", err)
	}

	// TOML decodes arrays of tables as []map[string]any; a JSON round trip
	// yields the generic shapes the validator understands.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	instance, err := jschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to decode manifest: %w", err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	if err := sch.Validate(instance); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compileSchema() (*jschema.Schema, error) {
	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	schemaDoc, err := jschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource(schemaResource, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	return c.Compile(schemaResource)
}

// FormatSchemaError strips the validation prefix for display.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(err.Error(), "schema validation failed: ")
}
