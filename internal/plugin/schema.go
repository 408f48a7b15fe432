// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package plugin

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the plugin.yaml schema.
const SchemaID = "https://inkpad.dev/schemas/plugin.schema.json"

var (
	schemaOnce     sync.Once
	schemaCompiled *jschema.Schema
	errSchema      error
)

// GenerateSchema generates a JSON Schema for plugin.yaml from the Manifest struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
		FieldNameTag:   "yaml",
	}
	schema := r.Reflect(&Manifest{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Inkpad Plugin Manifest"
	schema.Description = "Schema for plugin.yaml manifest files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.In("plugin").Wrapf(err, "marshal manifest schema")
	}
	return data, nil
}

// ValidateSchema validates YAML data against the plugin manifest JSON Schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return oops.Code(CodeInvalidManifest).In("plugin").Errorf("manifest data is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code(CodeInvalidManifest).In("plugin").Wrapf(err, "invalid YAML")
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	if err := sch.Validate(toJSONTypes(doc)); err != nil {
		return oops.Code(CodeInvalidManifest).In("plugin").Wrapf(err, "schema validation failed")
	}
	return nil
}

// FormatSchemaError returns the part of a validation error worth showing a
// plugin author.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if _, after, ok := strings.Cut(msg, "schema validation failed: "); ok {
		return after
	}
	return msg
}

func compiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := GenerateSchema()
		if err != nil {
			errSchema = err
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			errSchema = oops.In("plugin").Wrapf(err, "parse manifest schema")
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource(SchemaID, doc); err != nil {
			errSchema = oops.In("plugin").Wrapf(err, "add manifest schema resource")
			return
		}
		schemaCompiled, errSchema = c.Compile(SchemaID)
		if errSchema != nil {
			errSchema = oops.In("plugin").Wrapf(errSchema, "compile manifest schema")
		}
	})
	return schemaCompiled, errSchema
}

// toJSONTypes normalizes YAML-decoded values into the shapes the JSON
// Schema validator accepts. Integers become float64 like encoding/json.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = toJSONTypes(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = toJSONTypes(e)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return val
	}
}
