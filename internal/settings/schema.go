// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package settings

import (
	"bytes"
	"encoding/json"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/samber/oops"
)

const schemaResource = "settings.schema.json"

// Schema validates a plugin's settings record.
type Schema struct {
	doc      any
	compiled *jschema.Schema
}

// SchemaFor reflects a JSON Schema from a settings struct value, e.g.
// SchemaFor(MathSettings{}). Fields without omitempty are required.
func SchemaFor(v any) (*Schema, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}
	reflected := r.Reflect(v)

	raw, err := json.Marshal(reflected)
	if err != nil {
		return nil, oops.Code(CodeInvalidSchema).In("settings").Wrapf(err, "marshal reflected schema for %T", v)
	}
	return compile(raw)
}

// CompileSchema compiles a JSON Schema document, e.g. one declared inline in
// a plugin.yaml manifest.
func CompileSchema(doc map[string]any) (*Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, oops.Code(CodeInvalidSchema).In("settings").Wrapf(err, "marshal schema document")
	}
	return compile(raw)
}

func compile(raw []byte) (*Schema, error) {
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, oops.Code(CodeInvalidSchema).In("settings").Wrapf(err, "parse schema JSON")
	}

	c := jschema.NewCompiler()
	if err := c.AddResource(schemaResource, doc); err != nil {
		return nil, oops.Code(CodeInvalidSchema).In("settings").Wrapf(err, "add schema resource")
	}
	compiled, err := c.Compile(schemaResource)
	if err != nil {
		return nil, oops.Code(CodeInvalidSchema).In("settings").Wrapf(err, "compile schema")
	}
	return &Schema{doc: doc, compiled: compiled}, nil
}

// Validate checks values against the schema.
func (s *Schema) Validate(values Settings) error {
	if values == nil {
		values = Settings{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return oops.Code(CodeSettingsInvalid).In("settings").Wrapf(err, "settings are not JSON-encodable")
	}
	inst, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return oops.Code(CodeSettingsInvalid).In("settings").Wrap(err)
	}
	if err := s.compiled.Validate(inst); err != nil {
		return oops.Code(CodeSettingsInvalid).In("settings").Wrapf(err, "settings do not match schema")
	}
	return nil
}

// JSON returns the schema document, indented.
func (s *Schema) JSON() ([]byte, error) {
	out, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return nil, oops.In("settings").Wrap(err)
	}
	return out, nil
}
