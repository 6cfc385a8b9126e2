package store

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// recordSchema is the JSON Schema for a single persisted ManPage record,
// compiled once and cached: Draft2020, no remote $ref resolution, schema
// supplied as an in-process resource rather than fetched over the
// network.
const recordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["source", "name", "paragraphs", "aliases"],
  "properties": {
    "source": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 1},
    "synopsis": {"type": "string"},
    "partial_match": {"type": "boolean"},
    "multi_cmd": {"type": "boolean"},
    "nested_cmd": {"type": "array", "items": {"type": "string"}},
    "aliases": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "score"],
        "properties": {
          "name": {"type": "string"},
          "score": {"type": "integer"}
        }
      }
    },
    "paragraphs": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["idx", "text", "section", "is_option"],
        "properties": {
          "idx": {"type": "integer"},
          "text": {"type": "string"},
          "section": {"type": "string"},
          "is_option": {"type": "boolean"},
          "short": {"type": "array", "items": {"type": "string"}},
          "long": {"type": "array", "items": {"type": "string"}},
          "expects_arg": {"type": "boolean"},
          "expects_arg_values": {"type": "array", "items": {"type": "string"}},
          "argument": {"type": "string"},
          "nested_cmd": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var (
	schemaOnce    sync.Once
	compiled      *jsonschema.Schema
	compileErr    error
	schemaURL     = "schema://manpage-record.json"
)

func compileRecordSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, strings.NewReader(recordSchema)); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
	})
	return compiled, compileErr
}

// validateRecord validates a decoded record (as a generic any, the shape
// jsonschema.Validate expects) against recordSchema before it is indexed.
func validateRecord(doc any) error {
	schema, err := compileRecordSchema()
	if err != nil {
		return err
	}
	return schema.Validate(doc)
}
