package store

import (
	"bytes"

	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const recordSchemaURL = "conductor://catalog-record.json"

const recordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "fingerprint", "catalog"],
  "properties": {
    "version": {"const": "v1"},
    "fingerprint": {"type": "string", "pattern": "^[0-9a-f]{128}$"},
    "catalog": {
      "type": "object",
      "required": ["namespaces"],
      "properties": {
        "namespaces": {"type": ["array", "null"], "items": {"$ref": "#/definitions/namespace"}}
      }
    }
  },
  "definitions": {
    "name": {"type": "string", "minLength": 1},
    "namespace": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"$ref": "#/definitions/name"},
        "tables": {"type": ["array", "null"], "items": {"$ref": "#/definitions/table"}},
        "http_handlers": {"type": ["array", "null"], "items": {"$ref": "#/definitions/http_handler"}},
        "authentication_policies": {"type": ["array", "null"], "items": {"$ref": "#/definitions/authentication_policy"}},
        "authorization_policies": {"type": ["array", "null"], "items": {"$ref": "#/definitions/authorization_policy"}}
      }
    },
    "table": {
      "type": "object",
      "required": ["namespace", "uuid", "name", "columns"],
      "properties": {
        "namespace": {"$ref": "#/definitions/name"},
        "uuid": {"type": "string", "format": "uuid"},
        "name": {"$ref": "#/definitions/name"},
        "columns": {"type": ["array", "null"], "items": {"$ref": "#/definitions/column"}}
      }
    },
    "column": {
      "type": "object",
      "required": ["uid", "name", "data_type"],
      "properties": {
        "uid": {"type": "integer", "minimum": 0, "maximum": 4294967295},
        "name": {"$ref": "#/definitions/name"},
        "data_type": {"type": "string", "minLength": 1}
      }
    },
    "http_handler": {
      "type": "object",
      "required": ["namespace", "name", "body", "policy"],
      "properties": {
        "namespace": {"$ref": "#/definitions/name"},
        "name": {"$ref": "#/definitions/name"},
        "body": {"type": "string"},
        "policy": {"$ref": "#/definitions/name"}
      }
    },
    "authentication_policy": {
      "type": "object",
      "required": ["namespace", "name", "type"],
      "properties": {
        "namespace": {"$ref": "#/definitions/name"},
        "name": {"$ref": "#/definitions/name"},
        "type": {"enum": ["anonymous"]}
      }
    },
    "authorization_policy": {
      "type": "object",
      "required": ["namespace", "name", "permissive_expr"],
      "properties": {
        "namespace": {"$ref": "#/definitions/name"},
        "name": {"$ref": "#/definitions/name"},
        "permissive_expr": {"type": "string", "minLength": 1}
      }
    }
  }
}`

var recordSchemaCompiled *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(recordSchemaURL, bytes.NewReader([]byte(recordSchema))); err != nil {
		log.Fatal().Err(err).Msg("failed to add catalog record schema")
	}
	schema, err := compiler.Compile(recordSchemaURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to compile catalog record schema")
	}
	recordSchemaCompiled = schema
}
