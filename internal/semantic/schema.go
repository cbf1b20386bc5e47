package semantic

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fyrsmithlabs/rfqd/internal/rfq"
)

const payloadSchemaURL = "rfq-payload.json"

// PayloadSchema is the JSON Schema every backend response must satisfy.
// Unknown keys are allowed; known keys must have the right type or be null.
const PayloadSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "direction":         {"type": ["string", "null"]},
    "asset_class":       {"type": ["string", "null"]},
    "instrument":        {"type": ["string", "null"]},
    "quantity":          {"type": ["number", "null"]},
    "quantity_unit":     {"type": ["string", "null"]},
    "currency_pair":     {"type": ["string", "null"]},
    "notional":          {"type": ["number", "null"]},
    "notional_currency": {"type": ["string", "null"]},
    "settlement_date":   {"type": ["string", "null"]},
    "tenor":             {"type": ["string", "null"]},
    "strike":            {"type": ["number", "null"]},
    "client_name":       {"type": ["string", "null"]},
    "urgency":           {"type": ["string", "null"]},
    "additional_terms":  {"type": ["object", "null"]},
    "confidence_score":  {"type": ["number", "null"]},
    "parsing_notes":     {"type": ["array", "null"], "items": {"type": "string"}},
    "contact_info":      {"$ref": "#/$defs/contact"},
    "company_info":      {"$ref": "#/$defs/company"},
    "line_items":        {"type": ["array", "null"], "items": {"$ref": "#/$defs/lineItem"}}
  },
  "$defs": {
    "contact": {
      "type": ["object", "null"],
      "properties": {
        "name":         {"type": ["string", "null"]},
        "email":        {"type": ["string", "null"]},
        "phone":        {"type": ["string", "null"]},
        "desk":         {"type": ["string", "null"]},
        "role":         {"type": ["string", "null"]},
        "bloomberg_id": {"type": ["string", "null"]},
        "reuters_id":   {"type": ["string", "null"]}
      }
    },
    "company": {
      "type": ["object", "null"],
      "properties": {
        "name":                 {"type": ["string", "null"]},
        "legal_entity":         {"type": ["string", "null"]},
        "lei":                  {"type": ["string", "null"]},
        "country":              {"type": ["string", "null"]},
        "sector":               {"type": ["string", "null"]},
        "relationship_manager": {"type": ["string", "null"]},
        "credit_rating":        {"type": ["string", "null"]},
        "is_internal":          {"type": ["boolean", "null"]}
      }
    },
    "lineItem": {
      "type": "object",
      "properties": {
        "item_number":       {"type": ["integer", "null"]},
        "direction":         {"type": ["string", "null"]},
        "asset_class":       {"type": ["string", "null"]},
        "instrument":        {"type": ["string", "null"]},
        "quantity":          {"type": ["number", "null"]},
        "quantity_unit":     {"type": ["string", "null"]},
        "unit":              {"type": ["string", "null"]},
        "currency_pair":     {"type": ["string", "null"]},
        "notional":          {"type": ["number", "null"]},
        "notional_currency": {"type": ["string", "null"]},
        "settlement_date":   {"type": ["string", "null"]},
        "tenor":             {"type": ["string", "null"]},
        "strike":            {"type": ["number", "null"]},
        "price":             {"type": ["number", "null"]},
        "side":              {"type": ["string", "null"]},
        "rate":              {"type": ["number", "null"]},
        "description":       {"type": ["string", "null"]}
      }
    }
  }
}`

var payloadSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(payloadSchemaURL, strings.NewReader(PayloadSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(payloadSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// DecodePayload validates a backend response and decodes it. The content must
// hold exactly one JSON object, optionally wrapped in a markdown code fence.
func DecodePayload(content string) (*rfq.Payload, error) {
	body := stripCodeFence(content)
	if body == "" {
		return nil, ErrEmptyResponse
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedPayload)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedPayload)
	}

	schema, err := payloadSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: json does not match schema: %v", ErrMalformedPayload, err)
	}

	var p rfq.Payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &p, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
