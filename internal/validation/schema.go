// Package validation checks request bodies against JSON schemas before they
// are decoded into handler DTOs.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const orderSchema = `{
	"type": "object",
	"required": ["franchiseId", "storeId", "items"],
	"properties": {
		"franchiseId": {"type": "integer", "minimum": 1},
		"storeId": {"type": "integer", "minimum": 1},
		"items": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["menuId", "description", "price"],
				"properties": {
					"menuId": {"type": "integer", "minimum": 1},
					"description": {"type": "string", "minLength": 1},
					"price": {"type": "number", "minimum": 0}
				}
			}
		}
	}
}`

const menuItemSchema = `{
	"type": "object",
	"required": ["title", "price"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"image": {"type": "string"},
		"price": {"type": "number", "minimum": 0}
	}
}`

var (
	orderLoader    = gojsonschema.NewStringLoader(orderSchema)
	menuItemLoader = gojsonschema.NewStringLoader(menuItemSchema)
)

// Error lists every schema violation found in a document.
type Error struct {
	Violations []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// Order validates a create-order request body.
func Order(body []byte) error {
	return validate(orderLoader, body)
}

// MenuItem validates a menu item request body.
func MenuItem(body []byte) error {
	return validate(menuItemLoader, body)
}

func validate(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &Error{Violations: []string{fmt.Sprintf("malformed document: %v", err)}}
	}
	if result.Valid() {
		return nil
	}
	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return &Error{Violations: errs}
}
