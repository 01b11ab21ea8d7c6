package api

import (
	"time"

	"github.com/invopop/jsonschema"
)

// Tool types

// ToolParams is the body of a tool create request
type ToolParams struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Params      *jsonschema.Schema `json:"params,omitempty"`
	Endpoint    string             `json:"endpoint"`
	Method      string             `json:"method"`
}

// ToolUpdate is a partial tool update. Nil fields are left unchanged.
type ToolUpdate struct {
	Name        *string            `json:"name,omitempty"`
	Description *string            `json:"description,omitempty"`
	Params      *jsonschema.Schema `json:"params,omitempty"`
	Endpoint    *string            `json:"endpoint,omitempty"`
	Method      *string            `json:"method,omitempty"`
}

// Tool represents a tool as returned by the service
type Tool struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Params      *jsonschema.Schema `json:"params,omitempty"`
	Endpoint    string             `json:"endpoint"`
	Method      string             `json:"method"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// SchemaFor reflects the parameter schema of a tool from a Go struct. Field
// descriptions and required markers come from jsonschema struct tags.
func SchemaFor[T any]() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
		Anonymous:      true,
	}
	schema := reflector.Reflect(new(T))
	schema.Version = ""
	return schema
}
