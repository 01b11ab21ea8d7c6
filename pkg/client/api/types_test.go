package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorText(t *testing.T) {
	assert.Equal(t, "primary", APIError{Message: "primary", Error: "secondary"}.Text())
	assert.Equal(t, "secondary", APIError{Error: "secondary"}.Text())
	assert.Empty(t, APIError{}.Text())
}

func TestSearchRequestValues(t *testing.T) {
	values := (&SearchRequest{Query: "go & rust", K: 3}).Values()
	assert.Equal(t, "k=3&q=go+%26+rust", values.Encode())

	values = (&SearchRequest{Query: "q", K: 1, Model: "text-embedding-3-small"}).Values()
	assert.Equal(t, "text-embedding-3-small", values.Get("model"))
}

type weatherParams struct {
	City  string `json:"city" jsonschema:"required,description=City to look up"`
	Units string `json:"units,omitempty" jsonschema:"enum=metric,enum=imperial"`
}

func TestSchemaFor(t *testing.T) {
	schema := SchemaFor[weatherParams]()

	data, err := json.Marshal(schema)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "object", doc["type"])
	assert.NotContains(t, doc, "$schema")
	assert.NotContains(t, doc, "$ref")
	assert.NotContains(t, doc, "$id")
	assert.Equal(t, []any{"city"}, doc["required"])

	properties, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, properties, "city")
	assert.Contains(t, properties, "units")
}

func TestMarshalPartialUpdates(t *testing.T) {
	prompt := "new prompt"
	data, err := json.Marshal(AgentUpdate{Prompt: &prompt})
	require.NoError(t, err)
	assert.JSONEq(t, `{"prompt":"new prompt"}`, string(data))

	data, err = json.Marshal(KnowledgeBaseUpdate{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	empty, none := "", []string{}
	data, err = json.Marshal(AgentUpdate{Description: &empty, FallbackModels: &none, Tools: &none})
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":"","fallbackModels":[],"tools":[]}`, string(data))

	metadata := map[string]any{}
	data, err = json.Marshal(DocumentUpdate{ID: "d", Metadata: &metadata})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"d","metadata":{}}`, string(data))
}
