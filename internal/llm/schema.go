package llm

import (
	"google.golang.org/genai"
)

// NarrativeSchemaName identifies the story document schema
const NarrativeSchemaName = "narrative_document"

// GetNarrativeDocumentSchema returns the JSON schema for the story document.
// end_scene is optional: callers substitute a closing scene when it is missing.
func GetNarrativeDocumentSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":       map[string]any{"type": "string"},
			"cover_scene": map[string]any{"type": "string"},
			"end_scene":   map[string]any{"type": "string"},
			"pages": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text":              map[string]any{"type": "string"},
						"scene_description": map[string]any{"type": "string"},
					},
					"required":             []string{"text", "scene_description"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"title", "cover_scene", "pages"},
		"additionalProperties": false,
	}
}

var geminiTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"array":   genai.TypeArray,
	"string":  genai.TypeString,
	"integer": genai.TypeInteger,
	"number":  genai.TypeNumber,
	"boolean": genai.TypeBoolean,
}

// convertSchemaToGemini maps a JSON schema map onto genai.Schema.
// Keywords Gemini does not understand (additionalProperties, default) are dropped.
func convertSchemaToGemini(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}

	result := &genai.Schema{}
	if t, ok := schema["type"].(string); ok {
		result.Type = geminiTypes[t]
	}
	if desc, ok := schema["description"].(string); ok {
		result.Description = desc
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		result.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if child, ok := raw.(map[string]any); ok {
				result.Properties[name] = convertSchemaToGemini(child)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		result.Items = convertSchemaToGemini(items)
	}
	if required, ok := schema["required"].([]string); ok {
		result.Required = append([]string(nil), required...)
	}
	if enum, ok := schema["enum"].([]string); ok {
		result.Enum = append([]string(nil), enum...)
	}

	return result
}
