package tools_test

import (
	"testing"

	"github.com/vportnov/usermgmt-agent/tools"
)

func TestGenerateSchema_ReflectsFieldsAndDescriptions(t *testing.T) {
	type input struct {
		UserID int    `json:"user_id" jsonschema_description:"Unique user identifier."`
		Note   string `json:"note,omitempty" jsonschema_description:"Optional note."`
	}
	schema := tools.GenerateSchema[input]()

	if schema["type"] != "object" {
		t.Fatalf("expected object schema, got %v", schema["type"])
	}
	if _, has := schema["$schema"]; has {
		t.Fatal("reflector metadata leaked into schema")
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("missing properties: %v", schema)
	}
	userID, ok := props["user_id"].(map[string]any)
	if !ok {
		t.Fatalf("missing user_id property: %v", props)
	}
	if userID["type"] != "integer" || userID["description"] != "Unique user identifier." {
		t.Fatalf("unexpected user_id schema: %v", userID)
	}

	required, ok := schema["required"].([]any)
	if !ok || len(required) != 1 || required[0] != "user_id" {
		t.Fatalf("unexpected required list: %v", schema["required"])
	}
}
