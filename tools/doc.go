// Package tools defines the tool-provider contract consumed by the completion
// engine, plus an in-process provider implementation.
//
// Includes:
//   - Definition: name, description, JSON input schema.
//   - Provider: list/execute surface shared by the local registry and the MCP client.
//   - GenerateSchema[T](): derive a JSON Schema object from a Go struct.
//   - User-management tools: get_user_by_id, search_user, add_user, update_user, delete_user.
package tools
