package tools_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vportnov/usermgmt-agent/internal/userapi"
	"github.com/vportnov/usermgmt-agent/tools"
)

func userRegistry(t *testing.T, handler http.HandlerFunc) *tools.Registry {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return tools.NewRegistry(tools.UserTools(userapi.NewClient(srv.URL))...)
}

func TestUserTools_AdvertiseExpectedSet(t *testing.T) {
	r := tools.NewRegistry(tools.UserTools(userapi.NewClient(""))...)
	defs, err := r.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []string{"get_user_by_id", "search_user", "add_user", "update_user", "delete_user"}
	if len(defs) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(defs))
	}
	for i, name := range want {
		if defs[i].Name != name {
			t.Fatalf("tool %d: got %q want %q", i, defs[i].Name, name)
		}
		if defs[i].Description == "" {
			t.Fatalf("tool %q has no description", name)
		}
		if defs[i].InputSchema["type"] != "object" {
			t.Fatalf("tool %q schema is not an object: %v", name, defs[i].InputSchema)
		}
	}
}

func TestGetUserByID_RoutesToService(t *testing.T) {
	r := userRegistry(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/v1/users/42" {
			t.Errorf("unexpected path: %s", req.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42, "name": "Alice"}`))
	})
	out, err := r.Execute(context.Background(), "get_user_by_id", map[string]any{"user_id": 42})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, "name: Alice") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestSearchUser_OmittedCriteriaNotSent(t *testing.T) {
	r := userRegistry(t, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if q.Get("surname") != "Smith" || len(q) != 1 {
			t.Errorf("unexpected query: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	if _, err := r.Execute(context.Background(), "search_user", map[string]any{"surname": "Smith"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestAddUser_ServiceErrorSurfaces(t *testing.T) {
	r := userRegistry(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail": "email already exists"}`))
	})
	_, err := r.Execute(context.Background(), "add_user", map[string]any{
		"name": "Bob", "surname": "Jones", "email": "bob@example.com", "about_me": "dup",
	})
	if err == nil || !strings.Contains(err.Error(), "HTTP 422") {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestDeleteUser_Confirms(t *testing.T) {
	r := userRegistry(t, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodDelete {
			t.Errorf("unexpected method: %s", req.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	out, err := r.Execute(context.Background(), "delete_user", map[string]any{"user_id": 7})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "User successfully deleted" {
		t.Fatalf("unexpected output: %q", out)
	}
}
