package store

import (
	"path/filepath"
	"testing"

	"github.com/apiforge/forge/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "forge.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_DefaultsBeforeFirstWrite(t *testing.T) {
	s := openTestStore(t)

	if _, ok, err := s.ActiveWorkspaceID(); err != nil || ok {
		t.Errorf("Expected no workspace id, got ok=%v err=%v", ok, err)
	}

	envID, err := s.ActiveEnvID()
	if err != nil {
		t.Fatalf("ActiveEnvID failed: %v", err)
	}
	if envID != EnvNone {
		t.Errorf("Expected %q, got %q", EnvNone, envID)
	}

	vars, err := s.ActiveEnvVars()
	if err != nil {
		t.Fatalf("ActiveEnvVars failed: %v", err)
	}
	if vars != "{}" {
		t.Errorf("Expected empty snapshot {}, got %q", vars)
	}

	if _, ok, _ := s.CurrentLogServerID(); ok {
		t.Error("Expected no log server id before first write")
	}
	if _, ok, _ := s.CurrentUser(); ok {
		t.Error("Expected no cached user before first write")
	}
}

func TestStore_WorkspaceRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.SetActiveWorkspaceID(42); err != nil {
		t.Fatalf("SetActiveWorkspaceID failed: %v", err)
	}

	id, ok, err := s.ActiveWorkspaceID()
	if err != nil || !ok {
		t.Fatalf("Expected stored workspace id, got ok=%v err=%v", ok, err)
	}
	if id != 42 {
		t.Errorf("Expected 42, got %d", id)
	}

	// Overwrite
	if err := s.SetActiveWorkspaceID(7); err != nil {
		t.Fatalf("SetActiveWorkspaceID failed: %v", err)
	}
	id, _, _ = s.ActiveWorkspaceID()
	if id != 7 {
		t.Errorf("Expected 7 after overwrite, got %d", id)
	}
}

func TestStore_FieldsAreIndependent(t *testing.T) {
	s := openTestStore(t)

	if err := s.SetActiveEnvID("7"); err != nil {
		t.Fatalf("SetActiveEnvID failed: %v", err)
	}
	if err := s.SetActiveEnvVars(`{"base_url":"https://api.test"}`); err != nil {
		t.Fatalf("SetActiveEnvVars failed: %v", err)
	}

	// Writing the env must not touch the workspace field
	if _, ok, _ := s.ActiveWorkspaceID(); ok {
		t.Error("Workspace id should remain unset")
	}

	envID, _ := s.ActiveEnvID()
	if envID != "7" {
		t.Errorf("Expected env id 7, got %q", envID)
	}
	vars, _ := s.ActiveEnvVars()
	if vars != `{"base_url":"https://api.test"}` {
		t.Errorf("Unexpected snapshot %q", vars)
	}
}

func TestStore_LogServerClear(t *testing.T) {
	s := openTestStore(t)

	if err := s.SetCurrentLogServerID(5); err != nil {
		t.Fatalf("SetCurrentLogServerID failed: %v", err)
	}
	id, ok, _ := s.CurrentLogServerID()
	if !ok || id != 5 {
		t.Fatalf("Expected log server 5, got ok=%v id=%d", ok, id)
	}

	if err := s.ClearCurrentLogServerID(); err != nil {
		t.Fatalf("ClearCurrentLogServerID failed: %v", err)
	}
	if _, ok, _ := s.CurrentLogServerID(); ok {
		t.Error("Expected log server id to be cleared")
	}
}

func TestStore_UserRoundTrip(t *testing.T) {
	s := openTestStore(t)

	u := types.User{FullName: "Ada Lovelace", Email: "ada@example.com", Roles: []string{"ROLE_ADMIN"}}
	if err := s.SetCurrentUser(u); err != nil {
		t.Fatalf("SetCurrentUser failed: %v", err)
	}

	got, ok, err := s.CurrentUser()
	if err != nil || !ok {
		t.Fatalf("Expected cached user, got ok=%v err=%v", ok, err)
	}
	if got.FullName != "Ada Lovelace" || !got.IsAdmin() {
		t.Errorf("Unexpected user %+v", got)
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forge.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.SetActiveWorkspaceID(3); err != nil {
		t.Fatalf("SetActiveWorkspaceID failed: %v", err)
	}
	if err := s.SetActiveEnvID("11"); err != nil {
		t.Fatalf("SetActiveEnvID failed: %v", err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s2.Close()

	id, ok, _ := s2.ActiveWorkspaceID()
	if !ok || id != 3 {
		t.Errorf("Expected workspace 3 after reopen, got ok=%v id=%d", ok, id)
	}
	envID, _ := s2.ActiveEnvID()
	if envID != "11" {
		t.Errorf("Expected env 11 after reopen, got %q", envID)
	}
}
