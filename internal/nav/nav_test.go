package nav

import (
	"testing"
)

func TestDefaultState(t *testing.T) {
	c := NewCoordinator()
	s := c.State()
	if s.Module != ModuleRequests {
		t.Errorf("expected default module %q, got %q", ModuleRequests, s.Module)
	}
	if s.Editor != EditorEmpty {
		t.Errorf("expected default editor %q, got %q", EditorEmpty, s.Editor)
	}
	if !s.Entity.IsZero() {
		t.Errorf("expected zero entity id, got %+v", s.Entity)
	}
}

func TestOpenShortcutsSetAllThreeFields(t *testing.T) {
	cases := []struct {
		name   string
		open   func(*Coordinator)
		module Module
		editor Editor
		numID  int64
	}{
		{"request", func(c *Coordinator) { c.OpenRequest(7) }, ModuleRequests, EditorRequest, 7},
		{"mock route", func(c *Coordinator) { c.OpenMockRoute(3) }, ModuleMocks, EditorMockRoute, 3},
		{"mock server", func(c *Coordinator) { c.OpenMockServer(9) }, ModuleMocks, EditorServerConfig, 9},
		{"environment", func(c *Coordinator) { c.OpenEnvironment(4) }, ModuleEnvironments, EditorEnv, 4},
		{"log", func(c *Coordinator) { c.OpenLog(11) }, ModuleLogs, EditorLog, 11},
		{"history", func(c *Coordinator) { c.OpenHistory(2) }, ModuleHistory, EditorHistory, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCoordinator()
			tc.open(c)
			s := c.State()
			if s.Module != tc.module {
				t.Errorf("expected module %q, got %q", tc.module, s.Module)
			}
			if s.Editor != tc.editor {
				t.Errorf("expected editor %q, got %q", tc.editor, s.Editor)
			}
			num, ok := s.Entity.Num()
			if !ok || num != tc.numID {
				t.Errorf("expected numeric id %d, got %+v", tc.numID, s.Entity)
			}
		})
	}
}

func TestOpenSettingsUsesCategoryID(t *testing.T) {
	c := NewCoordinator()
	c.OpenSettings(CategoryAccount)
	s := c.State()
	if s.Module != ModuleSettings || s.Editor != EditorSettings {
		t.Errorf("unexpected state %+v", s)
	}
	cat, ok := s.Entity.Cat()
	if !ok || cat != CategoryAccount {
		t.Errorf("expected category %q, got %+v", CategoryAccount, s.Entity)
	}
	if _, ok := s.Entity.Num(); ok {
		t.Error("category id should not report a numeric value")
	}
}

func TestCompositeOpenNotifiesOnce(t *testing.T) {
	c := NewCoordinator()
	var calls int
	var seen []State
	c.Subscribe(func(s State) {
		calls++
		seen = append(seen, s)
	})

	c.OpenRequest(5)

	if calls != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", calls)
	}
	// The notified state must already carry all three fields; subscribers
	// never see a partial update.
	s := seen[0]
	num, ok := s.Entity.Num()
	if s.Module != ModuleRequests || s.Editor != EditorRequest || !ok || num != 5 {
		t.Errorf("subscriber observed torn state %+v", s)
	}
}

func TestEachSetterNotifiesOnce(t *testing.T) {
	c := NewCoordinator()
	var calls int
	c.Subscribe(func(State) { calls++ })

	c.SetModule(ModuleLogs)
	c.SetEditor(EditorLog)
	c.SetEntity(NumericID(1))
	c.Reset()

	if calls != 4 {
		t.Errorf("expected 4 notifications, got %d", calls)
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	c := NewCoordinator()
	var a, b int
	unsub := c.Subscribe(func(State) { a++ })
	c.Subscribe(func(State) { b++ })

	c.SetModule(ModuleMocks)
	unsub()
	c.SetModule(ModuleHistory)

	if a != 1 {
		t.Errorf("unsubscribed listener called %d times, expected 1", a)
	}
	if b != 2 {
		t.Errorf("remaining listener called %d times, expected 2", b)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	c := NewCoordinator()
	c.OpenMockRoute(8)
	c.Reset()
	if c.State() != DefaultState() {
		t.Errorf("expected default state after reset, got %+v", c.State())
	}
}
