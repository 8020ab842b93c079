// Package nav holds the navigation state shared by every pane: which module
// the explorer shows, which editor the detail pane shows, and which entity
// that editor targets. The coordinator is the single writer; panes read the
// current state and subscribe for changes.
package nav

import "sync"

// Module selects the left-hand explorer.
type Module string

const (
	ModuleRequests     Module = "requests"
	ModuleMocks        Module = "mocks"
	ModuleEnvironments Module = "environments"
	ModuleLogs         Module = "logs"
	ModuleHistory      Module = "history"
	ModuleSettings     Module = "settings"
)

// Editor selects the right-hand detail view.
type Editor string

const (
	EditorRequest      Editor = "request-editor"
	EditorMockRoute    Editor = "mock-route-editor"
	EditorServerConfig Editor = "server-config"
	EditorEnv          Editor = "env-editor"
	EditorLog          Editor = "log-viewer"
	EditorHistory      Editor = "history-viewer"
	EditorSettings     Editor = "settings-editor"
	EditorEmpty        Editor = "empty"
)

// Category is a settings page identifier.
type Category string

const (
	CategoryGeneral   Category = "general"
	CategoryWorkspace Category = "workspace"
	CategoryAccount   Category = "account"
	CategorySecurity  Category = "security"
)

type idKind int

const (
	kindNone idKind = iota
	kindNumeric
	kindCategory
)

// EntityID is the tagged identifier union: a numeric database id for
// requests, routes, servers, environments, logs and history, or a settings
// category. The zero value means "no entity".
//
// The coordinator does not validate an id against the editor it is paired
// with. Each editor checks the kind it expects and renders its not-found
// state on a mismatch; that tolerance is a deliberate contract, not an
// accident of weak typing.
type EntityID struct {
	kind     idKind
	num      int64
	category Category
}

// NumericID wraps a database id.
func NumericID(id int64) EntityID {
	return EntityID{kind: kindNumeric, num: id}
}

// CategoryID wraps a settings category.
func CategoryID(c Category) EntityID {
	return EntityID{kind: kindCategory, category: c}
}

// IsZero reports whether the id is unset.
func (id EntityID) IsZero() bool {
	return id.kind == kindNone
}

// Num returns the numeric id, and whether the id holds one.
func (id EntityID) Num() (int64, bool) {
	return id.num, id.kind == kindNumeric
}

// Cat returns the settings category, and whether the id holds one.
func (id EntityID) Cat() (Category, bool) {
	return id.category, id.kind == kindCategory
}

// State is the navigation triple. Whenever Editor is not EditorEmpty the
// entity id is expected to be set; editors handle violations as not-found.
type State struct {
	Module Module
	Editor Editor
	Entity EntityID
}

// DefaultState is the session-start navigation state.
func DefaultState() State {
	return State{Module: ModuleRequests, Editor: EditorEmpty}
}

type listener struct {
	id int64
	fn func(State)
}

// Coordinator owns the navigation state. Every mutation is one atomic update
// followed by exactly one notification to each subscriber; subscribers never
// observe a half-applied update.
type Coordinator struct {
	mu     sync.RWMutex
	state  State
	nextID int64
	subs   []listener
}

// NewCoordinator creates a coordinator at the default state.
func NewCoordinator() *Coordinator {
	return &Coordinator{state: DefaultState()}
}

// State returns the current navigation state.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe registers fn to be called after every state change, with the new
// state. Returns an unsubscribe function.
func (c *Coordinator) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, listener{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i := range c.subs {
			if c.subs[i].id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// apply performs one atomic mutation and one notification pass.
func (c *Coordinator) apply(mutate func(*State)) {
	c.mu.Lock()
	mutate(&c.state)
	state := c.state
	subs := make([]listener, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(state)
	}
}

// SetModule switches the explorer module.
func (c *Coordinator) SetModule(m Module) {
	c.apply(func(s *State) { s.Module = m })
}

// SetEditor switches the detail editor.
func (c *Coordinator) SetEditor(e Editor) {
	c.apply(func(s *State) { s.Editor = e })
}

// SetEntity changes the active entity id.
func (c *Coordinator) SetEntity(id EntityID) {
	c.apply(func(s *State) { s.Entity = id })
}

// CloseEditor empties the detail pane and clears the active entity without
// leaving the current module.
func (c *Coordinator) CloseEditor() {
	c.apply(func(s *State) {
		s.Editor = EditorEmpty
		s.Entity = EntityID{}
	})
}

// Reset returns navigation to the session-start state.
func (c *Coordinator) Reset() {
	c.apply(func(s *State) { *s = DefaultState() })
}

func (c *Coordinator) open(m Module, e Editor, id EntityID) {
	c.apply(func(s *State) {
		s.Module = m
		s.Editor = e
		s.Entity = id
	})
}

// OpenRequest jumps to a saved request.
func (c *Coordinator) OpenRequest(id int64) {
	c.open(ModuleRequests, EditorRequest, NumericID(id))
}

// OpenMockRoute jumps to a mock route.
func (c *Coordinator) OpenMockRoute(id int64) {
	c.open(ModuleMocks, EditorMockRoute, NumericID(id))
}

// OpenMockServer jumps to a mock server's configuration.
func (c *Coordinator) OpenMockServer(id int64) {
	c.open(ModuleMocks, EditorServerConfig, NumericID(id))
}

// OpenEnvironment jumps to an environment.
func (c *Coordinator) OpenEnvironment(id int64) {
	c.open(ModuleEnvironments, EditorEnv, NumericID(id))
}

// OpenLog jumps to a mock log entry.
func (c *Coordinator) OpenLog(id int64) {
	c.open(ModuleLogs, EditorLog, NumericID(id))
}

// OpenHistory jumps to a history entry.
func (c *Coordinator) OpenHistory(id int64) {
	c.open(ModuleHistory, EditorHistory, NumericID(id))
}

// OpenSettings jumps to a settings page.
func (c *Coordinator) OpenSettings(cat Category) {
	c.open(ModuleSettings, EditorSettings, CategoryID(cat))
}
