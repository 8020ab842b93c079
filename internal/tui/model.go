package tui

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/apiforge/forge/internal/api"
	"github.com/apiforge/forge/internal/config"
	"github.com/apiforge/forge/internal/dashboard"
	"github.com/apiforge/forge/internal/events"
	"github.com/apiforge/forge/internal/logging"
	"github.com/apiforge/forge/internal/nav"
	"github.com/apiforge/forge/internal/search"
	"github.com/apiforge/forge/internal/store"
	"github.com/apiforge/forge/internal/types"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeWorkspacePick
	ModeEnvPick
	ModeServerPick
	ModeFilterEdit
	ModeInput
	ModeRouteEdit
	ModeVarEdit
	ModeConfirmDelete
	ModeErrorDetail
	ModeHelp
)

// Gateway is the backend surface the TUI needs beyond the controller.
type Gateway interface {
	dashboard.Gateway
	ListMockRoutes(ctx context.Context, serverID int64) ([]types.MockRoute, error)
	CreateMockServer(ctx context.Context, in api.CreateMockServerInput) (types.MockServer, error)
	CreateMockRoute(ctx context.Context, in api.CreateMockRouteInput) (types.MockRoute, error)
	UpdateMockRoute(ctx context.Context, id int64, fields map[string]interface{}) error
	DeleteMockRoute(ctx context.Context, id int64) error
	ListMockLogs(ctx context.Context, serverID int64) ([]types.MockLog, error)
	ListHistory(ctx context.Context) ([]types.HistoryEntry, error)
	CreateRequest(ctx context.Context, in api.CreateRequestInput) (types.Request, error)
}

// Model represents the TUI state
type Model struct {
	// Core collaborators
	ctl     *dashboard.Controller
	gateway Gateway
	store   *store.Store
	bus     *events.Bus
	nav     *nav.Coordinator
	log     *logrus.Entry

	mode Mode

	// Explorer data, keyed per module
	collections   []types.Collection
	requestsByCol map[int64][]types.Request
	expandedCols  map[int64]bool
	mockServers   []types.MockServer
	routesBySrv   map[int64][]types.MockRoute
	expandedSrvs  map[int64]bool
	mockLogs      []types.MockLog
	history       []types.HistoryEntry

	// Explorer cursor
	explorerIndex  int
	explorerOffset int

	// Search overlay
	searchQuery   string
	searchResults []search.Entry
	searchIndex   int

	// Pickers (workspace, environment, log server)
	pickerIndex int

	// Detail pane
	detailView   viewport.Model
	focusedPanel string // "explorer" or "detail"

	// JMESPath filter state (log and history viewers)
	filterExpr     string
	filterInput    string
	filteredBody   string
	filterError    string
	filterActive   bool

	// Generic input modal (rename, create, profile name)
	inputPrompt string
	inputValue  string
	inputAction func(string) tea.Cmd

	// Confirm modal
	confirmPrompt string
	confirmAction func() tea.Cmd

	// Route editor
	routeEdit  types.MockRoute
	routeField int
	routeInput string

	// Environment variable editor
	varRows    [][2]string
	varIndex   int
	varField   int
	varInput   string
	varEditing bool
	varEnvID   int64
	varEnvName string

	// Settings
	prefs        config.Preferences
	settingsRow  int

	// Signal flags set by bus handlers on the publishing goroutine and
	// consumed by Update on the program loop.
	signalMu           sync.Mutex
	pendingFilterReset bool
	pendingPrefsReload bool

	// UI state
	width         int
	height        int
	loading       bool
	statusMsg     string
	errorMsg      string
	fullErrorMsg  string
	fullStatusMsg string
}

// New creates a new TUI model over its collaborators.
func New(ctl *dashboard.Controller, gateway Gateway, st *store.Store, bus *events.Bus, navc *nav.Coordinator) *Model {
	m := &Model{
		ctl:           ctl,
		gateway:       gateway,
		store:         st,
		bus:           bus,
		nav:           navc,
		log:           logging.NewLogger("tui"),
		mode:          ModeNormal,
		requestsByCol: make(map[int64][]types.Request),
		expandedCols:  make(map[int64]bool),
		routesBySrv:   make(map[int64][]types.MockRoute),
		expandedSrvs:  make(map[int64]bool),
		focusedPanel:  "explorer",
		detailView:    viewport.New(80, 20),
	}

	if s, err := config.Load(); err == nil {
		m.prefs = s.Preferences
	}

	// Signals can be published from command goroutines, so the handlers
	// only record a flag; Update applies the effect on the program loop.
	bus.Subscribe(events.EnvironmentChanged, func() {
		m.signalMu.Lock()
		m.pendingFilterReset = true
		m.signalMu.Unlock()
	})
	bus.Subscribe(events.SettingsChanged, func() {
		m.signalMu.Lock()
		m.pendingPrefsReload = true
		m.signalMu.Unlock()
	})

	return m
}

// Init loads the active workspace's collections.
func (m *Model) Init() tea.Cmd {
	return m.loadCollections()
}

// Messages delivered back into the update loop by tea.Cmd goroutines.
type collectionsLoadedMsg struct {
	collections []types.Collection
}

type requestsLoadedMsg struct {
	collectionID int64
	requests     []types.Request
}

type mockServersLoadedMsg struct {
	servers []types.MockServer
}

type routesLoadedMsg struct {
	serverID int64
	routes   []types.MockRoute
}

type mockLogsLoadedMsg struct {
	logs []types.MockLog
}

type historyLoadedMsg struct {
	entries []types.HistoryEntry
}

type workspaceSwitchedMsg struct{}

type routeMutatedMsg struct {
	serverID int64
}

type envMutatedMsg struct{}

type profileSavedMsg struct{}

type errorMsg string

type statusMsg string

type clearStatusMsg struct{}
type clearErrorMsg struct{}

// consumeSignals applies effects recorded by bus handlers. Commands
// publish before their message reaches Update, so the flags are always
// drained ahead of the message that triggered them.
func (m *Model) consumeSignals() {
	m.signalMu.Lock()
	filterReset := m.pendingFilterReset
	prefsReload := m.pendingPrefsReload
	m.pendingFilterReset = false
	m.pendingPrefsReload = false
	m.signalMu.Unlock()

	if filterReset {
		m.filterActive = false
	}
	if prefsReload {
		if s, err := config.Load(); err == nil {
			m.prefs = s.Preferences
		}
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.consumeSignals()

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.MouseMsg:
		// Discard mouse scroll so the terminal buffer stays put; all
		// navigation is keyboard-only.

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewport()

	case collectionsLoadedMsg:
		m.loading = false
		m.collections = msg.collections
		m.clampExplorer()
		m.refreshDetail()

	case requestsLoadedMsg:
		m.requestsByCol[msg.collectionID] = msg.requests
		m.refreshDetail()

	case mockServersLoadedMsg:
		m.loading = false
		m.mockServers = msg.servers
		m.clampExplorer()
		m.refreshDetail()

	case routesLoadedMsg:
		m.routesBySrv[msg.serverID] = msg.routes
		m.clampExplorer()
		m.refreshDetail()

	case mockLogsLoadedMsg:
		m.loading = false
		m.mockLogs = msg.logs
		m.clampExplorer()
		m.refreshDetail()

	case historyLoadedMsg:
		m.loading = false
		m.history = msg.entries
		m.clampExplorer()
		m.refreshDetail()

	case workspaceSwitchedMsg:
		m.loading = false
		m.resetWorkspaceCaches()
		cmd = tea.Batch(m.loadCollections(), m.setStatusMessage("Workspace switched"))

	case routeMutatedMsg:
		cmd = m.loadRoutes(msg.serverID)

	case routeToggleFailedMsg:
		// Revert the optimistic flip by refetching the authoritative list.
		cmd = tea.Batch(
			m.setErrorMessage(msg.err.Error()),
			m.loadRoutes(msg.serverID),
		)

	case envMutatedMsg:
		m.refreshDetail()

	case profileSavedMsg:
		cmd = m.setStatusMessage("Profile updated")

	case errorMsg:
		m.loading = false
		cmd = m.setErrorMessage(string(msg))

	case statusMsg:
		cmd = m.setStatusMessage(string(msg))

	case clearStatusMsg:
		m.statusMsg = ""
		m.fullStatusMsg = ""

	case clearErrorMsg:
		m.errorMsg = ""
		m.fullErrorMsg = ""
	}

	return m, cmd
}

// resetWorkspaceCaches drops every workspace-scoped explorer cache after a
// switch; fresh lists are fetched on demand.
func (m *Model) resetWorkspaceCaches() {
	m.collections = nil
	m.requestsByCol = make(map[int64][]types.Request)
	m.expandedCols = make(map[int64]bool)
	m.mockServers = nil
	m.routesBySrv = make(map[int64][]types.MockRoute)
	m.expandedSrvs = make(map[int64]bool)
	m.mockLogs = nil
	m.history = nil
	m.explorerIndex = 0
	m.explorerOffset = 0
	m.filterActive = false
	m.filterExpr = ""
}

func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.fullStatusMsg = msg
	if len(msg) > 100 {
		m.statusMsg = msg[:97] + "..."
	} else {
		m.statusMsg = msg
	}
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.fullErrorMsg = msg
	if len(msg) > 100 {
		m.errorMsg = msg[:97] + "..."
	} else {
		m.errorMsg = msg
	}
	return nil
}
