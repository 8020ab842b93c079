package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/apiforge/forge/internal/filter"
	"github.com/apiforge/forge/internal/nav"
	"github.com/apiforge/forge/internal/search"
	"github.com/apiforge/forge/internal/store"
	"github.com/apiforge/forge/internal/types"
)

func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeWorkspacePick:
		return m.handleWorkspacePickKeys(msg)
	case ModeEnvPick:
		return m.handleEnvPickKeys(msg)
	case ModeServerPick:
		return m.handleServerPickKeys(msg)
	case ModeFilterEdit:
		return m.handleFilterKeys(msg)
	case ModeInput:
		return m.handleInputKeys(msg)
	case ModeRouteEdit:
		return m.handleRouteEditKeys(msg)
	case ModeVarEdit:
		return m.handleVarEditKeys(msg)
	case ModeConfirmDelete:
		return m.handleConfirmKeys(msg)
	case ModeErrorDetail, ModeHelp:
		m.mode = ModeNormal
		return nil
	}
	return m.handleNormalKeys(msg)
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	state := m.nav.State()

	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit

	case "1":
		return m.switchModule(nav.ModuleRequests)
	case "2":
		return m.switchModule(nav.ModuleMocks)
	case "3":
		return m.switchModule(nav.ModuleEnvironments)
	case "4":
		return m.switchModule(nav.ModuleLogs)
	case "5":
		return m.switchModule(nav.ModuleHistory)
	case "6":
		return m.switchModule(nav.ModuleSettings)

	case "tab":
		if m.focusedPanel == "explorer" {
			m.focusedPanel = "detail"
		} else {
			m.focusedPanel = "explorer"
		}

	case "j", "down":
		if m.focusedPanel == "detail" {
			m.detailView.LineDown(1)
		} else if state.Module == nav.ModuleSettings && state.Editor == nav.EditorSettings {
			m.moveSettingsRow(1)
		} else {
			m.navigateExplorer(1)
		}

	case "k", "up":
		if m.focusedPanel == "detail" {
			m.detailView.LineUp(1)
		} else if state.Module == nav.ModuleSettings && state.Editor == nav.EditorSettings {
			m.moveSettingsRow(-1)
		} else {
			m.navigateExplorer(-1)
		}

	case "enter", " ":
		if state.Module == nav.ModuleSettings && state.Editor == nav.EditorSettings {
			return m.activateSettingsRow()
		}
		return m.openSelected()

	case "/", "ctrl+k":
		m.mode = ModeSearch
		m.searchQuery = ""
		m.searchResults = nil
		m.searchIndex = 0

	case "w":
		m.mode = ModeWorkspacePick
		m.pickerIndex = 0

	case "e":
		m.mode = ModeEnvPick
		m.pickerIndex = 0

	case "R":
		return m.refreshModule()

	case "n":
		return m.createInContext()

	case "E":
		return m.editSelected()

	case "t":
		if row, ok := m.selectedRow(); ok && row.kind == rowMockRoute {
			if srvID, ok := m.serverForRoute(row.id); ok {
				return m.toggleRoute(srvID, row.id)
			}
		}

	case "d":
		if row, ok := m.selectedRow(); ok && row.kind == rowMockRoute {
			if srvID, ok := m.serverForRoute(row.id); ok {
				if route, ok := m.findRoute(srvID, row.id); ok {
					return m.duplicateRoute(srvID, route)
				}
			}
		}

	case "D":
		return m.confirmDeleteSelected()

	case "f":
		if state.Editor == nav.EditorLog || state.Editor == nav.EditorHistory {
			m.mode = ModeFilterEdit
			m.filterInput = m.filterExpr
		}

	case "y":
		if body, what, ok := m.copyableBody(); ok {
			return m.copyToClipboard(body, what)
		}

	case "s":
		if state.Editor == nav.EditorHistory {
			return m.restoreSelectedHistory()
		}

	case "x":
		if m.fullErrorMsg != "" || m.fullStatusMsg != "" {
			m.mode = ModeErrorDetail
		}

	case "?":
		m.mode = ModeHelp
	}

	return nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		return nil

	case "enter":
		if m.searchIndex < len(m.searchResults) {
			return m.openSearchResult(m.searchResults[m.searchIndex])
		}
		return nil

	case "up", "ctrl+p":
		if m.searchIndex > 0 {
			m.searchIndex--
		}
		return nil

	case "down", "ctrl+n":
		if m.searchIndex < len(m.searchResults)-1 {
			m.searchIndex++
		}
		return nil

	case "backspace":
		if len(m.searchQuery) > 0 {
			m.searchQuery = m.searchQuery[:len(m.searchQuery)-1]
		}

	default:
		if msg.Type == tea.KeyRunes {
			m.searchQuery += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.searchQuery += " "
		} else {
			return nil
		}
	}

	// Each keystroke queries the committed snapshot synchronously; no
	// network access here.
	m.searchResults = m.ctl.Query(m.searchQuery)
	m.searchIndex = 0
	return nil
}

// openSearchResult routes a palette selection to the right operation for
// its kind.
func (m *Model) openSearchResult(entry search.Entry) tea.Cmd {
	m.mode = ModeNormal

	switch entry.Kind {
	case search.KindRequest:
		m.nav.OpenRequest(entry.ID)
		m.refreshDetail()
	case search.KindCollection:
		cmd := m.switchModule(nav.ModuleRequests)
		m.expandedCols[entry.ID] = true
		if _, loaded := m.requestsByCol[entry.ID]; !loaded {
			return tea.Batch(cmd, m.loadRequests(entry.ID))
		}
		return cmd
	case search.KindMock:
		m.nav.OpenMockServer(entry.ID)
		m.refreshDetail()
		return m.switchModule(nav.ModuleMocks)
	case search.KindEnv:
		return m.switchEnvironmentCmd(strconv.FormatInt(entry.ID, 10))
	case search.KindWorkspace:
		return m.switchWorkspaceCmd(entry.ID)
	}
	return nil
}

func (m *Model) handleWorkspacePickKeys(msg tea.KeyMsg) tea.Cmd {
	workspaces := m.ctl.Workspaces()
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
	case "j", "down":
		if m.pickerIndex < len(workspaces)-1 {
			m.pickerIndex++
		}
	case "k", "up":
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case "enter":
		m.mode = ModeNormal
		if m.pickerIndex < len(workspaces) {
			ws := workspaces[m.pickerIndex]
			if ws.ID != m.ctl.ActiveWorkspaceID() {
				return m.switchWorkspaceCmd(ws.ID)
			}
		}
	}
	return nil
}

func (m *Model) handleEnvPickKeys(msg tea.KeyMsg) tea.Cmd {
	// Row 0 is always "none".
	envs := m.ctl.Environments()
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
	case "j", "down":
		if m.pickerIndex < len(envs) {
			m.pickerIndex++
		}
	case "k", "up":
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case "enter":
		m.mode = ModeNormal
		if m.pickerIndex == 0 {
			return m.switchEnvironmentCmd(store.EnvNone)
		}
		if m.pickerIndex-1 < len(envs) {
			return m.switchEnvironmentCmd(strconv.FormatInt(envs[m.pickerIndex-1].ID, 10))
		}
	}
	return nil
}

func (m *Model) handleServerPickKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
	case "j", "down":
		if m.pickerIndex < len(m.mockServers)-1 {
			m.pickerIndex++
		}
	case "k", "up":
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case "enter":
		m.mode = ModeNormal
		if m.pickerIndex < len(m.mockServers) {
			return m.pickLogServerCmd(m.mockServers[m.pickerIndex].ID)
		}
	}
	return nil
}

func (m *Model) handleFilterKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.filterInput = ""
	case "enter":
		if m.filterInput != "" && !filter.IsValid(m.filterInput) {
			return m.setErrorMessage("Invalid JMESPath expression: " + m.filterInput)
		}
		m.mode = ModeNormal
		m.filterExpr = m.filterInput
		m.applyFilter()
	case "backspace":
		if len(m.filterInput) > 0 {
			m.filterInput = m.filterInput[:len(m.filterInput)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.filterInput += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.filterInput += " "
		}
	}
	return nil
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.inputValue = ""
		m.inputAction = nil
	case "enter":
		m.mode = ModeNormal
		action := m.inputAction
		value := m.inputValue
		m.inputValue = ""
		m.inputAction = nil
		if action != nil && value != "" {
			return action(value)
		}
	case "backspace":
		if len(m.inputValue) > 0 {
			m.inputValue = m.inputValue[:len(m.inputValue)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.inputValue += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.inputValue += " "
		}
	}
	return nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "enter":
		m.mode = ModeNormal
		action := m.confirmAction
		m.confirmAction = nil
		if action != nil {
			return action()
		}
	case "n", "esc":
		m.mode = ModeNormal
		m.confirmAction = nil
	}
	return nil
}

// refreshModule refetches the active module's backing list.
func (m *Model) refreshModule() tea.Cmd {
	switch m.nav.State().Module {
	case nav.ModuleRequests:
		m.requestsByCol = make(map[int64][]types.Request)
		m.expandedCols = make(map[int64]bool)
		return m.loadCollections()
	case nav.ModuleMocks:
		m.routesBySrv = make(map[int64][]types.MockRoute)
		m.expandedSrvs = make(map[int64]bool)
		return m.loadMockServers()
	case nav.ModuleLogs:
		if id, ok, err := m.store.CurrentLogServerID(); err == nil && ok {
			return m.loadMockLogs(id)
		}
	case nav.ModuleHistory:
		return m.loadHistory()
	}
	return nil
}

// createInContext starts the creation flow appropriate for the selection.
func (m *Model) createInContext() tea.Cmd {
	switch m.nav.State().Module {
	case nav.ModuleEnvironments:
		m.mode = ModeInput
		m.inputPrompt = "New environment name"
		m.inputAction = m.createEnvironmentCmd

	case nav.ModuleMocks:
		if row, ok := m.selectedRow(); ok && (row.kind == rowMockServer || row.kind == rowMockRoute) {
			serverID := row.id
			if row.kind == rowMockRoute {
				if srvID, ok := m.serverForRoute(row.id); ok {
					serverID = srvID
				}
			}
			return m.createRoute(serverID)
		}
		m.mode = ModeInput
		m.inputPrompt = "New mock server name"
		m.inputAction = m.createMockServer
	}
	return nil
}

// editSelected opens the editor flow for the selection.
func (m *Model) editSelected() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}

	switch row.kind {
	case rowMockRoute:
		if srvID, ok := m.serverForRoute(row.id); ok {
			if route, ok := m.findRoute(srvID, row.id); ok {
				m.mode = ModeRouteEdit
				m.routeEdit = route
				m.routeField = 0
				m.routeInput = route.Method
				m.nav.OpenMockRoute(route.ID)
			}
		}
	case rowEnv:
		for _, env := range m.ctl.Environments() {
			if env.ID == row.id {
				m.startVarEdit(env)
				m.nav.OpenEnvironment(env.ID)
			}
		}
	}
	return nil
}

func (m *Model) confirmDeleteSelected() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}

	switch row.kind {
	case rowEnv:
		id := row.id
		m.mode = ModeConfirmDelete
		m.confirmPrompt = fmt.Sprintf("Delete environment %q?", row.label)
		m.confirmAction = func() tea.Cmd { return m.deleteEnvironmentCmd(id) }
	case rowMockRoute:
		if srvID, ok := m.serverForRoute(row.id); ok {
			routeID := row.id
			m.mode = ModeConfirmDelete
			m.confirmPrompt = fmt.Sprintf("Delete route %s %s?", row.method, row.label)
			m.confirmAction = func() tea.Cmd { return m.deleteRoute(srvID, routeID) }
		}
	}
	return nil
}

// restoreSelectedHistory recreates the active history entry in the first
// collection of the workspace.
func (m *Model) restoreSelectedHistory() tea.Cmd {
	entry, ok := m.activeHistoryEntry()
	if !ok {
		return nil
	}
	if len(m.collections) == 0 {
		return func() tea.Msg { return errorMsg("no collection to restore into") }
	}
	return m.restoreHistory(entry, m.collections[0].ID)
}

func (m *Model) serverForRoute(routeID int64) (int64, bool) {
	for srvID, routes := range m.routesBySrv {
		for _, rt := range routes {
			if rt.ID == routeID {
				return srvID, true
			}
		}
	}
	return 0, false
}

func (m *Model) findRoute(serverID, routeID int64) (types.MockRoute, bool) {
	for _, rt := range m.routesBySrv[serverID] {
		if rt.ID == routeID {
			return rt, true
		}
	}
	return types.MockRoute{}, false
}
