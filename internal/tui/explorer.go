package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/apiforge/forge/internal/nav"
)

type rowKind int

const (
	rowCollection rowKind = iota
	rowRequest
	rowMockServer
	rowMockRoute
	rowEnv
	rowLog
	rowHistory
	rowSetting
)

// explorerRow is one selectable line in the explorer pane.
type explorerRow struct {
	kind     rowKind
	id       int64
	label    string
	method   string
	depth    int
	category nav.Category
}

// settingsCategories drives the settings explorer, in display order.
var settingsCategories = []struct {
	cat   nav.Category
	label string
}{
	{nav.CategoryGeneral, "General"},
	{nav.CategoryWorkspace, "Workspace"},
	{nav.CategoryAccount, "Account"},
	{nav.CategorySecurity, "Security"},
}

// explorerRows flattens the active module's explorer into selectable rows.
func (m *Model) explorerRows() []explorerRow {
	switch m.nav.State().Module {
	case nav.ModuleRequests:
		var rows []explorerRow
		for _, col := range m.collections {
			rows = append(rows, explorerRow{kind: rowCollection, id: col.ID, label: col.Name})
			if m.expandedCols[col.ID] {
				for _, req := range m.requestsByCol[col.ID] {
					rows = append(rows, explorerRow{
						kind:   rowRequest,
						id:     req.ID,
						label:  req.Name,
						method: req.Method,
						depth:  1,
					})
				}
			}
		}
		return rows

	case nav.ModuleMocks:
		var rows []explorerRow
		for _, srv := range m.mockServers {
			rows = append(rows, explorerRow{kind: rowMockServer, id: srv.ID, label: srv.Name})
			if m.expandedSrvs[srv.ID] {
				for _, rt := range m.routesBySrv[srv.ID] {
					rows = append(rows, explorerRow{
						kind:   rowMockRoute,
						id:     rt.ID,
						label:  rt.Path,
						method: rt.Method,
						depth:  1,
					})
				}
			}
		}
		return rows

	case nav.ModuleEnvironments:
		var rows []explorerRow
		for _, env := range m.ctl.Environments() {
			rows = append(rows, explorerRow{kind: rowEnv, id: env.ID, label: env.Name})
		}
		return rows

	case nav.ModuleLogs:
		var rows []explorerRow
		for _, lg := range m.mockLogs {
			rows = append(rows, explorerRow{
				kind:   rowLog,
				id:     lg.ID,
				label:  fmt.Sprintf("%s %d", lg.Path, lg.StatusCode),
				method: lg.Method,
			})
		}
		return rows

	case nav.ModuleHistory:
		var rows []explorerRow
		for _, h := range m.history {
			rows = append(rows, explorerRow{
				kind:   rowHistory,
				id:     h.ID,
				label:  h.URL,
				method: h.Method,
			})
		}
		return rows

	case nav.ModuleSettings:
		var rows []explorerRow
		for _, sc := range settingsCategories {
			rows = append(rows, explorerRow{kind: rowSetting, label: sc.label, category: sc.cat})
		}
		return rows
	}
	return nil
}

// navigateExplorer moves the selection up or down with wraparound.
func (m *Model) navigateExplorer(delta int) {
	rows := m.explorerRows()
	if len(rows) == 0 {
		return
	}

	m.explorerIndex += delta
	if m.explorerIndex < 0 {
		m.explorerIndex = len(rows) - 1
	} else if m.explorerIndex >= len(rows) {
		m.explorerIndex = 0
	}

	pageSize := m.explorerHeight()
	if m.explorerIndex < m.explorerOffset {
		m.explorerOffset = m.explorerIndex
	} else if m.explorerIndex >= m.explorerOffset+pageSize {
		m.explorerOffset = m.explorerIndex - pageSize + 1
	}
}

func (m *Model) clampExplorer() {
	rows := m.explorerRows()
	if m.explorerIndex >= len(rows) {
		m.explorerIndex = len(rows) - 1
	}
	if m.explorerIndex < 0 {
		m.explorerIndex = 0
	}
	if m.explorerOffset > m.explorerIndex {
		m.explorerOffset = m.explorerIndex
	}
}

func (m *Model) selectedRow() (explorerRow, bool) {
	rows := m.explorerRows()
	if m.explorerIndex < 0 || m.explorerIndex >= len(rows) {
		return explorerRow{}, false
	}
	return rows[m.explorerIndex], true
}

// openSelected routes the selected row through the navigation coordinator,
// lazily loading children for tree rows.
func (m *Model) openSelected() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}

	switch row.kind {
	case rowCollection:
		m.expandedCols[row.id] = !m.expandedCols[row.id]
		if m.expandedCols[row.id] {
			if _, loaded := m.requestsByCol[row.id]; !loaded {
				return m.loadRequests(row.id)
			}
		}
	case rowRequest:
		m.nav.OpenRequest(row.id)
		m.refreshDetail()
	case rowMockServer:
		m.expandedSrvs[row.id] = !m.expandedSrvs[row.id]
		m.nav.OpenMockServer(row.id)
		m.refreshDetail()
		if m.expandedSrvs[row.id] {
			if _, loaded := m.routesBySrv[row.id]; !loaded {
				return m.loadRoutes(row.id)
			}
		}
	case rowMockRoute:
		m.nav.OpenMockRoute(row.id)
		m.refreshDetail()
	case rowEnv:
		m.nav.OpenEnvironment(row.id)
		m.refreshDetail()
	case rowLog:
		m.nav.OpenLog(row.id)
		m.filterActive = false
		m.filterExpr = ""
		m.refreshDetail()
	case rowHistory:
		m.nav.OpenHistory(row.id)
		m.filterActive = false
		m.filterExpr = ""
		m.refreshDetail()
	case rowSetting:
		m.nav.OpenSettings(row.category)
		m.settingsRow = 0
		m.refreshDetail()
	}
	return nil
}

// switchModule changes the explorer module and triggers that module's load.
func (m *Model) switchModule(mod nav.Module) tea.Cmd {
	m.nav.SetModule(mod)
	m.explorerIndex = 0
	m.explorerOffset = 0

	switch mod {
	case nav.ModuleRequests:
		if m.collections == nil {
			return m.loadCollections()
		}
	case nav.ModuleMocks:
		if m.mockServers == nil {
			return m.loadMockServers()
		}
	case nav.ModuleLogs:
		if id, ok, err := m.store.CurrentLogServerID(); err == nil && ok {
			return m.loadMockLogs(id)
		}
		// No remembered server: ask which one to tail.
		if m.mockServers == nil {
			m.mode = ModeServerPick
			m.pickerIndex = 0
			return m.loadMockServers()
		}
		m.mode = ModeServerPick
		m.pickerIndex = 0
	case nav.ModuleHistory:
		return m.loadHistory()
	}
	return nil
}
