package tui

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/apiforge/forge/internal/api"
	"github.com/apiforge/forge/internal/types"
)

type routeToggleFailedMsg struct {
	serverID int64
	err      error
}

// Loaders. A failed fetch degrades to an empty list and a log line; the
// explorer simply renders empty.

func (m *Model) loadCollections() tea.Cmd {
	m.loading = true
	wsID := m.ctl.ActiveWorkspaceID()
	return func() tea.Msg {
		collections, err := m.gateway.ListCollections(context.Background(), wsID)
		if err != nil {
			m.log.WithError(err).Error("failed to load collections")
			return collectionsLoadedMsg{}
		}
		return collectionsLoadedMsg{collections: collections}
	}
}

func (m *Model) loadRequests(collectionID int64) tea.Cmd {
	return func() tea.Msg {
		requests, err := m.gateway.ListRequests(context.Background(), collectionID)
		if err != nil {
			m.log.WithError(err).Error("failed to load requests")
			return requestsLoadedMsg{collectionID: collectionID}
		}
		return requestsLoadedMsg{collectionID: collectionID, requests: requests}
	}
}

func (m *Model) loadMockServers() tea.Cmd {
	m.loading = true
	wsID := m.ctl.ActiveWorkspaceID()
	return func() tea.Msg {
		servers, err := m.gateway.ListMockServers(context.Background(), wsID)
		if err != nil {
			m.log.WithError(err).Error("failed to load mock servers")
			return mockServersLoadedMsg{}
		}
		return mockServersLoadedMsg{servers: servers}
	}
}

func (m *Model) loadRoutes(serverID int64) tea.Cmd {
	return func() tea.Msg {
		routes, err := m.gateway.ListMockRoutes(context.Background(), serverID)
		if err != nil {
			m.log.WithError(err).Error("failed to load mock routes")
			return routesLoadedMsg{serverID: serverID}
		}
		return routesLoadedMsg{serverID: serverID, routes: routes}
	}
}

func (m *Model) loadMockLogs(serverID int64) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		logs, err := m.gateway.ListMockLogs(context.Background(), serverID)
		if err != nil {
			m.log.WithError(err).Error("failed to load mock logs")
			return mockLogsLoadedMsg{}
		}
		return mockLogsLoadedMsg{logs: logs}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		entries, err := m.gateway.ListHistory(context.Background())
		if err != nil {
			m.log.WithError(err).Error("failed to load history")
			return historyLoadedMsg{}
		}
		return historyLoadedMsg{entries: entries}
	}
}

// Selection commands.

func (m *Model) switchWorkspaceCmd(id int64) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		if err := m.ctl.SwitchWorkspace(context.Background(), id); err != nil {
			return errorMsg(err.Error())
		}
		return workspaceSwitchedMsg{}
	}
}

func (m *Model) switchEnvironmentCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.ctl.SwitchEnvironment(id); err != nil {
			return errorMsg(err.Error())
		}
		return statusMsg("Environment switched")
	}
}

func (m *Model) pickLogServerCmd(serverID int64) tea.Cmd {
	if err := m.store.SetCurrentLogServerID(serverID); err != nil {
		m.log.WithError(err).Warn("failed to remember log server")
	}
	return m.loadMockLogs(serverID)
}

// Mock route mutations.

// toggleRoute flips the selected route's enabled flag optimistically; the
// backend write follows, and on failure a refetch reverts the cache.
func (m *Model) toggleRoute(serverID, routeID int64) tea.Cmd {
	var enabled bool
	routes := m.routesBySrv[serverID]
	for i := range routes {
		if routes[i].ID == routeID {
			routes[i].IsEnabled = !routes[i].IsEnabled
			enabled = routes[i].IsEnabled
		}
	}

	return func() tea.Msg {
		err := m.gateway.UpdateMockRoute(context.Background(), routeID, map[string]interface{}{
			"isEnabled": enabled,
		})
		if err != nil {
			return routeToggleFailedMsg{serverID: serverID, err: err}
		}
		return routeMutatedMsg{serverID: serverID}
	}
}

func (m *Model) createRoute(serverID int64) tea.Cmd {
	return func() tea.Msg {
		_, err := m.gateway.CreateMockRoute(context.Background(), api.CreateMockRouteInput{
			MockServerID: serverID,
			Method:       "GET",
			Path:         "/new-route",
			StatusCode:   200,
			ResponseBody: "{}",
			IsEnabled:    true,
		})
		if err != nil {
			return errorMsg(err.Error())
		}
		return routeMutatedMsg{serverID: serverID}
	}
}

func (m *Model) duplicateRoute(serverID int64, route types.MockRoute) tea.Cmd {
	return func() tea.Msg {
		_, err := m.gateway.CreateMockRoute(context.Background(), api.CreateMockRouteInput{
			MockServerID: serverID,
			Method:       route.Method,
			Path:         route.Path + "-copy",
			StatusCode:   route.StatusCode,
			ResponseBody: route.ResponseBody,
			IsEnabled:    route.IsEnabled,
			DelayMs:      route.DelayMs,
		})
		if err != nil {
			return errorMsg(err.Error())
		}
		return routeMutatedMsg{serverID: serverID}
	}
}

func (m *Model) deleteRoute(serverID, routeID int64) tea.Cmd {
	return func() tea.Msg {
		if err := m.gateway.DeleteMockRoute(context.Background(), routeID); err != nil {
			return errorMsg(err.Error())
		}
		return routeMutatedMsg{serverID: serverID}
	}
}

func (m *Model) saveRouteEdit() tea.Cmd {
	route := m.routeEdit
	return func() tea.Msg {
		err := m.gateway.UpdateMockRoute(context.Background(), route.ID, map[string]interface{}{
			"method":       route.Method,
			"path":         route.Path,
			"statusCode":   route.StatusCode,
			"responseBody": route.ResponseBody,
			"delayMs":      route.DelayMs,
		})
		if err != nil {
			return errorMsg(err.Error())
		}
		return routeMutatedMsg{serverID: route.MockServerID}
	}
}

func (m *Model) createMockServer(name string) tea.Cmd {
	wsID := m.ctl.ActiveWorkspaceID()
	return func() tea.Msg {
		_, err := m.gateway.CreateMockServer(context.Background(), api.CreateMockServerInput{
			Name:        name,
			WorkspaceID: wsID,
		})
		if err != nil {
			return errorMsg(err.Error())
		}
		return statusMsg("Mock server created")
	}
}

// Environment mutations run through the controller so the selection store,
// the event bus and the search index stay consistent.

func (m *Model) createEnvironmentCmd(name string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.ctl.CreateEnvironment(context.Background(), name, "{}"); err != nil {
			return errorMsg(err.Error())
		}
		return envMutatedMsg{}
	}
}

func (m *Model) saveEnvironmentCmd() tea.Cmd {
	vars := make(map[string]string, len(m.varRows))
	for _, row := range m.varRows {
		if row[0] != "" {
			vars[row[0]] = row[1]
		}
	}
	encoded, err := json.Marshal(vars)
	if err != nil {
		return func() tea.Msg { return errorMsg(err.Error()) }
	}

	envID := m.varEnvID
	name := m.varEnvName
	return func() tea.Msg {
		if err := m.ctl.SaveEnvironment(context.Background(), envID, name, string(encoded)); err != nil {
			return errorMsg(err.Error())
		}
		return statusMsg("Environment saved")
	}
}

func (m *Model) deleteEnvironmentCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := m.ctl.DeleteEnvironment(context.Background(), id); err != nil {
			return errorMsg(err.Error())
		}
		return envMutatedMsg{}
	}
}

// restoreHistory recreates a history entry as a saved request in the given
// collection.
func (m *Model) restoreHistory(entry types.HistoryEntry, collectionID int64) tea.Cmd {
	wsID := m.ctl.ActiveWorkspaceID()
	return func() tea.Msg {
		_, err := m.gateway.CreateRequest(context.Background(), api.CreateRequestInput{
			WorkspaceID:  wsID,
			CollectionID: collectionID,
			Name:         fmt.Sprintf("%s %s", entry.Method, entry.URL),
			Method:       entry.Method,
			URL:          entry.URL,
			Headers:      entry.ReqHeaders,
			Body:         entry.ReqBody,
		})
		if err != nil {
			return errorMsg(err.Error())
		}
		return statusMsg("Request restored to collection")
	}
}

func (m *Model) saveProfileCmd(fullName string) tea.Cmd {
	return func() tea.Msg {
		if err := m.ctl.SaveProfile(context.Background(), fullName); err != nil {
			return errorMsg(err.Error())
		}
		return profileSavedMsg{}
	}
}

func (m *Model) savePreferencesCmd() tea.Cmd {
	prefs := m.prefs
	return func() tea.Msg {
		if err := m.ctl.SavePreferences(prefs); err != nil {
			return errorMsg(err.Error())
		}
		return statusMsg("Preferences saved")
	}
}

func (m *Model) renameWorkspaceCmd(id int64, name string) tea.Cmd {
	return func() tea.Msg {
		if err := m.ctl.RenameWorkspace(context.Background(), id, name); err != nil {
			return errorMsg(err.Error())
		}
		return statusMsg("Workspace renamed")
	}
}

func (m *Model) deleteWorkspaceCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := m.ctl.DeleteWorkspace(context.Background(), id); err != nil {
			return errorMsg(err.Error())
		}
		return workspaceSwitchedMsg{}
	}
}

// copyToClipboard copies text and reports in the footer.
func (m *Model) copyToClipboard(text, what string) tea.Cmd {
	if err := clipboard.WriteAll(text); err != nil {
		return func() tea.Msg { return errorMsg(fmt.Sprintf("failed to copy %s: %v", what, err)) }
	}
	return func() tea.Msg { return statusMsg(fmt.Sprintf("%s copied to clipboard", what)) }
}
