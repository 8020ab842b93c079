package tui

import (
	"fmt"
	"strings"

	"github.com/apiforge/forge/internal/filter"
	"github.com/apiforge/forge/internal/nav"
	"github.com/apiforge/forge/internal/types"
)

func (m *Model) explorerHeight() int {
	h := m.height - 6
	if h < 3 {
		return 3
	}
	return h
}

func (m *Model) updateViewport() {
	w := m.width - m.sidebarWidth() - 6
	if w < 20 {
		w = 20
	}
	h := m.height - 5
	if h < 5 {
		h = 5
	}
	m.detailView.Width = w
	m.detailView.Height = h
	m.refreshDetail()
}

// refreshDetail rebuilds the detail pane content from the navigation state.
func (m *Model) refreshDetail() {
	m.detailView.SetContent(m.detailContent())
	m.detailView.GotoTop()
}

func (m *Model) detailContent() string {
	state := m.nav.State()

	switch state.Editor {
	case nav.EditorRequest:
		if id, ok := state.Entity.Num(); ok {
			if req, ok := m.findRequest(id); ok {
				return m.renderRequestSummary(req)
			}
		}
		return m.notFound("request")

	case nav.EditorMockRoute:
		if id, ok := state.Entity.Num(); ok {
			for _, routes := range m.routesBySrv {
				for _, rt := range routes {
					if rt.ID == id {
						return m.renderRouteSummary(rt)
					}
				}
			}
		}
		return m.notFound("mock route")

	case nav.EditorServerConfig:
		if id, ok := state.Entity.Num(); ok {
			for _, srv := range m.mockServers {
				if srv.ID == id {
					return m.renderServerConfig(srv)
				}
			}
		}
		return m.notFound("mock server")

	case nav.EditorEnv:
		if id, ok := state.Entity.Num(); ok {
			for _, env := range m.ctl.Environments() {
				if env.ID == id {
					return m.renderEnvSummary(env)
				}
			}
		}
		return m.notFound("environment")

	case nav.EditorLog:
		if id, ok := state.Entity.Num(); ok {
			for _, lg := range m.mockLogs {
				if lg.ID == id {
					return m.renderLogDetail(lg)
				}
			}
		}
		return m.notFound("log entry")

	case nav.EditorHistory:
		if entry, ok := m.activeHistoryEntry(); ok {
			return m.renderHistoryDetail(entry)
		}
		return m.notFound("history entry")

	case nav.EditorSettings:
		return m.renderSettings()
	}

	return m.renderHome()
}

func (m *Model) notFound(what string) string {
	return styleSubtle.Render(fmt.Sprintf("This %s no longer exists. Pick another entry on the left.", what))
}

func (m *Model) findRequest(id int64) (types.Request, bool) {
	for _, requests := range m.requestsByCol {
		for _, req := range requests {
			if req.ID == id {
				return req, true
			}
		}
	}
	return types.Request{}, false
}

func (m *Model) activeHistoryEntry() (types.HistoryEntry, bool) {
	id, ok := m.nav.State().Entity.Num()
	if !ok {
		return types.HistoryEntry{}, false
	}
	for _, h := range m.history {
		if h.ID == id {
			return h, true
		}
	}
	return types.HistoryEntry{}, false
}

func (m *Model) renderRequestSummary(req types.Request) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(req.Name) + "\n\n")
	b.WriteString(fmt.Sprintf("%s %s\n", methodStyle(req.Method).Render(req.Method), req.URL))
	if req.Headers != "" && req.Headers != "{}" {
		b.WriteString("\nHeaders:\n" + req.Headers + "\n")
	}
	if req.Body != "" {
		b.WriteString("\nBody:\n" + req.Body + "\n")
	}
	b.WriteString("\n" + styleSubtle.Render("y: copy URL"))
	return b.String()
}

func (m *Model) renderRouteSummary(rt types.MockRoute) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("%s %s", rt.Method, rt.Path)) + "\n\n")
	status := styleSuccess.Render("enabled")
	if !rt.IsEnabled {
		status = styleError.Render("disabled")
	}
	b.WriteString(fmt.Sprintf("Status: %d  (%s)\n", rt.StatusCode, status))
	if rt.DelayMs > 0 {
		b.WriteString(fmt.Sprintf("Delay: %dms\n", rt.DelayMs))
	}
	if rt.ChaosEnabled {
		b.WriteString(styleWarning.Render(fmt.Sprintf("Chaos: %.0f%% failure rate", rt.FailureRate*100)) + "\n")
	}
	if rt.ResponseBody != "" {
		b.WriteString("\nResponse body:\n" + rt.ResponseBody + "\n")
	}
	b.WriteString("\n" + styleSubtle.Render("t: toggle  E: edit  d: duplicate  D: delete"))
	return b.String()
}

func (m *Model) renderServerConfig(srv types.MockServer) string {
	routes := m.routesBySrv[srv.ID]
	enabled := 0
	for _, rt := range routes {
		if rt.IsEnabled {
			enabled++
		}
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(srv.Name) + "\n\n")
	b.WriteString(fmt.Sprintf("Routes: %d (%d enabled)\n", len(routes), enabled))
	b.WriteString("\n" + styleSubtle.Render("enter: expand routes  n: new route"))
	return b.String()
}

func (m *Model) renderEnvSummary(env types.Environment) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(env.Name) + "\n\n")

	vars := env.Vars()
	if len(vars) == 0 {
		b.WriteString(styleSubtle.Render("No variables defined.") + "\n")
	} else {
		for name, value := range vars {
			b.WriteString(fmt.Sprintf("%s = %s\n", name, value))
		}
	}
	b.WriteString("\n" + styleSubtle.Render("E: edit variables  D: delete  e: switch active environment"))
	return b.String()
}

func (m *Model) renderLogDetail(lg types.MockLog) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("%s %s", lg.Method, lg.Path)) + "\n")
	b.WriteString(fmt.Sprintf("Status %d at %s\n\n", lg.StatusCode, lg.Timestamp))
	b.WriteString(m.renderFilterableBody(lg.Body))
	b.WriteString("\n\n" + styleSubtle.Render("f: filter  y: copy body"))
	return b.String()
}

func (m *Model) renderHistoryDetail(h types.HistoryEntry) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("%s %s", h.Method, h.URL)) + "\n")
	b.WriteString(fmt.Sprintf("Status %d in %dms at %s\n", h.Status, h.DurationMs, h.Timestamp))
	if h.ReqHeaders != "" && h.ReqHeaders != "{}" {
		b.WriteString("\nRequest headers:\n" + h.ReqHeaders + "\n")
	}
	if h.ReqBody != "" {
		b.WriteString("\nRequest body:\n" + h.ReqBody + "\n")
	}
	b.WriteString("\nResponse body:\n")
	b.WriteString(m.renderFilterableBody(h.RespBody))
	b.WriteString("\n\n" + styleSubtle.Render("s: restore to collection  f: filter  y: copy body"))
	return b.String()
}

func (m *Model) renderFilterableBody(body string) string {
	if !m.filterActive {
		return body
	}
	if m.filterError != "" {
		return styleError.Render(m.filterError) + "\n" + body
	}
	return styleWarning.Render("filter: "+m.filterExpr) + "\n" + m.filteredBody
}

// applyFilter runs the JMESPath expression over the active body.
func (m *Model) applyFilter() {
	if m.filterExpr == "" {
		m.filterActive = false
		m.filterError = ""
		m.refreshDetail()
		return
	}

	body, _, ok := m.copyableBody()
	if !ok {
		return
	}

	m.filterActive = true
	out, err := filter.Apply(body, "", m.filterExpr)
	if err != nil {
		m.filterError = err.Error()
		m.filteredBody = ""
	} else {
		m.filterError = ""
		m.filteredBody = out
	}
	m.refreshDetail()
}

// copyableBody returns the raw (unfiltered) body of the active log or
// history entry.
func (m *Model) copyableBody() (string, string, bool) {
	state := m.nav.State()
	switch state.Editor {
	case nav.EditorLog:
		if id, ok := state.Entity.Num(); ok {
			for _, lg := range m.mockLogs {
				if lg.ID == id {
					return lg.Body, "log body", true
				}
			}
		}
	case nav.EditorHistory:
		if entry, ok := m.activeHistoryEntry(); ok {
			return entry.RespBody, "response body", true
		}
	case nav.EditorRequest:
		if id, ok := state.Entity.Num(); ok {
			if req, ok := m.findRequest(id); ok {
				return req.URL, "request URL", true
			}
		}
	}
	return "", "", false
}

func (m *Model) renderSettings() string {
	cat, _ := m.nav.State().Entity.Cat()
	title := "Settings"
	for _, sc := range settingsCategories {
		if sc.cat == cat {
			title = sc.label + " settings"
		}
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(title) + "\n\n")
	for i, row := range m.settingsRows() {
		cursor := "  "
		if i == m.settingsRow {
			cursor = "> "
		}
		line := cursor + row
		if i == m.settingsRow {
			line = styleSelected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + styleSubtle.Render("enter: change  j/k: move"))
	return b.String()
}

// renderHome is the dashboard shown while no editor is open.
func (m *Model) renderHome() string {
	var b strings.Builder

	greeting := "Welcome"
	if user, ok, err := m.store.CurrentUser(); err == nil && ok {
		greeting = "Welcome, " + user.DisplayName()
	}
	b.WriteString(styleTitle.Render(greeting) + "\n\n")

	if ws, ok := m.ctl.ActiveWorkspace(); ok {
		b.WriteString(fmt.Sprintf("Workspace: %s\n", ws.Name))
	}
	envLabel := m.ctl.ActiveEnvID()
	for _, env := range m.ctl.Environments() {
		if fmt.Sprintf("%d", env.ID) == envLabel {
			envLabel = env.Name
		}
	}
	b.WriteString(fmt.Sprintf("Environment: %s\n\n", envLabel))

	requests := 0
	for _, reqs := range m.requestsByCol {
		requests += len(reqs)
	}
	b.WriteString(fmt.Sprintf("Collections: %d\n", len(m.collections)))
	if requests > 0 {
		b.WriteString(fmt.Sprintf("Requests loaded: %d\n", requests))
	}
	if len(m.mockServers) > 0 {
		b.WriteString(fmt.Sprintf("Mock servers: %d\n", len(m.mockServers)))
	}

	b.WriteString("\n" + styleSubtle.Render("/: search  w: workspace  e: environment  1-6: modules  ?: help"))
	return b.String()
}
