package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/apiforge/forge/internal/nav"
	"github.com/apiforge/forge/internal/store"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#5f87ff"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleActiveTab = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Underline(true)
)

var moduleTabs = []struct {
	mod   nav.Module
	label string
}{
	{nav.ModuleRequests, "1:Requests"},
	{nav.ModuleMocks, "2:Mocks"},
	{nav.ModuleEnvironments, "3:Envs"},
	{nav.ModuleLogs, "4:Logs"},
	{nav.ModuleHistory, "5:History"},
	{nav.ModuleSettings, "6:Settings"},
}

func methodStyle(method string) lipgloss.Style {
	switch method {
	case "GET":
		return styleSuccess
	case "POST":
		return lipgloss.NewStyle().Foreground(colorBlue)
	case "DELETE":
		return styleError
	case "PUT", "PATCH":
		return styleWarning
	}
	return styleSubtle
}

func (m *Model) sidebarWidth() int {
	w := m.width * 35 / 100
	if w < 34 {
		w = 34
	}
	return w
}

// View renders the full screen.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	switch m.mode {
	case ModeSearch:
		return m.renderSearchOverlay()
	case ModeWorkspacePick:
		return m.renderPicker("Switch workspace", m.workspacePickRows())
	case ModeEnvPick:
		return m.renderPicker("Switch environment", m.envPickRows())
	case ModeServerPick:
		return m.renderPicker("Pick a mock server to tail", m.serverPickRows())
	case ModeInput:
		return m.renderInputModal()
	case ModeConfirmDelete:
		return m.renderConfirmModal()
	case ModeRouteEdit:
		return m.renderRouteEditModal()
	case ModeVarEdit:
		return m.renderVarEditModal()
	case ModeErrorDetail:
		return m.renderDetailModal()
	case ModeHelp:
		return m.renderHelp()
	}

	return m.renderMain()
}

func (m *Model) renderMain() string {
	rail := m.renderModuleRail()

	sidebarWidth := m.sidebarWidth()
	detailWidth := m.width - sidebarWidth - 6

	explorerBorder := colorGray
	detailBorder := colorGray
	if m.focusedPanel == "explorer" {
		explorerBorder = colorGreen
	} else {
		detailBorder = colorGreen
	}

	explorerBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(explorerBorder).
		Width(sidebarWidth).
		Height(m.height - 4).
		Render(m.renderExplorer(sidebarWidth - 2))

	detailBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(detailBorder).
		Width(detailWidth).
		Height(m.height - 4).
		Render(m.detailView.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, explorerBox, detailBox)
	return lipgloss.JoinVertical(lipgloss.Left, rail, body, m.renderStatusBar())
}

func (m *Model) renderModuleRail() string {
	active := m.nav.State().Module
	parts := make([]string, 0, len(moduleTabs))
	for _, tab := range moduleTabs {
		if tab.mod == active {
			parts = append(parts, styleActiveTab.Render(tab.label))
		} else {
			parts = append(parts, styleSubtle.Render(tab.label))
		}
	}
	return " " + strings.Join(parts, "  ")
}

func (m *Model) renderExplorer(width int) string {
	rows := m.explorerRows()
	if len(rows) == 0 {
		if m.loading {
			return styleSubtle.Render("Loading...")
		}
		return styleSubtle.Render("Nothing here yet.")
	}

	height := m.explorerHeight()
	end := m.explorerOffset + height
	if end > len(rows) {
		end = len(rows)
	}

	var b strings.Builder
	for i := m.explorerOffset; i < end; i++ {
		row := rows[i]
		indent := strings.Repeat("  ", row.depth)

		// Truncate the plain label before any styling so the cut
		// never lands inside an escape sequence.
		label := row.label
		avail := width - len(indent)
		if row.method != "" {
			avail -= 7
		}
		if r := []rune(label); len(r) > avail && avail > 3 {
			label = string(r[:avail-3]) + "..."
		}

		line := indent + label
		if row.method != "" {
			line = indent + methodStyle(row.method).Render(fmt.Sprintf("%-6s", row.method)) + " " + label
		}
		if i == m.explorerIndex && m.focusedPanel == "explorer" {
			line = styleSelected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderStatusBar() string {
	var parts []string

	if ws, ok := m.ctl.ActiveWorkspace(); ok {
		parts = append(parts, styleTitle.Render(ws.Name))
	}

	env := m.ctl.ActiveEnvID()
	if env == store.EnvNone {
		parts = append(parts, styleSubtle.Render("env: none"))
	} else {
		label := env
		for _, e := range m.ctl.Environments() {
			if strconv.FormatInt(e.ID, 10) == env {
				label = e.Name
			}
		}
		parts = append(parts, styleSuccess.Render("env: "+label))
	}

	if m.loading {
		parts = append(parts, styleWarning.Render("loading..."))
	}
	if m.errorMsg != "" {
		parts = append(parts, styleError.Render(m.errorMsg+" (x: details)"))
	} else if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	}

	return " " + strings.Join(parts, "  |  ")
}

func (m *Model) renderSearchOverlay() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Search") + "\n\n")
	b.WriteString("> " + m.searchQuery + "█\n\n")

	if strings.TrimSpace(m.searchQuery) == "" {
		b.WriteString(styleSubtle.Render("Type to search requests, collections, mocks, environments and workspaces."))
	} else if len(m.searchResults) == 0 {
		b.WriteString(styleSubtle.Render("No matches."))
	}

	for i, entry := range m.searchResults {
		kind := styleSubtle.Render(fmt.Sprintf("%-10s", entry.Kind))
		label := entry.Name
		if entry.Method != "" {
			label = methodStyle(entry.Method).Render(entry.Method) + " " + label
		}
		if entry.Meta != "" {
			label += styleSubtle.Render("  (" + entry.Meta + ")")
		}
		line := fmt.Sprintf("%s %s", kind, label)
		if i == m.searchIndex {
			line = styleSelected.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + styleSubtle.Render("enter: open  esc: close"))
	return m.modalFrame(b.String())
}

func (m *Model) workspacePickRows() []string {
	active := m.ctl.ActiveWorkspaceID()
	var rows []string
	for _, ws := range m.ctl.Workspaces() {
		label := ws.Name
		if ws.ID == active {
			label += styleSuccess.Render(" (active)")
		}
		rows = append(rows, label)
	}
	return rows
}

func (m *Model) envPickRows() []string {
	active := m.ctl.ActiveEnvID()
	rows := []string{"none"}
	if active == store.EnvNone {
		rows[0] += styleSuccess.Render(" (active)")
	}
	for _, env := range m.ctl.Environments() {
		label := env.Name
		if strconv.FormatInt(env.ID, 10) == active {
			label += styleSuccess.Render(" (active)")
		}
		rows = append(rows, label)
	}
	return rows
}

func (m *Model) serverPickRows() []string {
	var rows []string
	for _, srv := range m.mockServers {
		rows = append(rows, srv.Name)
	}
	if len(rows) == 0 {
		rows = append(rows, styleSubtle.Render("No mock servers in this workspace."))
	}
	return rows
}

func (m *Model) renderPicker(title string, rows []string) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(title) + "\n\n")
	for i, row := range rows {
		cursor := "  "
		if i == m.pickerIndex {
			cursor = "> "
			row = styleSelected.Render(row)
		}
		b.WriteString(cursor + row + "\n")
	}
	b.WriteString("\n" + styleSubtle.Render("enter: select  esc: cancel"))
	return m.modalFrame(b.String())
}

func (m *Model) renderInputModal() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(m.inputPrompt) + "\n\n")
	b.WriteString("> " + m.inputValue + "█\n\n")
	b.WriteString(styleSubtle.Render("enter: confirm  esc: cancel"))
	return m.modalFrame(b.String())
}

func (m *Model) renderConfirmModal() string {
	var b strings.Builder
	b.WriteString(styleWarning.Render(m.confirmPrompt) + "\n\n")
	b.WriteString(styleSubtle.Render("y: confirm  n: cancel"))
	return m.modalFrame(b.String())
}

func (m *Model) renderRouteEditModal() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Edit route") + "\n\n")
	for i, field := range routeFields {
		value := m.routeFieldValue(i)
		if i == m.routeField {
			value = m.routeInput + "█"
		}
		line := fmt.Sprintf("%-14s %s", field+":", value)
		if i == m.routeField {
			line = styleSelected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + styleSubtle.Render("tab: next field  enter: save  esc: cancel"))
	return m.modalFrame(b.String())
}

func (m *Model) renderVarEditModal() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Variables: "+m.varEnvName) + "\n\n")

	if len(m.varRows) == 0 {
		b.WriteString(styleSubtle.Render("No variables. Press 'a' to add one.") + "\n")
	}
	for i, row := range m.varRows {
		name, value := row[0], row[1]
		if i == m.varIndex && m.varEditing {
			if m.varField == 0 {
				name = m.varInput + "█"
			} else {
				value = m.varInput + "█"
			}
		}
		line := fmt.Sprintf("%-24s %s", name, value)
		if i == m.varIndex {
			line = styleSelected.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + styleSubtle.Render("enter: edit  a: add  x: delete  ctrl+s: save  esc: close"))
	return m.modalFrame(b.String())
}

func (m *Model) renderDetailModal() string {
	var b strings.Builder
	if m.fullErrorMsg != "" {
		b.WriteString(styleError.Render("Error") + "\n\n")
		b.WriteString(m.fullErrorMsg + "\n")
	} else {
		b.WriteString(styleTitle.Render("Status") + "\n\n")
		b.WriteString(m.fullStatusMsg + "\n")
	}
	b.WriteString("\n" + styleSubtle.Render("any key: close"))
	return m.modalFrame(b.String())
}

func (m *Model) renderHelp() string {
	help := []string{
		styleTitle.Render("Keys"),
		"",
		"1-6         switch module",
		"j/k         move selection",
		"enter       open / expand",
		"tab         switch pane focus",
		"/ or ctrl+k search everything",
		"w           switch workspace",
		"e           switch environment",
		"R           refresh module",
		"n           new (environment, mock server, route)",
		"E           edit (route, environment variables)",
		"t           toggle mock route",
		"d           duplicate mock route",
		"D           delete",
		"f           JMESPath filter (logs, history)",
		"y           copy to clipboard",
		"s           restore history entry to a collection",
		"x           show full error / status",
		"q           quit",
	}
	return m.modalFrame(strings.Join(help, "\n"))
}

// modalFrame centers boxed content over a dimmed backdrop.
func (m *Model) modalFrame(content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCyan).
		Padding(1, 2).
		MaxWidth(m.width - 4).
		Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
