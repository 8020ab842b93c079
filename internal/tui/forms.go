package tui

import (
	"sort"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/apiforge/forge/internal/nav"
	"github.com/apiforge/forge/internal/types"
)

// Route editor fields, in display order.
var routeFields = []string{"Method", "Path", "Status code", "Response body", "Delay (ms)"}

func (m *Model) routeFieldValue(i int) string {
	switch i {
	case 0:
		return m.routeEdit.Method
	case 1:
		return m.routeEdit.Path
	case 2:
		return strconv.Itoa(m.routeEdit.StatusCode)
	case 3:
		return m.routeEdit.ResponseBody
	case 4:
		return strconv.Itoa(m.routeEdit.DelayMs)
	}
	return ""
}

func (m *Model) setRouteField(i int, value string) {
	switch i {
	case 0:
		m.routeEdit.Method = value
	case 1:
		m.routeEdit.Path = value
	case 2:
		if n, err := strconv.Atoi(value); err == nil {
			m.routeEdit.StatusCode = n
		}
	case 3:
		m.routeEdit.ResponseBody = value
	case 4:
		if n, err := strconv.Atoi(value); err == nil {
			m.routeEdit.DelayMs = n
		}
	}
}

func (m *Model) handleRouteEditKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal

	case "tab", "down":
		m.setRouteField(m.routeField, m.routeInput)
		m.routeField = (m.routeField + 1) % len(routeFields)
		m.routeInput = m.routeFieldValue(m.routeField)

	case "shift+tab", "up":
		m.setRouteField(m.routeField, m.routeInput)
		m.routeField = (m.routeField + len(routeFields) - 1) % len(routeFields)
		m.routeInput = m.routeFieldValue(m.routeField)

	case "enter", "ctrl+s":
		m.setRouteField(m.routeField, m.routeInput)
		m.mode = ModeNormal
		return m.saveRouteEdit()

	case "backspace":
		if len(m.routeInput) > 0 {
			m.routeInput = m.routeInput[:len(m.routeInput)-1]
		}

	default:
		if msg.Type == tea.KeyRunes {
			m.routeInput += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.routeInput += " "
		}
	}
	return nil
}

// startVarEdit loads an environment's variables into the table editor.
// Rows are sorted by name so the layout is stable across saves.
func (m *Model) startVarEdit(env types.Environment) {
	vars := env.Vars()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	m.varRows = nil
	for _, name := range names {
		m.varRows = append(m.varRows, [2]string{name, vars[name]})
	}
	m.varIndex = 0
	m.varField = 0
	m.varEditing = false
	m.varEnvID = env.ID
	m.varEnvName = env.Name
	m.mode = ModeVarEdit
}

func (m *Model) handleVarEditKeys(msg tea.KeyMsg) tea.Cmd {
	if m.varEditing {
		switch msg.String() {
		case "esc":
			m.varEditing = false
		case "enter", "tab":
			m.varRows[m.varIndex][m.varField] = m.varInput
			if msg.String() == "tab" && m.varField == 0 {
				m.varField = 1
				m.varInput = m.varRows[m.varIndex][1]
			} else {
				m.varEditing = false
			}
		case "backspace":
			if len(m.varInput) > 0 {
				m.varInput = m.varInput[:len(m.varInput)-1]
			}
		default:
			if msg.Type == tea.KeyRunes {
				m.varInput += string(msg.Runes)
			} else if msg.Type == tea.KeySpace {
				m.varInput += " "
			}
		}
		return nil
	}

	switch msg.String() {
	case "esc", "q":
		m.mode = ModeNormal

	case "j", "down":
		if m.varIndex < len(m.varRows)-1 {
			m.varIndex++
		}

	case "k", "up":
		if m.varIndex > 0 {
			m.varIndex--
		}

	case "h", "left":
		m.varField = 0

	case "l", "right", "tab":
		m.varField = 1

	case "enter":
		if m.varIndex < len(m.varRows) {
			m.varEditing = true
			m.varInput = m.varRows[m.varIndex][m.varField]
		}

	case "a":
		m.varRows = append(m.varRows, [2]string{"", ""})
		m.varIndex = len(m.varRows) - 1
		m.varField = 0
		m.varEditing = true
		m.varInput = ""

	case "x":
		if m.varIndex < len(m.varRows) {
			m.varRows = append(m.varRows[:m.varIndex], m.varRows[m.varIndex+1:]...)
			if m.varIndex >= len(m.varRows) && m.varIndex > 0 {
				m.varIndex--
			}
		}

	case "ctrl+s":
		m.mode = ModeNormal
		return m.saveEnvironmentCmd()
	}
	return nil
}

// Settings rows per category. Booleans toggle in place; text rows open the
// input modal.
func (m *Model) settingsRows() []string {
	state := m.nav.State()
	cat, _ := state.Entity.Cat()
	switch cat {
	case nav.CategoryGeneral:
		return []string{
			"Theme: " + m.prefs.Theme,
			"Request timeout: " + strconv.Itoa(m.prefs.RequestTimeout) + "s",
		}
	case nav.CategoryWorkspace:
		name := ""
		if ws, ok := m.ctl.ActiveWorkspace(); ok {
			name = ws.Name
		}
		return []string{
			"Rename workspace: " + name,
			"Delete workspace",
		}
	case nav.CategoryAccount:
		display := ""
		if user, ok, err := m.store.CurrentUser(); err == nil && ok {
			display = user.DisplayName()
		}
		return []string{
			"Full name: " + display,
		}
	case nav.CategorySecurity:
		return []string{
			"Follow redirects: " + onOff(m.prefs.FollowRedirects),
			"Verify TLS certificates: " + onOff(m.prefs.SSLVerify),
			"Proxy host: " + m.prefs.ProxyHost,
			"Proxy port: " + m.prefs.ProxyPort,
		}
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *Model) moveSettingsRow(delta int) {
	rows := m.settingsRows()
	if len(rows) == 0 {
		return
	}
	m.settingsRow += delta
	if m.settingsRow < 0 {
		m.settingsRow = len(rows) - 1
	} else if m.settingsRow >= len(rows) {
		m.settingsRow = 0
	}
}

func (m *Model) activateSettingsRow() tea.Cmd {
	cat, _ := m.nav.State().Entity.Cat()

	switch cat {
	case nav.CategoryGeneral:
		switch m.settingsRow {
		case 0:
			m.mode = ModeInput
			m.inputPrompt = "Theme (dark/light)"
			m.inputValue = m.prefs.Theme
			m.inputAction = func(v string) tea.Cmd {
				m.prefs.Theme = v
				return m.savePreferencesCmd()
			}
		case 1:
			m.mode = ModeInput
			m.inputPrompt = "Request timeout (seconds)"
			m.inputValue = strconv.Itoa(m.prefs.RequestTimeout)
			m.inputAction = func(v string) tea.Cmd {
				n, err := strconv.Atoi(v)
				if err != nil || n <= 0 {
					return func() tea.Msg { return errorMsg("timeout must be a positive number") }
				}
				m.prefs.RequestTimeout = n
				return m.savePreferencesCmd()
			}
		}

	case nav.CategoryWorkspace:
		ws, ok := m.ctl.ActiveWorkspace()
		if !ok {
			return nil
		}
		switch m.settingsRow {
		case 0:
			m.mode = ModeInput
			m.inputPrompt = "Workspace name"
			m.inputValue = ws.Name
			m.inputAction = func(v string) tea.Cmd {
				return m.renameWorkspaceCmd(ws.ID, v)
			}
		case 1:
			m.mode = ModeConfirmDelete
			m.confirmPrompt = "Delete workspace " + ws.Name + "? This cannot be undone."
			m.confirmAction = func() tea.Cmd { return m.deleteWorkspaceCmd(ws.ID) }
		}

	case nav.CategoryAccount:
		current := ""
		if user, ok, err := m.store.CurrentUser(); err == nil && ok {
			current = user.FullName
		}
		m.mode = ModeInput
		m.inputPrompt = "Full name"
		m.inputValue = current
		m.inputAction = m.saveProfileCmd

	case nav.CategorySecurity:
		switch m.settingsRow {
		case 0:
			m.prefs.FollowRedirects = !m.prefs.FollowRedirects
			return m.savePreferencesCmd()
		case 1:
			m.prefs.SSLVerify = !m.prefs.SSLVerify
			return m.savePreferencesCmd()
		case 2:
			m.mode = ModeInput
			m.inputPrompt = "Proxy host"
			m.inputValue = m.prefs.ProxyHost
			m.inputAction = func(v string) tea.Cmd {
				m.prefs.ProxyHost = v
				return m.savePreferencesCmd()
			}
		case 3:
			m.mode = ModeInput
			m.inputPrompt = "Proxy port"
			m.inputValue = m.prefs.ProxyPort
			m.inputAction = func(v string) tea.Cmd {
				if _, err := strconv.Atoi(v); err != nil {
					return func() tea.Msg { return errorMsg("port must be a number") }
				}
				m.prefs.ProxyPort = v
				return m.savePreferencesCmd()
			}
		}
	}
	return nil
}
