package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/apiforge/forge/internal/api"
	"github.com/apiforge/forge/internal/dashboard"
	"github.com/apiforge/forge/internal/events"
	"github.com/apiforge/forge/internal/nav"
	"github.com/apiforge/forge/internal/search"
	"github.com/apiforge/forge/internal/store"
	"github.com/apiforge/forge/internal/types"
)

type fakeGateway struct {
	updateRouteErr error
	updatedRoutes  []map[string]interface{}
}

func (f *fakeGateway) ListWorkspaces(ctx context.Context) ([]types.Workspace, error) {
	return []types.Workspace{{ID: 1, Name: "Acme"}}, nil
}

func (f *fakeGateway) UpdateWorkspace(ctx context.Context, id int64, name string) error { return nil }
func (f *fakeGateway) DeleteWorkspace(ctx context.Context, id int64) error              { return nil }

func (f *fakeGateway) ListEnvironments(ctx context.Context, workspaceID int64) ([]types.Environment, error) {
	return []types.Environment{{ID: 7, Name: "Staging", WorkspaceID: 1, Variables: "{}"}}, nil
}

func (f *fakeGateway) CreateEnvironment(ctx context.Context, in api.CreateEnvironmentInput) (types.Environment, error) {
	return types.Environment{ID: 8, Name: in.Name, WorkspaceID: in.WorkspaceID, Variables: in.Variables}, nil
}

func (f *fakeGateway) UpdateEnvironment(ctx context.Context, id int64, name, variables string) error {
	return nil
}
func (f *fakeGateway) DeleteEnvironment(ctx context.Context, id int64) error { return nil }
func (f *fakeGateway) UpdateProfile(ctx context.Context, fullName string) error {
	return nil
}

func (f *fakeGateway) ListCollections(ctx context.Context, workspaceID int64) ([]types.Collection, error) {
	return []types.Collection{{ID: 10, Name: "Users", WorkspaceID: workspaceID}}, nil
}

func (f *fakeGateway) ListRequests(ctx context.Context, collectionID int64) ([]types.Request, error) {
	return []types.Request{{ID: 100, Name: "Get Users", Method: "GET", CollectionID: collectionID}}, nil
}

func (f *fakeGateway) ListMockServers(ctx context.Context, workspaceID int64) ([]types.MockServer, error) {
	return []types.MockServer{{ID: 50, Name: "Payments Mock", WorkspaceID: workspaceID}}, nil
}

func (f *fakeGateway) ListMockRoutes(ctx context.Context, serverID int64) ([]types.MockRoute, error) {
	return []types.MockRoute{{ID: 500, Method: "GET", Path: "/ping", StatusCode: 200, IsEnabled: true, MockServerID: serverID}}, nil
}

func (f *fakeGateway) CreateMockServer(ctx context.Context, in api.CreateMockServerInput) (types.MockServer, error) {
	return types.MockServer{ID: 51, Name: in.Name, WorkspaceID: in.WorkspaceID}, nil
}

func (f *fakeGateway) CreateMockRoute(ctx context.Context, in api.CreateMockRouteInput) (types.MockRoute, error) {
	return types.MockRoute{ID: 501, Method: in.Method, Path: in.Path, MockServerID: in.MockServerID}, nil
}

func (f *fakeGateway) UpdateMockRoute(ctx context.Context, id int64, fields map[string]interface{}) error {
	f.updatedRoutes = append(f.updatedRoutes, fields)
	return f.updateRouteErr
}

func (f *fakeGateway) DeleteMockRoute(ctx context.Context, id int64) error { return nil }

func (f *fakeGateway) ListMockLogs(ctx context.Context, serverID int64) ([]types.MockLog, error) {
	return nil, nil
}

func (f *fakeGateway) ListHistory(ctx context.Context) ([]types.HistoryEntry, error) {
	return nil, nil
}

func (f *fakeGateway) CreateRequest(ctx context.Context, in api.CreateRequestInput) (types.Request, error) {
	return types.Request{ID: 101, Name: in.Name, Method: in.Method, CollectionID: in.CollectionID}, nil
}

func newTestModel(t *testing.T) (*Model, *fakeGateway) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "forge.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	gw := &fakeGateway{}
	bus := events.NewBus()
	navc := nav.NewCoordinator()
	ctl := dashboard.New(gw, st, bus, navc, search.NewBuilder(gw))
	if err := ctl.InitSession(context.Background()); err != nil {
		t.Fatalf("failed to init session: %v", err)
	}

	m := New(ctl, gw, st, bus, navc)
	m.width = 120
	m.height = 40
	return m, gw
}

func TestExplorerRowsRequestTree(t *testing.T) {
	m, _ := newTestModel(t)
	m.collections = []types.Collection{{ID: 10, Name: "Users"}, {ID: 11, Name: "Billing"}}
	m.requestsByCol[10] = []types.Request{{ID: 100, Name: "Get Users", Method: "GET"}}
	m.expandedCols[10] = true

	rows := m.explorerRows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].kind != rowCollection || rows[0].label != "Users" {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if rows[1].kind != rowRequest || rows[1].depth != 1 || rows[1].method != "GET" {
		t.Errorf("expected nested request row, got %+v", rows[1])
	}
	if rows[2].kind != rowCollection || rows[2].label != "Billing" {
		t.Errorf("unexpected last row %+v", rows[2])
	}
}

func TestExplorerRowsCollapsedHidesRequests(t *testing.T) {
	m, _ := newTestModel(t)
	m.collections = []types.Collection{{ID: 10, Name: "Users"}}
	m.requestsByCol[10] = []types.Request{{ID: 100, Name: "Get Users", Method: "GET"}}

	if rows := m.explorerRows(); len(rows) != 1 {
		t.Errorf("expected only the collection row, got %d rows", len(rows))
	}
}

func TestNavigateExplorerWrapsAround(t *testing.T) {
	m, _ := newTestModel(t)
	m.collections = []types.Collection{{ID: 10, Name: "A"}, {ID: 11, Name: "B"}}

	m.navigateExplorer(-1)
	if m.explorerIndex != 1 {
		t.Errorf("expected wrap to last row, got %d", m.explorerIndex)
	}
	m.navigateExplorer(1)
	if m.explorerIndex != 0 {
		t.Errorf("expected wrap to first row, got %d", m.explorerIndex)
	}
}

func TestOpenSelectedRequestRoutesNavigation(t *testing.T) {
	m, _ := newTestModel(t)
	m.collections = []types.Collection{{ID: 10, Name: "Users"}}
	m.requestsByCol[10] = []types.Request{{ID: 100, Name: "Get Users", Method: "GET"}}
	m.expandedCols[10] = true
	m.explorerIndex = 1

	m.openSelected()

	s := m.nav.State()
	if s.Module != nav.ModuleRequests || s.Editor != nav.EditorRequest {
		t.Errorf("unexpected navigation state %+v", s)
	}
	if id, ok := s.Entity.Num(); !ok || id != 100 {
		t.Errorf("expected entity 100, got %+v", s.Entity)
	}
}

func TestSetErrorMessageTruncatesFooter(t *testing.T) {
	m, _ := newTestModel(t)
	long := strings.Repeat("e", 150)

	m.setErrorMessage(long)

	if len(m.errorMsg) != 100 {
		t.Errorf("expected footer length 100, got %d", len(m.errorMsg))
	}
	if !strings.HasSuffix(m.errorMsg, "...") {
		t.Errorf("expected ellipsis suffix, got %q", m.errorMsg[90:])
	}
	if m.fullErrorMsg != long {
		t.Error("full message must be kept for the detail modal")
	}

	short := "plain failure"
	m.setErrorMessage(short)
	if m.errorMsg != short {
		t.Errorf("short message should not be truncated, got %q", m.errorMsg)
	}
}

func TestToggleRouteIsOptimistic(t *testing.T) {
	m, gw := newTestModel(t)
	m.routesBySrv[50] = []types.MockRoute{{ID: 500, IsEnabled: true, MockServerID: 50}}

	cmd := m.toggleRoute(50, 500)

	// The cache flips before the backend write settles.
	if m.routesBySrv[50][0].IsEnabled {
		t.Error("expected optimistic flip to disabled")
	}

	msg := cmd()
	if _, ok := msg.(routeMutatedMsg); !ok {
		t.Fatalf("expected routeMutatedMsg, got %T", msg)
	}
	if len(gw.updatedRoutes) != 1 || gw.updatedRoutes[0]["isEnabled"] != false {
		t.Errorf("unexpected backend write %v", gw.updatedRoutes)
	}
}

func TestToggleRouteFailureTriggersRevert(t *testing.T) {
	m, gw := newTestModel(t)
	gw.updateRouteErr = errors.New("boom")
	m.routesBySrv[50] = []types.MockRoute{{ID: 500, IsEnabled: true, MockServerID: 50}}

	msg := m.toggleRoute(50, 500)()
	failed, ok := msg.(routeToggleFailedMsg)
	if !ok {
		t.Fatalf("expected routeToggleFailedMsg, got %T", msg)
	}
	if failed.serverID != 50 {
		t.Errorf("expected server 50, got %d", failed.serverID)
	}

	// Feeding the failure back into the update loop refetches the routes,
	// reverting the optimistic flip.
	_, cmd := m.Update(failed)
	if cmd == nil {
		t.Fatal("expected a follow-up command")
	}
}

func TestSearchKeystrokeQueriesIndex(t *testing.T) {
	m, _ := newTestModel(t)
	m.mode = ModeSearch

	for _, r := range "get" {
		m.handleSearchKeys(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	if m.searchQuery != "get" {
		t.Errorf("expected query %q, got %q", "get", m.searchQuery)
	}
	var found bool
	for _, e := range m.searchResults {
		if e.Name == "Get Users" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Get Users in results, got %v", m.searchResults)
	}
}

func TestSearchEnvResultSwitchesEnvironment(t *testing.T) {
	m, _ := newTestModel(t)

	cmd := m.openSearchResult(search.Entry{ID: 7, Kind: search.KindEnv, Name: "Staging"})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	cmd()

	if got := m.ctl.ActiveEnvID(); got != "7" {
		t.Errorf("expected environment 7 active, got %q", got)
	}
}

func TestSettingsRowsPerCategory(t *testing.T) {
	m, _ := newTestModel(t)

	m.nav.OpenSettings(nav.CategorySecurity)
	rows := m.settingsRows()
	if len(rows) != 4 {
		t.Errorf("expected 4 security rows, got %d", len(rows))
	}

	m.nav.OpenSettings(nav.CategoryWorkspace)
	rows = m.settingsRows()
	if len(rows) != 2 || !strings.Contains(rows[0], "Acme") {
		t.Errorf("unexpected workspace rows %v", rows)
	}
}

func TestSwitchWorkspaceMessageResetsCaches(t *testing.T) {
	m, _ := newTestModel(t)
	m.collections = []types.Collection{{ID: 10, Name: "Users"}}
	m.requestsByCol[10] = []types.Request{{ID: 100}}
	m.expandedCols[10] = true
	m.mockLogs = []types.MockLog{{ID: 1}}
	m.explorerIndex = 3

	_, cmd := m.Update(workspaceSwitchedMsg{})
	if cmd == nil {
		t.Fatal("expected a reload command")
	}
	if m.collections != nil || len(m.requestsByCol) != 0 || m.mockLogs != nil {
		t.Error("expected workspace-scoped caches dropped")
	}
	if m.explorerIndex != 0 {
		t.Errorf("expected cursor reset, got %d", m.explorerIndex)
	}
}

func TestSignalHandlersDeferToUpdateLoop(t *testing.T) {
	m, _ := newTestModel(t)
	m.filterActive = true

	done := make(chan struct{})
	go func() {
		m.bus.Publish(events.EnvironmentChanged)
		close(done)
	}()
	<-done

	if !m.filterActive {
		t.Fatal("bus handler mutated the model outside Update")
	}
	m.Update(clearStatusMsg{})
	if m.filterActive {
		t.Fatal("expected Update to drop the active filter after the environment changed")
	}
	m.signalMu.Lock()
	pending := m.pendingFilterReset
	m.signalMu.Unlock()
	if pending {
		t.Fatal("expected the signal flag drained after Update")
	}
}

func TestFilterEnterRejectsInvalidExpression(t *testing.T) {
	m, _ := newTestModel(t)
	m.mode = ModeFilterEdit
	m.filterInput = "items[?"

	cmd := m.handleFilterKeys(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != ModeFilterEdit {
		t.Fatal("expected to stay in the filter editor on a bad expression")
	}
	if m.filterExpr != "" {
		t.Errorf("expected no filter applied, got %q", m.filterExpr)
	}
	if cmd == nil || !strings.Contains(m.errorMsg, "Invalid JMESPath") {
		t.Errorf("expected a footer error, got %q", m.errorMsg)
	}
}

func TestRenderExplorerTruncatesBeforeStyling(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)
	defer lipgloss.SetColorProfile(termenv.Ascii)

	m, _ := newTestModel(t)
	m.collections = []types.Collection{{ID: 10, Name: "Users"}}
	m.requestsByCol[10] = []types.Request{{ID: 100, Name: strings.Repeat("very-long-request-name-", 4), Method: "GET", CollectionID: 10}}
	m.expandedCols[10] = true
	m.focusedPanel = "detail"

	out := m.renderExplorer(30)
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 30 {
			t.Errorf("line renders %d cells wide over a 30-cell pane: %q", w, line)
		}
	}
	if !strings.Contains(out, "...") {
		t.Error("expected the long request name truncated with an ellipsis")
	}
	if !strings.Contains(out, "GET") {
		t.Error("expected the method token to survive truncation intact")
	}
}
