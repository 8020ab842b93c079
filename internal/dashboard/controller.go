// Package dashboard orchestrates workspace and environment selection across
// the selection store, the event bus, the navigation coordinator and the
// search index. The TUI calls into the controller; the controller owns the
// cached workspace and environment lists.
package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/apiforge/forge/internal/api"
	"github.com/apiforge/forge/internal/config"
	"github.com/apiforge/forge/internal/events"
	"github.com/apiforge/forge/internal/logging"
	"github.com/apiforge/forge/internal/nav"
	"github.com/apiforge/forge/internal/search"
	"github.com/apiforge/forge/internal/store"
	"github.com/apiforge/forge/internal/types"
)

// Gateway is the backend surface the controller drives.
type Gateway interface {
	search.Gateway
	ListWorkspaces(ctx context.Context) ([]types.Workspace, error)
	UpdateWorkspace(ctx context.Context, id int64, name string) error
	DeleteWorkspace(ctx context.Context, id int64) error
	ListEnvironments(ctx context.Context, workspaceID int64) ([]types.Environment, error)
	CreateEnvironment(ctx context.Context, in api.CreateEnvironmentInput) (types.Environment, error)
	UpdateEnvironment(ctx context.Context, id int64, name, variables string) error
	DeleteEnvironment(ctx context.Context, id int64) error
	UpdateProfile(ctx context.Context, fullName string) error
}

// Controller coordinates selection state. All cross-cutting invalidation on a
// workspace switch happens here, as one operation, so no stale per-workspace
// state survives the switch.
type Controller struct {
	gateway Gateway
	store   *store.Store
	bus     *events.Bus
	nav     *nav.Coordinator
	index   *search.Builder
	log     *logrus.Entry

	savePrefs func(config.Preferences) error

	mu              sync.RWMutex
	workspaces      []types.Workspace
	envs            []types.Environment
	activeWorkspace int64
	activeEnv       string
}

// New wires a controller over its collaborators.
func New(gateway Gateway, st *store.Store, bus *events.Bus, navc *nav.Coordinator, index *search.Builder) *Controller {
	return &Controller{
		gateway:   gateway,
		store:     st,
		bus:       bus,
		nav:       navc,
		index:     index,
		log:       logging.NewLogger("dashboard"),
		activeEnv: store.EnvNone,
		savePrefs: func(p config.Preferences) error {
			s, err := config.Load()
			if err != nil {
				return err
			}
			s.Preferences = p
			return config.Save(s)
		},
	}
}

// Workspaces returns the cached workspace list.
func (c *Controller) Workspaces() []types.Workspace {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.Workspace, len(c.workspaces))
	copy(out, c.workspaces)
	return out
}

// Environments returns the cached environment list of the active workspace.
func (c *Controller) Environments() []types.Environment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.Environment, len(c.envs))
	copy(out, c.envs)
	return out
}

// ActiveWorkspaceID returns the active workspace id, 0 when none.
func (c *Controller) ActiveWorkspaceID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeWorkspace
}

// ActiveWorkspace returns the active workspace, if any.
func (c *Controller) ActiveWorkspace() (types.Workspace, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ws := range c.workspaces {
		if ws.ID == c.activeWorkspace {
			return ws, true
		}
	}
	return types.Workspace{}, false
}

// ActiveEnvID returns the active environment id, store.EnvNone when unset.
func (c *Controller) ActiveEnvID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeEnv
}

// InitSession loads the workspace list and restores the persisted selection.
// The persisted workspace id is honored only if it still exists; otherwise
// the first workspace is selected and persisted. The persisted environment id
// is honored only if it exists in the selected workspace's environment list.
func (c *Controller) InitSession(ctx context.Context) error {
	workspaces, err := c.gateway.ListWorkspaces(ctx)
	if err != nil {
		return fmt.Errorf("failed to load workspaces: %w", err)
	}

	c.mu.Lock()
	c.workspaces = workspaces
	c.mu.Unlock()

	if len(workspaces) == 0 {
		c.log.Warn("no workspaces available")
		return nil
	}

	active := workspaces[0].ID
	persisted, ok, err := c.store.ActiveWorkspaceID()
	if err != nil {
		return err
	}
	if ok {
		for _, ws := range workspaces {
			if ws.ID == persisted {
				active = persisted
				break
			}
		}
	}
	if err := c.store.SetActiveWorkspaceID(active); err != nil {
		return err
	}
	c.mu.Lock()
	c.activeWorkspace = active
	c.mu.Unlock()

	if err := c.reloadEnvironments(ctx); err != nil {
		c.log.WithError(err).Warn("failed to load environments")
	}

	persistedEnv, err := c.store.ActiveEnvID()
	if err != nil {
		return err
	}
	if _, changed := c.revalidateEnv(persistedEnv); changed {
		c.log.WithField("env", persistedEnv).Debug("persisted environment no longer present")
	}

	c.rebuildIndex(ctx)
	return nil
}

// SwitchWorkspace makes id the active workspace and invalidates every
// workspace-scoped cache in one coordinated pass: the environment list is
// reloaded, the environment selection revalidated, navigation reset, the
// last-used log server cleared and the search index rebuilt.
func (c *Controller) SwitchWorkspace(ctx context.Context, id int64) error {
	if err := c.store.SetActiveWorkspaceID(id); err != nil {
		return err
	}
	c.mu.Lock()
	c.activeWorkspace = id
	c.mu.Unlock()

	if err := c.reloadEnvironments(ctx); err != nil {
		c.log.WithError(err).Warn("failed to load environments")
	}

	current, err := c.store.ActiveEnvID()
	if err != nil {
		return err
	}
	if _, changed := c.revalidateEnv(current); changed {
		c.bus.Publish(events.EnvironmentChanged)
	}

	if err := c.store.ClearCurrentLogServerID(); err != nil {
		return err
	}

	c.nav.Reset()
	c.rebuildIndex(ctx)
	return nil
}

// SwitchEnvironment makes id the active environment; store.EnvNone clears
// the selection. The denormalized variable snapshot is refreshed from the
// cached environment list and exactly one environment-changed signal is
// raised.
func (c *Controller) SwitchEnvironment(id string) error {
	vars := "{}"
	if id != store.EnvNone {
		env, ok := c.findEnv(id)
		if !ok {
			return fmt.Errorf("unknown environment %q", id)
		}
		vars = env.Variables
		if strings.TrimSpace(vars) == "" {
			vars = "{}"
		}
	}

	if err := c.store.SetActiveEnvID(id); err != nil {
		return err
	}
	if err := c.store.SetActiveEnvVars(vars); err != nil {
		return err
	}
	c.mu.Lock()
	c.activeEnv = id
	c.mu.Unlock()

	c.bus.Publish(events.EnvironmentChanged)
	return nil
}

// CreateEnvironment creates an environment in the active workspace and adds
// it to the cached list and the search index.
func (c *Controller) CreateEnvironment(ctx context.Context, name, variables string) (types.Environment, error) {
	if strings.TrimSpace(variables) == "" {
		variables = "{}"
	}
	env, err := c.gateway.CreateEnvironment(ctx, api.CreateEnvironmentInput{
		Name:        name,
		WorkspaceID: c.ActiveWorkspaceID(),
		Variables:   variables,
	})
	if err != nil {
		return types.Environment{}, err
	}

	c.mu.Lock()
	c.envs = append(c.envs, env)
	c.mu.Unlock()

	c.rebuildIndex(ctx)
	return env, nil
}

// SaveEnvironment updates an environment. When the environment is the active
// one its variable snapshot is refreshed and environment-changed is raised.
func (c *Controller) SaveEnvironment(ctx context.Context, id int64, name, variables string) error {
	if strings.TrimSpace(variables) == "" {
		variables = "{}"
	}
	if err := c.gateway.UpdateEnvironment(ctx, id, name, variables); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.envs {
		if c.envs[i].ID == id {
			c.envs[i].Name = name
			c.envs[i].Variables = variables
		}
	}
	active := c.activeEnv == formatEnvID(id)
	c.mu.Unlock()

	if active {
		if err := c.store.SetActiveEnvVars(variables); err != nil {
			return err
		}
		c.bus.Publish(events.EnvironmentChanged)
	}

	c.rebuildIndex(ctx)
	return nil
}

// DeleteEnvironment removes an environment. Deleting the active one clears
// the selection and the snapshot, empties the editor and raises
// environment-changed.
func (c *Controller) DeleteEnvironment(ctx context.Context, id int64) error {
	if err := c.gateway.DeleteEnvironment(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.envs {
		if c.envs[i].ID == id {
			c.envs = append(c.envs[:i], c.envs[i+1:]...)
			break
		}
	}
	wasActive := c.activeEnv == formatEnvID(id)
	c.mu.Unlock()

	if wasActive {
		if err := c.store.SetActiveEnvID(store.EnvNone); err != nil {
			return err
		}
		if err := c.store.SetActiveEnvVars("{}"); err != nil {
			return err
		}
		c.mu.Lock()
		c.activeEnv = store.EnvNone
		c.mu.Unlock()

		c.nav.CloseEditor()
		c.bus.Publish(events.EnvironmentChanged)
	}

	c.rebuildIndex(ctx)
	return nil
}

// RenameWorkspace renames a workspace and refreshes the cached list.
func (c *Controller) RenameWorkspace(ctx context.Context, id int64, name string) error {
	if err := c.gateway.UpdateWorkspace(ctx, id, name); err != nil {
		return err
	}
	c.mu.Lock()
	for i := range c.workspaces {
		if c.workspaces[i].ID == id {
			c.workspaces[i].Name = name
		}
	}
	c.mu.Unlock()
	c.rebuildIndex(ctx)
	return nil
}

// DeleteWorkspace removes a workspace. Deleting the active one switches to
// the first remaining workspace.
func (c *Controller) DeleteWorkspace(ctx context.Context, id int64) error {
	if err := c.gateway.DeleteWorkspace(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.workspaces {
		if c.workspaces[i].ID == id {
			c.workspaces = append(c.workspaces[:i], c.workspaces[i+1:]...)
			break
		}
	}
	wasActive := c.activeWorkspace == id
	var next int64
	if len(c.workspaces) > 0 {
		next = c.workspaces[0].ID
	}
	c.mu.Unlock()

	if wasActive && next != 0 {
		return c.SwitchWorkspace(ctx, next)
	}
	c.rebuildIndex(ctx)
	return nil
}

// SaveProfile updates the user's full name on the backend and in the store,
// then raises user-profile-changed.
func (c *Controller) SaveProfile(ctx context.Context, fullName string) error {
	if err := c.gateway.UpdateProfile(ctx, fullName); err != nil {
		return err
	}

	user, _, err := c.store.CurrentUser()
	if err != nil {
		return err
	}
	user.FullName = fullName
	first, last, _ := strings.Cut(fullName, " ")
	user.FirstName = first
	user.LastName = last
	if err := c.store.SetCurrentUser(user); err != nil {
		return err
	}

	c.bus.Publish(events.UserProfileChanged)
	return nil
}

// SavePreferences persists preference changes and raises settings-changed.
func (c *Controller) SavePreferences(p config.Preferences) error {
	if err := c.savePrefs(p); err != nil {
		return err
	}
	c.bus.Publish(events.SettingsChanged)
	return nil
}

// RebuildIndex reassembles the search index from the cached lists.
func (c *Controller) RebuildIndex(ctx context.Context) {
	c.rebuildIndex(ctx)
}

// Query answers a palette query against the committed index snapshot.
func (c *Controller) Query(q string) []search.Entry {
	return c.index.Query(q)
}

func (c *Controller) reloadEnvironments(ctx context.Context) error {
	c.mu.RLock()
	active := c.activeWorkspace
	c.mu.RUnlock()

	envs, err := c.gateway.ListEnvironments(ctx, active)
	c.mu.Lock()
	c.envs = envs
	c.mu.Unlock()
	return err
}

// revalidateEnv keeps id if it names an environment in the cached list,
// otherwise falls back to store.EnvNone with an empty snapshot. It reports
// the effective id and whether the selection changed.
func (c *Controller) revalidateEnv(id string) (string, bool) {
	if id != store.EnvNone {
		if env, ok := c.findEnv(id); ok {
			vars := env.Variables
			if strings.TrimSpace(vars) == "" {
				vars = "{}"
			}
			if err := c.store.SetActiveEnvVars(vars); err != nil {
				c.log.WithError(err).Warn("failed to refresh environment snapshot")
			}
			c.mu.Lock()
			c.activeEnv = id
			c.mu.Unlock()
			return id, false
		}
	}

	changed := id != store.EnvNone
	if err := c.store.SetActiveEnvID(store.EnvNone); err != nil {
		c.log.WithError(err).Warn("failed to reset environment selection")
	}
	if err := c.store.SetActiveEnvVars("{}"); err != nil {
		c.log.WithError(err).Warn("failed to clear environment snapshot")
	}
	c.mu.Lock()
	c.activeEnv = store.EnvNone
	c.mu.Unlock()
	return store.EnvNone, changed
}

func (c *Controller) rebuildIndex(ctx context.Context) {
	c.mu.RLock()
	active := c.activeWorkspace
	workspaces := make([]types.Workspace, len(c.workspaces))
	copy(workspaces, c.workspaces)
	envs := make([]types.Environment, len(c.envs))
	copy(envs, c.envs)
	c.mu.RUnlock()

	if active == 0 {
		c.index.Clear()
		return
	}
	c.index.Build(ctx, active, workspaces, envs)
}

func (c *Controller) findEnv(id string) (types.Environment, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return types.Environment{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, env := range c.envs {
		if env.ID == n {
			return env, true
		}
	}
	return types.Environment{}, false
}

func formatEnvID(id int64) string {
	return strconv.FormatInt(id, 10)
}
