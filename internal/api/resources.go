package api

import (
	"context"
	"fmt"

	"github.com/apiforge/forge/internal/types"
)

// ListWorkspaces fetches the authenticated user's workspaces.
func (c *Client) ListWorkspaces(ctx context.Context) ([]types.Workspace, error) {
	var out []types.Workspace
	if err := c.get(ctx, "/workspaces/my-workspaces", &out); err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return out, nil
}

// UpdateWorkspace renames a workspace.
func (c *Client) UpdateWorkspace(ctx context.Context, id int64, name string) error {
	body := map[string]string{"name": name}
	if err := c.put(ctx, fmt.Sprintf("/workspaces/%d", id), body, nil); err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}
	return nil
}

// DeleteWorkspace permanently removes a workspace.
func (c *Client) DeleteWorkspace(ctx context.Context, id int64) error {
	if err := c.delete(ctx, fmt.Sprintf("/workspaces/%d", id)); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	return nil
}

// ListEnvironments fetches a workspace's environments.
func (c *Client) ListEnvironments(ctx context.Context, workspaceID int64) ([]types.Environment, error) {
	var out []types.Environment
	if err := c.get(ctx, fmt.Sprintf("/environments/workspace/%d", workspaceID), &out); err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	return out, nil
}

// CreateEnvironmentInput is the POST /environments/create DTO. Variables is a
// JSON-encoded string.
type CreateEnvironmentInput struct {
	Name        string `json:"name"`
	WorkspaceID int64  `json:"workspaceId"`
	Variables   string `json:"variables"`
}

// CreateEnvironment creates an environment.
func (c *Client) CreateEnvironment(ctx context.Context, in CreateEnvironmentInput) (types.Environment, error) {
	var out types.Environment
	if err := c.post(ctx, "/environments/create", in, &out); err != nil {
		return types.Environment{}, fmt.Errorf("failed to create environment: %w", err)
	}
	return out, nil
}

// UpdateEnvironment saves an environment's name and variables.
func (c *Client) UpdateEnvironment(ctx context.Context, id int64, name, variables string) error {
	body := map[string]string{"name": name, "variables": variables}
	if err := c.put(ctx, fmt.Sprintf("/environments/%d", id), body, nil); err != nil {
		return fmt.Errorf("failed to update environment: %w", err)
	}
	return nil
}

// DeleteEnvironment removes an environment.
func (c *Client) DeleteEnvironment(ctx context.Context, id int64) error {
	if err := c.delete(ctx, fmt.Sprintf("/environments/%d", id)); err != nil {
		return fmt.Errorf("failed to delete environment: %w", err)
	}
	return nil
}

// ListCollections fetches a workspace's collections.
func (c *Client) ListCollections(ctx context.Context, workspaceID int64) ([]types.Collection, error) {
	var out []types.Collection
	if err := c.get(ctx, fmt.Sprintf("/collections/workspace/%d", workspaceID), &out); err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return out, nil
}

// ListRequests fetches a collection's requests.
func (c *Client) ListRequests(ctx context.Context, collectionID int64) ([]types.Request, error) {
	var out []types.Request
	if err := c.get(ctx, fmt.Sprintf("/requests/collection/%d", collectionID), &out); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return out, nil
}

// CreateRequestInput is the POST /requests/create DTO. Headers and
// AuthConfig are JSON-encoded strings.
type CreateRequestInput struct {
	WorkspaceID  int64  `json:"workspaceId"`
	CollectionID int64  `json:"collectionId"`
	Name         string `json:"name"`
	Method       string `json:"method"`
	URL          string `json:"url"`
	Headers      string `json:"headers"`
	Body         string `json:"body"`
	AuthConfig   string `json:"authConfig"`
}

// CreateRequest creates a saved request.
func (c *Client) CreateRequest(ctx context.Context, in CreateRequestInput) (types.Request, error) {
	var out types.Request
	if err := c.post(ctx, "/requests/create", in, &out); err != nil {
		return types.Request{}, fmt.Errorf("failed to create request: %w", err)
	}
	return out, nil
}

// ListMockServers fetches a workspace's mock servers.
func (c *Client) ListMockServers(ctx context.Context, workspaceID int64) ([]types.MockServer, error) {
	var out []types.MockServer
	if err := c.get(ctx, fmt.Sprintf("/mocks/servers/workspace/%d", workspaceID), &out); err != nil {
		return nil, fmt.Errorf("failed to list mock servers: %w", err)
	}
	return out, nil
}

// CreateMockServerInput is the POST /mocks/servers/create DTO.
type CreateMockServerInput struct {
	Name        string `json:"name"`
	PathPrefix  string `json:"pathPrefix,omitempty"`
	WorkspaceID int64  `json:"workspaceId"`
}

// CreateMockServer creates a mock server.
func (c *Client) CreateMockServer(ctx context.Context, in CreateMockServerInput) (types.MockServer, error) {
	var out types.MockServer
	if err := c.post(ctx, "/mocks/servers/create", in, &out); err != nil {
		return types.MockServer{}, fmt.Errorf("failed to create mock server: %w", err)
	}
	return out, nil
}

// ListMockRoutes fetches a mock server's routes.
func (c *Client) ListMockRoutes(ctx context.Context, serverID int64) ([]types.MockRoute, error) {
	var out []types.MockRoute
	if err := c.get(ctx, fmt.Sprintf("/mocks/routes/server/%d", serverID), &out); err != nil {
		return nil, fmt.Errorf("failed to list mock routes: %w", err)
	}
	return out, nil
}

// CreateMockRouteInput is the POST /mocks/routes/create DTO.
type CreateMockRouteInput struct {
	Method       string  `json:"method"`
	Path         string  `json:"path"`
	StatusCode   int     `json:"statusCode"`
	ResponseBody string  `json:"responseBody"`
	IsEnabled    bool    `json:"isEnabled"`
	DelayMs      int     `json:"delayMs"`
	ChaosEnabled bool    `json:"chaosEnabled"`
	FailureRate  float64 `json:"failureRate"`
	MockServerID int64   `json:"mockServerId"`
}

// CreateMockRoute creates a route under a mock server.
func (c *Client) CreateMockRoute(ctx context.Context, in CreateMockRouteInput) (types.MockRoute, error) {
	var out types.MockRoute
	if err := c.post(ctx, "/mocks/routes/create", in, &out); err != nil {
		return types.MockRoute{}, fmt.Errorf("failed to create mock route: %w", err)
	}
	return out, nil
}

// UpdateMockRoute applies a partial update to a route. Fields contains only
// the keys to change plus the owning mockServerId the backend requires.
func (c *Client) UpdateMockRoute(ctx context.Context, id int64, fields map[string]interface{}) error {
	if err := c.put(ctx, fmt.Sprintf("/mocks/routes/%d", id), fields, nil); err != nil {
		return fmt.Errorf("failed to update mock route: %w", err)
	}
	return nil
}

// DeleteMockRoute removes a route.
func (c *Client) DeleteMockRoute(ctx context.Context, id int64) error {
	if err := c.delete(ctx, fmt.Sprintf("/mocks/routes/%d", id)); err != nil {
		return fmt.Errorf("failed to delete mock route: %w", err)
	}
	return nil
}

// ListMockLogs fetches the hit log for a mock server.
func (c *Client) ListMockLogs(ctx context.Context, serverID int64) ([]types.MockLog, error) {
	var out []types.MockLog
	if err := c.get(ctx, fmt.Sprintf("/logs/server/%d", serverID), &out); err != nil {
		return nil, fmt.Errorf("failed to list mock logs: %w", err)
	}
	return out, nil
}

// ListHistory fetches the authenticated user's request history.
func (c *Client) ListHistory(ctx context.Context) ([]types.HistoryEntry, error) {
	var out []types.HistoryEntry
	if err := c.get(ctx, "/history/me", &out); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return out, nil
}

// UpdateProfile updates the authenticated user's display name.
func (c *Client) UpdateProfile(ctx context.Context, fullName string) error {
	body := map[string]string{"fullName": fullName}
	if err := c.put(ctx, "/user/profile", body, nil); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}
