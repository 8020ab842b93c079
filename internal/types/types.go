package types

import "encoding/json"

// Workspace is the top-level container scoping collections, environments,
// mock servers and history.
type Workspace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Collection is a named grouping of requests within a workspace.
type Collection struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	WorkspaceID int64  `json:"workspaceId"`
}

// Request is a saved HTTP request definition. Headers and auth config are
// transmitted as JSON-encoded strings, matching the backend DTOs.
type Request struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Method       string `json:"method"`
	URL          string `json:"url"`
	Headers      string `json:"headers,omitempty"`
	Body         string `json:"body,omitempty"`
	AuthConfig   string `json:"authConfig,omitempty"`
	CollectionID int64  `json:"collectionId"`
	WorkspaceID  int64  `json:"workspaceId,omitempty"`
}

// Environment is a named set of key-value variables. Variables are a
// JSON-encoded string field, not a nested object.
type Environment struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Variables   string `json:"variables"`
	IsPrivate   bool   `json:"isPrivate,omitempty"`
	WorkspaceID int64  `json:"workspaceId"`
}

// Vars decodes the variables field. A missing or malformed field decodes to
// an empty map rather than an error: the editor treats it as "no variables".
func (e Environment) Vars() map[string]string {
	vars := make(map[string]string)
	if e.Variables == "" {
		return vars
	}
	if err := json.Unmarshal([]byte(e.Variables), &vars); err != nil {
		return make(map[string]string)
	}
	return vars
}

// MockServer is a simulated backend served under a workspace.
type MockServer struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PathPrefix  string `json:"pathPrefix,omitempty"`
	WorkspaceID int64  `json:"workspaceId"`
}

// MockRoute is one endpoint definition under a mock server.
type MockRoute struct {
	ID           int64   `json:"id"`
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

// MockLog records one hit against a mock server.
type MockLog struct {
	ID         int64  `json:"id"`
	Timestamp  string `json:"timestamp"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body,omitempty"`
}

// HistoryEntry records a previously executed request and its outcome.
type HistoryEntry struct {
	ID         int64  `json:"id"`
	Method     string `json:"method"`
	URL        string `json:"url"`
	Status     int    `json:"status"`
	DurationMs int64  `json:"durationMs"`
	ReqHeaders string `json:"reqHeaders,omitempty"`
	ReqBody    string `json:"reqBody,omitempty"`
	RespBody   string `json:"respBody,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// User is the authenticated user's profile as cached in the selection store.
type User struct {
	FullName  string   `json:"fullName,omitempty"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

// DisplayName picks the best available name for the identity display.
func (u User) DisplayName() string {
	switch {
	case u.FullName != "":
		return u.FullName
	case u.FirstName != "":
		return u.FirstName
	case u.Email != "":
		return u.Email
	}
	return "User"
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r == "ROLE_ADMIN" {
			return true
		}
	}
	return false
}
