// Package search maintains a flat in-memory index of every entity in the
// active workspace that the jump palette can navigate to, and answers
// substring queries against it.
package search

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/apiforge/forge/internal/logging"
	"github.com/apiforge/forge/internal/types"
)

// MaxResults caps a single query's result set.
const MaxResults = 20

// EntityKind tags an index entry with the resource type it points to.
type EntityKind string

const (
	KindWorkspace  EntityKind = "workspace"
	KindCollection EntityKind = "collection"
	KindRequest    EntityKind = "request"
	KindEnv        EntityKind = "env"
	KindMock       EntityKind = "mock"
)

// Entry is one searchable entity. Method is set for requests only; Meta
// carries display context such as the owning collection's name.
type Entry struct {
	ID     int64
	Kind   EntityKind
	Name   string
	Method string
	Meta   string
}

// Gateway is the slice of the backend the builder needs.
type Gateway interface {
	ListCollections(ctx context.Context, workspaceID int64) ([]types.Collection, error)
	ListRequests(ctx context.Context, collectionID int64) ([]types.Request, error)
	ListMockServers(ctx context.Context, workspaceID int64) ([]types.MockServer, error)
}

// Builder assembles and serves the index. Builds are tagged with a
// monotonically increasing generation; when rapid workspace switches start
// overlapping builds, only the newest generation's result commits and every
// older build is discarded when it finishes.
type Builder struct {
	gateway Gateway

	mu      sync.Mutex
	gen     uint64
	entries []Entry
}

// NewBuilder creates an empty index over the given gateway.
func NewBuilder(gateway Gateway) *Builder {
	return &Builder{gateway: gateway}
}

// Entries returns the committed index snapshot.
func (b *Builder) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Build reassembles the index for workspaceID. The already-loaded workspace
// and environment lists seed the index without network calls; collections,
// their requests and mock servers are fetched from the gateway. A failing
// collection fetch empties the index; a failing request or mock fetch only
// drops its own entries. The published index is swapped in one step, so
// readers never observe a partial build.
func (b *Builder) Build(ctx context.Context, workspaceID int64, workspaces []types.Workspace, envs []types.Environment) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.mu.Unlock()

	entries := b.assemble(ctx, workspaceID, workspaces, envs)
	b.commit(gen, entries)
}

func (b *Builder) assemble(ctx context.Context, workspaceID int64, workspaces []types.Workspace, envs []types.Environment) []Entry {
	log := logging.NewLogger("search")

	entries := make([]Entry, 0, len(workspaces)+len(envs))
	for _, ws := range workspaces {
		entries = append(entries, Entry{ID: ws.ID, Kind: KindWorkspace, Name: ws.Name})
	}
	for _, env := range envs {
		entries = append(entries, Entry{ID: env.ID, Kind: KindEnv, Name: env.Name})
	}

	collections, err := b.gateway.ListCollections(ctx, workspaceID)
	if err != nil {
		// Everything downstream hangs off the collection list, so the
		// whole build degrades to an empty index.
		log.WithError(err).Error("failed to list collections, dropping index")
		return nil
	}
	for _, col := range collections {
		entries = append(entries, Entry{ID: col.ID, Kind: KindCollection, Name: col.Name})
	}

	// One result slot per collection keeps insertion order deterministic
	// even though the fetches run in parallel.
	requests := make([][]types.Request, len(collections))
	g, gctx := errgroup.WithContext(ctx)
	for i, col := range collections {
		i, col := i, col
		g.Go(func() error {
			reqs, err := b.gateway.ListRequests(gctx, col.ID)
			if err != nil {
				log.WithError(err).WithField("collection", col.Name).Warn("failed to list requests")
				return nil
			}
			requests[i] = reqs
			return nil
		})
	}
	_ = g.Wait()

	for i, col := range collections {
		for _, req := range requests[i] {
			entries = append(entries, Entry{
				ID:     req.ID,
				Kind:   KindRequest,
				Name:   req.Name,
				Method: req.Method,
				Meta:   col.Name,
			})
		}
	}

	servers, err := b.gateway.ListMockServers(ctx, workspaceID)
	if err != nil {
		log.WithError(err).Warn("failed to list mock servers")
	}
	for _, srv := range servers {
		entries = append(entries, Entry{ID: srv.ID, Kind: KindMock, Name: srv.Name})
	}

	return entries
}

// commit installs entries unless a newer build started in the meantime.
func (b *Builder) commit(gen uint64, entries []Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return
	}
	b.entries = entries
}

// Clear empties the index and invalidates any in-flight build.
func (b *Builder) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.entries = nil
}

// Query returns the first MaxResults entries whose name, method or meta
// field contains q, case-insensitively, in index order. An empty or
// whitespace-only query yields no results. Query never touches the network;
// it only scans the committed snapshot.
func (b *Builder) Query(q string) []Entry {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Entry
	for _, e := range b.entries {
		if strings.Contains(strings.ToLower(e.Name), q) ||
			strings.Contains(strings.ToLower(e.Method), q) ||
			strings.Contains(strings.ToLower(e.Meta), q) {
			out = append(out, e)
			if len(out) == MaxResults {
				break
			}
		}
	}
	return out
}
