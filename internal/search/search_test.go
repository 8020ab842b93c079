package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/apiforge/forge/internal/types"
)

type fakeGateway struct {
	mu          sync.Mutex
	collections map[int64][]types.Collection
	requests    map[int64][]types.Request
	servers     map[int64][]types.MockServer

	collectionsErr error
	requestErrs    map[int64]error
	serversErr     error

	// When set, ListCollections for gateWorkspace closes started and then
	// blocks until gate is closed.
	gateWorkspace int64
	gate          chan struct{}
	started       chan struct{}
}

func (f *fakeGateway) ListCollections(ctx context.Context, workspaceID int64) ([]types.Collection, error) {
	if f.gate != nil && workspaceID == f.gateWorkspace {
		close(f.started)
		<-f.gate
	}
	if f.collectionsErr != nil {
		return nil, f.collectionsErr
	}
	return f.collections[workspaceID], nil
}

func (f *fakeGateway) ListRequests(ctx context.Context, collectionID int64) ([]types.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requestErrs[collectionID]; err != nil {
		return nil, err
	}
	return f.requests[collectionID], nil
}

func (f *fakeGateway) ListMockServers(ctx context.Context, workspaceID int64) ([]types.MockServer, error) {
	if f.serversErr != nil {
		return nil, f.serversErr
	}
	return f.servers[workspaceID], nil
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		collections: map[int64][]types.Collection{
			1: {
				{ID: 10, Name: "Users", WorkspaceID: 1},
				{ID: 11, Name: "Billing", WorkspaceID: 1},
			},
		},
		requests: map[int64][]types.Request{
			10: {
				{ID: 100, Name: "Get Users", Method: "GET", CollectionID: 10},
				{ID: 101, Name: "Create User", Method: "POST", CollectionID: 10},
			},
			11: {
				{ID: 110, Name: "List Invoices", Method: "GET", CollectionID: 11},
			},
		},
		servers: map[int64][]types.MockServer{
			1: {{ID: 50, Name: "Payments Mock", WorkspaceID: 1}},
		},
		requestErrs: map[int64]error{},
	}
}

var (
	testWorkspaces = []types.Workspace{{ID: 1, Name: "Acme"}}
	testEnvs       = []types.Environment{{ID: 7, Name: "Staging", WorkspaceID: 1}}
)

func TestBuildIndexesEveryEntity(t *testing.T) {
	b := NewBuilder(newFakeGateway())
	b.Build(context.Background(), 1, testWorkspaces, testEnvs)

	entries := b.Entries()
	counts := map[EntityKind]int{}
	for _, e := range entries {
		counts[e.Kind]++
	}
	want := map[EntityKind]int{
		KindWorkspace:  1,
		KindEnv:        1,
		KindCollection: 2,
		KindRequest:    3,
		KindMock:       1,
	}
	for kind, n := range want {
		if counts[kind] != n {
			t.Errorf("expected %d %s entries, got %d", n, kind, counts[kind])
		}
	}
	if len(entries) != 8 {
		t.Errorf("expected 8 entries, got %d", len(entries))
	}

	// Requests carry method and owning collection name.
	for _, e := range entries {
		if e.Kind == KindRequest && e.ID == 100 {
			if e.Method != "GET" || e.Meta != "Users" {
				t.Errorf("request entry missing display metadata: %+v", e)
			}
		}
	}
}

func TestBuildCollectionFetchFailureEmptiesIndex(t *testing.T) {
	gw := newFakeGateway()
	gw.collectionsErr = errors.New("boom")
	b := NewBuilder(gw)
	b.Build(context.Background(), 1, testWorkspaces, testEnvs)

	if got := b.Entries(); len(got) != 0 {
		t.Errorf("expected empty index, got %d entries", len(got))
	}
}

func TestBuildIsolatesFailingCollection(t *testing.T) {
	gw := newFakeGateway()
	gw.requestErrs[10] = errors.New("boom")
	b := NewBuilder(gw)
	b.Build(context.Background(), 1, testWorkspaces, testEnvs)

	var names []string
	for _, e := range b.Entries() {
		if e.Kind == KindRequest {
			names = append(names, e.Name)
		}
	}
	if len(names) != 1 || names[0] != "List Invoices" {
		t.Errorf("expected only the healthy collection's requests, got %v", names)
	}
	// Both collections themselves stay indexed.
	var cols int
	for _, e := range b.Entries() {
		if e.Kind == KindCollection {
			cols++
		}
	}
	if cols != 2 {
		t.Errorf("expected 2 collection entries, got %d", cols)
	}
}

func TestBuildMockServerFailureIsIsolated(t *testing.T) {
	gw := newFakeGateway()
	gw.serversErr = errors.New("boom")
	b := NewBuilder(gw)
	b.Build(context.Background(), 1, testWorkspaces, testEnvs)

	for _, e := range b.Entries() {
		if e.Kind == KindMock {
			t.Fatalf("unexpected mock entry %+v", e)
		}
	}
	if len(b.Entries()) != 7 {
		t.Errorf("expected 7 entries without mocks, got %d", len(b.Entries()))
	}
}

func TestQueryIsCaseInsensitive(t *testing.T) {
	b := NewBuilder(newFakeGateway())
	b.Build(context.Background(), 1, testWorkspaces, testEnvs)

	for _, q := range []string{"get", "GET", "Get"} {
		got := b.Query(q)
		var found bool
		for _, e := range got {
			if e.Name == "Get Users" {
				found = true
			}
		}
		if !found {
			t.Errorf("query %q did not match entry \"Get Users\"", q)
		}
	}
}

func TestQueryMatchesMethodAndMeta(t *testing.T) {
	b := NewBuilder(newFakeGateway())
	b.Build(context.Background(), 1, testWorkspaces, testEnvs)

	got := b.Query("post")
	if len(got) != 1 || got[0].Name != "Create User" {
		t.Errorf("expected method match on Create User, got %v", got)
	}

	got = b.Query("billing")
	// Matches the Billing collection itself plus its request via Meta.
	if len(got) != 2 {
		t.Errorf("expected 2 matches for meta query, got %v", got)
	}
}

func TestQueryEmptyOrWhitespaceYieldsNothing(t *testing.T) {
	b := NewBuilder(newFakeGateway())
	b.Build(context.Background(), 1, testWorkspaces, testEnvs)

	for _, q := range []string{"", "   ", "\t"} {
		if got := b.Query(q); got != nil {
			t.Errorf("query %q returned %v, expected nil", q, got)
		}
	}
}

func TestQueryCapsAtTwentyInIndexOrder(t *testing.T) {
	gw := newFakeGateway()
	var reqs []types.Request
	for i := 0; i < 30; i++ {
		reqs = append(reqs, types.Request{
			ID:           int64(200 + i),
			Name:         fmt.Sprintf("ping %02d", i),
			Method:       "GET",
			CollectionID: 10,
		})
	}
	gw.requests[10] = reqs
	b := NewBuilder(gw)
	b.Build(context.Background(), 1, testWorkspaces, testEnvs)

	got := b.Query("ping")
	if len(got) != MaxResults {
		t.Fatalf("expected %d results, got %d", MaxResults, len(got))
	}
	for i, e := range got {
		want := fmt.Sprintf("ping %02d", i)
		if e.Name != want {
			t.Errorf("result %d: expected %q, got %q", i, want, e.Name)
		}
	}
}

func TestStaleBuildDoesNotCommit(t *testing.T) {
	gw := newFakeGateway()
	gw.collections[2] = []types.Collection{{ID: 20, Name: "Alpha", WorkspaceID: 2}}
	gw.gateWorkspace = 1
	gw.gate = make(chan struct{})
	gw.started = make(chan struct{})
	b := NewBuilder(gw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Build(context.Background(), 1, testWorkspaces, testEnvs)
	}()
	<-gw.started

	// The switch to workspace 2 starts a newer build while the first is
	// still in flight; the first must be discarded on arrival.
	b.Build(context.Background(), 2, nil, nil)

	close(gw.gate)
	<-done

	entries := b.Entries()
	if len(entries) != 1 || entries[0].Name != "Alpha" {
		t.Errorf("stale build overwrote the index: %v", entries)
	}
}

func TestClearInvalidatesInFlightBuild(t *testing.T) {
	gw := newFakeGateway()
	gw.gateWorkspace = 1
	gw.gate = make(chan struct{})
	gw.started = make(chan struct{})
	b := NewBuilder(gw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Build(context.Background(), 1, testWorkspaces, testEnvs)
	}()
	<-gw.started

	b.Clear()
	close(gw.gate)
	<-done

	if got := b.Entries(); len(got) != 0 {
		t.Errorf("expected cleared index, got %d entries", len(got))
	}
}
