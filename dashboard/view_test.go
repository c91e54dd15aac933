package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedFetcher returns queued results one at a time, each released by the test.
type gatedFetcher struct {
	mu      sync.Mutex
	calls   int
	results chan result
}

type result struct {
	snap *Snapshot
	err  error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{results: make(chan result)}
}

func (g *gatedFetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	select {
	case r := <-g.results:
		return r.snap, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedFetcher) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// waitForChange subscribes to v and returns a channel receiving each new state.
func waitForChange(t *testing.T, v *View) <-chan State {
	t.Helper()
	ch := make(chan State, 8)
	cancel := v.Subscribe(func(s State) { ch <- s })
	t.Cleanup(cancel)
	return ch
}

func nextState(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state change")
		return State{}
	}
}

func successPayload() *Snapshot {
	return &Snapshot{
		TotalVisits:   Count(1000),
		UniqueUsers:   Count(250),
		APIHits:       Count(5000),
		EndpointStats: map[string]EndpointStat{"/api/x": {Hits: 10}},
	}
}

func TestMountShowsLoadingUntilFetchResolves(t *testing.T) {
	f := newGatedFetcher()
	v := New(f)
	v.Mount(context.Background())
	defer v.Unmount()

	assert.Equal(t, BranchLoading, Decide(v.State()).Branch)
	html, err := RenderString(v.State(), NewFormatter(DefaultLocale))
	require.NoError(t, err)
	assert.Contains(t, html, LoadingLabel)
	assert.NotContains(t, html, "analytics-grid")
}

func TestMountSuccess(t *testing.T) {
	f := newGatedFetcher()
	v := New(f)
	changes := waitForChange(t, v)
	v.Mount(context.Background())
	defer v.Unmount()

	assert.True(t, nextState(t, changes).Loading)
	f.results <- result{snap: successPayload()}
	s := nextState(t, changes)

	assert.False(t, s.Loading)
	assert.Nil(t, s.Err)
	require.NotNil(t, s.Snapshot)
	assert.Equal(t, int64(250), *s.Snapshot.UniqueUsers)

	select {
	case <-v.Settled():
	default:
		t.Fatal("expected view to be settled")
	}
}

func TestMountFailureWithoutData(t *testing.T) {
	f := newGatedFetcher()
	v := New(f)
	changes := waitForChange(t, v)
	v.Mount(context.Background())
	defer v.Unmount()

	nextState(t, changes)
	f.results <- result{err: errors.New("network down")}
	s := nextState(t, changes)

	d := Decide(s)
	assert.Equal(t, BranchError, d.Branch)
	assert.Equal(t, "network down", d.Message)
}

func TestMountIsOneShot(t *testing.T) {
	f := newGatedFetcher()
	v := New(f)
	changes := waitForChange(t, v)
	v.Mount(context.Background())
	v.Mount(context.Background())
	defer v.Unmount()

	nextState(t, changes)
	f.results <- result{snap: successPayload()}
	nextState(t, changes)

	assert.Equal(t, 1, f.Calls())
}

func TestFailedReloadKeepsDashboard(t *testing.T) {
	f := newGatedFetcher()
	v := New(f)
	changes := waitForChange(t, v)
	v.Mount(context.Background())
	defer v.Unmount()

	nextState(t, changes)
	f.results <- result{snap: successPayload()}
	nextState(t, changes)

	require.True(t, v.Reload())
	reloading := nextState(t, changes)
	assert.True(t, reloading.Loading)
	assert.Equal(t, BranchDashboard, Decide(reloading).Branch)
	assert.False(t, v.Reload(), "only one fetch may be in flight")

	f.results <- result{err: errors.New("network down")}
	s := nextState(t, changes)

	require.NotNil(t, s.Err)
	assert.Equal(t, "network down", *s.Err)
	d := Decide(s)
	assert.Equal(t, BranchDashboard, d.Branch)
	assert.Equal(t, int64(1000), *d.Data.TotalVisits)
	assert.Equal(t, int64(250), *d.Data.UniqueUsers)
}

func TestReloadSuccessOverwritesSnapshot(t *testing.T) {
	f := newGatedFetcher()
	v := New(f)
	changes := waitForChange(t, v)
	v.Mount(context.Background())
	defer v.Unmount()

	nextState(t, changes)
	f.results <- result{err: errors.New("first")}
	nextState(t, changes)

	require.True(t, v.Reload())
	s := nextState(t, changes)
	assert.Nil(t, s.Err, "a new attempt clears the previous failure")

	f.results <- result{snap: &Snapshot{TotalVisits: Count(2)}}
	s = nextState(t, changes)
	require.NotNil(t, s.Snapshot)
	assert.Equal(t, int64(2), *s.Snapshot.TotalVisits)
}

func TestLateResultAfterUnmountIsDropped(t *testing.T) {
	done := make(chan struct{})
	release := make(chan struct{})
	v := New(FetcherFunc(func(ctx context.Context) (*Snapshot, error) {
		defer close(done)
		<-release
		return successPayload(), nil
	}))
	notified := make(chan State, 4)
	v.Subscribe(func(s State) { notified <- s })

	v.Mount(context.Background())
	<-notified
	v.Unmount()
	close(release)
	<-done

	// complete runs right after Fetch returns; give it a moment.
	time.Sleep(20 * time.Millisecond)
	assert.True(t, v.State().Loading)
	assert.Nil(t, v.State().Snapshot)
	assert.Empty(t, notified)
	assert.False(t, v.Reload())
}

func TestUnmountCancelsFetch(t *testing.T) {
	f := newGatedFetcher()
	v := New(f)
	v.Mount(context.Background())
	v.Unmount()
	assert.False(t, v.Mounted())
}

func TestPanickingFetcherBecomesFailure(t *testing.T) {
	v := New(FetcherFunc(func(ctx context.Context) (*Snapshot, error) {
		panic("boom")
	}))
	v.Mount(context.Background())
	defer v.Unmount()

	select {
	case <-v.Settled():
	case <-time.After(2 * time.Second):
		t.Fatal("view never settled")
	}
	d := Decide(v.State())
	assert.Equal(t, BranchError, d.Branch)
	assert.Contains(t, d.Message, "boom")
}

func TestFetchTimeout(t *testing.T) {
	v := New(FetcherFunc(func(ctx context.Context) (*Snapshot, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), WithTimeout(10*time.Millisecond))
	v.Mount(context.Background())
	defer v.Unmount()

	select {
	case <-v.Settled():
	case <-time.After(2 * time.Second):
		t.Fatal("view never settled")
	}
	assert.Equal(t, BranchError, Decide(v.State()).Branch)
}

func TestStateReturnsCopy(t *testing.T) {
	v := New(FetcherFunc(func(ctx context.Context) (*Snapshot, error) {
		return successPayload(), nil
	}))
	v.Mount(context.Background())
	defer v.Unmount()
	<-v.Settled()

	s := v.State()
	*s.Snapshot.UniqueUsers = 1
	assert.Equal(t, int64(250), *v.State().Snapshot.UniqueUsers)
}
