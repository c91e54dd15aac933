package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Fetcher supplies the analytics payload. It either returns a snapshot or
// fails; how it reaches the data source is up to the implementation.
type Fetcher interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context) (*Snapshot, error)

// Fetch calls f(ctx).
func (f FetcherFunc) Fetch(ctx context.Context) (*Snapshot, error) {
	return f(ctx)
}

// View owns the state of one mounted analytics dashboard. State only changes
// when a fetch completes; every change is announced to subscribers so they
// can re-render.
type View struct {
	fetcher Fetcher
	timeout time.Duration

	mu       sync.Mutex
	state    State
	started  bool
	mounted  bool
	inFlight bool
	ctx      context.Context
	cancel   context.CancelFunc
	subs     map[int]func(State)
	nextSub  int
	settled  chan struct{}
	once     sync.Once
}

// Option configures a View.
type Option func(*View)

// WithTimeout bounds every fetch. Zero means no bound beyond the mount context.
func WithTimeout(d time.Duration) Option {
	return func(v *View) {
		v.timeout = d
	}
}

// New creates an unmounted view backed by f.
func New(f Fetcher, opts ...Option) *View {
	v := &View{
		fetcher: f,
		state:   initialState(),
		subs:    make(map[int]func(State)),
		settled: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mount enters the initial loading state and starts the single fetch in the
// background. Calling Mount again, or after Unmount, does nothing.
func (v *View) Mount(ctx context.Context) {
	v.mu.Lock()
	if v.started {
		v.mu.Unlock()
		return
	}
	v.started = true
	v.mounted = true
	ctx, v.cancel = context.WithCancel(ctx)
	v.ctx = ctx
	v.state = initialState()
	st, subs := v.snapshotLocked()
	v.inFlight = true
	v.mu.Unlock()

	notify(subs, st)
	go v.load(ctx)
}

// Reload starts another fetch attempt on a mounted view. It reports false when
// the view is not mounted or a fetch is already outstanding.
func (v *View) Reload() bool {
	v.mu.Lock()
	if !v.mounted || v.inFlight {
		v.mu.Unlock()
		return false
	}
	v.inFlight = true
	v.state = v.state.beginFetch()
	st, subs := v.snapshotLocked()
	ctx := v.ctx
	v.mu.Unlock()

	notify(subs, st)
	go v.load(ctx)
	return true
}

// Unmount destroys the view. A fetch still outstanding is cancelled and its
// result, should it arrive anyway, is dropped.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return
	}
	v.mounted = false
	if v.cancel != nil {
		v.cancel()
	}
	v.subs = make(map[int]func(State))
}

// Mounted reports whether the view is mounted.
func (v *View) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

// State returns a copy of the current state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.clone()
}

// Subscribe registers fn to be called with the new state after every change.
// The returned function removes the subscription.
func (v *View) Subscribe(fn func(State)) func() {
	v.mu.Lock()
	id := v.nextSub
	v.nextSub++
	v.subs[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Settled is closed once the fetch started by Mount has completed.
func (v *View) Settled() <-chan struct{} {
	return v.settled
}

func (v *View) load(ctx context.Context) {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}
	snap, err := v.fetch(ctx)
	v.complete(snap, err)
}

// fetch turns a panicking fetcher into an ordinary failure.
func (v *View) fetch(ctx context.Context) (snap *Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap, err = nil, fmt.Errorf("fetch analytics: %v", r)
		}
	}()
	return v.fetcher.Fetch(ctx)
}

func (v *View) complete(snap *Snapshot, err error) {
	v.mu.Lock()
	v.inFlight = false
	if !v.mounted {
		v.mu.Unlock()
		return
	}
	if err != nil {
		v.state = v.state.fail(err)
	} else {
		v.state = v.state.succeed(snap)
	}
	st, subs := v.snapshotLocked()
	v.mu.Unlock()

	v.once.Do(func() { close(v.settled) })
	notify(subs, st)
}

func (v *View) snapshotLocked() (State, []func(State)) {
	subs := make([]func(State), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	return v.state.clone(), subs
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st.clone())
	}
}
