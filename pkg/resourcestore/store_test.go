package resourcestore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestFetchPopulatesSnapshot(t *testing.T) {
	store := New(func(ctx context.Context, q Query) ([]string, error) {
		return []string{q.Scope + "-1", q.Scope + "-2"}, nil
	}, nil)
	defer store.Close()

	require.NoError(t, store.SetQuery(context.Background(), Query{Scope: "CM"}))

	waitFor(t, func() bool { return !store.Snapshot().Loading })
	snap := store.Snapshot()
	assert.NoError(t, snap.Err)
	assert.Equal(t, []string{"CM-1", "CM-2"}, snap.Data)
}

func TestLoadBlocksUntilSettled(t *testing.T) {
	store := New(func(ctx context.Context, q Query) ([]string, error) {
		time.Sleep(20 * time.Millisecond)
		return []string{q.Scope}, nil
	}, nil)
	defer store.Close()

	snap, err := store.Load(context.Background(), Query{Scope: "CM", Filter: "status=ACTIVE"})
	require.NoError(t, err)
	assert.False(t, snap.Loading)
	assert.Equal(t, []string{"CM"}, snap.Data)
	assert.Equal(t, Query{Scope: "CM", Filter: "status=ACTIVE"}, store.Query())
}

func TestStaleFetchResultIsDiscarded(t *testing.T) {
	releaseA := make(chan struct{})
	store := New(func(ctx context.Context, q Query) ([]string, error) {
		if q.Scope == "A" {
			<-releaseA
			return []string{"from-A"}, nil
		}
		return []string{"from-B"}, nil
	}, nil)
	defer store.Close()

	require.NoError(t, store.SetQuery(context.Background(), Query{Scope: "A"}))
	require.NoError(t, store.SetQuery(context.Background(), Query{Scope: "B"}))

	waitFor(t, func() bool {
		snap := store.Snapshot()
		return !snap.Loading && len(snap.Data) == 1
	})

	// A resolves after B already won; its result must not overwrite B's.
	close(releaseA)
	time.Sleep(50 * time.Millisecond)

	snap := store.Snapshot()
	assert.Equal(t, []string{"from-B"}, snap.Data)
}

func TestFetchErrorKeepsLastGoodData(t *testing.T) {
	var fail bool
	var mu sync.Mutex
	fetchErr := errors.New("upstream unavailable")
	store := New(func(ctx context.Context, q Query) ([]string, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, fetchErr
		}
		return []string{"ok"}, nil
	}, nil)
	defer store.Close()

	require.NoError(t, store.SetQuery(context.Background(), Query{Scope: "CM"}))
	waitFor(t, func() bool { return !store.Snapshot().Loading })

	mu.Lock()
	fail = true
	mu.Unlock()

	require.NoError(t, store.Refresh(context.Background()))
	waitFor(t, func() bool { return !store.Snapshot().Loading })

	snap := store.Snapshot()
	assert.ErrorIs(t, snap.Err, fetchErr)
	assert.Equal(t, []string{"ok"}, snap.Data, "data stays at last good value on error")
}

func TestMutateGuardsPerKey(t *testing.T) {
	store := New(func(ctx context.Context, q Query) ([]string, error) {
		return nil, nil
	}, nil)
	defer store.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- store.Mutate(context.Background(), "gw-1", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	// Second mutation on the same key while the first is pending is rejected.
	err := store.Mutate(context.Background(), "gw-1", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrMutationInFlight)

	// A different key is not blocked.
	err = store.Mutate(context.Background(), "gw-2", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)

	close(release)
	require.NoError(t, <-done)

	// Guard releases once the first mutation settles.
	err = store.Mutate(context.Background(), "gw-1", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestGuardRejectsConcurrentMutationOnSameKey(t *testing.T) {
	guard := NewGuard()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- guard.Do(context.Background(), "reg-1", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	err := guard.Do(context.Background(), "reg-1", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrMutationInFlight)

	err = guard.Do(context.Background(), "reg-2", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)

	close(release)
	require.NoError(t, <-done)

	err = guard.Do(context.Background(), "reg-1", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestSubscriberMayCallBackIntoStore(t *testing.T) {
	store := New(func(ctx context.Context, q Query) ([]string, error) {
		return []string{q.Scope}, nil
	}, nil)
	defer store.Close()

	var fromCallback []Snapshot[string]
	var mu sync.Mutex
	store.Subscribe(func(Snapshot[string]) {
		// Reading the store from inside a notification must not deadlock.
		mu.Lock()
		fromCallback = append(fromCallback, store.Snapshot())
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		_, _ = store.Load(context.Background(), Query{Scope: "CM"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("load did not settle; subscriber callback deadlocked")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, fromCallback)
	last := fromCallback[len(fromCallback)-1]
	assert.False(t, last.Loading)
	assert.Equal(t, []string{"CM"}, last.Data)
}

func TestCloseDropsInterest(t *testing.T) {
	release := make(chan struct{})
	store := New(func(ctx context.Context, q Query) ([]string, error) {
		<-release
		return []string{"late"}, nil
	}, nil)

	var notified int
	var mu sync.Mutex
	store.Subscribe(func(Snapshot[string]) {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	require.NoError(t, store.SetQuery(context.Background(), Query{Scope: "CM"}))
	mu.Lock()
	before := notified
	mu.Unlock()

	store.Close()
	close(release)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, before, notified, "no snapshot transition after Close")
	assert.ErrorIs(t, store.SetQuery(context.Background(), Query{}), ErrStoreClosed)
	assert.ErrorIs(t, store.Mutate(context.Background(), "k", func(context.Context) error { return nil }), ErrStoreClosed)
}
