// Package resourcestore provides a generic snapshot store that bridges an
// asynchronous fetch function to consumers that need a tri-state view of a
// resource collection: loading, error, data. It is the server-side twin of the
// console's per-resource data hooks: queries supersede each other (a stale
// fetch result is discarded), errors keep the last good data, and mutations
// against the same record are serialized by a per-key in-flight guard.
package resourcestore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrMutationInFlight is returned when a mutation is attempted on a key
	// that already has a pending mutation.
	ErrMutationInFlight = errors.New("resourcestore: mutation already in flight for key")

	// ErrStoreClosed is returned for operations on a closed store.
	ErrStoreClosed = errors.New("resourcestore: store is closed")
)

// Query addresses one fetch: a scope key (country code, owning-entity id) plus
// an opaque filter token. Two queries are the same fetch iff both fields match.
type Query struct {
	Scope  string
	Filter string
}

// Snapshot is the tri-state result handed to consumers. Data holds the last
// successfully fetched collection even while a newer fetch is loading or after
// a fetch has failed.
type Snapshot[T any] struct {
	Data    []T
	Err     error
	Loading bool
}

// FetchFunc loads the collection for a query. The context is cancelled when a
// newer query supersedes this fetch or the store is closed.
type FetchFunc[T any] func(ctx context.Context, q Query) ([]T, error)

// Subscriber receives every snapshot transition, including the loading edge.
type Subscriber[T any] func(Snapshot[T])

// Guard serializes mutations per record key: while one mutation for a key is
// in flight, a second one is rejected with ErrMutationInFlight rather than
// queued. Services wrap their read-modify-write mutators in Do so concurrent
// requests against the same record cannot interleave and lose updates.
type Guard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{inflight: make(map[string]struct{})}
}

// Do runs fn under the in-flight guard for key.
func (g *Guard) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	g.mu.Lock()
	if _, busy := g.inflight[key]; busy {
		g.mu.Unlock()
		return ErrMutationInFlight
	}
	g.inflight[key] = struct{}{}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.inflight, key)
		g.mu.Unlock()
	}()

	return fn(ctx)
}

// Store owns the snapshot for one resource collection.
type Store[T any] struct {
	fetch  FetchFunc[T]
	logger *slog.Logger
	guard  *Guard

	mu      sync.Mutex
	seq     uint64
	query   Query
	snap    Snapshot[T]
	cancel  context.CancelFunc
	closed  bool
	subs    []Subscriber[T]
	changed chan struct{}
}

func New[T any](fetch FetchFunc[T], logger *slog.Logger) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[T]{
		fetch:   fetch,
		logger:  logger,
		guard:   NewGuard(),
		snap:    Snapshot[T]{Data: []T{}},
		changed: make(chan struct{}),
	}
}

// Snapshot returns the current tri-state view.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Query returns the most recently issued query.
func (s *Store[T]) Query() Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Subscribe registers fn for snapshot transitions and immediately delivers
// the current snapshot.
func (s *Store[T]) Subscribe(fn Subscriber[T]) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	snap := s.snap
	s.mu.Unlock()
	fn(snap)
}

// SetQuery issues a fetch for q, superseding any fetch still in flight. The
// superseded fetch's context is cancelled and its result, should it still
// arrive, is discarded: only the latest issued request may write the snapshot.
// Data from the previous snapshot is kept visible while the new fetch loads.
func (s *Store[T]) SetQuery(ctx context.Context, q Query) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	id := s.seq
	s.query = q

	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.snap = Snapshot[T]{Data: s.snap.Data, Err: nil, Loading: true}
	subs, snap := s.wakeLocked()
	s.mu.Unlock()

	deliver(subs, snap)
	go s.run(fetchCtx, id, q)
	return nil
}

// Refresh re-issues the current query.
func (s *Store[T]) Refresh(ctx context.Context) error {
	return s.SetQuery(ctx, s.Query())
}

// Load issues q and blocks until the snapshot settles: either this fetch
// resolved, or a newer query superseded it and resolved instead. The settled
// snapshot and its error are returned.
func (s *Store[T]) Load(ctx context.Context, q Query) (Snapshot[T], error) {
	if err := s.SetQuery(ctx, q); err != nil {
		return Snapshot[T]{}, err
	}
	for {
		s.mu.Lock()
		snap := s.snap
		ch := s.changed
		s.mu.Unlock()

		if !snap.Loading {
			return snap, snap.Err
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

func (s *Store[T]) run(ctx context.Context, id uint64, q Query) {
	data, err := s.fetch(ctx, q)

	s.mu.Lock()
	if s.closed || id != s.seq {
		// A newer request was issued (or the store is gone) while this fetch
		// was in flight. Its result must not overwrite the newer state.
		s.logger.Debug("discarding superseded fetch result",
			"scope", q.Scope, "request_id", id, "latest_id", s.seq)
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.snap = Snapshot[T]{Data: s.snap.Data, Err: err, Loading: false}
	} else {
		if data == nil {
			data = []T{}
		}
		s.snap = Snapshot[T]{Data: data, Err: nil, Loading: false}
	}
	subs, snap := s.wakeLocked()
	s.mu.Unlock()

	deliver(subs, snap)
}

// Mutate runs fn under the store's per-key in-flight guard: while one mutation
// for key is pending, a second one is rejected with ErrMutationInFlight. The
// guard serializes read-modify-write cycles against the same record id.
func (s *Store[T]) Mutate(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	s.mu.Unlock()

	return s.guard.Do(ctx, key, fn)
}

// Close cancels any in-flight fetch and drops interest in its result. No
// snapshot transition happens after Close returns.
func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.subs = nil
	// wake any Load waiter so it does not hang on a fetch that will never land
	s.snap.Loading = false
	close(s.changed)
	s.changed = make(chan struct{})
}

// wakeLocked closes the change channel to wake Load waiters and returns the
// subscribers to notify. Delivery must happen after s.mu is released so a
// subscriber may call back into the store without deadlocking.
func (s *Store[T]) wakeLocked() ([]Subscriber[T], Snapshot[T]) {
	close(s.changed)
	s.changed = make(chan struct{})
	subs := make([]Subscriber[T], len(s.subs))
	copy(subs, s.subs)
	return subs, s.snap
}

func deliver[T any](subs []Subscriber[T], snap Snapshot[T]) {
	for _, fn := range subs {
		fn(snap)
	}
}
