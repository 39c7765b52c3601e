package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/xcontext"
)

var errProfileNotProvisioned = errors.New("profile is not provisioned yet")

type event struct {
	kind    AuthEvent
	session *model.Session

	// done is closed once every event queued before has been handled.
	done chan struct{}
}

// Synchronizer keeps the Store in line with the auth provider. Events are
// handled one by one in arrival order, so the final state is the state after
// the last event. Store subscribers are called in order from a separate
// goroutine, so they may call back into the Synchronizer.
type Synchronizer struct {
	provider Provider
	loader   *ProfileLoader
	cache    TokenCache
	store    *Store

	ctx         context.Context
	provisioned atomic.Bool
	disposed    atomic.Bool
	closeOnce   sync.Once

	lifecycle   sync.Mutex
	cancel      context.CancelFunc
	unsubscribe func()
	started     bool

	mu     sync.Mutex
	queue  []event
	notify chan struct{}
	exited chan struct{}

	outboxMu sync.Mutex
	outbox   []Snapshot
	deliver  chan struct{}
}

// NewSynchronizer returns a Synchronizer writing into store. The cache may be
// nil.
func NewSynchronizer(provider Provider, profiles ProfileStore, cache TokenCache, store *Store) *Synchronizer {
	return &Synchronizer{
		provider: provider,
		loader:   NewProfileLoader(profiles),
		cache:    cache,
		store:    store,
		notify:   make(chan struct{}, 1),
		exited:   make(chan struct{}),
		deliver:  make(chan struct{}, 1),
	}
}

func (s *Synchronizer) Store() *Store {
	return s.store
}

// Start restores the current session before listening to auth events.
// Failing to restore the session ends in the Unauthenticated state.
func (s *Synchronizer) Start(ctx context.Context) {
	s.lifecycle.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.lifecycle.Unlock()

	go s.dispatch(s.ctx)

	session, err := s.provider.GetSession(s.ctx)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot restore session: %v", err)
		s.apply(Unauthenticated, nil, nil)
	} else if session == nil {
		s.apply(Unauthenticated, nil, nil)
	} else {
		s.load(s.ctx, session, 1)
	}

	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	// Closed while the session was restored.
	if s.disposed.Load() {
		close(s.exited)
		return
	}

	s.unsubscribe = s.provider.OnAuthStateChange(s.enqueue)
	s.started = true
	go s.run()
}

// Close detaches from the provider. Results arriving after Close are
// discarded and no subscriber is called anymore.
func (s *Synchronizer) Close() {
	s.closeOnce.Do(func() {
		s.lifecycle.Lock()
		s.store.mu.Lock()
		s.disposed.Store(true)
		s.store.mu.Unlock()
		unsubscribe, cancel, started := s.unsubscribe, s.cancel, s.started
		s.lifecycle.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}

		if cancel != nil {
			cancel()
		}

		if started {
			<-s.exited
		}
	})
}

// Wait blocks until every event received before the call is applied to the
// Store. Subscribers may be notified later.
func (s *Synchronizer) Wait(ctx context.Context) error {
	if s.disposed.Load() {
		return errorx.New(errorx.Unavailable, "Session synchronizer is closed")
	}

	done := make(chan struct{})
	s.push(event{done: done})

	select {
	case <-done:
		return nil
	case <-s.exited:
		return errorx.New(errorx.Unavailable, "Session synchronizer is closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Synchronizer) SignIn(ctx context.Context, email, password string) error {
	if _, err := s.provider.SignIn(ctx, email, password); err != nil {
		return err
	}

	return s.Wait(ctx)
}

// SignUp registers a new account. The profile is provisioned by the backend,
// the sign-in that follows polls for it a bounded number of times.
func (s *Synchronizer) SignUp(ctx context.Context, req model.SignUpRequest) error {
	s.provisioned.Store(true)
	if _, err := s.provider.SignUp(ctx, req); err != nil {
		s.provisioned.Store(false)
		return err
	}

	return s.Wait(ctx)
}

func (s *Synchronizer) SignOut(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		return err
	}

	return s.Wait(ctx)
}

// UpdateUser changes the profile of the signed in user. The full profile is
// fetched again afterwards.
func (s *Synchronizer) UpdateUser(ctx context.Context, req model.UpdateProfileRequest) error {
	if s.store.Snapshot().Session == nil {
		return errorx.New(errorx.Unauthenticated, "No active session")
	}

	if err := s.provider.UpdateUser(ctx, req); err != nil {
		return err
	}

	return s.Wait(ctx)
}

// SwitchRole flips the user between creator and member. Role and account type
// are always changed together.
func (s *Synchronizer) SwitchRole(ctx context.Context) error {
	snapshot := s.store.Snapshot()
	if snapshot.Session == nil || snapshot.User == nil {
		return errorx.New(errorx.Unauthenticated, "No active session")
	}

	next := string(entity.AccountCreator)
	if snapshot.User.Role == string(entity.AccountCreator) {
		next = string(entity.AccountMember)
	}

	return s.UpdateUser(ctx, model.UpdateProfileRequest{Role: &next, AccountType: &next})
}

func (s *Synchronizer) enqueue(kind AuthEvent, session *model.Session) {
	s.push(event{kind: kind, session: session})
}

func (s *Synchronizer) push(e event) {
	s.mu.Lock()
	s.queue = append(s.queue, e)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Synchronizer) pop() (event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return event{}, false
	}

	e := s.queue[0]
	s.queue = s.queue[1:]
	return e, true
}

func (s *Synchronizer) run() {
	defer close(s.exited)

	for {
		for {
			e, ok := s.pop()
			if !ok {
				break
			}

			if e.done != nil {
				close(e.done)
				continue
			}

			s.handle(e)
		}

		select {
		case <-s.notify:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Synchronizer) handle(e event) {
	if s.disposed.Load() {
		return
	}

	switch e.kind {
	case SignedIn, TokenRefreshed, UserUpdated:
		if e.session == nil {
			s.apply(Unauthenticated, nil, nil)
			return
		}

		attempts := 1
		if e.kind == SignedIn && s.provisioned.Swap(false) {
			attempts = xcontext.Configs(s.ctx).Client.ProvisionAttempts
		}

		s.load(s.ctx, e.session, attempts)

	case SignedOut, TokenRefreshFailed, UserDeleted:
		if e.kind != SignedOut {
			xcontext.Logger(s.ctx).Warnf("Session ended by %s", e.kind)
		}

		s.apply(Unauthenticated, nil, nil)
		s.clearCache()

	default:
		xcontext.Logger(s.ctx).Warnf("Unknown auth event %s", e.kind)
	}
}

// load moves to Loading, then to Authenticated with the loaded profile. A
// missing profile ends in Unauthenticated.
func (s *Synchronizer) load(ctx context.Context, session *model.Session, attempts int) {
	var previous *model.User
	if snapshot := s.store.Snapshot(); snapshot.User != nil && snapshot.User.ID == session.User.ID {
		previous = snapshot.User
	}
	s.apply(Loading, previous, session)

	user := s.loadWithRetry(ctx, session, attempts)
	if user == nil {
		xcontext.Logger(ctx).Errorf("Cannot load the profile of %s, signing out locally", session.User.ID)
		s.apply(Unauthenticated, nil, nil)
		return
	}

	s.apply(Authenticated, user, session)
}

func (s *Synchronizer) loadWithRetry(ctx context.Context, session *model.Session, attempts int) *model.User {
	if attempts <= 1 {
		return s.loader.Load(ctx, session.User.ID, session.User.Email)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = xcontext.Configs(ctx).Client.ProvisionBaseDelay
	if b.InitialInterval <= 0 {
		b.InitialInterval = 100 * time.Millisecond
	}
	b.MaxElapsedTime = 0

	var user *model.User
	_ = backoff.Retry(func() error {
		if s.disposed.Load() {
			return backoff.Permanent(context.Canceled)
		}

		user = s.loader.Load(ctx, session.User.ID, session.User.Email)
		if user == nil {
			return errProfileNotProvisioned
		}

		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx))

	return user
}

func (s *Synchronizer) apply(state State, user *model.User, session *model.Session) {
	snapshot, ok := s.store.update(func() bool { return !s.disposed.Load() }, state, user, session)
	if !ok {
		return
	}

	s.outboxMu.Lock()
	s.outbox = append(s.outbox, snapshot)
	s.outboxMu.Unlock()

	select {
	case s.deliver <- struct{}{}:
	default:
	}
}

// dispatch calls the Store subscribers with every applied snapshot, in order.
func (s *Synchronizer) dispatch(ctx context.Context) {
	for {
		for {
			s.outboxMu.Lock()
			if len(s.outbox) == 0 {
				s.outboxMu.Unlock()
				break
			}
			snapshot := s.outbox[0]
			s.outbox = s.outbox[1:]
			s.outboxMu.Unlock()

			if s.disposed.Load() {
				continue
			}

			s.store.publish(snapshot)
		}

		select {
		case <-s.deliver:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Synchronizer) clearCache() {
	if s.cache == nil {
		return
	}

	if err := s.cache.Clear(); err != nil {
		xcontext.Logger(s.ctx).Errorf("Cannot clear the token cache: %v", err)
	}
}
