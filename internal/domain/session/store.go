package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/mediashare/backend/internal/model"
	"github.com/puzpuzpuz/xsync"
)

type State int

const (
	Unauthenticated State = iota
	Loading
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	}

	return "unknown"
}

// Snapshot is an immutable view of the Store. Version increases with every
// update.
type Snapshot struct {
	Version uint64
	State   State
	User    *model.User
	Session *model.Session
}

func (s Snapshot) IsLoading() bool {
	return s.State == Loading
}

// UserID returns the id of the signed in user, or an empty string.
func (s Snapshot) UserID() string {
	if s.State != Authenticated || s.User == nil {
		return ""
	}

	return s.User.ID
}

// Store holds the session state shared by the application. The last update
// wins and every subscriber is notified with the new snapshot.
type Store struct {
	mu       sync.Mutex
	snapshot Snapshot

	subscribers *xsync.MapOf[string, func(Snapshot)]
}

// NewStore returns a Store in the Loading state, waiting for the session to be
// restored.
func NewStore() *Store {
	return &Store{
		snapshot:    Snapshot{State: Loading},
		subscribers: xsync.NewMapOf[func(Snapshot)](),
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot
}

func (s *Store) set(state State, user *model.User, session *model.Session) Snapshot {
	snapshot, _ := s.update(nil, state, user, session)
	s.publish(snapshot)
	return snapshot
}

// update replaces the snapshot without notifying. The optional allow is
// checked under the store lock, nothing is changed when it returns false.
func (s *Store) update(
	allow func() bool, state State, user *model.User, session *model.Session,
) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if allow != nil && !allow() {
		return s.snapshot, false
	}

	s.snapshot = Snapshot{
		Version: s.snapshot.Version + 1,
		State:   state,
		User:    user,
		Session: session,
	}

	return s.snapshot, true
}

func (s *Store) publish(snapshot Snapshot) {
	s.subscribers.Range(func(_ string, fn func(Snapshot)) bool {
		fn(snapshot)
		return true
	})
}

// Subscription is the disposal token of a subscriber.
type Subscription struct {
	id    string
	store *Store
	once  sync.Once
}

// Unsubscribe stops the notifications. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.store.subscribers.Delete(s.id)
	})
}

// Subscribe registers fn to be called with every new snapshot.
func (s *Store) Subscribe(fn func(Snapshot)) *Subscription {
	id := uuid.NewString()
	s.subscribers.Store(id, fn)
	return &Subscription{id: id, store: s}
}
