package session

import (
	"context"
	"sync"

	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/errorx"
)

type mockProvider struct {
	mu        sync.Mutex
	session   *model.Session
	getErr    error
	listeners map[int]AuthListener
	nextID    int
	profiles  *mockProfiles
}

func newMockProvider(profiles *mockProfiles) *mockProvider {
	return &mockProvider{listeners: map[int]AuthListener{}, profiles: profiles}
}

func newSession(id, email string) *model.Session {
	return &model.Session{
		AccessToken: "access-" + id,
		User:        model.AuthUser{ID: id, Email: email},
	}
}

func (p *mockProvider) emit(kind AuthEvent, session *model.Session) {
	p.mu.Lock()
	listeners := make([]AuthListener, 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.Unlock()

	for _, l := range listeners {
		l(kind, session)
	}
}

func (p *mockProvider) listenerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

func (p *mockProvider) GetSession(ctx context.Context) (*model.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session, p.getErr
}

func (p *mockProvider) OnAuthStateChange(listener AuthListener) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.listeners[id] = listener
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *mockProvider) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	if password != "password" {
		return nil, errorx.New(errorx.BadRequest, "Invalid credentials")
	}

	session := newSession(email, email)
	p.mu.Lock()
	p.session = session
	p.mu.Unlock()

	p.emit(SignedIn, session)
	return session, nil
}

func (p *mockProvider) SignUp(ctx context.Context, req model.SignUpRequest) (*model.Session, error) {
	session := newSession(req.Email, req.Email)
	p.mu.Lock()
	p.session = session
	p.mu.Unlock()

	p.emit(SignedIn, session)
	return session, nil
}

func (p *mockProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.session = nil
	p.mu.Unlock()

	p.emit(SignedOut, nil)
	return nil
}

func (p *mockProvider) UpdateUser(ctx context.Context, req model.UpdateProfileRequest) error {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	p.profiles.update(session.User.ID, req)
	p.emit(UserUpdated, session)
	return nil
}

type mockProfiles struct {
	mu       sync.Mutex
	profiles map[string]model.Profile

	// missing is the number of next reads answering NotFound.
	missing int
	reads   int
	err     error
}

func newMockProfiles(profiles ...model.Profile) *mockProfiles {
	m := &mockProfiles{profiles: map[string]model.Profile{}}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *mockProfiles) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads++
	if m.err != nil {
		return nil, m.err
	}

	if m.missing > 0 {
		m.missing--
		return nil, errorx.New(errorx.NotFound, "Not found profile")
	}

	p, ok := m.profiles[id]
	if !ok {
		return nil, errorx.New(errorx.NotFound, "Not found profile")
	}

	return &p, nil
}

func (m *mockProfiles) update(id string, req model.UpdateProfileRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.profiles[id]
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Role != nil {
		p.Role = *req.Role
	}
	if req.AccountType != nil {
		p.AccountType = *req.AccountType
	}
	m.profiles[id] = p
}

func (m *mockProfiles) readCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

type mockCache struct {
	mu      sync.Mutex
	cleared int
}

func (c *mockCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared++
	return nil
}

func (c *mockCache) clearedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleared
}
