package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/mediashare/backend/internal/domain/session"
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/api"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
)

// TokenStore persists the session between runs.
type TokenStore interface {
	Load() (*model.Session, error)
	Save(*model.Session) error
	Clear() error
}

// APICaller talks to the media sharing API. It keeps the current session and
// emits the auth lifecycle events to its listeners.
type APICaller struct {
	generator api.Generator
	tokens    TokenStore

	mu      sync.RWMutex
	session *model.Session

	listeners *xsync.MapOf[string, session.AuthListener]
}

func NewAPICaller(generator api.Generator, tokens TokenStore) *APICaller {
	return &APICaller{
		generator: generator,
		tokens:    tokens,
		listeners: xsync.NewMapOf[session.AuthListener](),
	}
}

type envelope struct {
	Code  errorx.Code     `json:"code"`
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

// decode turns the response envelope into data or into the errorx error it
// carries.
func decode(resp *api.Response, data any) error {
	if resp.Code != http.StatusOK {
		return errorx.New(errorx.BadResponse, "Unexpected status code %d", resp.Code)
	}

	var env envelope
	if err := json.Unmarshal(resp.RawBody, &env); err != nil {
		return errorx.New(errorx.BadResponse, "Invalid response: %v", err)
	}

	if env.Code != 0 {
		return errorx.New(env.Code, "%s", env.Error)
	}

	if data == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}

	if err := json.Unmarshal(env.Data, data); err != nil {
		return errorx.New(errorx.BadResponse, "Invalid response data: %v", err)
	}

	return nil
}

func (c *APICaller) post(ctx context.Context, path string, body, data any, opts ...api.Opt) error {
	resp, err := c.generator.New(path).Body(api.Marshal(body)).POST(ctx, opts...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		xcontext.Logger(ctx).Warnf("Cannot call %s: %v", path, err)
		return errorx.New(errorx.Unavailable, "Cannot reach the server")
	}

	return decode(resp, data)
}

func (c *APICaller) get(ctx context.Context, path string, query url.Values, data any, opts ...api.Opt) error {
	resp, err := c.generator.New(path).Query(query).GET(ctx, opts...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		xcontext.Logger(ctx).Warnf("Cannot call %s: %v", path, err)
		return errorx.New(errorx.Unavailable, "Cannot reach the server")
	}

	return decode(resp, data)
}

// bearer returns the access token option, or an Unauthenticated error if
// there is no session.
func (c *APICaller) bearer() (api.Opt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return nil, errorx.New(errorx.Unauthenticated, "No active session")
	}

	return api.Bearer(c.session.AccessToken), nil
}

func (c *APICaller) currentSession() *model.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return nil
	}

	s := *c.session
	return &s
}

func (c *APICaller) setSession(ctx context.Context, s *model.Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	if c.tokens == nil {
		return
	}

	var err error
	if s == nil {
		err = c.tokens.Clear()
	} else {
		err = c.tokens.Save(s)
	}

	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot persist the session: %v", err)
	}
}

func (c *APICaller) emit(event session.AuthEvent, s *model.Session) {
	c.listeners.Range(func(_ string, listener session.AuthListener) bool {
		listener(event, s)
		return true
	})
}

func (c *APICaller) OnAuthStateChange(listener session.AuthListener) func() {
	id := uuid.NewString()
	c.listeners.Store(id, listener)
	return func() { c.listeners.Delete(id) }
}

// GetSession returns the current session, restoring the persisted one first.
// A persisted session is checked with the server and refreshed if its access
// token expired.
func (c *APICaller) GetSession(ctx context.Context) (*model.Session, error) {
	if s := c.currentSession(); s != nil {
		return s, nil
	}

	if c.tokens == nil {
		return nil, nil
	}

	cached, err := c.tokens.Load()
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot load the persisted session: %v", err)
		return nil, nil
	}

	if cached == nil {
		return nil, nil
	}

	c.mu.Lock()
	c.session = cached
	c.mu.Unlock()

	var resp model.GetSessionResponse
	err = c.get(ctx, "/getSession", nil, &resp, api.Bearer(cached.AccessToken))
	switch {
	case err == nil:
		c.mu.Lock()
		if c.session != nil && c.session.AccessToken == cached.AccessToken {
			c.session.User = resp.User
		}
		c.mu.Unlock()

		return c.currentSession(), nil

	case errorx.Is(err, errorx.TokenExpired):
		return c.Refresh(ctx)

	case errorx.Is(err, errorx.Unauthenticated):
		c.setSession(ctx, nil)
		return nil, nil
	}

	return nil, err
}

func (c *APICaller) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	var resp model.SignInResponse
	err := c.post(ctx, "/signIn", model.SignInRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	c.setSession(ctx, &resp.Session)
	c.emit(session.SignedIn, c.currentSession())
	return c.currentSession(), nil
}

func (c *APICaller) SignUp(ctx context.Context, req model.SignUpRequest) (*model.Session, error) {
	var resp model.SignUpResponse
	if err := c.post(ctx, "/signUp", req, &resp); err != nil {
		return nil, err
	}

	c.setSession(ctx, &resp.Session)
	c.emit(session.SignedIn, c.currentSession())
	return c.currentSession(), nil
}

// SignOut always ends the local session. The server error is returned unless
// the session was already invalid there.
func (c *APICaller) SignOut(ctx context.Context) error {
	s := c.currentSession()
	if s == nil {
		return nil
	}

	err := c.post(ctx, "/signOut", model.SignOutRequest{RefreshToken: s.RefreshToken}, nil,
		api.Bearer(s.AccessToken))

	c.setSession(ctx, nil)
	c.emit(session.SignedOut, nil)

	if errorx.Is(err, errorx.Unauthenticated) || errorx.Is(err, errorx.TokenExpired) {
		return nil
	}

	return err
}

// Refresh exchanges the refresh token for a new session. A rejected refresh
// ends the session.
func (c *APICaller) Refresh(ctx context.Context) (*model.Session, error) {
	s := c.currentSession()
	if s == nil {
		return nil, errorx.New(errorx.Unauthenticated, "No active session")
	}

	var resp model.RefreshTokenResponse
	err := c.post(ctx, "/refresh", model.RefreshTokenRequest{RefreshToken: s.RefreshToken}, &resp)
	if err != nil {
		if errorx.Is(err, errorx.Unavailable) {
			return nil, err
		}

		xcontext.Logger(ctx).Warnf("Cannot refresh the session: %v", err)
		c.setSession(ctx, nil)
		c.emit(session.TokenRefreshFailed, nil)
		return nil, nil
	}

	c.setSession(ctx, &resp.Session)
	c.emit(session.TokenRefreshed, c.currentSession())
	return c.currentSession(), nil
}

func (c *APICaller) UpdateUser(ctx context.Context, req model.UpdateProfileRequest) error {
	auth, err := c.bearer()
	if err != nil {
		return err
	}

	if err := c.post(ctx, "/updateProfile", req, nil, auth); err != nil {
		return err
	}

	c.emit(session.UserUpdated, c.currentSession())
	return nil
}

func (c *APICaller) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	auth, err := c.bearer()
	if err != nil {
		return nil, err
	}

	var resp model.GetProfileResponse
	if err := c.get(ctx, "/getProfile", url.Values{"id": {id}}, &resp, auth); err != nil {
		return nil, err
	}

	profile := model.Profile(resp)
	return &profile, nil
}

// viewerAuth returns the access token option for viewerID, which must be the
// signed in user.
func (c *APICaller) viewerAuth(viewerID string) (api.Opt, error) {
	s := c.currentSession()
	if s == nil {
		return nil, errorx.New(errorx.Unauthenticated, "No active session")
	}

	if viewerID != s.User.ID {
		return nil, errorx.New(errorx.PermissionDenied, "The viewer is not the signed in user")
	}

	return api.Bearer(s.AccessToken), nil
}

func (c *APICaller) CountLikes(ctx context.Context, mediaID string) (int64, error) {
	auth, err := c.bearer()
	if err != nil {
		return 0, err
	}

	var resp model.CountLikesResponse
	if err := c.get(ctx, "/countLikes", url.Values{"media_id": {mediaID}}, &resp, auth); err != nil {
		return 0, err
	}

	return resp.Count, nil
}

func (c *APICaller) HasLiked(ctx context.Context, viewerID, mediaID string) (bool, error) {
	auth, err := c.viewerAuth(viewerID)
	if err != nil {
		return false, err
	}

	var resp model.HasLikedResponse
	if err := c.get(ctx, "/hasLiked", url.Values{"media_id": {mediaID}}, &resp, auth); err != nil {
		return false, err
	}

	return resp.Liked, nil
}

func (c *APICaller) IsFollowing(ctx context.Context, viewerID, creatorName string) (bool, error) {
	auth, err := c.viewerAuth(viewerID)
	if err != nil {
		return false, err
	}

	var resp model.IsFollowingResponse
	err = c.get(ctx, "/isFollowing", url.Values{"creator_name": {creatorName}}, &resp, auth)
	if err != nil {
		return false, err
	}

	return resp.Following, nil
}

func (c *APICaller) Like(ctx context.Context, viewerID, mediaID string) error {
	auth, err := c.viewerAuth(viewerID)
	if err != nil {
		return err
	}

	return c.post(ctx, "/like", model.LikeRequest{MediaID: mediaID}, nil, auth)
}

func (c *APICaller) Unlike(ctx context.Context, viewerID, mediaID string) error {
	auth, err := c.viewerAuth(viewerID)
	if err != nil {
		return err
	}

	return c.post(ctx, "/unlike", model.UnlikeRequest{MediaID: mediaID}, nil, auth)
}

func (c *APICaller) Follow(ctx context.Context, viewerID, creatorName string) error {
	auth, err := c.viewerAuth(viewerID)
	if err != nil {
		return err
	}

	return c.post(ctx, "/follow", model.FollowRequest{CreatorName: creatorName}, nil, auth)
}

func (c *APICaller) Unfollow(ctx context.Context, viewerID, creatorName string) error {
	auth, err := c.viewerAuth(viewerID)
	if err != nil {
		return err
	}

	return c.post(ctx, "/unfollow", model.UnfollowRequest{CreatorName: creatorName}, nil, auth)
}

func (c *APICaller) GetMediaList(ctx context.Context, mediaType, category string) ([]model.MediaItem, error) {
	query := url.Values{}
	if mediaType != "" {
		query.Set("type", mediaType)
	}
	if category != "" {
		query.Set("category", category)
	}

	var resp model.GetMediaListResponse
	if err := c.get(ctx, "/getMediaList", query, &resp); err != nil {
		return nil, err
	}

	return resp.Items, nil
}

func (c *APICaller) GetMedia(ctx context.Context, id string) (*model.MediaItem, error) {
	var resp model.GetMediaResponse
	if err := c.get(ctx, "/getMedia", url.Values{"id": {id}}, &resp); err != nil {
		return nil, err
	}

	item := resp.Item.WithDefaults()
	return &item, nil
}
