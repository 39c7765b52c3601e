package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mediashare/backend/internal/domain/session"
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/api"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/router"
	"github.com/stretchr/testify/require"
)

type handleFunc func(r *http.Request) (any, error)

// fakeServer answers every path with the envelope of its handler.
type fakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]handleFunc
	requests []*http.Request
}

func newFakeServer(t *testing.T) *fakeServer {
	s := &fakeServer{handlers: map[string]handleFunc{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r)
		handler, ok := s.handlers[r.URL.Path]
		s.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		data, err := handler(r)
		if err != nil {
			require.NoError(t, router.WriteJSON(w, router.NewErrorResponse(err)))
			return
		}

		require.NoError(t, router.WriteJSON(w, router.NewResponse(data)))
	}))
	t.Cleanup(s.Close)

	return s
}

func (s *fakeServer) on(path string, handler handleFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[path] = handler
}

func (s *fakeServer) last() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func testSession(userID, token string) model.Session {
	return model.Session{
		AccessToken:  token,
		RefreshToken: "refresh-" + token,
		ExpiresAt:    time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		User:         model.AuthUser{ID: userID, Email: userID + "@mediashare.app"},
	}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []session.AuthEvent
}

func (r *eventRecorder) listen(event session.AuthEvent, _ *model.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) get() []session.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.AuthEvent{}, r.events...)
}

func Test_APICaller_SignIn(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer(t)
	sess := testSession("user1", "token1")
	srv.on("/signIn", func(r *http.Request) (any, error) {
		var req model.SignInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "user1@mediashare.app", req.Email)
		require.Equal(t, "password", req.Password)
		return model.SignInResponse{Session: sess}, nil
	})

	cache := NewFileTokenCache(filepath.Join(t.TempDir(), "token.json"))
	caller := NewAPICaller(api.NewGenerator(srv.URL), cache)

	recorder := &eventRecorder{}
	unsubscribe := caller.OnAuthStateChange(recorder.listen)

	got, err := caller.SignIn(ctx, "user1@mediashare.app", "password")
	require.NoError(t, err)
	require.Equal(t, sess, *got)
	require.Equal(t, []session.AuthEvent{session.SignedIn}, recorder.get())

	persisted, err := cache.Load()
	require.NoError(t, err)
	require.Equal(t, sess, *persisted)

	current, err := caller.GetSession(ctx)
	require.NoError(t, err)
	require.Equal(t, sess, *current)

	unsubscribe()
	_, err = caller.SignIn(ctx, "user1@mediashare.app", "password")
	require.NoError(t, err)
	require.Len(t, recorder.get(), 1)
}

func Test_APICaller_DecodeError(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer(t)
	srv.on("/signIn", func(r *http.Request) (any, error) {
		return nil, errorx.New(errorx.TooManyRequests, "Too many failed attempts")
	})

	caller := NewAPICaller(api.NewGenerator(srv.URL), nil)
	_, err := caller.SignIn(ctx, "user1@mediashare.app", "password")
	require.True(t, errorx.Is(err, errorx.TooManyRequests))
	require.Equal(t, "Too many failed attempts", err.Error())

	// Unknown path answers 404.
	_, err = caller.GetMediaList(ctx, "", "")
	require.True(t, errorx.Is(err, errorx.BadResponse))
}

func Test_APICaller_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	caller := NewAPICaller(api.NewGenerator(srv.URL), nil)
	_, err := caller.SignIn(context.Background(), "user1@mediashare.app", "password")
	require.True(t, errorx.Is(err, errorx.Unavailable))
}

func Test_APICaller_GetSession_Restore(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer(t)

	cached := testSession("user1", "old")
	refreshed := testSession("user1", "new")
	srv.on("/getSession", func(r *http.Request) (any, error) {
		require.Equal(t, "Bearer old", r.Header.Get("Authorization"))
		return nil, errorx.New(errorx.TokenExpired, "Token expired")
	})
	srv.on("/refresh", func(r *http.Request) (any, error) {
		var req model.RefreshTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, cached.RefreshToken, req.RefreshToken)
		return model.RefreshTokenResponse{Session: refreshed}, nil
	})

	cache := NewFileTokenCache(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, cache.Save(&cached))

	caller := NewAPICaller(api.NewGenerator(srv.URL), cache)
	recorder := &eventRecorder{}
	caller.OnAuthStateChange(recorder.listen)

	got, err := caller.GetSession(ctx)
	require.NoError(t, err)
	require.Equal(t, refreshed, *got)
	require.Equal(t, []session.AuthEvent{session.TokenRefreshed}, recorder.get())

	persisted, err := cache.Load()
	require.NoError(t, err)
	require.Equal(t, "new", persisted.AccessToken)
}

func Test_APICaller_GetSession_RestoreValid(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer(t)

	cached := testSession("user1", "valid")
	srv.on("/getSession", func(r *http.Request) (any, error) {
		return model.GetSessionResponse{
			User:      model.AuthUser{ID: "user1", Email: "renamed@mediashare.app"},
			ExpiresAt: cached.ExpiresAt,
		}, nil
	})

	cache := NewFileTokenCache(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, cache.Save(&cached))

	caller := NewAPICaller(api.NewGenerator(srv.URL), cache)

	// Readers of the session run while it is restored.
	stop := make(chan struct{})
	var readers sync.WaitGroup
	readers.Add(1)
	go func() {
		defer readers.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = caller.currentSession()
			}
		}
	}()

	got, err := caller.GetSession(ctx)
	close(stop)
	readers.Wait()

	require.NoError(t, err)
	require.Equal(t, "valid", got.AccessToken)
	require.Equal(t, "renamed@mediashare.app", got.User.Email)
	require.Equal(t, "renamed@mediashare.app", caller.currentSession().User.Email)
}

func Test_APICaller_GetSession_Revoked(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer(t)
	srv.on("/getSession", func(r *http.Request) (any, error) {
		return nil, errorx.New(errorx.Unauthenticated, "Token revoked")
	})

	cache := NewFileTokenCache(filepath.Join(t.TempDir(), "token.json"))
	cached := testSession("user1", "old")
	require.NoError(t, cache.Save(&cached))

	caller := NewAPICaller(api.NewGenerator(srv.URL), cache)
	got, err := caller.GetSession(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	persisted, err := cache.Load()
	require.NoError(t, err)
	require.Nil(t, persisted)
}

func Test_APICaller_RefreshFailed(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer(t)
	srv.on("/signIn", func(r *http.Request) (any, error) {
		return model.SignInResponse{Session: testSession("user1", "token1")}, nil
	})
	srv.on("/refresh", func(r *http.Request) (any, error) {
		return nil, errorx.New(errorx.StolenDectected, "Refresh token reused")
	})

	caller := NewAPICaller(api.NewGenerator(srv.URL), nil)
	_, err := caller.SignIn(ctx, "user1@mediashare.app", "password")
	require.NoError(t, err)

	recorder := &eventRecorder{}
	caller.OnAuthStateChange(recorder.listen)

	got, err := caller.Refresh(ctx)
	require.NoError(t, err)
	require.Nil(t, got)
	require.Equal(t, []session.AuthEvent{session.TokenRefreshFailed}, recorder.get())

	got, err = caller.GetSession(ctx)
	require.NoError(t, err)
	require.Nil(t, got)
}

func Test_APICaller_SignOut(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer(t)
	srv.on("/signIn", func(r *http.Request) (any, error) {
		return model.SignInResponse{Session: testSession("user1", "token1")}, nil
	})
	srv.on("/signOut", func(r *http.Request) (any, error) {
		require.Equal(t, "Bearer token1", r.Header.Get("Authorization"))
		return nil, errorx.New(errorx.Internal, "Storage is down")
	})

	cache := NewFileTokenCache(filepath.Join(t.TempDir(), "token.json"))
	caller := NewAPICaller(api.NewGenerator(srv.URL), cache)
	_, err := caller.SignIn(ctx, "user1@mediashare.app", "password")
	require.NoError(t, err)

	recorder := &eventRecorder{}
	caller.OnAuthStateChange(recorder.listen)

	err = caller.SignOut(ctx)
	require.True(t, errorx.Is(err, errorx.Internal))
	require.Equal(t, []session.AuthEvent{session.SignedOut}, recorder.get())

	got, err := caller.GetSession(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	// Signing out without a session is a no-op.
	require.NoError(t, caller.SignOut(ctx))
	require.Len(t, recorder.get(), 1)
}

func Test_APICaller_UpdateUser(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer(t)
	srv.on("/signIn", func(r *http.Request) (any, error) {
		return model.SignInResponse{Session: testSession("user1", "token1")}, nil
	})
	srv.on("/updateProfile", func(r *http.Request) (any, error) {
		var req model.UpdateProfileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		return model.UpdateProfileResponse{ID: "user1", Name: "Alice"}, nil
	})
	srv.on("/getProfile", func(r *http.Request) (any, error) {
		require.Equal(t, "user1", r.URL.Query().Get("id"))
		return model.GetProfileResponse{ID: "user1", Name: "Alice", Tier: "premium"}, nil
	})

	caller := NewAPICaller(api.NewGenerator(srv.URL), nil)

	err := caller.UpdateUser(ctx, model.UpdateProfileRequest{})
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	_, err = caller.SignIn(ctx, "user1@mediashare.app", "password")
	require.NoError(t, err)

	recorder := &eventRecorder{}
	caller.OnAuthStateChange(recorder.listen)
	require.NoError(t, caller.UpdateUser(ctx, model.UpdateProfileRequest{}))
	require.Equal(t, []session.AuthEvent{session.UserUpdated}, recorder.get())

	profile, err := caller.GetProfile(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, "Alice", profile.Name)
	require.Equal(t, "premium", profile.Tier)
}

func Test_APICaller_Media(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer(t)
	srv.on("/signIn", func(r *http.Request) (any, error) {
		return model.SignInResponse{Session: testSession("user2", "token2")}, nil
	})
	srv.on("/getMediaList", func(r *http.Request) (any, error) {
		require.Equal(t, "stream", r.URL.Query().Get("type"))
		require.Empty(t, r.Header.Get("Authorization"))
		return model.GetMediaListResponse{Items: []model.MediaItem{{ID: "media1", CreatorName: "Alice"}}}, nil
	})
	srv.on("/countLikes", func(r *http.Request) (any, error) {
		require.Equal(t, "media1", r.URL.Query().Get("media_id"))
		return model.CountLikesResponse{Count: 7}, nil
	})
	srv.on("/hasLiked", func(r *http.Request) (any, error) {
		require.Equal(t, "Bearer token2", r.Header.Get("Authorization"))
		return model.HasLikedResponse{Liked: true}, nil
	})
	srv.on("/isFollowing", func(r *http.Request) (any, error) {
		require.Equal(t, "Alice", r.URL.Query().Get("creator_name"))
		return model.IsFollowingResponse{Following: false}, nil
	})
	srv.on("/like", func(r *http.Request) (any, error) {
		var req model.LikeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "media1", req.MediaID)
		return model.LikeResponse{}, nil
	})
	srv.on("/follow", func(r *http.Request) (any, error) {
		return nil, errorx.New(errorx.TokenExpired, "Token expired")
	})

	caller := NewAPICaller(api.NewGenerator(srv.URL), nil)

	items, err := caller.GetMediaList(ctx, "stream", "")
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Edge lookups need a session.
	_, err = caller.CountLikes(ctx, "media1")
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	_, err = caller.SignIn(ctx, "user2@mediashare.app", "password")
	require.NoError(t, err)

	count, err := caller.CountLikes(ctx, "media1")
	require.NoError(t, err)
	require.Equal(t, int64(7), count)

	liked, err := caller.HasLiked(ctx, "user2", "media1")
	require.NoError(t, err)
	require.True(t, liked)

	following, err := caller.IsFollowing(ctx, "user2", "Alice")
	require.NoError(t, err)
	require.False(t, following)

	_, err = caller.HasLiked(ctx, "user1", "media1")
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	require.NoError(t, caller.Like(ctx, "user2", "media1"))
	require.Equal(t, "/like", srv.last().URL.Path)

	err = caller.Follow(ctx, "user2", "Alice")
	require.True(t, errorx.Is(err, errorx.TokenExpired))
}
