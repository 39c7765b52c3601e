package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/errorx"
)

var errLookup = errors.New("lookup failed")

type edgeStore struct {
	mu      sync.Mutex
	media   []model.MediaItem
	likes   map[string]map[string]bool
	follows map[string]map[string]bool

	calls      atomic.Int64
	failCount  map[string]bool
	mutateErr  error
	mutateHits int

	// afterMutate runs after a successful edge write, outside the lock.
	afterMutate func()
}

func newEdgeStore(media ...model.MediaItem) *edgeStore {
	return &edgeStore{
		media:     media,
		likes:     map[string]map[string]bool{},
		follows:   map[string]map[string]bool{},
		failCount: map[string]bool{},
	}
}

func newMediaItems(n int, creatorName string) []model.MediaItem {
	items := make([]model.MediaItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, model.MediaItem{
			ID:          fmt.Sprintf("media%d", i),
			Title:       fmt.Sprintf("Media %d", i),
			CreatorName: creatorName,
			Type:        "stream",
			Category:    "music",
		})
	}

	return items
}

func (s *edgeStore) CountLikes(ctx context.Context, mediaID string) (int64, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCount[mediaID] {
		return 0, errLookup
	}

	return int64(len(s.likes[mediaID])), nil
}

func (s *edgeStore) HasLiked(ctx context.Context, viewerID, mediaID string) (bool, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.likes[mediaID][viewerID], nil
}

func (s *edgeStore) IsFollowing(ctx context.Context, viewerID, creatorName string) (bool, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.follows[creatorName][viewerID], nil
}

func (s *edgeStore) setEdge(edges map[string]map[string]bool, key, viewerID string, value bool) error {
	if err := s.writeEdge(edges, key, viewerID, value); err != nil {
		return err
	}

	if s.afterMutate != nil {
		s.afterMutate()
	}

	return nil
}

func (s *edgeStore) writeEdge(edges map[string]map[string]bool, key, viewerID string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mutateHits++
	if s.mutateErr != nil {
		return s.mutateErr
	}

	if edges[key] == nil {
		edges[key] = map[string]bool{}
	}

	if value {
		edges[key][viewerID] = true
	} else {
		delete(edges[key], viewerID)
	}

	return nil
}

func (s *edgeStore) Like(ctx context.Context, viewerID, mediaID string) error {
	return s.setEdge(s.likes, mediaID, viewerID, true)
}

func (s *edgeStore) Unlike(ctx context.Context, viewerID, mediaID string) error {
	return s.setEdge(s.likes, mediaID, viewerID, false)
}

func (s *edgeStore) Follow(ctx context.Context, viewerID, creatorName string) error {
	return s.setEdge(s.follows, creatorName, viewerID, true)
}

func (s *edgeStore) Unfollow(ctx context.Context, viewerID, creatorName string) error {
	return s.setEdge(s.follows, creatorName, viewerID, false)
}

func (s *edgeStore) GetMediaList(ctx context.Context, mediaType, category string) ([]model.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []model.MediaItem{}
	for _, m := range s.media {
		if mediaType != "" && m.Type != mediaType {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		result = append(result, m)
	}

	return result, nil
}

func (s *edgeStore) GetMedia(ctx context.Context, id string) (*model.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.media {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}

	return nil, errorx.New(errorx.NotFound, "Not found media")
}
