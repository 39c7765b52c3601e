package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mediashare/backend/internal/client"
	"github.com/mediashare/backend/internal/domain/feed"
	"github.com/mediashare/backend/internal/domain/session"
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/api"
	"github.com/mediashare/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startWatch(cctx *cli.Context) error {
	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := xcontext.Configs(ctx)
	cache := client.NewFileTokenCache(tokenCachePath(cfg.Client.TokenCachePath))
	caller := client.NewAPICaller(api.NewGenerator(cfg.Client.Endpoint), cache)

	store := session.NewStore()
	sub := store.Subscribe(func(snapshot session.Snapshot) {
		if snapshot.IsLoading() {
			xcontext.Logger(ctx).Debugf("Loading the profile")
			return
		}

		xcontext.Logger(ctx).Debugf("Session is %s", snapshot.State)
	})
	defer sub.Unsubscribe()

	synchronizer := session.NewSynchronizer(caller, caller, cache, store)
	synchronizer.Start(ctx)
	defer synchronizer.Close()

	if email := cctx.String("email"); email != "" {
		if err := synchronizer.SignIn(ctx, email, cctx.String("password")); err != nil {
			return err
		}
	}

	token := ""
	snapshot := store.Snapshot()
	if snapshot.State == session.Authenticated && snapshot.Session != nil {
		token = snapshot.Session.AccessToken
		xcontext.Logger(ctx).Infof("Watching changes as %s (%s)", snapshot.User.Name, snapshot.User.Role)
	} else {
		xcontext.Logger(ctx).Infof("Watching changes anonymously")
	}

	fw := newFeedWatcher(caller, store, cctx.String("type"), cctx.String("category"))
	if err := fw.reload(ctx); err != nil {
		return err
	}
	xcontext.Logger(ctx).Infof("Loaded %d items", len(fw.feed.Items()))

	watcher := client.NewChangeWatcher(cfg.Client.Endpoint, cfg.Notification)
	return watcher.Watch(ctx, token, func(e model.ChangeEvent) {
		target := e.MediaID
		if e.Kind == model.ChangeFollow {
			target = e.CreatorName
		}

		xcontext.Logger(ctx).Infof("%s %s by %s on %s", e.Kind, e.Action, e.UserID, target)
		fw.handle(ctx, e)
	})
}

// feedWatcher keeps one feed tab enriched for the signed in viewer and
// reloads it when a change touches one of its items.
type feedWatcher struct {
	source    *client.APICaller
	store     *session.Store
	enricher  *feed.Enricher
	feed      *feed.Feed
	mediaType string
	category  string
}

func newFeedWatcher(caller *client.APICaller, store *session.Store, mediaType, category string) *feedWatcher {
	return &feedWatcher{
		source:    caller,
		store:     store,
		enricher:  feed.NewEnricher(caller, 0),
		feed:      feed.New(),
		mediaType: mediaType,
		category:  category,
	}
}

func (w *feedWatcher) reload(ctx context.Context) error {
	return w.feed.Load(ctx, w.source, w.enricher, w.mediaType, w.category, w.store.Snapshot().UserID())
}

// handle reloads the feed if e is about one of its items. It reports whether
// the feed was reloaded.
func (w *feedWatcher) handle(ctx context.Context, e model.ChangeEvent) bool {
	var touched []model.MediaItem
	for _, item := range w.feed.Items() {
		if (e.Kind == model.ChangeLike && item.ID == e.MediaID) ||
			(e.Kind == model.ChangeFollow && item.CreatorName == e.CreatorName) {
			touched = append(touched, item)
		}
	}

	if len(touched) == 0 {
		return false
	}

	if err := w.reload(ctx); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot reload the feed: %v", err)
		return false
	}

	for _, old := range touched {
		if item, ok := w.feed.Item(old.ID); ok {
			xcontext.Logger(ctx).Infof("%s: %d likes, liked=%t, following=%t",
				item.Title, item.LikesCount, item.IsLiked, item.IsFollowing)
		}
	}

	return true
}

func tokenCachePath(path string) string {
	if path != "" {
		return path
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "mediashare", "token.json")
	}

	return filepath.Join(dir, "mediashare", "token.json")
}
