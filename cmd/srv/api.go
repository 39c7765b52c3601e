package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediashare/backend/internal/middleware"
	"github.com/mediashare/backend/migration"
	"github.com/mediashare/backend/pkg/prometheus"
	"github.com/mediashare/backend/pkg/router"
	"github.com/mediashare/backend/pkg/xcontext"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func (s *srv) startApi(*cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if xcontext.Configs(s.ctx).Database.Driver == "sqlite" {
		if err := migration.Migrate(s.ctx); err != nil {
			return err
		}
	}

	if err := s.loadRedisClient(); err != nil {
		return err
	}

	if err := s.loadPublisher(); err != nil {
		return err
	}

	s.loadRepos()
	s.loadDomains()

	if err := s.loadSubscriber(); err != nil {
		return err
	}

	s.loadRouter()

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := xcontext.Configs(s.ctx).ApiServer
	s.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           s.router.Handler(cfg.ServerConfigs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.subscriber.Subscribe(ctx)
		<-ctx.Done()
		return s.subscriber.Stop(context.Background())
	})

	g.Go(func() error {
		<-ctx.Done()
		if p, ok := s.publisher.(interface{ Stop(context.Context) error }); ok {
			return p.Stop(context.Background())
		}
		return nil
	})

	g.Go(func() error {
		xcontext.Logger(s.ctx).Infof("Starting api server on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		xcontext.Logger(s.ctx).Infof("Shutting down api server")
		return s.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime)
	s.router.AddCloser(middleware.Logger)
	s.router.AddCloser(middleware.Prometheus)

	s.router.Handle("/metrics", prometheus.NewHandler(s.metricCollectors()...))

	// Auth API
	authRouter := s.router.Branch()
	authRouter.After(middleware.HandleSetCookie)
	authRouter.After(middleware.HandleSaveSession)
	{
		router.POST(authRouter, "/signUp", s.authDomain.SignUp)
		router.POST(authRouter, "/signIn", s.authDomain.SignIn)
		router.POST(authRouter, "/refresh", s.authDomain.Refresh)
	}

	// These following APIs need authentication with a live access token.
	tokenAuthRouter := s.router.Branch()
	authVerifier := middleware.NewAuthVerifier().WithAccessToken().WithDenylist(s.redisClient)
	tokenAuthRouter.Before(authVerifier.Middleware())
	{
		router.POST(tokenAuthRouter, "/signOut", s.authDomain.SignOut)
		router.GET(tokenAuthRouter, "/getSession", s.authDomain.GetSession)

		// Profile API
		router.GET(tokenAuthRouter, "/getProfile", s.profileDomain.GetProfile)
		router.POST(tokenAuthRouter, "/updateProfile", s.profileDomain.UpdateProfile)

		// Media API
		router.GET(tokenAuthRouter, "/countLikes", s.mediaDomain.CountLikes)
		router.GET(tokenAuthRouter, "/hasLiked", s.mediaDomain.HasLiked)
		router.GET(tokenAuthRouter, "/isFollowing", s.mediaDomain.IsFollowing)
		router.GET(tokenAuthRouter, "/getFollowing", s.mediaDomain.GetFollowing)
		router.POST(tokenAuthRouter, "/like", s.mediaDomain.Like)
		router.POST(tokenAuthRouter, "/unlike", s.mediaDomain.Unlike)
		router.POST(tokenAuthRouter, "/follow", s.mediaDomain.Follow)
		router.POST(tokenAuthRouter, "/unfollow", s.mediaDomain.Unfollow)
		router.POST(tokenAuthRouter, "/toggleLike", s.mediaDomain.ToggleLike)
		router.POST(tokenAuthRouter, "/toggleFollow", s.mediaDomain.ToggleFollow)
		router.POST(tokenAuthRouter, "/createMedia", s.mediaDomain.CreateMedia)
	}

	// Public API, enriched for the requester if a token is given.
	optionalAuthRouter := s.router.Branch()
	optionalVerifier := middleware.NewAuthVerifier().WithAccessToken().WithDenylist(s.redisClient).WithOptional()
	optionalAuthRouter.Before(optionalVerifier.Middleware())
	{
		router.GET(optionalAuthRouter, "/getMediaList", s.mediaDomain.GetMediaList)
		router.GET(optionalAuthRouter, "/getFeed", s.mediaDomain.GetFeed)
		router.GET(optionalAuthRouter, "/getMedia", s.mediaDomain.GetMedia)
		router.Websocket(optionalAuthRouter, "/watch", s.notificationDomain.ServeWatch)
	}
}

func (s *srv) metricCollectors() []prom.Collector {
	db, err := xcontext.DB(s.ctx).DB()
	if err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot collect database stats: %v", err)
		return nil
	}

	name := xcontext.Configs(s.ctx).Database.Database
	if name == "" {
		name = "mediashare"
	}

	return []prom.Collector{collectors.NewDBStatsCollector(db, name)}
}
