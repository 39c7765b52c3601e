package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/mediashare/backend/config"
	"github.com/mediashare/backend/internal/domain"
	"github.com/mediashare/backend/internal/repository"
	"github.com/mediashare/backend/pkg/authenticator"
	"github.com/mediashare/backend/pkg/kafka"
	"github.com/mediashare/backend/pkg/logger"
	"github.com/mediashare/backend/pkg/pubsub"
	"github.com/mediashare/backend/pkg/router"
	"github.com/mediashare/backend/pkg/xcontext"
	"github.com/mediashare/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	redisClient xredis.Client
	publisher   pubsub.Publisher
	subscriber  pubsub.Subscriber

	accountRepo      repository.AccountRepository
	profileRepo      repository.ProfileRepository
	refreshTokenRepo repository.RefreshTokenRepository
	mediaRepo        repository.MediaRepository
	likeRepo         repository.LikeRepository
	followRepo       repository.FollowRepository

	authDomain         domain.AuthDomain
	profileDomain      domain.ProfileDomain
	mediaDomain        domain.MediaDomain
	notificationDomain domain.NotificationDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(cctx.Context, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(cfg.LogLevel))
	s.ctx = xcontext.WithTokenEngine(s.ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	s.ctx = xcontext.WithSessionStore(s.ctx, sessions.NewCookieStore([]byte(cfg.Session.Secret)))
	s.ctx = xcontext.WithHTTPClient(s.ctx, http.DefaultClient)
	return nil
}

func (s *srv) loadDatabase() error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return nil
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	default:
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	}

	level := gormlogger.Warn
	if xcontext.Configs(s.ctx).LogLevel == "debug" {
		level = gormlogger.Info
	}

	return gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
}

func (s *srv) loadRedisClient() error {
	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		return err
	}

	s.redisClient = client
	return nil
}

func (s *srv) loadPublisher() error {
	publisher, err := kafka.NewPublisher("api", s.brokers())
	if err != nil {
		return err
	}

	s.publisher = publisher
	return nil
}

func (s *srv) loadSubscriber() error {
	cfg := xcontext.Configs(s.ctx).Notification
	subscriber, err := kafka.NewSubscriber(
		"watch-"+xcontext.Configs(s.ctx).Env,
		s.brokers(),
		[]string{cfg.LikeTopic, cfg.FollowTopic},
		s.notificationDomain.Subscribe,
	)
	if err != nil {
		return err
	}

	s.subscriber = subscriber
	return nil
}

func (s *srv) brokers() []string {
	return strings.Split(xcontext.Configs(s.ctx).Kafka.Addr, ",")
}

func (s *srv) loadRepos() {
	s.accountRepo = repository.NewAccountRepository()
	s.profileRepo = repository.NewProfileRepository()
	s.refreshTokenRepo = repository.NewRefreshTokenRepository()
	s.mediaRepo = repository.NewMediaRepository()
	s.likeRepo = repository.NewLikeRepository()
	s.followRepo = repository.NewFollowRepository()
}

func (s *srv) loadDomains() {
	s.authDomain = domain.NewAuthDomain(s.accountRepo, s.profileRepo, s.refreshTokenRepo, s.redisClient)
	s.profileDomain = domain.NewProfileDomain(s.profileRepo)
	s.mediaDomain = domain.NewMediaDomain(
		s.ctx, s.mediaRepo, s.likeRepo, s.followRepo, s.profileRepo, s.publisher)
	s.notificationDomain = domain.NewNotificationDomain()
}
