package main

import (
	"context"

	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/pubsub"
	"github.com/mediashare/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

type seedCreator struct {
	email string
	name  string
	media []model.CreateMediaRequest
}

var seedCreators = []seedCreator{
	{
		email: "alice@mediashare.app",
		name:  "Alice",
		media: []model.CreateMediaRequest{
			{Title: "Morning stream", Category: "music", Type: "stream", Duration: "45:00"},
			{Title: "Lo-fi beats", Category: "music", Type: "listen", Duration: "1:02:10"},
		},
	},
	{
		email: "dave@mediashare.app",
		name:  "Dave",
		media: []model.CreateMediaRequest{
			{Title: "Field notes", Category: "travel", Type: "blog", ReadTime: "5 min"},
			{Title: "Coastline", Category: "travel", Type: "gallery"},
		},
	},
}

// nopPublisher drops change events, seeding never mutates edges.
type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, *pubsub.Pack) error { return nil }

func (s *srv) startSeed(cctx *cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.loadRedisClient(); err != nil {
		return err
	}

	s.publisher = nopPublisher{}
	s.loadRepos()
	s.loadDomains()

	return s.seed(s.ctx, cctx.String("password"))
}

func (s *srv) seed(ctx context.Context, password string) error {
	for _, creator := range seedCreators {
		resp, err := s.authDomain.SignUp(ctx, &model.SignUpRequest{
			Email:       creator.email,
			Password:    password,
			Name:        creator.name,
			AccountType: "creator",
		})
		if err != nil {
			if errorx.Is(err, errorx.AlreadyExists) {
				xcontext.Logger(ctx).Infof("Creator %s already exists, skip", creator.email)
				continue
			}

			return err
		}

		creatorCtx := xcontext.WithRequestUserID(ctx, resp.Session.User.ID)
		for _, media := range creator.media {
			if _, err := s.mediaDomain.CreateMedia(creatorCtx, &media); err != nil {
				return err
			}
		}

		xcontext.Logger(ctx).Infof("Seeded creator %s with %d media", creator.email, len(creator.media))
	}

	return nil
}
