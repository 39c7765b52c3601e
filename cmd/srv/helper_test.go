package main

import (
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/pubsub"
)

type staticTokens struct {
	session *model.Session
}

func (s *staticTokens) Load() (*model.Session, error) { return s.session, nil }
func (s *staticTokens) Save(*model.Session) error     { return nil }

func (s *staticTokens) Clear() error {
	s.session = nil
	return nil
}

func packOf(msg string) *pubsub.Pack {
	return &pubsub.Pack{Msg: []byte(msg)}
}
