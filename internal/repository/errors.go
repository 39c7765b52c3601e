package repository

import (
	"context"
	"errors"

	"github.com/mediashare/backend/pkg/xcontext"
)

var (
	// ErrNoRequester is returned when a row-level protected write has no
	// authenticated requester in the context.
	ErrNoRequester = errors.New("no authenticated requester")

	// ErrNotOwner is returned when the owner column of the written row is not
	// the requester.
	ErrNotOwner = errors.New("row is not owned by the requester")
)

func requireOwner(ctx context.Context, ownerID string) error {
	requester := xcontext.RequestUserID(ctx)
	if requester == "" {
		return ErrNoRequester
	}

	if requester != ownerID {
		return ErrNotOwner
	}

	return nil
}
