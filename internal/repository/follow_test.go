package repository

import (
	"testing"

	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/pkg/testutil"
	"github.com/mediashare/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Profile2.ID)
	testutil.CreateFixtureDb(ctx)

	repo := NewFollowRepository()

	inserted, err := repo.Create(ctx, &entity.CreatorFollow{FollowerID: testutil.Profile2.ID, CreatorName: "Alice"})
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = repo.Create(ctx, &entity.CreatorFollow{FollowerID: testutil.Profile2.ID, CreatorName: "Alice"})
	require.NoError(t, err)
	require.False(t, inserted)

	following, err := repo.Exists(ctx, testutil.Profile2.ID, "Alice")
	require.NoError(t, err)
	require.True(t, following)

	follows, err := repo.GetListByFollowerID(ctx, testutil.Profile2.ID)
	require.NoError(t, err)
	require.Len(t, follows, 1)

	otherCtx := xcontext.WithRequestUserID(ctx, testutil.Profile3.ID)
	_, err = repo.Delete(otherCtx, testutil.Profile2.ID, "Alice")
	require.ErrorIs(t, err, ErrNotOwner)

	deleted, err := repo.Delete(ctx, testutil.Profile2.ID, "Alice")
	require.NoError(t, err)
	require.True(t, deleted)

	following, err = repo.Exists(ctx, testutil.Profile2.ID, "Alice")
	require.NoError(t, err)
	require.False(t, following)
}
