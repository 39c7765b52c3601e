package repository

import (
	"testing"
	"time"

	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type RefreshTokenTestSuite struct {
	suite.Suite
}

func TestRefreshTokenSuite(t *testing.T) {
	suite.Run(t, new(RefreshTokenTestSuite))
}

func (suite *RefreshTokenTestSuite) TestRotate() {
	t := suite.T()
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	repo := NewRefreshTokenRepository()
	require.NoError(t, repo.Create(ctx, &entity.RefreshToken{
		UserID:     testutil.Profile1.ID,
		Family:     "family-a",
		Expiration: time.Now().Add(time.Minute),
	}))

	require.NoError(t, repo.Rotate(ctx, "family-a", 0, time.Hour))

	token, err := repo.Get(ctx, "family-a")
	require.NoError(t, err)
	require.Equal(t, uint64(1), token.Counter)
	require.True(t, token.Expiration.After(time.Now().Add(30*time.Minute)))

	// The same counter cannot be rotated twice.
	require.ErrorIs(t, repo.Rotate(ctx, "family-a", 0, time.Hour), ErrStaleCounter)

	require.ErrorIs(t, repo.Rotate(ctx, "family-b", 0, time.Hour), gorm.ErrRecordNotFound)
}

func (suite *RefreshTokenTestSuite) TestDelete() {
	t := suite.T()
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	repo := NewRefreshTokenRepository()
	require.NoError(t, repo.Create(ctx, &entity.RefreshToken{
		UserID:     testutil.Profile2.ID,
		Family:     "family-c",
		Expiration: time.Now().Add(time.Minute),
	}))

	require.NoError(t, repo.Delete(ctx, "family-c"))

	_, err := repo.Get(ctx, "family-c")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
