package model_test

import (
	"testing"

	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestTierForPoints(t *testing.T) {
	testCases := []struct {
		points uint64
		tier   entity.Tier
	}{
		{0, entity.TierFree},
		{999, entity.TierFree},
		{1000, entity.TierPremium},
		{4999, entity.TierPremium},
		{5000, entity.TierProfessional},
		{10000, entity.TierElite},
		{250000, entity.TierElite},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.tier, model.TierForPoints(tc.points), "points=%d", tc.points)
		require.LessOrEqual(t, model.TierThreshold(tc.tier), tc.points)
	}
}

func TestNewUser(t *testing.T) {
	user := model.NewUser(model.Profile{ID: "u1", Email: "old@example.com"}, "new@example.com")
	require.Equal(t, "new@example.com", user.Email)
	require.Equal(t, "u1", user.ID)

	user = model.NewUser(model.Profile{ID: "u1", Email: "old@example.com"}, "")
	require.Equal(t, "old@example.com", user.Email)
}
