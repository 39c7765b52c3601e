package model

import "github.com/mediashare/backend/internal/entity"

var tierThresholds = []struct {
	tier   entity.Tier
	points uint64
}{
	{entity.TierElite, 10000},
	{entity.TierProfessional, 5000},
	{entity.TierPremium, 1000},
	{entity.TierFree, 0},
}

// TierThreshold returns the loyalty points needed to reach tier.
func TierThreshold(tier entity.Tier) uint64 {
	for _, t := range tierThresholds {
		if t.tier == tier {
			return t.points
		}
	}

	return 0
}

func TierForPoints(points uint64) entity.Tier {
	for _, t := range tierThresholds {
		if points >= t.points {
			return t.tier
		}
	}

	return entity.TierFree
}
