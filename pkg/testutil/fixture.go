package testutil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

var (
	// Users
	Profile1 = &entity.Profile{
		ID:            "user1",
		Email:         "user1@mediashare.app",
		Name:          "Alice",
		Tier:          entity.TierPremium,
		LoyaltyPoints: 1200,
		AccountType:   entity.AccountCreator,
		Role:          entity.AccountCreator,
		IsVerified:    true,
	}

	Profile2 = &entity.Profile{
		ID:          "user2",
		Email:       "user2@mediashare.app",
		Name:        "Bob",
		Tier:        entity.TierFree,
		AccountType: entity.AccountMember,
		Role:        entity.AccountMember,
	}

	Profile3 = &entity.Profile{
		ID:          "user3",
		Email:       "user3@mediashare.app",
		Name:        "Carol",
		Tier:        entity.TierFree,
		AccountType: entity.AccountMember,
		Role:        entity.AccountMember,
	}

	Profiles = []*entity.Profile{Profile1, Profile2, Profile3}

	// Media
	Media1 = &entity.MediaContent{
		SoftDeleteBase: entity.SoftDeleteBase{Base: entity.Base{ID: "media1"}},
		Title:          "Morning stream",
		CreatorName:    "Alice",
		CreatorID:      sql.NullString{Valid: true, String: "user1"},
		Category:       "music",
		Type:           entity.MediaStream,
		Rating:         4.5,
	}

	Media2 = &entity.MediaContent{
		SoftDeleteBase: entity.SoftDeleteBase{Base: entity.Base{ID: "media2"}},
		Title:          "Evening stream",
		CreatorName:    "Alice",
		CreatorID:      sql.NullString{Valid: true, String: "user1"},
		Category:       "music",
		Type:           entity.MediaStream,
	}

	Media3 = &entity.MediaContent{
		SoftDeleteBase: entity.SoftDeleteBase{Base: entity.Base{ID: "media3"}},
		Title:          "Field notes",
		CreatorName:    "Dave",
		Category:       "travel",
		Type:           entity.MediaBlog,
		ReadTime:       sql.NullString{Valid: true, String: "5 min"},
	}

	Medias = []*entity.MediaContent{Media1, Media2, Media3}
)

// CreateFixtureDb inserts the fixture profiles, their accounts and the
// fixture media into the database of ctx.
func CreateFixtureDb(ctx context.Context) {
	InsertProfiles(ctx)
	InsertMedias(ctx)
}

func InsertProfiles(ctx context.Context) {
	for _, p := range Profiles {
		account := &entity.Account{
			Base:     entity.Base{ID: p.ID},
			Email:    p.Email,
			Password: "unused",
		}
		if err := xcontext.DB(ctx).Omit(clause.Associations).Create(account).Error; err != nil {
			panic(err)
		}

		if err := xcontext.DB(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
			panic(err)
		}
	}
}

func InsertMedias(ctx context.Context) {
	for _, m := range Medias {
		if err := xcontext.DB(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
			panic(err)
		}
	}
}

// InsertManyMedias inserts n stream items of creator Alice with ids
// "bulk0", "bulk1"...
func InsertManyMedias(ctx context.Context, n int) []*entity.MediaContent {
	var result []*entity.MediaContent
	for i := 0; i < n; i++ {
		m := &entity.MediaContent{
			SoftDeleteBase: entity.SoftDeleteBase{Base: entity.Base{ID: fmt.Sprintf("bulk%d", i)}},
			Title:          fmt.Sprintf("Bulk item %d", i),
			CreatorName:    "Alice",
			CreatorID:      sql.NullString{Valid: true, String: "user1"},
			Category:       "bulk",
			Type:           entity.MediaGallery,
		}
		if err := xcontext.DB(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
			panic(err)
		}

		result = append(result, m)
	}

	return result
}
