package model

import (
	"github.com/mediashare/backend/internal/entity"
)

func ConvertProfile(profile *entity.Profile) Profile {
	if profile == nil {
		return Profile{}
	}

	return Profile{
		ID:            profile.ID,
		Email:         profile.Email,
		Name:          profile.Name,
		Tier:          string(profile.Tier),
		LoyaltyPoints: profile.LoyaltyPoints,
		AvatarURL:     profile.AvatarURL.String,
		AccountType:   string(profile.AccountType),
		Role:          string(profile.Role),
		IsVerified:    profile.IsVerified,
		JoinDate:      profile.CreatedAt.Format(DefaultTimeLayout),
		UpdatedAt:     profile.UpdatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertMediaItem(media *entity.MediaContent) MediaItem {
	if media == nil {
		return MediaItem{}
	}

	var price *float64
	if media.Price.Valid {
		p := media.Price.Float64
		price = &p
	}

	return MediaItem{
		ID:           media.ID,
		Title:        media.Title,
		CreatorName:  media.CreatorName,
		CreatorID:    media.CreatorID.String,
		ThumbnailURL: media.ThumbnailURL.String,
		ContentURL:   media.ContentURL.String,
		Duration:     media.Duration.String,
		ReadTime:     media.ReadTime.String,
		Category:     media.Category,
		Type:         string(media.Type),
		ContentType:  media.ContentType.String,
		Description:  media.Description.String,
		Price:        price,
		Rating:       media.Rating,
		IsPremium:    media.IsPremium,
		ViewsCount:   media.ViewsCount,
		PlaysCount:   media.PlaysCount,
		SalesCount:   media.SalesCount,
		CreatedAt:    media.CreatedAt.Format(DefaultTimeLayout),
		UpdatedAt:    media.UpdatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertMediaItems(medias []entity.MediaContent) []MediaItem {
	items := make([]MediaItem, 0, len(medias))
	for i := range medias {
		items = append(items, ConvertMediaItem(&medias[i]))
	}

	return items
}
