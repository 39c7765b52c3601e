package entity

import (
	"database/sql"
	"time"

	"github.com/mediashare/backend/pkg/enum"
)

type MediaType string

var (
	MediaStream    = enum.New(MediaType("stream"))
	MediaListen    = enum.New(MediaType("listen"))
	MediaBlog      = enum.New(MediaType("blog"))
	MediaGallery   = enum.New(MediaType("gallery"))
	MediaResources = enum.New(MediaType("resources"))
)

type MediaContent struct {
	SoftDeleteBase

	Title        string `gorm:"not null"`
	CreatorName  string `gorm:"index;not null"`
	CreatorID    sql.NullString
	Creator      Profile `gorm:"foreignKey:CreatorID"`
	ThumbnailURL sql.NullString
	ContentURL   sql.NullString
	Duration     sql.NullString
	ReadTime     sql.NullString
	Category     string    `gorm:"index"`
	Type         MediaType `gorm:"index"`
	ContentType  sql.NullString
	Description  sql.NullString
	Price        sql.NullFloat64
	Rating       float64
	IsPremium    bool
	ViewsCount   uint64
	PlaysCount   uint64
	SalesCount   uint64
}

func (MediaContent) TableName() string {
	return "media_content"
}

// MediaLike is keyed by (UserID, MediaID), so a user likes an item at most
// once.
type MediaLike struct {
	UserID string  `gorm:"primaryKey"`
	User   Profile `gorm:"foreignKey:UserID"`

	MediaID string       `gorm:"primaryKey"`
	Media   MediaContent `gorm:"foreignKey:MediaID"`

	CreatedAt time.Time
}

// CreatorFollow is keyed by (FollowerID, CreatorName). Creators are followed
// by display name.
type CreatorFollow struct {
	FollowerID string  `gorm:"primaryKey"`
	Follower   Profile `gorm:"foreignKey:FollowerID"`

	CreatorName string `gorm:"primaryKey"`

	CreatedAt time.Time
}
