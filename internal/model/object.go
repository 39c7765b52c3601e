package model

import "time"

const DefaultTimeLayout string = time.RFC3339Nano

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the authenticated state handed out by the auth service. It is
// replaced on refresh and destroyed on sign-out.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         AuthUser  `json:"user"`
}

type Profile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Tier          string `json:"tier"`
	LoyaltyPoints uint64 `json:"loyalty_points"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	AccountType   string `json:"account_type"`
	Role          string `json:"role"`
	IsVerified    bool   `json:"is_verified"`
	JoinDate      string `json:"join_date"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// User is a Profile merged with the identity of the current session.
type User struct {
	Profile
}

func NewUser(profile Profile, email string) *User {
	if email != "" {
		profile.Email = email
	}

	return &User{Profile: profile}
}

type MediaItem struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	CreatorName  string   `json:"creator_name"`
	CreatorID    string   `json:"creator_id,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	ContentURL   string   `json:"content_url,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	ReadTime     string   `json:"read_time,omitempty"`
	Category     string   `json:"category"`
	Type         string   `json:"type"`
	ContentType  string   `json:"content_type,omitempty"`
	Description  string   `json:"description,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Rating       float64  `json:"rating"`
	IsPremium    bool     `json:"is_premium"`
	ViewsCount   uint64   `json:"views_count"`
	PlaysCount   uint64   `json:"plays_count"`
	SalesCount   uint64   `json:"sales_count"`
	CreatedAt    string   `json:"created_at,omitempty"`
	UpdatedAt    string   `json:"updated_at,omitempty"`

	// Derived per viewer, never persisted.
	LikesCount  int64 `json:"likes_count"`
	IsLiked     bool  `json:"is_liked"`
	IsFollowing bool  `json:"is_following"`
}

// WithDefaults returns the item with every derived field reset.
func (m MediaItem) WithDefaults() MediaItem {
	m.LikesCount = 0
	m.IsLiked = false
	m.IsFollowing = false
	return m
}

type ChangeKind string

const (
	ChangeLike   ChangeKind = "like"
	ChangeFollow ChangeKind = "follow"
)

type ChangeAction string

const (
	ChangeInsert ChangeAction = "insert"
	ChangeDelete ChangeAction = "delete"
)

// ChangeEvent notifies a like or follow edge being inserted or deleted.
type ChangeEvent struct {
	// ID is a snowflake id, later events have greater ids.
	ID          string       `json:"id"`
	Kind        ChangeKind   `json:"kind"`
	Action      ChangeAction `json:"action"`
	UserID      string       `json:"user_id"`
	MediaID     string       `json:"media_id,omitempty"`
	CreatorName string       `json:"creator_name,omitempty"`
	CreatedAt   string       `json:"created_at"`
}
