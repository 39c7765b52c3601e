package model

type GetMediaListRequest struct {
	Type     string `json:"type"`
	Category string `json:"category"`
}

type GetMediaListResponse struct {
	Items []MediaItem `json:"items"`
}

type GetFeedRequest struct {
	Type     string `json:"type"`
	Category string `json:"category"`
}

type GetFeedResponse struct {
	Items []MediaItem `json:"items"`
}

type GetMediaRequest struct {
	ID string `json:"id"`
}

type GetMediaResponse struct {
	Item MediaItem `json:"item"`
}

type CountLikesRequest struct {
	MediaID string `json:"media_id"`
}

type CountLikesResponse struct {
	Count int64 `json:"count"`
}

type HasLikedRequest struct {
	MediaID string `json:"media_id"`
}

type HasLikedResponse struct {
	Liked bool `json:"liked"`
}

type IsFollowingRequest struct {
	CreatorName string `json:"creator_name"`
}

type IsFollowingResponse struct {
	Following bool `json:"following"`
}

type GetFollowingRequest struct{}

type GetFollowingResponse struct {
	CreatorNames []string `json:"creator_names"`
}

type LikeRequest struct {
	MediaID string `json:"media_id"`
}

type LikeResponse struct{}

type UnlikeRequest struct {
	MediaID string `json:"media_id"`
}

type UnlikeResponse struct{}

type FollowRequest struct {
	CreatorName string `json:"creator_name"`
}

type FollowResponse struct{}

type UnfollowRequest struct {
	CreatorName string `json:"creator_name"`
}

type UnfollowResponse struct{}

type ToggleLikeRequest struct {
	MediaID string `json:"media_id"`
}

type ToggleLikeResponse struct {
	Item MediaItem `json:"item"`
}

type ToggleFollowRequest struct {
	MediaID string `json:"media_id"`
}

type ToggleFollowResponse struct {
	Item MediaItem `json:"item"`
}

type CreateMediaRequest struct {
	Title        string   `json:"title" validate:"required"`
	Category     string   `json:"category" validate:"required"`
	Type         string   `json:"type" validate:"required,oneof=stream listen blog gallery resources"`
	ThumbnailURL string   `json:"thumbnail_url" validate:"omitempty,url"`
	ContentURL   string   `json:"content_url" validate:"omitempty,url"`
	Duration     string   `json:"duration"`
	ReadTime     string   `json:"read_time"`
	ContentType  string   `json:"content_type"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	IsPremium    bool     `json:"is_premium"`
}

type CreateMediaResponse struct {
	Item MediaItem `json:"item"`
}
