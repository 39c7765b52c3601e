package model

type GetProfileRequest struct {
	ID string `json:"id"`
}

type GetProfileResponse Profile

// UpdateProfileRequest is a partial update, nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name        *string `json:"name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	AccountType *string `json:"account_type,omitempty"`
	Role        *string `json:"role,omitempty"`
}

type UpdateProfileResponse Profile
