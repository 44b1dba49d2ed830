package dto

type EnsureProfileRequest struct {
	DisplayName string `json:"display_name"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	ImageURL    *string `json:"image_url"`
}
