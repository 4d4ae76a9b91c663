package auth

// RegisterRequest carries the registration inputs.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Username string `json:"username" validate:"omitempty,min=3,max=32"`
}

// LoginRequest carries the login inputs.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest mutates account profile fields. Nil fields are left
// untouched.
type UpdateProfileRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=32"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

// ChangePasswordRequest swaps the account credential.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}
