package users

// CreateUserRequest is the payload for registering an account.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=255"`
	Role     Role   `json:"role" validate:"required,oneof=admin staff customer"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateUserRequest is the payload for a partial account update.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,e164"`
	Role     *Role   `json:"role" validate:"omitempty,oneof=admin staff customer"`
	IsActive *bool   `json:"is_active"`
}
