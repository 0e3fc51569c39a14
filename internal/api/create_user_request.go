package api

// swagger:model api.CreateUserRequest
type CreateUserRequest struct {
	Name     string `json:"name" form:"name" validate:"required,max=255" example:"Alice"`
	Email    string `json:"email" form:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" form:"password" validate:"required,min=6" example:"Secret123"`
	Role     string `json:"role" form:"role" validate:"required,oneof=user admin" example:"user"`
}
