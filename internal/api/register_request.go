package api

// swagger:model api.RegisterRequest
type RegisterRequest struct {
	Name                 string `json:"name" form:"name" validate:"required,max=255" example:"Alice"`
	Email                string `json:"email" form:"email" validate:"required,email" example:"alice@example.com"`
	Password             string `json:"password" form:"password" validate:"required,min=6" example:"Secret123"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password" example:"Secret123"`
}
