// File: internal/api/update_user_request.go
package api

import "taskflow/internal/model"

// UpdateUserRequest 只更新出現的欄位；password 為空字串時不變更
// swagger:model api.UpdateUserRequest
type UpdateUserRequest struct {
	Name     model.Optional[string]     `json:"name" swaggertype:"string" example:"Alice"`
	Email    model.Optional[string]     `json:"email" swaggertype:"string" example:"alice@example.com"`
	Password model.Optional[string]     `json:"password" swaggertype:"string" example:"NewSecret1"`
	Role     model.Optional[model.Role] `json:"role" swaggertype:"string" enums:"user,admin"`
}
