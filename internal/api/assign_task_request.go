package api

// swagger:model api.AssignTaskRequest
type AssignTaskRequest struct {
	AssignedTo int `json:"assigned_to" form:"assigned_to" validate:"required,gt=0" example:"2"`
}
