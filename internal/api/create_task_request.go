package api

// CreateTaskRequest 不含 created_by，建立者一律取自 token
// swagger:model api.CreateTaskRequest
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=255" example:"Write report"`
	Description *string `json:"description" example:"Quarterly numbers"`
	Status      string  `json:"status" validate:"omitempty,oneof=todo in_progress done" example:"todo"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high" example:"medium"`
	DueDate     *string `json:"due_date" example:"2025-06-30"`
	AssignedTo  *int    `json:"assigned_to" validate:"omitempty,gt=0" example:"2"`
}
