package api

import "taskflow/internal/model"

// swagger:model api.UpdateTaskRequest
type UpdateTaskRequest struct {
	Title       model.Optional[string]             `json:"title" swaggertype:"string" example:"Write report"`
	Description model.Optional[string]             `json:"description" swaggertype:"string"`
	Status      model.Optional[model.TaskStatus]   `json:"status" swaggertype:"string" enums:"todo,in_progress,done"`
	Priority    model.Optional[model.TaskPriority] `json:"priority" swaggertype:"string" enums:"low,medium,high"`
	DueDate     model.Optional[string]             `json:"due_date" swaggertype:"string" example:"2025-06-30"`
	AssignedTo  model.Optional[int]                `json:"assigned_to" swaggertype:"integer"`
}
