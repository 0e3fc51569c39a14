package model

import "time"

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DateLayout due_date 的輸入輸出格式
const DateLayout = "2006-01-02"

type Task struct {
	ID          int          `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description *string      `db:"description" json:"description"`
	Status      TaskStatus   `db:"status" json:"status"`
	Priority    TaskPriority `db:"priority" json:"priority"`
	DueDate     *Date        `db:"due_date" json:"due_date" swaggertype:"string" example:"2025-06-30"`
	CreatedBy   int          `db:"created_by" json:"created_by"`
	AssignedTo  *int         `db:"assigned_to" json:"assigned_to"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`

	Creator  *UserSummary `json:"creator,omitempty"`
	Assignee *UserSummary `json:"assignee"`
}

func (t Task) IsAssignedTo(userID int) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}
