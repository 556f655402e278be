package models

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
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

type Task struct {
	ID          string       `json:"id"`
	ListID      string       `json:"list_id"`
	Title       string       `json:"title"`
	Description null.String  `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     null.Time    `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskInput carries create/update payloads. Nil fields are left unchanged on update.
type TaskInput struct {
	Title       *string       `json:"title" form:"title"`
	Description *string       `json:"description" form:"description"`
	Status      *TaskStatus   `json:"status" form:"status"`
	Priority    *TaskPriority `json:"priority" form:"priority"`
	DueDate     *time.Time    `json:"due_date" form:"due_date" time_format:"2006-01-02T15:04:05Z07:00"`
}
