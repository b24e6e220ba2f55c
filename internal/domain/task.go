package domain

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

type TaskImportance string

const (
	ImportanceLow    TaskImportance = "low"
	ImportanceNormal TaskImportance = "normal"
	ImportanceHigh   TaskImportance = "high"
)

// Task belongs to exactly one list; its authorization owner is the list's
// owner. ParentTaskID forms a self-referential tree of unbounded depth.
type Task struct {
	ID           string
	Title        string
	Description  *string
	Status       TaskStatus
	Importance   TaskImportance
	DueAt        *time.Time
	CompletedAt  *time.Time
	ListID       string
	CreatedBy    string
	UpdatedBy    string
	ParentTaskID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// TaskUpdate is the allow-listed set of mutable task fields. Nil means
// "leave unchanged"; the list, creator, and parent are fixed at creation.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Importance  *TaskImportance
	DueAt       *time.Time
	CompletedAt *time.Time
}
