package model

// User roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

// Project statuses
const (
	ProjectPlanning  = "planning"
	ProjectActive    = "active"
	ProjectOnHold    = "onhold"
	ProjectCompleted = "completed"
	ProjectCancelled = "cancelled"
)

// Priorities (shared by Project and Task)
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Task statuses
const (
	TaskTodo       = "todo"
	TaskInProgress = "inprogress"
	TaskReview     = "review"
	TaskDone       = "done"
	TaskBlocked    = "blocked"
)

// Team member roles
const (
	TeamRoleLead   = "lead"
	TeamRoleMember = "member"
)

var userRoles = map[string]bool{
	RoleAdmin:   true,
	RoleManager: true,
	RoleMember:  true,
}

var projectStatuses = map[string]bool{
	ProjectPlanning:  true,
	ProjectActive:    true,
	ProjectOnHold:    true,
	ProjectCompleted: true,
	ProjectCancelled: true,
}

var priorities = map[string]bool{
	PriorityLow:      true,
	PriorityMedium:   true,
	PriorityHigh:     true,
	PriorityCritical: true,
}

var taskStatuses = map[string]bool{
	TaskTodo:       true,
	TaskInProgress: true,
	TaskReview:     true,
	TaskDone:       true,
	TaskBlocked:    true,
}

var teamRoles = map[string]bool{
	TeamRoleLead:   true,
	TeamRoleMember: true,
}

func ValidUserRole(s string) bool      { return userRoles[s] }
func ValidProjectStatus(s string) bool { return projectStatuses[s] }
func ValidPriority(s string) bool      { return priorities[s] }
func ValidTaskStatus(s string) bool    { return taskStatuses[s] }
func ValidTeamRole(s string) bool      { return teamRoles[s] }
