package auth

import "github.com/taskforge/taskforge-api/internal/models"

// Action identifies what an actor wants to do with a task.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// CanAccessTask decides whether the actor may perform the action on the task.
// Admins may do anything. The creator may read, update, and delete their own
// tasks. The assignee may only read.
func CanAccessTask(actor *models.User, action Action, task *models.Task) bool {
	if actor.IsAdmin() {
		return true
	}
	if task.CreatedByID == actor.ID {
		return true
	}
	return action == ActionRead && task.AssigneeID == actor.ID
}

// CanChangeRole decides whether the actor may change the target user's role.
// Only admins may, and never their own: a role change always requires a second
// administrator.
func CanChangeRole(actor *models.User, target *models.User) bool {
	return actor.IsAdmin() && actor.ID != target.ID
}
