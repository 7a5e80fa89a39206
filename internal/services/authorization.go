package services

import (
	"github.com/kaustubh0601/Task-Management/internal/models"
)

// Authorization rules for tasks and user management. Admins may do everything
// except deactivate or delete their own account through user management;
// regular users are limited to tasks they created or are assigned to.

// CanReadTask reports whether the actor may view the task.
func CanReadTask(actor *models.User, task *models.Task) bool {
	if actor.IsAdmin() {
		return true
	}
	return task.CreatedBy == actor.ID || task.AssignedTo == actor.ID
}

// CanUpdateTask reports whether the actor may modify the task, including
// status and priority changes.
func CanUpdateTask(actor *models.User, task *models.Task) bool {
	return CanReadTask(actor, task)
}

// CanDeleteTask reports whether the actor may delete the task. Being the
// assignee is not sufficient.
func CanDeleteTask(actor *models.User, task *models.Task) bool {
	if actor.IsAdmin() {
		return true
	}
	return task.CreatedBy == actor.ID
}

// CanManageUsers reports whether the actor may use the user-management
// operations at all.
func CanManageUsers(actor *models.User) bool {
	return actor.IsAdmin()
}

// CanDeactivateUser reports whether the actor may set the target inactive.
func CanDeactivateUser(actor *models.User, targetID uint64) bool {
	return actor.IsAdmin() && actor.ID != targetID
}

// CanDeleteUser reports whether the actor may delete the target account.
func CanDeleteUser(actor *models.User, targetID uint64) bool {
	return actor.IsAdmin() && actor.ID != targetID
}

// ScopeTaskFilter forces a non-admin actor's list queries onto their own
// assignments, regardless of any assignee filter the request carried.
func ScopeTaskFilter(actor *models.User, requested *uint64) *uint64 {
	if actor.IsAdmin() {
		return requested
	}
	id := actor.ID
	return &id
}
