package repository

import (
	"errors"

	"gitboard/internal/models"
	"gitboard/internal/utils"
)

var (
	// ErrMembershipRevoked is returned by guarded task writes when the
	// actor's membership row is gone (or demoted) by the time the write
	// transaction re-checks it.
	ErrMembershipRevoked = errors.New("task repository: membership revoked before write")
	// ErrUserHasCreatedTasks is returned when purging a user who still
	// authored tasks; created_by carries restrict-on-delete semantics.
	ErrUserHasCreatedTasks = errors.New("user repository: user has authored tasks")
)

// MembershipGuard re-verifies project membership inside the same transaction
// as a task write, closing the window between authorization and mutation.
type MembershipGuard struct {
	ProjectID uint64
	UserID    uint64
	// Roles the membership row must hold for the write to proceed.
	Roles []models.ProjectRole
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint64) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	Count() (int64, error)

	// Purge removes a user, nulling task assignments and removing project
	// memberships in one transaction. Fails with ErrUserHasCreatedTasks
	// while the user still authors tasks.
	Purge(id uint64) error
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	// CreateWithOwner creates the project and its owner membership atomically.
	CreateWithOwner(project *models.Project, owner *models.ProjectMember) error
	FindByID(id uint64) (*models.Project, error)
	Update(project *models.Project) error
	CountByStatus(status models.ProjectStatus) (int64, error)

	// Delete removes the project and everything under it: boards, their
	// tasks (with comments, history and label links), labels and members.
	Delete(id uint64) error

	AddMember(member *models.ProjectMember) error
	RemoveMember(projectID, userID uint64) error
	UpdateMemberRole(projectID, userID uint64, role models.ProjectRole) error

	// FindMemberships returns every membership row for the pair. Callers
	// needing the uniqueness invariant checked pass the full slice to
	// access.Evaluate instead of silently taking the first row.
	FindMemberships(projectID, userID uint64) ([]models.ProjectMember, error)
	ListMembers(projectID uint64) ([]models.ProjectMember, error)
	ListMembershipsByUser(userID uint64) ([]models.ProjectMember, error)

	// TransferOwnership swaps the owner role from one member to another in
	// a single transaction so the project never has zero or two owners.
	TransferOwnership(projectID, fromUserID, toUserID uint64) error
}

// BoardRepository defines the interface for board data access
type BoardRepository interface {
	Create(board *models.Board) error
	FindByID(id uint64) (*models.Board, error)
	ListByProject(projectID uint64) ([]models.Board, error)
	Update(board *models.Board) error

	// Delete removes the board and cascades to its tasks, their comments,
	// history rows and label links.
	Delete(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(task *models.Task) error
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListByBoard returns the board's tasks in canonical column order:
	// order_index ascending, then created_at descending.
	ListByBoard(boardID uint64) ([]models.Task, error)

	Update(task *models.Task) error

	// Delete removes the task with its comments, history and label links.
	Delete(id uint64) error

	// Transition sets the task status inside one transaction with the
	// guard's membership re-check, maintains completed_at and appends a
	// TaskHistory row. order_index is left untouched.
	Transition(taskID uint64, status models.TaskStatus, guard MembershipGuard) error

	// Reorder writes an explicit order_index (and optionally a status) to
	// the moved task under the same guard semantics as Transition.
	Reorder(taskID uint64, index int, status *models.TaskStatus, guard MembershipGuard) error

	// StatusTotals counts tasks per status across the given projects.
	StatusTotals(projectIDs []uint64) (map[models.TaskStatus]int64, error)
	CountByStatus(status models.TaskStatus) (int64, error)
}

// LabelRepository defines the interface for label data access
type LabelRepository interface {
	Create(label *models.Label) error
	FindByID(id uint64) (*models.Label, error)
	FindByName(projectID uint64, name string) (*models.Label, error)
	ListByProject(projectID uint64) ([]models.Label, error)
	Delete(id uint64) error

	Attach(taskID, labelID uint64) error
	Detach(taskID, labelID uint64) error
}

// CommentRepository defines the interface for task comment data access
type CommentRepository interface {
	Create(comment *models.TaskComment) error
	// ListByTask returns comments oldest first.
	ListByTask(taskID uint64) ([]models.TaskComment, error)
}

// AuditLogRepository defines the interface for the append-only audit trail
type AuditLogRepository interface {
	Record(entry *models.AuditLog) error
	// ListByEntity returns one page of entries, newest first, and the
	// total entry count.
	ListByEntity(entityType string, entityID uint64, params utils.PaginationParams) ([]models.AuditLog, int64, error)
}
