package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gitboard/internal/access"
	"gitboard/internal/models"
)

func TestTaskService_CreateTask_Defaults(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")

	task, err := env.tasks.CreateTask(CreateTaskInput{
		BoardID:   board.ID,
		Title:     "Set up CI",
		CreatorID: owner.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusTodo, task.Status)
	require.Equal(t, models.PriorityMedium, task.Priority)
	require.Nil(t, task.CompletedAt)
}

func TestTaskService_CreateTask_DoneGetsCompletedAt(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")

	// A task created directly in Done is completed from the start, the
	// same as one moved there.
	task, err := env.tasks.CreateTask(CreateTaskInput{
		BoardID:   board.ID,
		Title:     "Already shipped",
		Status:    models.StatusDone,
		CreatorID: owner.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusDone, task.Status)
	require.NotNil(t, task.CompletedAt)

	task, err = env.tasks.CreateTask(CreateTaskInput{
		BoardID:   board.ID,
		Title:     "In flight",
		Status:    models.StatusInProgress,
		CreatorID: owner.ID,
	})
	require.NoError(t, err)
	require.Nil(t, task.CompletedAt)
}

func TestTaskService_CreateTask_Validation(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	outsider := env.createUser(t, "outsider", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")

	_, err := env.tasks.CreateTask(CreateTaskInput{
		BoardID:   board.ID,
		Title:     "  ",
		CreatorID: owner.ID,
	})
	require.ErrorIs(t, err, ErrTitleRequired)

	_, err = env.tasks.CreateTask(CreateTaskInput{
		BoardID:   board.ID,
		Title:     "Bad status",
		Status:    "Doing",
		CreatorID: owner.ID,
	})
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = env.tasks.CreateTask(CreateTaskInput{
		BoardID:   board.ID,
		Title:     "Bad priority",
		Priority:  "Urgent",
		CreatorID: owner.ID,
	})
	require.ErrorIs(t, err, ErrInvalidPriority)

	// Assignee must be a member of the project.
	_, err = env.tasks.CreateTask(CreateTaskInput{
		BoardID:    board.ID,
		Title:      "Assigned out",
		AssignedTo: &outsider.ID,
		CreatorID:  owner.ID,
	})
	require.ErrorIs(t, err, ErrInvalidAssignee)
}

func TestTaskService_Move(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")
	task := env.createTask(t, board.ID, owner.ID, "Write docs", models.StatusTodo, 0)

	require.NoError(t, env.tasks.Move(task.ID, models.StatusInProgress, owner.ID))

	moved, err := env.tasks.GetTask(task.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, moved.Status)
	require.Nil(t, moved.CompletedAt)

	var history []models.TaskHistory
	require.NoError(t, env.db.Where("task_id = ?", task.ID).Find(&history).Error)
	require.Len(t, history, 1)
	require.Equal(t, "status", history[0].Field)
	require.Equal(t, string(models.StatusTodo), history[0].OldValue)
	require.Equal(t, string(models.StatusInProgress), history[0].NewValue)
}

func TestTaskService_Move_BackwardsAndCompletion(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")
	task := env.createTask(t, board.ID, owner.ID, "Ship it", models.StatusReview, 0)

	// Review -> Done stamps completed_at.
	require.NoError(t, env.tasks.Move(task.ID, models.StatusDone, owner.ID))
	done, err := env.tasks.GetTask(task.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	// Done -> To Do is a legal backwards move and clears completed_at.
	require.NoError(t, env.tasks.Move(task.ID, models.StatusTodo, owner.ID))
	reopened, err := env.tasks.GetTask(task.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusTodo, reopened.Status)
	require.Nil(t, reopened.CompletedAt)
}

func TestTaskService_Move_Idempotent(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")
	task := env.createTask(t, board.ID, owner.ID, "Steady", models.StatusInProgress, 3)

	// Moving to the current column succeeds and records nothing.
	require.NoError(t, env.tasks.Move(task.ID, models.StatusInProgress, owner.ID))

	same, err := env.tasks.GetTask(task.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, same.Status)
	require.Equal(t, 3, same.OrderIndex)

	var count int64
	require.NoError(t, env.db.Model(&models.TaskHistory{}).Where("task_id = ?", task.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestTaskService_Move_InvalidStatus(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")
	task := env.createTask(t, board.ID, owner.ID, "Stay put", models.StatusTodo, 0)

	err := env.tasks.Move(task.ID, "Blocked", owner.ID)
	require.ErrorIs(t, err, ErrInvalidStatus)

	// Rejected moves leave the task untouched.
	unchanged, err := env.tasks.GetTask(task.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusTodo, unchanged.Status)
}

func TestTaskService_Move_Permissions(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	viewer := env.createUser(t, "viewer", models.GlobalRoleMember)
	outsider := env.createUser(t, "outsider", models.GlobalRoleMember)
	admin := env.createUser(t, "admin", models.GlobalRoleAdmin)
	project := env.createProject(t, owner.ID, "Website")
	env.addMember(t, project.ID, viewer.ID, models.RoleViewer)
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")
	task := env.createTask(t, board.ID, owner.ID, "Guarded", models.StatusTodo, 0)

	err := env.tasks.Move(task.ID, models.StatusDone, viewer.ID)
	require.ErrorIs(t, err, access.ErrInsufficientRole)

	err = env.tasks.Move(task.ID, models.StatusDone, outsider.ID)
	require.ErrorIs(t, err, access.ErrNotAMember)

	// Global admin privilege does not extend to task mutations: without a
	// membership the move is denied like anyone else's.
	err = env.tasks.Move(task.ID, models.StatusDone, admin.ID)
	require.ErrorIs(t, err, access.ErrNotAMember)

	unchanged, err := env.tasks.GetTask(task.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusTodo, unchanged.Status)
}

func TestTaskService_Move_TaskNotFound(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	env.createProject(t, owner.ID, "Website")

	err := env.tasks.Move(4242, models.StatusDone, owner.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_Reorder(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")
	task := env.createTask(t, board.ID, owner.ID, "Drag me", models.StatusTodo, 0)

	// Reorder within the current column.
	require.NoError(t, env.tasks.Reorder(task.ID, 5, "", owner.ID))
	got, err := env.tasks.GetTask(task.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, 5, got.OrderIndex)
	require.Equal(t, models.StatusTodo, got.Status)

	// Reorder with a column change in one call.
	require.NoError(t, env.tasks.Reorder(task.ID, 0, models.StatusReview, owner.ID))
	got, err = env.tasks.GetTask(task.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.OrderIndex)
	require.Equal(t, models.StatusReview, got.Status)

	err = env.tasks.Reorder(task.ID, 1, "Nowhere", owner.ID)
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTaskService_UpdateTask(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	editor := env.createUser(t, "editor", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	env.addMember(t, project.ID, editor.ID, models.RoleEditor)
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")
	task := env.createTask(t, board.ID, owner.ID, "Before", models.StatusTodo, 0)

	title := "After"
	priority := models.PriorityHigh
	updated, err := env.tasks.UpdateTask(task.ID, editor.ID, UpdateTaskInput{
		Title:      &title,
		Priority:   &priority,
		AssignedTo: &editor.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "After", updated.Title)
	require.Equal(t, models.PriorityHigh, updated.Priority)
	require.NotNil(t, updated.AssignedTo)
	require.Equal(t, editor.ID, *updated.AssignedTo)

	// Clearing the assignee is distinct from leaving it alone.
	updated, err = env.tasks.UpdateTask(task.ID, editor.ID, UpdateTaskInput{ClearAssignee: true})
	require.NoError(t, err)
	require.Nil(t, updated.AssignedTo)

	empty := " "
	_, err = env.tasks.UpdateTask(task.ID, editor.ID, UpdateTaskInput{Title: &empty})
	require.ErrorIs(t, err, ErrTitleEmpty)
}

func TestTaskService_DeleteTask(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	viewer := env.createUser(t, "viewer", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	env.addMember(t, project.ID, viewer.ID, models.RoleViewer)
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")
	task := env.createTask(t, board.ID, owner.ID, "Doomed", models.StatusTodo, 0)

	err := env.tasks.DeleteTask(task.ID, viewer.ID)
	require.ErrorIs(t, err, access.ErrInsufficientRole)

	require.NoError(t, env.tasks.DeleteTask(task.ID, owner.ID))

	_, err = env.tasks.GetTask(task.ID, owner.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)
}
