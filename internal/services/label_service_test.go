package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gitboard/internal/access"
	"gitboard/internal/models"
)

func TestLabelService_CreateLabel(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	viewer := env.createUser(t, "viewer", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	env.addMember(t, project.ID, viewer.ID, models.RoleViewer)

	label, err := env.labels.CreateLabel(project.ID, "bug", "", owner.ID)
	require.NoError(t, err)
	require.Equal(t, "bug", label.Name)
	require.Equal(t, defaultLabelColor, label.Color)

	// Names are unique per project.
	_, err = env.labels.CreateLabel(project.ID, "bug", "#FF0000", owner.ID)
	require.ErrorIs(t, err, ErrLabelNameTaken)

	// The same name is free in another project.
	other := env.createProject(t, owner.ID, "Backend")
	_, err = env.labels.CreateLabel(other.ID, "bug", "", owner.ID)
	require.NoError(t, err)

	_, err = env.labels.CreateLabel(project.ID, " ", "", owner.ID)
	require.ErrorIs(t, err, ErrLabelNameRequired)

	_, err = env.labels.CreateLabel(project.ID, "feature", "", viewer.ID)
	require.ErrorIs(t, err, access.ErrInsufficientRole)
}

func TestLabelService_AttachDetach(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")
	task := env.createTask(t, board.ID, owner.ID, "Tagged", models.StatusTodo, 0)

	label, err := env.labels.CreateLabel(project.ID, "bug", "", owner.ID)
	require.NoError(t, err)

	require.NoError(t, env.labels.AttachLabel(task.ID, label.ID, owner.ID))
	// Attaching twice is a no-op, not an error.
	require.NoError(t, env.labels.AttachLabel(task.ID, label.ID, owner.ID))

	got, err := env.tasks.GetTask(task.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, got.Labels, 1)

	require.NoError(t, env.labels.DetachLabel(task.ID, label.ID, owner.ID))
	got, err = env.tasks.GetTask(task.ID, owner.ID)
	require.NoError(t, err)
	require.Empty(t, got.Labels)
}

func TestLabelService_AttachCrossProject(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	other := env.createProject(t, owner.ID, "Backend")
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")
	task := env.createTask(t, board.ID, owner.ID, "Here", models.StatusTodo, 0)

	foreign, err := env.labels.CreateLabel(other.ID, "bug", "", owner.ID)
	require.NoError(t, err)

	err = env.labels.AttachLabel(task.ID, foreign.ID, owner.ID)
	require.ErrorIs(t, err, ErrLabelProjectMismatch)
}

func TestLabelService_DeleteLabel(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")
	task := env.createTask(t, board.ID, owner.ID, "Tagged", models.StatusTodo, 0)

	label, err := env.labels.CreateLabel(project.ID, "bug", "", owner.ID)
	require.NoError(t, err)
	require.NoError(t, env.labels.AttachLabel(task.ID, label.ID, owner.ID))

	require.NoError(t, env.labels.DeleteLabel(label.ID, owner.ID))

	// The link rows go with the label.
	got, err := env.tasks.GetTask(task.ID, owner.ID)
	require.NoError(t, err)
	require.Empty(t, got.Labels)

	err = env.labels.DeleteLabel(label.ID, owner.ID)
	require.ErrorIs(t, err, ErrLabelNotFound)
}
