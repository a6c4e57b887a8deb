package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gitboard/internal/models"
	"gitboard/internal/repository"
)

func setupDashboard(t *testing.T, env serviceTestEnv) *DashboardService {
	t.Helper()
	return NewDashboardService(
		repository.NewUserRepository(env.db),
		repository.NewProjectRepository(env.db),
		repository.NewTaskRepository(env.db),
	)
}

func TestDashboardService_UserSummary(t *testing.T) {
	env := setupServiceTestEnv(t)
	dashboard := setupDashboard(t, env)

	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	other := env.createUser(t, "other", models.GlobalRoleMember)

	p1 := env.createProject(t, owner.ID, "Website")
	p2 := env.createProject(t, owner.ID, "Backend")
	b1 := env.createBoard(t, p1.ID, owner.ID, "Sprint 1")
	b2 := env.createBoard(t, p2.ID, owner.ID, "Sprint 1")

	env.createTask(t, b1.ID, owner.ID, "One", models.StatusTodo, 0)
	env.createTask(t, b1.ID, owner.ID, "Two", models.StatusDone, 0)
	env.createTask(t, b2.ID, owner.ID, "Three", models.StatusTodo, 0)

	// A project the user is not part of must not leak into the totals.
	foreign := env.createProject(t, other.ID, "Private")
	fb := env.createBoard(t, foreign.ID, other.ID, "Hidden")
	env.createTask(t, fb.ID, other.ID, "Secret", models.StatusTodo, 0)

	summary, err := dashboard.UserSummary(owner.ID)
	require.NoError(t, err)
	require.Equal(t, 2, summary.ProjectCount)
	require.Equal(t, int64(2), summary.StatusTotals[models.StatusTodo])
	require.Equal(t, int64(1), summary.StatusTotals[models.StatusDone])
	require.Equal(t, int64(0), summary.StatusTotals[models.StatusReview])
}

func TestDashboardService_UserSummary_NoProjects(t *testing.T) {
	env := setupServiceTestEnv(t)
	dashboard := setupDashboard(t, env)
	loner := env.createUser(t, "loner", models.GlobalRoleMember)

	summary, err := dashboard.UserSummary(loner.ID)
	require.NoError(t, err)
	require.Zero(t, summary.ProjectCount)
	for _, status := range models.TaskStatuses() {
		require.Zero(t, summary.StatusTotals[status])
	}
}

func TestDashboardService_AdminSummary(t *testing.T) {
	env := setupServiceTestEnv(t)
	dashboard := setupDashboard(t, env)

	admin := env.createUser(t, "admin", models.GlobalRoleAdmin)
	owner := env.createUser(t, "owner", models.GlobalRoleMember)
	project := env.createProject(t, owner.ID, "Website")
	board := env.createBoard(t, project.ID, owner.ID, "Sprint 1")
	env.createTask(t, board.ID, owner.ID, "Done one", models.StatusDone, 0)
	env.createTask(t, board.ID, owner.ID, "Open one", models.StatusTodo, 0)

	archived := env.createProject(t, owner.ID, "Old")
	_, err := env.projects.SetProjectStatus(archived.ID, owner.ID, models.ProjectStatusArchived)
	require.NoError(t, err)

	stats, err := dashboard.AdminSummary(admin.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalUsers)
	require.Equal(t, int64(1), stats.ActiveProjects)
	require.Equal(t, int64(1), stats.CompletedTasks)

	_, err = dashboard.AdminSummary(owner.ID)
	require.ErrorIs(t, err, ErrAdminOnly)
}
