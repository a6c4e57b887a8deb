package services

import (
	"errors"
	"fmt"

	"gitboard/internal/models"
	"gitboard/internal/repository"
)

var ErrAdminOnly = errors.New("administrator access required")

// DashboardService aggregates cross-project task counts for a user and
// instance-wide statistics for administrators.
type DashboardService struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(userRepo repository.UserRepository, projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository) *DashboardService {
	return &DashboardService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
	}
}

// UserDashboard is the per-user summary: task totals per status across every
// project the user belongs to, plus the membership count itself.
type UserDashboard struct {
	ProjectCount int                         `json:"project_count"`
	StatusTotals map[models.TaskStatus]int64 `json:"status_totals"`
}

// UserSummary computes the dashboard for a user from all projects they are a
// member of.
func (s *DashboardService) UserSummary(userID uint64) (*UserDashboard, error) {
	memberships, err := s.projectRepo.ListMembershipsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	projectIDs := make([]uint64, 0, len(memberships))
	for _, m := range memberships {
		projectIDs = append(projectIDs, m.ProjectID)
	}

	totals, err := s.taskRepo.StatusTotals(projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute status totals: %w", err)
	}

	return &UserDashboard{
		ProjectCount: len(memberships),
		StatusTotals: totals,
	}, nil
}

// AdminStats is the instance-wide view available to global admins.
type AdminStats struct {
	TotalUsers     int64 `json:"total_users"`
	ActiveProjects int64 `json:"active_projects"`
	CompletedTasks int64 `json:"completed_tasks"`
}

// AdminSummary computes instance-wide statistics. Only global admins may
// call it.
func (s *DashboardService) AdminSummary(actorID uint64) (*AdminStats, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	users, err := s.userRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	projects, err := s.projectRepo.CountByStatus(models.ProjectStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	done, err := s.taskRepo.CountByStatus(models.StatusDone)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	return &AdminStats{
		TotalUsers:     users,
		ActiveProjects: projects,
		CompletedTasks: done,
	}, nil
}
