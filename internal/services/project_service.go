package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"gitboard/internal/models"
	"gitboard/internal/repository"
)

var (
	ErrInvalidProjectName    = errors.New("project name cannot be empty")
	ErrInvalidProjectStatus  = errors.New("invalid project status")
	ErrInvalidProjectRole    = errors.New("invalid project role")
	ErrAlreadyProjectMember  = errors.New("user is already a member of this project")
	ErrProjectMemberNotFound = errors.New("project member not found")
	ErrOwnerRoleReserved     = errors.New("a project has exactly one owner; use ownership transfer")
	ErrCannotRemoveOwner     = errors.New("the project owner cannot be removed")
	ErrCannotRemoveYourself  = errors.New("cannot remove yourself from the project")
)

// ProjectService provides business logic for project and membership
// operations. The exactly-one-owner invariant lives here, not in storage.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	access      *AccessService
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, access *AccessService) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		access:      access,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	OwnerID     uint64
	StartDate   *time.Time
	EndDate     *time.Time
	Color       string
}

// CreateProject creates a project and its single owner membership atomically.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidProjectName
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     input.OwnerID,
		Status:      models.ProjectStatusActive,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Color:       input.Color,
	}

	owner := &models.ProjectMember{
		UserID:   input.OwnerID,
		Role:     models.RoleOwner,
		JoinedAt: time.Now(),
	}

	if err := s.projectRepo.CreateWithOwner(project, owner); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjectsForUser returns the memberships (with projects) of a user.
func (s *ProjectService) ListProjectsForUser(userID uint64) ([]models.ProjectMember, error) {
	memberships, err := s.projectRepo.ListMembershipsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return memberships, nil
}

// GetProjectWithMembers returns a project, its members and the actor's role.
func (s *ProjectService) GetProjectWithMembers(projectID, actorID uint64) (*models.Project, []models.ProjectMember, models.ProjectRole, error) {
	decision, err := s.access.Authorize(projectID, actorID,
		models.RoleOwner, models.RoleEditor, models.RoleViewer)
	if err != nil {
		return nil, nil, "", err
	}

	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, "", ErrProjectNotFound
		}
		return nil, nil, "", fmt.Errorf("failed to find project: %w", err)
	}

	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to list project members: %w", err)
	}

	return project, members, decision.Role, nil
}

// UpdateProjectInput represents optional field updates for a project.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Color       *string
}

// UpdateProject updates project fields; owner only.
func (s *ProjectService) UpdateProject(projectID, actorID uint64, input UpdateProjectInput) (*models.Project, error) {
	if _, err := s.access.Authorize(projectID, actorID, models.RoleOwner); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if input.Color != nil {
		project.Color = *input.Color
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// SetProjectStatus moves a project between active, archived and completed.
func (s *ProjectService) SetProjectStatus(projectID, actorID uint64, status models.ProjectStatus) (*models.Project, error) {
	if !models.ValidProjectStatus(status) {
		return nil, ErrInvalidProjectStatus
	}

	if _, err := s.access.Authorize(projectID, actorID, models.RoleOwner); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	project.Status = status
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project and everything under it; owner only.
func (s *ProjectService) DeleteProject(projectID, actorID uint64) error {
	if _, err := s.access.Authorize(projectID, actorID, models.RoleOwner); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// AddMember adds a member with an editor or viewer role; owner only. The
// owner role is never granted here, keeping the single-owner invariant.
func (s *ProjectService) AddMember(projectID, actorID, userID uint64, role models.ProjectRole) (*models.ProjectMember, error) {
	if !models.ValidProjectRole(role) {
		return nil, ErrInvalidProjectRole
	}
	if role == models.RoleOwner {
		return nil, ErrOwnerRoleReserved
	}

	if _, err := s.access.Authorize(projectID, actorID, models.RoleOwner); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	existing, err := s.projectRepo.FindMemberships(projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrAlreadyProjectMember
	}

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		JoinedAt:  time.Now(),
	}

	if err := s.projectRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// ChangeMemberRole switches a member between editor and viewer; owner only.
// Promoting to owner or demoting the owner goes through TransferOwnership.
func (s *ProjectService) ChangeMemberRole(projectID, actorID, userID uint64, role models.ProjectRole) error {
	if !models.ValidProjectRole(role) {
		return ErrInvalidProjectRole
	}
	if role == models.RoleOwner {
		return ErrOwnerRoleReserved
	}

	if _, err := s.access.Authorize(projectID, actorID, models.RoleOwner); err != nil {
		return err
	}

	memberships, err := s.projectRepo.FindMemberships(projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to find member: %w", err)
	}
	if len(memberships) == 0 {
		return ErrProjectMemberNotFound
	}
	if memberships[0].Role == models.RoleOwner {
		return ErrOwnerRoleReserved
	}

	if err := s.projectRepo.UpdateMemberRole(projectID, userID, role); err != nil {
		return fmt.Errorf("failed to change member role: %w", err)
	}

	return nil
}

// TransferOwnership hands the owner role to another member; owner only.
func (s *ProjectService) TransferOwnership(projectID, actorID, newOwnerID uint64) error {
	if _, err := s.access.Authorize(projectID, actorID, models.RoleOwner); err != nil {
		return err
	}

	memberships, err := s.projectRepo.FindMemberships(projectID, newOwnerID)
	if err != nil {
		return fmt.Errorf("failed to find member: %w", err)
	}
	if len(memberships) == 0 {
		return ErrProjectMemberNotFound
	}

	if err := s.projectRepo.TransferOwnership(projectID, actorID, newOwnerID); err != nil {
		return fmt.Errorf("failed to transfer ownership: %w", err)
	}

	return nil
}

// RemoveMember removes a member; owner only, never the owner themselves.
func (s *ProjectService) RemoveMember(projectID, actorID, targetID uint64) error {
	if targetID == actorID {
		return ErrCannotRemoveYourself
	}

	if _, err := s.access.Authorize(projectID, actorID, models.RoleOwner); err != nil {
		return err
	}

	memberships, err := s.projectRepo.FindMemberships(projectID, targetID)
	if err != nil {
		return fmt.Errorf("failed to find member: %w", err)
	}
	if len(memberships) == 0 {
		return ErrProjectMemberNotFound
	}
	if memberships[0].Role == models.RoleOwner {
		return ErrCannotRemoveOwner
	}

	if err := s.projectRepo.RemoveMember(projectID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}
