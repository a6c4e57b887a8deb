package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"gitboard/internal/access"
	"gitboard/internal/models"
	"gitboard/internal/repository"
)

var ErrProjectNotFound = errors.New("project not found")

// AccessService resolves an actor and their membership rows and hands the
// decision to the access evaluator. Every mutating operation in the other
// services starts with an Authorize call; there is no role middleware.
type AccessService struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
}

// NewAccessService creates a new AccessService.
func NewAccessService(userRepo repository.UserRepository, projectRepo repository.ProjectRepository) *AccessService {
	return &AccessService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
	}
}

// Authorize answers whether userID may perform an action requiring one of
// the given roles on the project.
func (s *AccessService) Authorize(projectID, userID uint64, required ...models.ProjectRole) (access.Decision, error) {
	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Decision{}, ErrProjectNotFound
		}
		return access.Decision{}, fmt.Errorf("failed to find project: %w", err)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Decision{}, ErrUserNotFound
		}
		return access.Decision{}, fmt.Errorf("failed to find user: %w", err)
	}

	memberships, err := s.projectRepo.FindMemberships(projectID, userID)
	if err != nil {
		return access.Decision{}, fmt.Errorf("failed to fetch memberships: %w", err)
	}

	return access.Evaluate(user, memberships, required...)
}
