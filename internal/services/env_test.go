package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gitboard/internal/models"
	"gitboard/internal/repository"
)

type serviceTestEnv struct {
	db       *gorm.DB
	access   *AccessService
	auth     *AuthService
	projects *ProjectService
	boards   *BoardService
	tasks    *TaskService
	labels   *LabelService
	comments *CommentService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Board{},
		&models.Label{},
		&models.Task{},
		&models.TaskComment{},
		&models.TaskHistory{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	access := NewAccessService(userRepo, projectRepo)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return serviceTestEnv{
		db:       db,
		access:   access,
		auth:     NewAuthService(userRepo),
		projects: NewProjectService(projectRepo, userRepo, access),
		boards:   NewBoardService(boardRepo, taskRepo, access),
		tasks:    NewTaskService(taskRepo, boardRepo, projectRepo, access),
		labels:   NewLabelService(labelRepo, taskRepo, boardRepo, access),
		comments: NewCommentService(commentRepo, taskRepo, boardRepo, access),
	}
}

func (env serviceTestEnv) createUser(t *testing.T, username string, role models.GlobalRole) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env serviceTestEnv) createProject(t *testing.T, ownerID uint64, name string) *models.Project {
	t.Helper()

	project, err := env.projects.CreateProject(CreateProjectInput{
		Name:    name,
		OwnerID: ownerID,
	})
	require.NoError(t, err)
	return project
}

func (env serviceTestEnv) addMember(t *testing.T, projectID, userID uint64, role models.ProjectRole) {
	t.Helper()

	require.NoError(t, env.db.Create(&models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		JoinedAt:  time.Now(),
	}).Error)
}

func (env serviceTestEnv) createBoard(t *testing.T, projectID, actorID uint64, name string) *models.Board {
	t.Helper()

	board, err := env.boards.CreateBoard(CreateBoardInput{
		ProjectID: projectID,
		Name:      name,
	}, actorID)
	require.NoError(t, err)
	return board
}

func (env serviceTestEnv) createTask(t *testing.T, boardID, creatorID uint64, title string, status models.TaskStatus, orderIndex int) *models.Task {
	t.Helper()

	task, err := env.tasks.CreateTask(CreateTaskInput{
		BoardID:    boardID,
		Title:      title,
		Status:     status,
		OrderIndex: orderIndex,
		CreatorID:  creatorID,
	})
	require.NoError(t, err)
	return task
}
