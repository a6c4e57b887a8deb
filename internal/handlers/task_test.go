package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gitboard/internal/constants"
	"gitboard/internal/models"
	"gitboard/internal/repository"
	"gitboard/internal/services"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
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
	suite.Require().NoError(err)

	userRepo := repository.NewUserRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	boardRepo := repository.NewBoardRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	commentRepo := repository.NewCommentRepository(suite.db)
	auditRepo := repository.NewAuditLogRepository(suite.db)

	access := services.NewAccessService(userRepo, projectRepo)
	taskService := services.NewTaskService(taskRepo, boardRepo, projectRepo, access)
	commentService := services.NewCommentService(commentRepo, taskRepo, boardRepo, access)
	auditService := services.NewAuditService(auditRepo)

	suite.handler = NewTaskHandler(taskService, commentService, auditService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data

func (suite *TaskHandlerTestSuite) createTestUser(username string, role models.GlobalRole) *models.User {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		Role:         role,
		IsActive:     true,
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestProject(ownerID uint64) *models.Project {
	project := &models.Project{
		Name:    "Test Project",
		OwnerID: ownerID,
		Status:  models.ProjectStatusActive,
	}
	suite.db.Create(project)
	suite.db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    ownerID,
		Role:      models.RoleOwner,
		JoinedAt:  time.Now(),
	})
	return project
}

func (suite *TaskHandlerTestSuite) addTestMember(projectID, userID uint64, role models.ProjectRole) {
	suite.db.Create(&models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		JoinedAt:  time.Now(),
	})
}

func (suite *TaskHandlerTestSuite) createTestBoard(projectID uint64) *models.Board {
	board := &models.Board{ProjectID: projectID, Name: "Test Board"}
	suite.db.Create(board)
	return board
}

func (suite *TaskHandlerTestSuite) createTestTask(boardID, creatorID uint64, status models.TaskStatus) *models.Task {
	task := &models.Task{
		BoardID:   boardID,
		Title:     "Test Task",
		Status:    status,
		Priority:  models.PriorityMedium,
		CreatedBy: creatorID,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create an authenticated context with an :id path param
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64, taskID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)
	c.Params = gin.Params{{Key: "id", Value: taskID}}

	return c, w
}

// TestMoveTask_Success tests the move contract on a valid column change
func (suite *TaskHandlerTestSuite) TestMoveTask_Success() {
	owner := suite.createTestUser("owner", models.GlobalRoleMember)
	project := suite.createTestProject(owner.ID)
	board := suite.createTestBoard(project.ID)
	task := suite.createTestTask(board.ID, owner.ID, models.StatusTodo)

	body, _ := json.Marshal(map[string]string{"status": "In Progress"})
	c, w := suite.createAuthContext("POST", "/api/tasks/1/move", body, owner.ID, "1")

	suite.handler.MoveTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), true, response["success"])

	var moved models.Task
	suite.db.First(&moved, task.ID)
	assert.Equal(suite.T(), models.StatusInProgress, moved.Status)
}

// TestMoveTask_InvalidStatus tests rejection of an unknown column literal
func (suite *TaskHandlerTestSuite) TestMoveTask_InvalidStatus() {
	owner := suite.createTestUser("owner", models.GlobalRoleMember)
	project := suite.createTestProject(owner.ID)
	board := suite.createTestBoard(project.ID)
	task := suite.createTestTask(board.ID, owner.ID, models.StatusTodo)

	body, _ := json.Marshal(map[string]string{"status": "Doing"})
	c, w := suite.createAuthContext("POST", "/api/tasks/1/move", body, owner.ID, "1")

	suite.handler.MoveTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Invalid status", response["error"])

	var unchanged models.Task
	suite.db.First(&unchanged, task.ID)
	assert.Equal(suite.T(), models.StatusTodo, unchanged.Status)
}

// TestMoveTask_MissingStatus tests a request without the status field
func (suite *TaskHandlerTestSuite) TestMoveTask_MissingStatus() {
	owner := suite.createTestUser("owner", models.GlobalRoleMember)
	project := suite.createTestProject(owner.ID)
	board := suite.createTestBoard(project.ID)
	suite.createTestTask(board.ID, owner.ID, models.StatusTodo)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/move", []byte(`{}`), owner.ID, "1")

	suite.handler.MoveTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestMoveTask_ViewerForbidden tests that a viewer cannot move tasks
func (suite *TaskHandlerTestSuite) TestMoveTask_ViewerForbidden() {
	owner := suite.createTestUser("owner", models.GlobalRoleMember)
	viewer := suite.createTestUser("viewer", models.GlobalRoleMember)
	project := suite.createTestProject(owner.ID)
	suite.addTestMember(project.ID, viewer.ID, models.RoleViewer)
	board := suite.createTestBoard(project.ID)
	task := suite.createTestTask(board.ID, owner.ID, models.StatusTodo)

	body, _ := json.Marshal(map[string]string{"status": "Done"})
	c, w := suite.createAuthContext("POST", "/api/tasks/1/move", body, viewer.ID, "1")

	suite.handler.MoveTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Contains(suite.T(), response, "error")

	var unchanged models.Task
	suite.db.First(&unchanged, task.ID)
	assert.Equal(suite.T(), models.StatusTodo, unchanged.Status)
}

// TestMoveTask_NonMemberForbidden tests that an outsider cannot move tasks
func (suite *TaskHandlerTestSuite) TestMoveTask_NonMemberForbidden() {
	owner := suite.createTestUser("owner", models.GlobalRoleMember)
	outsider := suite.createTestUser("outsider", models.GlobalRoleMember)
	project := suite.createTestProject(owner.ID)
	board := suite.createTestBoard(project.ID)
	suite.createTestTask(board.ID, owner.ID, models.StatusTodo)

	body, _ := json.Marshal(map[string]string{"status": "Done"})
	c, w := suite.createAuthContext("POST", "/api/tasks/1/move", body, outsider.ID, "1")

	suite.handler.MoveTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestMoveTask_NotFound tests moving a task that does not exist
func (suite *TaskHandlerTestSuite) TestMoveTask_NotFound() {
	owner := suite.createTestUser("owner", models.GlobalRoleMember)
	suite.createTestProject(owner.ID)

	body, _ := json.Marshal(map[string]string{"status": "Done"})
	c, w := suite.createAuthContext("POST", "/api/tasks/999/move", body, owner.ID, "999")

	suite.handler.MoveTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestMoveTask_Unauthorized tests moving without authentication
func (suite *TaskHandlerTestSuite) TestMoveTask_Unauthorized() {
	body, _ := json.Marshal(map[string]string{"status": "Done"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/tasks/1/move", bytes.NewReader(body))
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.MoveTask(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestMoveTask_RecordsAudit tests that a successful move writes an audit entry
func (suite *TaskHandlerTestSuite) TestMoveTask_RecordsAudit() {
	owner := suite.createTestUser("owner", models.GlobalRoleMember)
	project := suite.createTestProject(owner.ID)
	board := suite.createTestBoard(project.ID)
	task := suite.createTestTask(board.ID, owner.ID, models.StatusTodo)

	body, _ := json.Marshal(map[string]string{"status": "Done"})
	c, w := suite.createAuthContext("POST", "/api/tasks/1/move", body, owner.ID, "1")

	suite.handler.MoveTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var entries []models.AuditLog
	suite.db.Where("entity_type = ? AND entity_id = ?", "task", task.ID).Find(&entries)
	assert.Len(suite.T(), entries, 1)
	assert.Equal(suite.T(), "task.move", entries[0].Action)
	assert.Equal(suite.T(), "Done", entries[0].Detail)
}

// TestReorderTask_Success tests explicit repositioning within a column
func (suite *TaskHandlerTestSuite) TestReorderTask_Success() {
	owner := suite.createTestUser("owner", models.GlobalRoleMember)
	project := suite.createTestProject(owner.ID)
	board := suite.createTestBoard(project.ID)
	task := suite.createTestTask(board.ID, owner.ID, models.StatusTodo)

	body, _ := json.Marshal(map[string]interface{}{"order_index": 4, "status": "Review"})
	c, w := suite.createAuthContext("POST", "/api/tasks/1/reorder", body, owner.ID, "1")

	suite.handler.ReorderTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var moved models.Task
	suite.db.First(&moved, task.ID)
	assert.Equal(suite.T(), 4, moved.OrderIndex)
	assert.Equal(suite.T(), models.StatusReview, moved.Status)
}

// TestGetHistory_Paginated tests the audit trail endpoint with a page size
func (suite *TaskHandlerTestSuite) TestGetHistory_Paginated() {
	owner := suite.createTestUser("owner", models.GlobalRoleMember)
	project := suite.createTestProject(owner.ID)
	board := suite.createTestBoard(project.ID)
	suite.createTestTask(board.ID, owner.ID, models.StatusTodo)

	for _, status := range []string{"In Progress", "Done"} {
		body, _ := json.Marshal(map[string]string{"status": status})
		c, w := suite.createAuthContext("POST", "/api/tasks/1/move", body, owner.ID, "1")
		suite.handler.MoveTask(c)
		suite.Require().Equal(http.StatusOK, w.Code)
	}

	c, w := suite.createAuthContext("GET", "/api/tasks/1/history?page=1&limit=1", nil, owner.ID, "1")
	suite.handler.GetHistory(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Entries    []models.AuditLog `json:"entries"`
		Pagination struct {
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Entries, 1)
	assert.Equal(suite.T(), "Done", response.Entries[0].Detail)
	assert.EqualValues(suite.T(), 2, response.Pagination.Total)
	assert.Equal(suite.T(), 1, response.Pagination.Limit)
}

// TestGetHistory_NonMemberForbidden tests that outsiders cannot read the trail
func (suite *TaskHandlerTestSuite) TestGetHistory_NonMemberForbidden() {
	owner := suite.createTestUser("owner", models.GlobalRoleMember)
	outsider := suite.createTestUser("outsider", models.GlobalRoleMember)
	project := suite.createTestProject(owner.ID)
	board := suite.createTestBoard(project.ID)
	suite.createTestTask(board.ID, owner.ID, models.StatusTodo)

	c, w := suite.createAuthContext("GET", "/api/tasks/1/history", nil, outsider.ID, "1")
	suite.handler.GetHistory(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestCreateTask_InvalidBoard tests creation against a missing board
func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidBoard() {
	owner := suite.createTestUser("owner", models.GlobalRoleMember)
	suite.createTestProject(owner.ID)

	body, _ := json.Marshal(map[string]interface{}{"title": "Orphan"})
	c, w := suite.createAuthContext("POST", "/api/boards/999/tasks", body, owner.ID, "999")

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
