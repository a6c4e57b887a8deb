package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gitboard/internal/models"
)

func TestAuthService_Signup(t *testing.T) {
	env := setupServiceTestEnv(t)

	user, err := env.auth.Signup(SignupInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, models.GlobalRoleMember, user.Role)
	require.True(t, user.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("supersecret")))

	_, err = env.auth.Signup(SignupInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "supersecret",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = env.auth.Signup(SignupInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "supersecret",
	})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = env.auth.Signup(SignupInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "short",
	})
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAuthService_Login(t *testing.T) {
	env := setupServiceTestEnv(t)

	created, err := env.auth.Signup(SignupInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	user, err := env.auth.Login(LoginInput{Email: "alice@example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)

	_, err = env.auth.Login(LoginInput{Email: "alice@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login(LoginInput{Email: "nobody@example.com", Password: "supersecret"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	env := setupServiceTestEnv(t)

	user, err := env.auth.Signup(SignupInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_active", false).Error)

	_, err = env.auth.Login(LoginInput{Email: "alice@example.com", Password: "supersecret"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_DeleteUser(t *testing.T) {
	env := setupServiceTestEnv(t)

	admin := env.createUser(t, "admin", models.GlobalRoleAdmin)
	member := env.createUser(t, "member", models.GlobalRoleMember)
	target := env.createUser(t, "target", models.GlobalRoleMember)

	err := env.auth.DeleteUser(member.ID, target.ID)
	require.ErrorIs(t, err, ErrAdminOnly)

	err = env.auth.DeleteUser(admin.ID, admin.ID)
	require.ErrorIs(t, err, ErrCannotDeleteSelf)

	err = env.auth.DeleteUser(admin.ID, 9999)
	require.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, env.auth.DeleteUser(admin.ID, target.ID))
	_, err = env.auth.GetUser(target.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_DeleteUser_AuthoredTasks(t *testing.T) {
	env := setupServiceTestEnv(t)

	admin := env.createUser(t, "admin", models.GlobalRoleAdmin)
	author := env.createUser(t, "author", models.GlobalRoleMember)
	project := env.createProject(t, author.ID, "Website")
	board := env.createBoard(t, project.ID, author.ID, "Sprint 1")
	task := env.createTask(t, board.ID, author.ID, "Write docs", models.StatusTodo, 0)

	err := env.auth.DeleteUser(admin.ID, author.ID)
	require.ErrorIs(t, err, ErrUserHasTasks)

	// Reassigning the authored task unblocks the purge.
	require.NoError(t, env.db.Model(&models.Task{}).Where("id = ?", task.ID).
		Update("created_by", admin.ID).Error)
	require.NoError(t, env.auth.DeleteUser(admin.ID, author.ID))
}
