package service

import (
	"context"
	"testing"

	"easset/internal/middleware"
	"easset/internal/model"
	"easset/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserEnv(t *testing.T) (UserService, repository.UserRepository) {
	t.Helper()
	db := openTestDB(t)
	userRepo := repository.NewUserRepository(db)
	return NewUserService(userRepo, repository.NewTransactionManager(db)), userRepo
}

func TestLogin_ProvisionsUnknownEmailAsStaff(t *testing.T) {
	svc, _ := newUserEnv(t)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email: "Wichai.Srisuk@Mitrphol.com", Password: "anything",
	})
	require.NoError(t, err)
	assert.Equal(t, "wichai.srisuk@mitrphol.com", resp.User.Email)
	assert.Equal(t, "Wichai Srisuk", resp.User.DisplayName)
	assert.Equal(t, model.RoleStaff, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)

	token, err := jwt.Parse(resp.AccessToken, func(tk *jwt.Token) (interface{}, error) {
		return middleware.GetJWTSecret(), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, model.RoleStaff, claims["role"])
}

func TestLogin_SecondLoginReusesAccount(t *testing.T) {
	svc, _ := newUserEnv(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, LoginRequest{Email: "somsak@mitrphol.com", Password: "pw"})
	require.NoError(t, err)
	second, err := svc.Login(ctx, LoginRequest{Email: "SOMSAK@mitrphol.com", Password: "different"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	_, total, err := svc.List(ctx, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestLogin_DisabledAccountRejected(t *testing.T) {
	svc, userRepo := newUserEnv(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{Email: "gone@mitrphol.com", Password: "pw"})
	require.NoError(t, err)

	user, err := userRepo.FindByID(ctx, resp.User.ID)
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, userRepo.Update(ctx, user))

	_, err = svc.Login(ctx, LoginRequest{Email: "gone@mitrphol.com", Password: "pw"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestSetRole_ValidatesRole(t *testing.T) {
	svc, _ := newUserEnv(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{Email: "staff@mitrphol.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.SetRole(ctx, resp.User.ID.String(), "superuser")
	require.Error(t, err)

	updated, err := svc.SetRole(ctx, resp.User.ID.String(), model.RoleAccounting)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAccounting, updated.Role)

	me, err := svc.Me(ctx, resp.User.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.RoleAccounting, me.Role)
}
