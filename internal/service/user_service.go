package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"easset/internal/middleware"
	"easset/internal/model"
	"easset/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	User        model.User `json:"user"`
}

// UserService implements the mock authentication mode: any credential pair is
// accepted, and unknown emails are provisioned as staff on first login.
type UserService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
	SetRole(ctx context.Context, userID, role string) (*model.User, error)
}

type userService struct {
	userRepo  repository.UserRepository
	txManager repository.TransactionManager
}

func NewUserService(userRepo repository.UserRepository, txManager repository.TransactionManager) UserService {
	return &userService{userRepo: userRepo, txManager: txManager}
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user *model.User
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.userRepo.FindByEmail(txCtx, email)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up user: %w", err)
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user = &model.User{
			Email:       email,
			DisplayName: displayNameFromEmail(email),
			Password:    string(hashed),
			Role:        model.RoleStaff,
			IsActive:    true,
		}
		if err := s.userRepo.Create(txCtx, user); err != nil {
			return fmt.Errorf("failed to provision user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user account is disabled")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{AccessToken: token, User: *user}, nil
}

func displayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.ReplaceAll(local, ".", " ")
	local = strings.ReplaceAll(local, "_", " ")
	words := strings.Fields(local)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return email
	}
	return strings.Join(words, " ")
}

func (s *userService) issueToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"name": user.DisplayName,
		"role": user.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *userService) Me(ctx context.Context, userID string) (*model.User, error) {
	id, err := parseUUID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.userRepo.List(ctx, page, limit)
}

func (s *userService) SetRole(ctx context.Context, userID, role string) (*model.User, error) {
	switch role {
	case model.RoleAdmin, model.RoleAccounting, model.RoleStaff:
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}

	id, err := parseUUID(userID)
	if err != nil {
		return nil, err
	}

	var user *model.User
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.userRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("user not found: %w", err)
		}
		user.Role = role
		return s.userRepo.Update(txCtx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
