package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/cams/internal/models"
	"github.com/noah-isme/cams/internal/seed"
	appErrors "github.com/noah-isme/cams/pkg/errors"
)

type userStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	Read(ctx context.Context, id string) (models.User, error)
	Update(ctx context.Context, user models.User) error
	IsEmpty() bool
}

// AccountConfig controls password hashing and the first-run dataset.
type AccountConfig struct {
	BcryptCost      int
	DefaultPassword string
}

// LoginRequest is the payload checked before a credential lookup.
type LoginRequest struct {
	Role     models.UserRole `validate:"required,oneof=STUDENT STAFF"`
	ID       string          `validate:"required"`
	Password string
}

// ChangePasswordRequest carries the current and the new password.
type ChangePasswordRequest struct {
	OldPassword string
	NewPassword string `validate:"required,min=6,max=72,nefield=OldPassword"`
}

// AccountService authenticates users and keeps their records.
type AccountService struct {
	students  userStore
	staff     userStore
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AccountConfig
}

// NewAccountService constructs an AccountService.
func NewAccountService(students, staff userStore, cfg AccountConfig, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.DefaultPassword == "" {
		cfg.DefaultPassword = "password"
	}
	return &AccountService{students: students, staff: staff, validator: validate, logger: logger, cfg: cfg}
}

// Bootstrap populates both user repositories from the embedded dataset when
// neither holds any account. It returns the number of accounts created.
func (s *AccountService) Bootstrap(ctx context.Context) (int, error) {
	if !s.students.IsEmpty() || !s.staff.IsEmpty() {
		return 0, nil
	}
	data, err := seed.Load(s.cfg.DefaultPassword, s.cfg.BcryptCost)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load default accounts")
	}

	created := 0
	for _, u := range data.Students {
		if _, err := s.students.Create(ctx, u); err != nil {
			return created, err
		}
		created++
	}
	for _, u := range data.Staff {
		if _, err := s.staff.Create(ctx, u); err != nil {
			return created, err
		}
		created++
	}
	s.logger.Info("default accounts created", zap.Int("students", len(data.Students)), zap.Int("staff", len(data.Staff)))
	return created, nil
}

// Login returns the user identified by role and id when the password matches.
func (s *AccountService) Login(ctx context.Context, role models.UserRole, id, password string) (models.User, error) {
	req := LoginRequest{Role: role, ID: id, Password: password}
	if err := s.validator.Struct(req); err != nil {
		return models.User{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid login payload")
	}

	user, err := s.repoFor(role).Read(ctx, id)
	if err != nil {
		s.logger.Debug("login for unknown user", zap.String("role", string(role)), zap.String("user_id", id))
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("login with wrong password", zap.String("user_id", id))
		return models.User{}, appErrors.Clone(appErrors.ErrPasswordIncorrect, "password incorrect")
	}
	s.logger.Info("user logged in", zap.String("role", string(role)), zap.String("user_id", id))
	return user, nil
}

// UpdateUser writes the user back to the repository of its role.
func (s *AccountService) UpdateUser(ctx context.Context, user models.User) error {
	if !user.Role.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown user role %q", user.Role))
	}
	return s.repoFor(user.Role).Update(ctx, user)
}

// ChangePassword verifies the current password and stores a hash of the new one.
func (s *AccountService) ChangePassword(ctx context.Context, user models.User, oldPassword, newPassword string) (models.User, error) {
	if !user.Role.Valid() {
		return models.User{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown user role %q", user.Role))
	}
	req := ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	if err := s.validator.Struct(req); err != nil {
		return models.User{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid new password")
	}

	current, err := s.repoFor(user.Role).Read(ctx, user.ID)
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(oldPassword)); err != nil {
		return models.User{}, appErrors.Clone(appErrors.ErrPasswordIncorrect, "current password incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return models.User{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to hash password")
	}
	current.PasswordHash = string(hash)
	if err := s.repoFor(user.Role).Update(ctx, current); err != nil {
		return current, err
	}
	s.logger.Info("password changed", zap.String("user_id", current.ID))
	return current, nil
}

// GetStudent returns the student with the given id.
func (s *AccountService) GetStudent(ctx context.Context, id string) (models.User, error) {
	return s.students.Read(ctx, id)
}

// GetStaff returns the staff member with the given id.
func (s *AccountService) GetStaff(ctx context.Context, id string) (models.User, error) {
	return s.staff.Read(ctx, id)
}

func (s *AccountService) repoFor(role models.UserRole) userStore {
	if role == models.RoleStaff {
		return s.staff
	}
	return s.students
}
