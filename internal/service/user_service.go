package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/salvaalejos/ceitm-web/internal/models"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	ListTeam(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, id string) error
}

type userTokenRevoker interface {
	RevokeAllForUser(ctx context.Context, userID string) error
}

// CreateUserRequest is the admin account-creation payload.
type CreateUserRequest struct {
	Email        string          `json:"email" validate:"required,email"`
	Password     string          `json:"password" validate:"required,min=8"`
	FullName     string          `json:"full_name" validate:"required,min=5"`
	PhoneNumber  *string         `json:"phone_number"`
	InstagramURL *string         `json:"instagram_url" validate:"omitempty,url"`
	Role         models.UserRole `json:"role" validate:"required,oneof=admin_sys estructura coordinador concejal vocal"`
	Area         models.UserArea `json:"area" validate:"required"`
	Career       *string         `json:"career"`
	ImageURL     *string         `json:"image_url"`
}

// UpdateUserRequest is the admin account-edit payload.
type UpdateUserRequest struct {
	Email        string          `json:"email" validate:"required,email"`
	FullName     string          `json:"full_name" validate:"required,min=5"`
	PhoneNumber  *string         `json:"phone_number"`
	InstagramURL *string         `json:"instagram_url" validate:"omitempty,url"`
	Role         models.UserRole `json:"role" validate:"required,oneof=admin_sys estructura coordinador concejal vocal"`
	Area         models.UserArea `json:"area" validate:"required"`
	Career       *string         `json:"career"`
	ImageURL     *string         `json:"image_url"`
	Active       bool            `json:"active"`
}

// UpdateProfileRequest is the self-service profile payload. Role, area and
// career are not editable here.
type UpdateProfileRequest struct {
	FullName     string  `json:"full_name" validate:"required,min=5"`
	PhoneNumber  *string `json:"phone_number"`
	InstagramURL *string `json:"instagram_url" validate:"omitempty,url"`
	ImageURL     *string `json:"image_url"`
}

// UserService manages council member accounts.
type UserService struct {
	users     userRepository
	tokens    userTokenRevoker
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users userRepository, tokens userTokenRevoker, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{users: users, tokens: tokens, audit: audit, validator: validate, logger: logger}
}

// List returns accounts matching the admin filter.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, total, nil
}

// Team returns active members for the public team page.
func (s *UserService) Team(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListTeam(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list team")
	}
	return users, nil
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	return user, nil
}

// Create registers an account.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest, actor *models.JWTClaims) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if req.Role == models.RoleConcejal && (req.Career == nil || *req.Career == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a concejal account requires a career")
	}

	taken, err := s.users.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		InstagramURL: req.InstagramURL,
		Role:         req.Role,
		Area:         req.Area,
		Career:       req.Career,
		ImageURL:     req.ImageURL,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	s.recordAudit(ctx, actor, "CREAR_USUARIO", user.ID)
	return user, nil
}

// Update edits an account.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest, actor *models.JWTClaims) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.users.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	wasActive := user.Active
	user.Email = req.Email
	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	user.InstagramURL = req.InstagramURL
	user.Role = req.Role
	user.Area = req.Area
	user.Career = req.Career
	user.ImageURL = req.ImageURL
	user.Active = req.Active

	if err := s.users.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	if wasActive && !user.Active {
		if err := s.tokens.RevokeAllForUser(ctx, user.ID); err != nil {
			s.logger.Warn("failed to revoke sessions of deactivated user", zap.Error(err))
		}
	}
	s.recordAudit(ctx, actor, "EDITAR_USUARIO", user.ID)
	return user, nil
}

// UpdateProfile edits the caller's own public fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	user.InstagramURL = req.InstagramURL
	user.ImageURL = req.ImageURL

	if err := s.users.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return user, nil
}

// Deactivate disables an account and kills its sessions.
func (s *UserService) Deactivate(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor != nil && actor.UserID == id {
		return appErrors.Clone(appErrors.ErrValidation, "you cannot deactivate your own account")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.users.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate user")
	}
	if err := s.tokens.RevokeAllForUser(ctx, id); err != nil {
		s.logger.Warn("failed to revoke sessions of deactivated user", zap.Error(err))
	}
	s.recordAudit(ctx, actor, "BAJA_USUARIO", id)
	return nil
}

func (s *UserService) recordAudit(ctx context.Context, actor *models.JWTClaims, action string, resourceID string) {
	if actor == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		UserRole:   string(actor.Role),
		Action:     action,
		Module:     models.ModuleUsuarios,
		ResourceID: &resourceID,
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record user audit log", zap.Error(err))
	}
}
