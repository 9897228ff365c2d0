package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/hostelhub/hostel-backend/internal/access"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/config"
	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/pkg/jwt"
	"github.com/hostelhub/hostel-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const msgInvalidCredentials = "invalid email or password"

// AuthService manages accounts and issues tokens
type AuthService struct {
	store          database.Store
	jwtService     *jwt.Service
	phoneValidator *validator.PhoneValidator
	cfg            config.AuthConfig
	bcryptCost     int
	logger         *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	store database.Store,
	jwtService *jwt.Service,
	phoneValidator *validator.PhoneValidator,
	cfg config.AuthConfig,
	bcryptCost int,
	logger *logrus.Logger,
) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		store:          store,
		jwtService:     jwtService,
		phoneValidator: phoneValidator,
		cfg:            cfg,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Register creates an account and signs it in
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleTenant
	}
	if !role.Valid() {
		return nil, apperror.Validation("invalid role: must be tenant or matron")
	}
	if role == models.RoleMatron && !s.cfg.AllowMatronRegistration {
		return nil, apperror.Forbidden("matron accounts cannot be self-registered")
	}

	phone, err := s.phoneValidator.Validate(req.Phone)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperror.Internal("Failed to create account", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		Phone:        phone,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperror.Conflict("a user with this email already exists")
		}
		return nil, storeError(err, "user")
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User registered")

	return s.issueTokens(user)
}

// Login verifies credentials and returns a fresh token pair
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.store.Users().GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperror.Unauthenticated(msgInvalidCredentials)
		}
		return nil, storeError(err, "user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthenticated(msgInvalidCredentials)
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new token pair. The role is
// reloaded so a changed account is reflected immediately.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnauthenticated, "invalid or expired refresh token", err)
	}

	user, err := s.store.Users().GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperror.Unauthenticated("account no longer exists")
		}
		return nil, storeError(err, "user")
	}

	return s.issueTokens(user)
}

// Me returns the caller's account
func (s *AuthService) Me(ctx context.Context, caller access.Caller) (*models.User, error) {
	if err := access.Check(caller, access.OpReadProfile); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, caller.ID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// UpdateProfile changes the caller's name, email or phone
func (s *AuthService) UpdateProfile(ctx context.Context, caller access.Caller, req models.UpdateProfileRequest) (*models.User, error) {
	if err := access.Check(caller, access.OpUpdateProfile); err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByID(ctx, caller.ID)
	if err != nil {
		return nil, storeError(err, "user")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.Validation("name cannot be empty")
		}
		user.Name = name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if !strings.Contains(email, "@") {
			return nil, apperror.Validation("invalid email address")
		}
		user.Email = email
	}
	if req.Phone != nil {
		phone, err := s.phoneValidator.Validate(*req.Phone)
		if err != nil {
			return nil, apperror.Validation(err.Error())
		}
		user.Phone = phone
	}

	if err := s.store.Users().Update(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperror.Conflict("a user with this email already exists")
		}
		return nil, storeError(err, "user")
	}
	return user, nil
}

// ChangePassword replaces the caller's password after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, caller access.Caller, req models.ChangePasswordRequest) error {
	if err := access.Check(caller, access.OpChangePassword); err != nil {
		return err
	}

	user, err := s.store.Users().GetByID(ctx, caller.ID)
	if err != nil {
		return storeError(err, "user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperror.Validation("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return apperror.Internal("Failed to change password", err)
	}
	user.PasswordHash = string(hash)

	if err := s.store.Users().Update(ctx, user); err != nil {
		return storeError(err, "user")
	}

	s.logger.WithField("user_id", user.ID).Info("Password changed")
	return nil
}

// ListTenants returns every tenant account, for matrons registering visitors
func (s *AuthService) ListTenants(ctx context.Context, caller access.Caller) ([]models.User, error) {
	if err := access.Check(caller, access.OpListTenants); err != nil {
		return nil, err
	}
	users, err := s.store.Users().List(ctx, models.UserFilter{Role: models.RoleTenant})
	if err != nil {
		return nil, storeError(err, "user")
	}
	return users, nil
}

func (s *AuthService) issueTokens(user *models.User) (*models.AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperror.Internal("Failed to generate access token", err)
	}
	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, apperror.Internal("Failed to generate refresh token", err)
	}

	return &models.AuthResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.AccessTokenExpiry().Seconds()),
		User:         user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
