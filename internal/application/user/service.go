package user

import (
	"context"
	"errors"
	"strings"

	"travel-backend/internal/application/emails"
	policies "travel-backend/internal/application/policies/user"
	travelpolicy "travel-backend/internal/application/policies/travels"
	"travel-backend/internal/domain"
	"travel-backend/internal/infrastructure/database"
	"travel-backend/internal/pkg/apperr"
	"travel-backend/internal/pkg/constants"
	"travel-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken        = apperr.New(apperr.Duplicate, "Email already registered")
	ErrUserNotFound      = apperr.New(apperr.NotFound, "User not found")
	ErrIncorrectPassword = apperr.Invalid("Validation failed", map[string]string{"current_password": "is incorrect"})
)

const bcryptCost = 10

// Service holds DB and Redis for user operations.
type Service struct {
	DB    *gorm.DB
	Rdb   *redis.Client
	Email emails.Sender
}

// RegisterInput is the registration body.
type RegisterInput struct {
	Name     string  `json:"name" validate:"notblank,max=255"`
	Nickname *string `json:"nickname" validate:"omitempty,max=100"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,password"`
}

// Register creates an account and sends the welcome email.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Nickname:     in.Nickname,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         constants.User,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Unscoped().Model(&domain.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(u).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.UserID.String()).Msg("user registered")
	if s.Email != nil {
		if err := s.Email.SendWelcome(ctx, u.Email, u.Name); err != nil {
			log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("failed to send welcome email")
		}
	}
	return u, nil
}

// ViewUser returns a user by ID.
func (s *Service) ViewUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateProfileInput carries the fields to change; nil fields are left as is.
type UpdateProfileInput struct {
	Name            *string `json:"name" validate:"omitempty,notblank,max=255"`
	Nickname        *string `json:"nickname" validate:"omitempty,max=100"`
	Photo           *string `json:"photo" validate:"omitempty,url"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     *string `json:"new_password" validate:"omitempty,password"`
}

// UpdateProfile updates the actor's own profile. A password change requires the
// current password and ends every other session of the user.
func (s *Service) UpdateProfile(ctx context.Context, actor travelpolicy.Actor, currentSessionID string, in UpdateProfileInput) (*domain.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.ViewUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	upd := map[string]interface{}{}
	if in.Name != nil {
		upd["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Nickname != nil {
		upd["nickname"] = *in.Nickname
	}
	if in.Photo != nil {
		upd["photo"] = *in.Photo
	}
	passwordChanged := false
	if in.NewPassword != nil {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)) != nil {
			return nil, ErrIncorrectPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.NewPassword), bcryptCost)
		if err != nil {
			return nil, err
		}
		upd["password_hash"] = string(hash)
		passwordChanged = true
	}
	if len(upd) == 0 {
		return u, nil
	}
	if err := s.DB.WithContext(ctx).Model(u).Updates(upd).Error; err != nil {
		return nil, err
	}
	if passwordChanged {
		policies.DestroyUserSessions(ctx, s.Rdb, u.UserID.String(), currentSessionID)
		log.Info().Str("user_id", u.UserID.String()).Msg("password changed, other sessions destroyed")
	}
	if s.Email != nil {
		if err := s.Email.SendAccountUpdated(ctx, u.Email, u.Name); err != nil {
			log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("failed to send account updated email")
		}
	}
	return s.ViewUser(ctx, u.UserID)
}

// Search finds other users by name or email prefix, for sending friend invites.
func (s *Service) Search(ctx context.Context, actor travelpolicy.Actor, q string, limit int) ([]domain.PublicProfile, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if len([]rune(q)) < 2 {
		return nil, apperr.Invalid("Validation failed", map[string]string{"q": "must be at least 2 characters"})
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	pattern := "%" + strings.NewReplacer("%", "", "_", "").Replace(q) + "%"
	var users []domain.User
	err := s.DB.WithContext(ctx).
		Where("user_id <> ? AND (LOWER(name) LIKE ? OR email LIKE ?)", actor.UserID, pattern, pattern).
		Order("name ASC").Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicProfile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Profile())
	}
	return out, nil
}

// ListUsers returns every account, newest first. Site admins only; enforced by the route.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var total int64
	if err := s.DB.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	err := s.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}
