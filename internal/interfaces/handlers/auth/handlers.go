package auth

import (
	"context"
	"errors"

	authsvc "travel-backend/internal/application/auth"
	usersvc "travel-backend/internal/application/user"
	"travel-backend/internal/domain"
	"travel-backend/internal/middleware"
	"travel-backend/internal/pkg/apperr"
	"travel-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	UserFinder authsvc.UserFinder
	Users      *usersvc.Service
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// Register POST /auth/register: create the account and sign it in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var in usersvc.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	u, err := h.Users.Register(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.startSession(c, u); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Account created", fiber.Map{"user": u}, nil)
}

// Login POST /auth/login: authenticate, start a session, set the cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}
	u, err := h.UserFinder.FindByEmailAndPassword(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailPasswordRequired):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			return response.Unauthorized(c, err.Error())
		case apperr.KindOf(err) != apperr.Internal:
			return response.FromError(c, err)
		default:
			log.Error().Err(err).Msg("login failed")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	if err := h.startSession(c, u); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Login successful", fiber.Map{"user": u}, nil)
}

// startSession regenerates the session id, stores the user, indexes the session
// under the user and sets the cookie.
func (h *Handlers) startSession(c *fiber.Ctx, u *domain.User) error {
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID: u.UserID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	})
	if h.Rdb != nil {
		if err := h.Rdb.SAdd(context.Background(), middleware.UserSessionsPrefix+u.UserID.String(), sessionID).Err(); err != nil {
			log.Error().Err(err).Msg("failed to index session")
			return err
		}
	}
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = middleware.SignSessionID(h.Config.Secret, sessionID)
	c.Cookie(&cookie)
	return nil
}

// Me GET /auth/me: the current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		log.Debug().Bool("session_present", middleware.GetSessionID(c) != "").Msg("auth/me: not authenticated")
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /auth/logout: drop the session and clear the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := context.Background()

	if actor, ok := middleware.CurrentActor(c); ok && sessionID != "" && h.Rdb != nil {
		_ = h.Rdb.SRem(ctx, middleware.UserSessionsPrefix+actor.UserID.String(), sessionID).Err()
	}
	if sessionID != "" && h.Rdb != nil {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Logged out successfully", nil, nil)
}
