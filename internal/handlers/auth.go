package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/driveclone/backend/internal/identity"
	"github.com/driveclone/backend/internal/middleware"
	"github.com/driveclone/backend/internal/repository"
	"github.com/driveclone/backend/pkg/logger"
	"github.com/driveclone/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

const googleLoginDocs = "https://supabase.com/docs/guides/auth/social-login/auth-google"

// IdentityProvider performs email/password authentication upstream.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*identity.User, error)
	SignIn(ctx context.Context, email, password string) (*identity.User, error)
}

type AuthHandler struct {
	Repo     *repository.Repository
	Identity IdentityProvider
}

func NewAuthHandler(repo *repository.Repository, provider IdentityProvider) *AuthHandler {
	return &AuthHandler{Repo: repo, Identity: provider}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	return h.authenticate(c, "signup", h.Identity.SignUp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	return h.authenticate(c, "login", h.Identity.SignIn)
}

type authenticateFunc func(ctx context.Context, email, password string) (*identity.User, error)

func (h *AuthHandler) authenticate(c *fiber.Ctx, op string, call authenticateFunc) error {
	var req credentialsRequest
	if err := parseOptionalJSON(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "Email and password required")
	}

	user, err := call(c.Context(), email, req.Password)
	if err != nil {
		var upstream *identity.UpstreamError
		var malformed *identity.MalformedResponseError
		switch {
		case errors.As(err, &upstream):
			return utils.ErrorWithDetails(c, upstream.Status, upstream.Body, nil)
		case errors.As(err, &malformed):
			return utils.ErrorWithDetails(c, fiber.StatusBadRequest, "Invalid "+op+" response", fiber.Map{"raw": malformed.Raw})
		default:
			logger.Error("identity_"+op+"_unavailable", err, map[string]interface{}{"email": email})
			return utils.Error(c, fiber.StatusBadGateway, "Identity provider unavailable")
		}
	}

	mirrorEmail := strings.ToLower(strings.TrimSpace(user.Email))
	if mirrorEmail == "" {
		mirrorEmail = email
	}
	if _, err := h.Repo.EnsureUser(c.Context(), user.ID, mirrorEmail); err != nil {
		logger.ErrorWithUser(user.ID, "user_mirror_failed", err, map[string]interface{}{"email": mirrorEmail})
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to save user")
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to issue token")
	}

	logger.InfoWithUser(user.ID, "user_"+op, map[string]interface{}{
		"email":      mirrorEmail,
		"ip":         c.IP(),
		"request_id": getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"access_token": token,
		"user":         json.RawMessage(user.Raw),
	})
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	user, err := h.Repo.GetUserByID(c.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "User not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to load user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"name":       user.Name,
			"avatar_url": user.AvatarURL,
		},
	})
}

// Google login happens in the browser through the provider's SDK.
func (h *AuthHandler) Google(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Use frontend Supabase client for Google Login",
		"docs":    googleLoginDocs,
	})
}
