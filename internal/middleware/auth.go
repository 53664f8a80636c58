package middleware

import (
	"slices"
	"strings"

	"github.com/driveclone/backend/pkg/logger"
	"github.com/driveclone/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS allows the configured origins. Credentials are disabled for a
// wildcard origin, which fiber refuses to combine with credentials.
func CORS(allowedOrigins []string) fiber.Handler {
	origins := strings.Join(allowedOrigins, ",")
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Content-Type, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders:    "Content-Type, Authorization",
		AllowCredentials: !slices.Contains(allowedOrigins, "*"),
	})
}

// RequireAuth validates the bearer session token and stores its subject
// under logger.UserIDKey. It does not load the user row.
func RequireAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		logger.Warn("jwt_missing_header", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if tokenString == authHeader || tokenString == "" {
		logger.Warn("jwt_invalid_format", map[string]interface{}{
			"ip":          c.IP(),
			"path":        c.Path(),
			"auth_header": authHeader[:min(len(authHeader), 20)] + "...",
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid authorization format")
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		logger.Warn("jwt_validation_failed", map[string]interface{}{
			"ip":    c.IP(),
			"path":  c.Path(),
			"error": err.Error(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid or expired token")
	}

	c.Locals(logger.UserIDKey, claims.UserID())
	return c.Next()
}

// GetUserID returns the authenticated user id, or "" outside RequireAuth.
func GetUserID(c *fiber.Ctx) string {
	if id := logger.GetUserIDFromContext(c); id != nil {
		return *id
	}
	return ""
}
