package middleware

import (
	"time"

	"github.com/driveclone/backend/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDKey is the fiber.Ctx locals key holding the per-request id.
const RequestIDKey = "requestID"

const requestIDHeader = "X-Request-ID"

// requestID keeps a caller-supplied id when it is a UUID, so a client can
// correlate its own logs with ours. Anything else is replaced.
func requestID(c *fiber.Ctx) string {
	if incoming := c.Get(requestIDHeader); incoming != "" {
		if parsed, err := uuid.Parse(incoming); err == nil {
			return parsed.String()
		}
	}
	return uuid.NewString()
}

// requestDetails are the fields shared by every per-request line. The path
// goes through logger.SafePath so public share tokens never reach the log.
func requestDetails(c *fiber.Ctx) logger.Details {
	details := logger.Details{
		"method": c.Method(),
		"path":   logger.SafePath(c.Path()),
		"ip":     c.IP(),
	}
	if id, ok := c.Locals(RequestIDKey).(string); ok {
		details["request_id"] = id
	}
	return details
}

// RequestLogger tags the request with an id and writes one http_request line
// after the handler chain, at a level picked from the response status.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		id := requestID(c)
		c.Locals(RequestIDKey, id)
		c.Set(requestIDHeader, id)

		err := c.Next()

		status := c.Response().StatusCode()
		details := requestDetails(c)
		details["status_code"] = status
		details["latency_ms"] = time.Since(start).Milliseconds()
		details["user_agent"] = c.Get(fiber.HeaderUserAgent)
		details["request_body"] = logger.BodySummary(c.Get(fiber.HeaderContentType), c.Body())
		details["response_bytes"] = len(c.Response().Body())

		userID := logger.GetUserIDFromContext(c)
		switch {
		case status >= fiber.StatusInternalServerError:
			if userID != nil {
				logger.ErrorWithUser(*userID, "http_request", err, details)
			} else {
				logger.Error("http_request", err, details)
			}
		case status >= fiber.StatusBadRequest:
			if userID != nil {
				logger.WarnWithUser(*userID, "http_request", details)
			} else {
				logger.Warn("http_request", details)
			}
		default:
			if userID != nil {
				logger.InfoWithUser(*userID, "http_request", details)
			} else {
				logger.Info("http_request", details)
			}
		}

		return err
	}
}

// securityActions maps denial statuses to the action logged for them. An
// anonymous caller gets the "_unauthenticated" variant.
var securityActions = map[int]string{
	fiber.StatusUnauthorized: "unauthorized",
	fiber.StatusForbidden:    "access_denied",
	fiber.StatusNotFound:     "not_found",
}

// SecurityLogger records denials separately from the access log, since a 404
// on a file or share link is how this API hides resources from non-owners.
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		action, ok := securityActions[c.Response().StatusCode()]
		if !ok {
			return err
		}

		details := requestDetails(c)
		if userID := logger.GetUserIDFromContext(c); userID != nil {
			logger.WarnWithUser(*userID, action, details)
		} else {
			logger.Warn(action+"_unauthenticated", details)
		}
		return err
	}
}
