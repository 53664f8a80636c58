package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/driveclone/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// parseOptionalJSON decodes the request body into dst. An empty body leaves
// dst untouched.
func parseOptionalJSON(c *fiber.Ctx, dst interface{}) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

func getRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// maxExpirySeconds is the largest lifetime a time.Duration can hold.
const maxExpirySeconds = math.MaxInt64 / int64(time.Second)

// parseExpirySeconds accepts a positive whole number of seconds that still
// fits in a time.Duration.
func parseExpirySeconds(raw string) (int64, bool) {
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seconds <= 0 || seconds > maxExpirySeconds {
		return 0, false
	}
	return seconds, true
}

func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}
