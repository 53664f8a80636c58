// Package logger writes one JSON object per event. Every line carries an
// action name; details are redacted before they are encoded.
package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// UserIDKey is the fiber.Ctx locals key holding the authenticated user id.
const UserIDKey = "userID"

// Redacted replaces secrets in details, bodies and paths.
const Redacted = "[REDACTED]"

// Details are the free-form fields attached to an event.
type Details = map[string]interface{}

// Entry is the encoded shape of a log line. A "request_id" detail is lifted
// to the top level so lines of one request can be grepped together.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Action    string    `json:"action"`
	UserID    *string   `json:"user_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Details   Details   `json:"details,omitempty"`
	Error     string    `json:"error,omitempty"`
}

type Logger struct {
	mu  sync.Mutex
	out io.Writer
}

func New(out io.Writer) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{out: out}
}

var std atomic.Pointer[Logger]

func Init() {
	std.Store(New(os.Stdout))
}

// SetOutput redirects the package logger, mainly so tests can capture lines.
func SetOutput(w io.Writer) {
	std.Store(New(w))
}

// Log encodes one event. userID may be nil for anonymous requests.
func (l *Logger) Log(level Level, action string, userID *string, err error, details Details) {
	entry := Entry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Action:    action,
		UserID:    userID,
	}
	if len(details) > 0 {
		clean := redactMap(details)
		if id, ok := clean["request_id"].(string); ok {
			entry.RequestID = id
			delete(clean, "request_id")
		}
		if len(clean) > 0 {
			entry.Details = clean
		}
	}
	if err != nil {
		entry.Error = err.Error()
	}

	line, encErr := json.Marshal(entry)
	if encErr != nil {
		line = fmt.Appendf(nil, `{"level":%q,"action":%q,"error":"unencodable log entry"}`, level, action)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(line, '\n'))
}

func emit(level Level, action string, userID *string, err error, details Details) {
	if l := std.Load(); l != nil {
		l.Log(level, action, userID, err, details)
	}
}

func Info(action string, details Details) { emit(LevelInfo, action, nil, nil, details) }

func InfoWithUser(userID string, action string, details Details) {
	emit(LevelInfo, action, &userID, nil, details)
}

func Warn(action string, details Details) { emit(LevelWarn, action, nil, nil, details) }

func WarnWithUser(userID string, action string, details Details) {
	emit(LevelWarn, action, &userID, nil, details)
}

func Error(action string, err error, details Details) { emit(LevelError, action, nil, err, details) }

func ErrorWithUser(userID string, action string, err error, details Details) {
	emit(LevelError, action, &userID, err, details)
}

func GetUserIDFromContext(c *fiber.Ctx) *string {
	if id, ok := c.Locals(UserIDKey).(string); ok && id != "" {
		return &id
	}
	return nil
}

// sensitiveKeys match case-insensitively as substrings, so "share_token" and
// "X-Apikey" are both caught.
var sensitiveKeys = []string{"password", "token", "apikey", "api_key", "secret", "authorization"}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// redactMap returns a copy of m with sensitive values replaced, descending
// into nested objects.
func redactMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for key, value := range m {
		if isSensitive(key) {
			out[key] = Redacted
			continue
		}
		if nested, ok := value.(map[string]interface{}); ok {
			out[key] = redactMap(nested)
			continue
		}
		out[key] = value
	}
	return out
}

// secretPathPrefixes are routes whose next path segment is a bearer secret.
var secretPathPrefixes = []string{"/files/public/"}

// SafePath hides the share token in public-link paths. Routing is case
// insensitive, so the prefix is too.
func SafePath(path string) string {
	for _, prefix := range secretPathPrefixes {
		if len(path) <= len(prefix) || !strings.EqualFold(path[:len(prefix)], prefix) {
			continue
		}
		rest := path[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return path[:len(prefix)] + Redacted + rest[i:]
		}
		return path[:len(prefix)] + Redacted
	}
	return path
}

const maxBodySummary = 1024

// BodySummary describes a request body without leaking file contents or
// credentials: uploads are reduced to their size, JSON is redacted.
func BodySummary(contentType string, body []byte) string {
	switch {
	case len(bytes.TrimSpace(body)) == 0:
		return "empty"
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		return fmt.Sprintf("multipart (%d bytes)", len(body))
	case len(body) > maxBodySummary:
		return fmt.Sprintf("large (%d bytes)", len(body))
	}

	var object map[string]interface{}
	if err := json.Unmarshal(body, &object); err != nil {
		return fmt.Sprintf("binary (%d bytes)", len(body))
	}
	encoded, err := json.Marshal(redactMap(object))
	if err != nil {
		return fmt.Sprintf("binary (%d bytes)", len(body))
	}
	if len(encoded) > 200 {
		return string(encoded[:200]) + "..."
	}
	return string(encoded)
}
