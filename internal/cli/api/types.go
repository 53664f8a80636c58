package api

import (
	"encoding/json"
	"time"
)

// File mirrors the backend file row.
type File struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Filename    string      `json:"filename"`
	Size        int64       `json:"size"`
	Type        string      `json:"type"`
	Path        string      `json:"path"`
	IsDeleted   bool        `json:"is_deleted"`
	TrashedAt   *time.Time  `json:"trashed_at"`
	IsPublic    bool        `json:"is_public"`
	ShareToken  *string     `json:"share_token"`
	Permissions Permissions `json:"permissions"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type Permissions struct {
	Viewer []string `json:"viewer"`
	Editor []string `json:"editor"`
}

// User is the local mirror returned by GET /auth/profile.
type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by /auth/signup and /auth/login. User is the
// identity provider's object, kept raw.
type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	User        json.RawMessage `json:"user"`
}

type ProfileResponse struct {
	User User `json:"user"`
}

type FilesResponse struct {
	Files []File `json:"files"`
}

type UploadResponse struct {
	Message string `json:"message"`
	File    File   `json:"file"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// FileSummary is the reduced file view embedded in link responses.
type FileSummary struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Type     string `json:"type"`
}

type SignedURLResponse struct {
	SignedURL string      `json:"signed_url"`
	File      FileSummary `json:"file"`
}

type ShareResponse struct {
	Message    string `json:"message"`
	ShareLink  string `json:"share_link"`
	ShareToken string `json:"share_token"`
	IsPublic   bool   `json:"is_public"`
}

type PublicFileResponse struct {
	File      FileSummary `json:"file"`
	SignedURL string      `json:"signed_url"`
	ExpiresIn int         `json:"expires_in"`
}

type PermissionsResponse struct {
	Message     string      `json:"message"`
	Permissions Permissions `json:"permissions"`
}

type PurgeResponse struct {
	Purged int      `json:"purged"`
	Failed []string `json:"failed"`
}
