package models

import (
	"slices"
	"strings"
	"time"
)

// FilePermissions lists the emails granted read access besides the owner.
type FilePermissions struct {
	Viewer []string `json:"viewer"`
	Editor []string `json:"editor"`
}

// NewFilePermissions trims, de-duplicates and sorts both lists.
func NewFilePermissions(viewer, editor []string) FilePermissions {
	return FilePermissions{
		Viewer: normalizeEmails(viewer),
		Editor: normalizeEmails(editor),
	}
}

// Allows reports whether email appears in either list.
func (p FilePermissions) Allows(email string) bool {
	if email == "" {
		return false
	}
	return slices.Contains(p.Viewer, email) || slices.Contains(p.Editor, email)
}

func normalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, email := range emails {
		if trimmed := strings.TrimSpace(email); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

type File struct {
	BaseModel
	UserID      string          `json:"user_id" gorm:"type:varchar(64);not null;index"`
	Filename    string          `json:"filename" gorm:"type:varchar(255);not null"`
	Size        int64           `json:"size" gorm:"not null;default:0"`
	Type        string          `json:"type" gorm:"type:varchar(255)"`
	Path        string          `json:"path" gorm:"type:text;not null"`
	IsDeleted   bool            `json:"is_deleted" gorm:"not null;default:false;index"`
	TrashedAt   *time.Time      `json:"trashed_at" gorm:"index"`
	IsPublic    bool            `json:"is_public" gorm:"not null;default:false"`
	ShareToken  *string         `json:"share_token" gorm:"type:varchar(64);uniqueIndex"`
	Permissions FilePermissions `json:"permissions" gorm:"serializer:json;type:text"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (File) TableName() string {
	return "files"
}
