package repository

import (
	"context"
	"time"

	"github.com/driveclone/backend/internal/models"
	"github.com/google/uuid"
)

func (r *Repository) CreateFile(ctx context.Context, file *models.File) error {
	if file.Permissions.Viewer == nil || file.Permissions.Editor == nil {
		file.Permissions = models.NewFilePermissions(file.Permissions.Viewer, file.Permissions.Editor)
	}
	return r.DB.WithContext(ctx).Create(file).Error
}

func (r *Repository) GetFileByID(ctx context.Context, id string) (*models.File, error) {
	fileID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var file models.File
	if err := r.DB.WithContext(ctx).Where("id = ?", fileID).First(&file).Error; err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

// GetFileOwnedBy returns the file only when ownerID owns it.
func (r *Repository) GetFileOwnedBy(ctx context.Context, id, ownerID string) (*models.File, error) {
	fileID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var file models.File
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", fileID, ownerID).First(&file).Error; err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

func (r *Repository) GetFileByShareToken(ctx context.Context, token string) (*models.File, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	var file models.File
	if err := r.DB.WithContext(ctx).Where("share_token = ?", token).First(&file).Error; err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

// ListFiles returns the owner's files with the given trash state, newest first.
func (r *Repository) ListFiles(ctx context.Context, ownerID string, trashed bool) ([]models.File, error) {
	files := make([]models.File, 0)
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", ownerID, trashed).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

// ListTrash returns the owner's trashed files, most recently trashed first.
func (r *Repository) ListTrash(ctx context.Context, ownerID string) ([]models.File, error) {
	files := make([]models.File, 0)
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", ownerID, true).
		Order("trashed_at DESC").
		Find(&files).Error
	return files, err
}

func (r *Repository) Rename(ctx context.Context, id uuid.UUID, filename string) error {
	return affected(r.DB.WithContext(ctx).
		Model(&models.File{}).
		Where("id = ?", id).
		Update("filename", filename))
}

// MoveToTrash sets is_deleted and trashed_at in one statement.
func (r *Repository) MoveToTrash(ctx context.Context, id uuid.UUID, now time.Time) error {
	return affected(r.DB.WithContext(ctx).
		Model(&models.File{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"trashed_at": now.UTC(),
		}))
}

// Restore clears is_deleted and trashed_at in one statement.
func (r *Repository) Restore(ctx context.Context, id uuid.UUID) error {
	return affected(r.DB.WithContext(ctx).
		Model(&models.File{}).
		Where("id = ? AND is_deleted = ?", id, true).
		Updates(map[string]interface{}{
			"is_deleted": false,
			"trashed_at": nil,
		}))
}

func (r *Repository) SetShare(ctx context.Context, id uuid.UUID, isPublic bool, token string) error {
	return affected(r.DB.WithContext(ctx).
		Model(&models.File{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_public":   isPublic,
			"share_token": token,
		}))
}

// SetPermissions replaces both permission lists.
func (r *Repository) SetPermissions(ctx context.Context, id uuid.UUID, perms models.FilePermissions) error {
	return affected(r.DB.WithContext(ctx).
		Model(&models.File{}).
		Where("id = ?", id).
		Select("permissions").
		Updates(&models.File{Permissions: perms}))
}

func (r *Repository) DeleteFile(ctx context.Context, id uuid.UUID) error {
	return affected(r.DB.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.File{}))
}

// ListTrashedBefore returns the owner's trashed files with trashed_at
// strictly before cutoff.
func (r *Repository) ListTrashedBefore(ctx context.Context, ownerID string, cutoff time.Time) ([]models.File, error) {
	files := make([]models.File, 0)
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ? AND trashed_at < ?", ownerID, true, cutoff.UTC()).
		Find(&files).Error
	return files, err
}

// ListAllTrashedBefore is ListTrashedBefore across every owner.
func (r *Repository) ListAllTrashedBefore(ctx context.Context, cutoff time.Time) ([]models.File, error) {
	files := make([]models.File, 0)
	err := r.DB.WithContext(ctx).
		Where("is_deleted = ? AND trashed_at < ?", true, cutoff.UTC()).
		Order("user_id").
		Find(&files).Error
	return files, err
}
