package services

import (
	"context"
	"errors"
	"time"

	"github.com/driveclone/backend/internal/models"
	"github.com/driveclone/backend/internal/repository"
	"github.com/driveclone/backend/internal/storage"
	"github.com/driveclone/backend/pkg/logger"
)

// DefaultTrashTTL is how long trashed files survive before batch purge.
const DefaultTrashTTL = 30 * 24 * time.Hour

var ErrNotTrashed = errors.New("file is not in trash")

// PurgeResult reports a batch purge. Failed holds ids whose blob or row
// removal failed; those rows may be retried or left dangling.
type PurgeResult struct {
	Purged int      `json:"purged"`
	Failed []string `json:"failed"`
}

type TrashService struct {
	Repo    *repository.Repository
	Storage storage.Store
	TTL     time.Duration
}

func NewTrashService(repo *repository.Repository, store storage.Store, ttl time.Duration) *TrashService {
	if ttl <= 0 {
		ttl = DefaultTrashTTL
	}
	return &TrashService{Repo: repo, Storage: store, TTL: ttl}
}

func (t *TrashService) MoveToTrash(ctx context.Context, ownerID, fileID string, now time.Time) error {
	file, err := t.Repo.GetFileOwnedBy(ctx, fileID, ownerID)
	if err != nil {
		return err
	}
	return t.Repo.MoveToTrash(ctx, file.ID, now)
}

func (t *TrashService) Restore(ctx context.Context, ownerID, fileID string) error {
	file, err := t.Repo.GetFileOwnedBy(ctx, fileID, ownerID)
	if err != nil {
		return err
	}
	if !file.IsDeleted {
		return ErrNotTrashed
	}
	return t.Repo.Restore(ctx, file.ID)
}

// Purge removes the blob and then the row. A blob failure leaves the row in
// place so the purge can be retried.
func (t *TrashService) Purge(ctx context.Context, ownerID, fileID string) error {
	file, err := t.Repo.GetFileOwnedBy(ctx, fileID, ownerID)
	if err != nil {
		return err
	}

	if file.Path != "" {
		if err := t.Storage.Remove(ctx, file.Path); err != nil {
			return err
		}
	}

	if err := t.Repo.DeleteFile(ctx, file.ID); err != nil {
		return err
	}

	logger.InfoWithUser(ownerID, "file_purged", map[string]interface{}{
		"file_id": file.ID.String(),
		"path":    file.Path,
	})
	return nil
}

// Cutoff is the trashed_at bound below which files are expired.
func (t *TrashService) Cutoff(now time.Time) time.Time {
	return now.Add(-t.TTL)
}

// PurgeExpired purges the owner's files trashed strictly before now - TTL.
func (t *TrashService) PurgeExpired(ctx context.Context, ownerID string, now time.Time) (PurgeResult, error) {
	files, err := t.Repo.ListTrashedBefore(ctx, ownerID, t.Cutoff(now))
	if err != nil {
		return PurgeResult{Failed: []string{}}, err
	}

	result := t.purgeBatch(ctx, files)
	logger.InfoWithUser(ownerID, "trash_purge_expired", map[string]interface{}{
		"candidates": len(files),
		"purged":     result.Purged,
		"failed":     len(result.Failed),
	})
	return result, nil
}

// SweepExpired applies the same retention policy to every owner.
func (t *TrashService) SweepExpired(ctx context.Context, now time.Time) (PurgeResult, error) {
	files, err := t.Repo.ListAllTrashedBefore(ctx, t.Cutoff(now))
	if err != nil {
		return PurgeResult{Failed: []string{}}, err
	}

	result := t.purgeBatch(ctx, files)
	logger.Info("trash_sweep_complete", map[string]interface{}{
		"candidates": len(files),
		"purged":     result.Purged,
		"failed":     len(result.Failed),
	})
	return result, nil
}

// purgeBatch issues one blob removal for all paths, then deletes each row
// whose blob is gone. Rows are deleted one at a time.
func (t *TrashService) purgeBatch(ctx context.Context, files []models.File) PurgeResult {
	result := PurgeResult{Failed: []string{}}
	if len(files) == 0 {
		return result
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if f.Path != "" {
			paths = append(paths, f.Path)
		}
	}

	var failedKeys map[string]error
	allFailed := false
	if len(paths) > 0 {
		if err := t.Storage.Remove(ctx, paths...); err != nil {
			var removeErr *storage.RemoveError
			if errors.As(err, &removeErr) {
				failedKeys = removeErr.Failed
			} else {
				allFailed = true
			}
			logger.Error("trash_purge_storage_failed", err, map[string]interface{}{
				"paths": len(paths),
			})
		}
	}

	for _, f := range files {
		if f.Path != "" && (allFailed || failedKeys[f.Path] != nil) {
			result.Failed = append(result.Failed, f.ID.String())
			continue
		}
		if err := t.Repo.DeleteFile(ctx, f.ID); err != nil {
			logger.Error("trash_purge_row_delete_failed", err, map[string]interface{}{
				"file_id": f.ID.String(),
				"path":    f.Path,
			})
			result.Failed = append(result.Failed, f.ID.String())
			continue
		}
		result.Purged++
	}

	return result
}

// StartSweeper runs SweepExpired every interval until ctx is cancelled.
func (t *TrashService) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		logger.Info("trash_sweeper_disabled", nil)
		return
	}

	logger.Info("trash_sweeper_starting", map[string]interface{}{
		"interval":  interval.String(),
		"retention": t.TTL.String(),
	})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	t.sweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("trash_sweeper_stopped", nil)
			return
		case <-ticker.C:
			t.sweepOnce(ctx)
		}
	}
}

func (t *TrashService) sweepOnce(ctx context.Context) {
	if _, err := t.SweepExpired(ctx, time.Now()); err != nil {
		logger.Error("trash_sweep_failed", err, nil)
	}
}
