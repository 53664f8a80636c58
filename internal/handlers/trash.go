package handlers

import (
	"errors"
	"time"

	"github.com/driveclone/backend/internal/middleware"
	"github.com/driveclone/backend/internal/repository"
	"github.com/driveclone/backend/internal/services"
	"github.com/driveclone/backend/pkg/logger"
	"github.com/driveclone/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type TrashHandler struct {
	Repo  *repository.Repository
	Trash *services.TrashService
	Now   func() time.Time
}

func NewTrashHandler(repo *repository.Repository, trash *services.TrashService) *TrashHandler {
	return &TrashHandler{Repo: repo, Trash: trash, Now: time.Now}
}

func (h *TrashHandler) List(c *fiber.Ctx) error {
	files, err := h.Repo.ListTrash(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to list trash")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"files": files})
}

func (h *TrashHandler) Move(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	fileID := c.Params("id")

	if err := h.Trash.MoveToTrash(c.Context(), userID, fileID, h.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "File not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to move file to trash")
	}

	logger.InfoWithUser(userID, "file_trashed", map[string]interface{}{"file_id": fileID})
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Moved to Trash"})
}

func (h *TrashHandler) Restore(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	fileID := c.Params("id")

	if err := h.Trash.Restore(c.Context(), userID, fileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, services.ErrNotTrashed) {
			return utils.Error(c, fiber.StatusNotFound, "File not found in Trash")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to restore file")
	}

	logger.InfoWithUser(userID, "file_restored", map[string]interface{}{"file_id": fileID})
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "File restored"})
}

func (h *TrashHandler) Purge(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	if err := h.Trash.Purge(c.Context(), userID, c.Params("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "File not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Storage delete failed: "+err.Error())
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "File permanently deleted"})
}

// PurgeExpired removes the caller's files trashed more than the retention
// period ago. Partial failures are listed rather than hidden.
func (h *TrashHandler) PurgeExpired(c *fiber.Ctx) error {
	result, err := h.Trash.PurgeExpired(c.Context(), middleware.GetUserID(c), h.Now())
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to purge trash")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"purged": result.Purged,
		"failed": result.Failed,
	})
}
