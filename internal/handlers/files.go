package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/driveclone/backend/internal/middleware"
	"github.com/driveclone/backend/internal/models"
	"github.com/driveclone/backend/internal/repository"
	"github.com/driveclone/backend/internal/services"
	"github.com/driveclone/backend/internal/storage"
	"github.com/driveclone/backend/pkg/logger"
	"github.com/driveclone/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type FilesHandler struct {
	Repo    *repository.Repository
	Storage storage.Store
	Access  *services.AccessService
}

func NewFilesHandler(repo *repository.Repository, store storage.Store, access *services.AccessService) *FilesHandler {
	return &FilesHandler{Repo: repo, Storage: store, Access: access}
}

// Upload reads the whole multipart "file" field into memory, stores the
// blob and only then inserts the row.
func (h *FilesHandler) Upload(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "No file uploaded (form field 'file' required)")
	}

	stream, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to read uploaded file")
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to read uploaded file")
	}

	filename := fileHeader.Filename
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectKey := storage.ObjectKey(filename)
	if err := h.Storage.Upload(c.Context(), objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Storage upload failed: "+err.Error())
	}

	entry := models.File{
		UserID:      userID,
		Filename:    filename,
		Size:        int64(len(data)),
		Type:        contentType,
		Path:        objectKey,
		Permissions: models.NewFilePermissions(nil, nil),
	}
	if err := h.Repo.CreateFile(c.Context(), &entry); err != nil {
		if rmErr := h.Storage.Remove(c.Context(), objectKey); rmErr != nil {
			logger.ErrorWithUser(userID, "file_upload_compensation_failed", rmErr, map[string]interface{}{
				"path": objectKey,
			})
		}
		logger.ErrorWithUser(userID, "file_record_create_failed", err, map[string]interface{}{
			"path": objectKey,
		})
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to save file metadata")
	}

	logger.InfoWithUser(userID, "file_uploaded", map[string]interface{}{
		"file_id":    entry.ID.String(),
		"file_name":  filename,
		"file_size":  entry.Size,
		"mime_type":  contentType,
		"path":       objectKey,
		"request_id": getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"message": "File uploaded successfully",
		"file":    entry,
	})
}

func (h *FilesHandler) List(c *fiber.Ctx) error {
	trashed := strings.ToLower(c.Query("trashed", "false")) == "true"

	files, err := h.Repo.ListFiles(c.Context(), middleware.GetUserID(c), trashed)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to list files")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"files": files})
}

// SignedURL mints a one-hour read URL for the owner or anyone listed in the
// file's viewer or editor permissions.
func (h *FilesHandler) SignedURL(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	me, err := h.Repo.GetUserByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "User not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to load user")
	}

	file, err := h.Access.ResolveReadable(c.Context(), me, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return utils.Error(c, fiber.StatusNotFound, "File not found")
		case errors.Is(err, services.ErrAccessDenied):
			logger.WarnWithUser(userID, "permission_denied", map[string]interface{}{
				"action":    "signed_url",
				"target_id": c.Params("id"),
			})
			return utils.Error(c, fiber.StatusForbidden, "Access denied")
		case errors.Is(err, services.ErrFileTrashed):
			return utils.Error(c, fiber.StatusBadRequest, "File is in Trash")
		default:
			return utils.Error(c, fiber.StatusInternalServerError, "Failed to load file")
		}
	}

	signed, err := h.Access.SignedURL(c.Context(), file, services.SignedURLTTL)
	if err != nil {
		logger.ErrorWithUser(userID, "signed_url_failed", err, map[string]interface{}{"file_id": file.ID.String()})
		return utils.Error(c, fiber.StatusInternalServerError, "Could not create signed URL")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"signed_url": signed,
		"file": fiber.Map{
			"id":       file.ID,
			"filename": file.Filename,
		},
	})
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *FilesHandler) Rename(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req renameRequest
	if err := parseOptionalJSON(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return utils.Error(c, fiber.StatusBadRequest, "New name required")
	}

	file, err := h.Repo.GetFileOwnedBy(c.Context(), c.Params("id"), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "File not found or access denied")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to load file")
	}

	if err := h.Repo.Rename(c.Context(), file.ID, name); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to rename file")
	}

	logger.InfoWithUser(userID, "file_renamed", map[string]interface{}{
		"file_id":  file.ID.String(),
		"old_name": file.Filename,
		"new_name": name,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Renamed"})
}
