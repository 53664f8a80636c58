package handlers

import (
	"errors"
	"strings"

	"github.com/driveclone/backend/internal/middleware"
	"github.com/driveclone/backend/internal/models"
	"github.com/driveclone/backend/internal/repository"
	"github.com/driveclone/backend/internal/services"
	"github.com/driveclone/backend/pkg/logger"
	"github.com/driveclone/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

const defaultPublicLinkTTL int64 = 3600

type SharesHandler struct {
	Repo   *repository.Repository
	Access *services.AccessService
}

func NewSharesHandler(repo *repository.Repository, access *services.AccessService) *SharesHandler {
	return &SharesHandler{Repo: repo, Access: access}
}

type shareFileRequest struct {
	IsPublic *bool `json:"is_public"`
}

// ShareFile issues a fresh token on every call, invalidating the old link.
func (h *SharesHandler) ShareFile(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	file, err := h.Repo.GetFileOwnedBy(c.Context(), c.Params("id"), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "File not found or access denied")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to load file")
	}

	var req shareFileRequest
	if err := parseOptionalJSON(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	token, err := utils.GenerateShareToken()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to generate share token")
	}

	if err := h.Repo.SetShare(c.Context(), file.ID, isPublic, token); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to share file")
	}

	logger.InfoWithUser(userID, "file_shared", map[string]interface{}{
		"file_id":   file.ID.String(),
		"is_public": isPublic,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message":     "Share link generated",
		"share_link":  strings.TrimRight(c.BaseURL(), "/") + "/files/public/" + token,
		"share_token": token,
		"is_public":   isPublic,
	})
}

// PublicFile serves a shared file without authentication. A private file
// answers 403 even when its token still matches.
func (h *SharesHandler) PublicFile(c *fiber.Ctx) error {
	file, err := h.Repo.GetFileByShareToken(c.Context(), c.Params("token"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "Invalid link")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to load file")
	}

	if !file.IsPublic {
		return utils.Error(c, fiber.StatusForbidden, "This file is private")
	}

	expiresIn := defaultPublicLinkTTL
	if raw := c.Query("expires_in"); raw != "" {
		parsed, ok := parseExpirySeconds(raw)
		if !ok {
			return utils.Error(c, fiber.StatusBadRequest, "expires_in must be a positive integer")
		}
		expiresIn = parsed
	}

	signed, err := h.Access.SignedURL(c.Context(), file, secondsToDuration(expiresIn))
	if err != nil {
		logger.Error("public_signed_url_failed", err, map[string]interface{}{"file_id": file.ID.String()})
		return utils.Error(c, fiber.StatusInternalServerError, "Could not create signed URL")
	}

	logger.Info("public_file_accessed", map[string]interface{}{
		"file_id":    file.ID.String(),
		"ip":         c.IP(),
		"expires_in": expiresIn,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"file": fiber.Map{
			"id":       file.ID,
			"filename": file.Filename,
			"type":     file.Type,
		},
		"signed_url": signed,
		"expires_in": expiresIn,
	})
}

type permissionsRequest struct {
	Viewer []string `json:"viewer"`
	Editor []string `json:"editor"`
}

// UpdatePermissions replaces both lists wholesale.
func (h *SharesHandler) UpdatePermissions(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	file, err := h.Repo.GetFileOwnedBy(c.Context(), c.Params("id"), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "File not found or access denied")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to load file")
	}

	var req permissionsRequest
	if err := parseOptionalJSON(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	perms := models.NewFilePermissions(req.Viewer, req.Editor)
	if err := h.Repo.SetPermissions(c.Context(), file.ID, perms); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to update permissions")
	}

	logger.InfoWithUser(userID, "file_permissions_updated", map[string]interface{}{
		"file_id": file.ID.String(),
		"viewers": len(perms.Viewer),
		"editors": len(perms.Editor),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message":     "Permissions updated",
		"permissions": perms,
	})
}
