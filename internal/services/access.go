package services

import (
	"context"
	"errors"
	"time"

	"github.com/driveclone/backend/internal/models"
	"github.com/driveclone/backend/internal/repository"
	"github.com/driveclone/backend/internal/storage"
)

// SignedURLTTL is the lifetime of URLs minted for authenticated readers.
const SignedURLTTL = time.Hour

var (
	ErrAccessDenied = errors.New("access denied")
	ErrFileTrashed  = errors.New("file is in trash")
)

type AccessService struct {
	Repo    *repository.Repository
	Storage storage.Store
}

func NewAccessService(repo *repository.Repository, store storage.Store) *AccessService {
	return &AccessService{Repo: repo, Storage: store}
}

// ResolveReadable returns the file if user owns it or is listed as a viewer
// or editor. Trashed files are refused after access is established.
func (a *AccessService) ResolveReadable(ctx context.Context, user *models.User, fileID string) (*models.File, error) {
	file, err := a.Repo.GetFileOwnedBy(ctx, fileID, user.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		file, err = a.Repo.GetFileByID(ctx, fileID)
		if err != nil {
			return nil, err
		}
		if !file.Permissions.Allows(user.Email) {
			return nil, ErrAccessDenied
		}
	}

	if file.IsDeleted {
		return nil, ErrFileTrashed
	}
	return file, nil
}

func (a *AccessService) SignedURL(ctx context.Context, file *models.File, ttl time.Duration) (string, error) {
	return a.Storage.PresignedGetURL(ctx, file.Path, ttl)
}
