package repository

import (
	"context"

	"github.com/driveclone/backend/internal/models"
)

func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// EnsureUser inserts the mirror row for id if it is missing. Existing rows
// are returned untouched.
func (r *Repository) EnsureUser(ctx context.Context, id, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where(models.User{ID: id}).
		Attrs(models.User{Email: email}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
