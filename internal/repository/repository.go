// Package repository holds the small query helpers the routes use against
// the users and files tables.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a row is absent or not visible to the caller.
var ErrNotFound = errors.New("record not found")

type Repository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
