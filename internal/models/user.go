package models

import "time"

// User mirrors an identity-provider account. ID is the provider's user id.
type User struct {
	ID        string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name      *string   `json:"name" gorm:"type:varchar(255)"`
	AvatarURL *string   `json:"avatar_url" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
