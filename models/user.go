package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the local record of a principal issued by the auth provider. The id
// is the provider's subject and is never generated here.
type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email,omitempty"`
	FullName  *string   `gorm:"size:255" json:"fullName"`
	AvatarURL *string   `gorm:"type:text" json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := tx.NowFunc()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	return nil
}
