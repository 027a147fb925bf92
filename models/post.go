package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a unit of content owned by exactly one author.
type Post struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Title      string     `gorm:"size:200;not null" json:"title"`
	Slug       string     `gorm:"size:250;not null;uniqueIndex" json:"slug"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Excerpt    *string    `gorm:"type:text" json:"excerpt"`
	ImageURL   *string    `gorm:"type:text" json:"imageUrl"`
	AuthorID   string     `gorm:"size:64;not null;index" json:"authorId"`
	Published  bool       `gorm:"not null;default:false;index" json:"published"`
	CreatedAt  time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Author     *User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author,omitempty"`
	Categories []Category `gorm:"-" json:"categories,omitempty"`
}

// BeforeCreate assigns a random id when the caller did not provide one.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
