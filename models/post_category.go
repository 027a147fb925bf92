package models

// PostCategory links one post to one category. The composite primary key
// allows at most one row per pair.
type PostCategory struct {
	PostID     string    `gorm:"primaryKey;size:36" json:"postId"`
	CategoryID string    `gorm:"primaryKey;size:36;index" json:"categoryId"`
	Post       *Post     `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// TableName pins the join table name.
func (PostCategory) TableName() string { return "post_categories" }

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Category{}, &Post{}, &PostCategory{}}
}
