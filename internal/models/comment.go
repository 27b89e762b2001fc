package models

import "time"

// Comment represents a comment on a post. Comments belong exclusively to
// one post and are removed with it.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PostID   uint      `gorm:"not null;index" json:"post_id"`
	Post     Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint      `gorm:"not null" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID" json:"author"`
	Created  time.Time `gorm:"column:created;not null;autoCreateTime" json:"created"`
}
