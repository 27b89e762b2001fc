package models

import "time"

// Post represents a published entry in the Quill application.
//
// AuthorID and PubDate are set on creation and never updated. GroupID is
// optional; a post without a group only appears in the index, profile and
// follow feeds. Image holds the media path ("posts/<filename>") or "".
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID" json:"author"`
	PubDate  time.Time `gorm:"column:pub_date;not null;index:idx_posts_pub_date,sort:desc;autoCreateTime" json:"pub_date"`
	GroupID  *uint     `gorm:"index" json:"group_id,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Image    string    `json:"image,omitempty"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int       `gorm:"->" json:"comments_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// String returns the post text truncated to 15 runes. Display use only,
// never an identity.
func (p Post) String() string {
	runes := []rune(p.Text)
	if len(runes) <= 15 {
		return p.Text
	}
	return string(runes[:15])
}
