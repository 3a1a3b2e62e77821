package database

import (
	"time"

	"gorm.io/datatypes"
)

// Models deliberately avoid gorm.Model: deletes here are permanent,
// so there is no DeletedAt column to soft-delete through.

type User struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Username     string `gorm:"uniqueIndex"`
	Email        string
	FirstName    string
	LastName     string
	PasswordHash []byte
	SessionToken string `gorm:"index"`

	Posts    []Post    `gorm:"foreignKey:AuthorID"`
	Comments []Comment `gorm:"foreignKey:AuthorID"`
}

type Category struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Slug      string `gorm:"uniqueIndex"`
	Title     string
	Published bool

	Posts []Post `gorm:"foreignKey:CategoryID"`
}

type Post struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	AuthorID   uint `gorm:"index"`
	CategoryID uint `gorm:"index"`
	Title      string
	Body       string `gorm:"type:text"`
	PubDate    time.Time
	Published  bool
	Tags       datatypes.JSON

	Author   User
	Category Category
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`

	// Filled by listing queries, not a column.
	CommentCount int64 `gorm:"->;-:migration"`
}

type Comment struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	PostID   uint   `gorm:"index"`
	AuthorID uint   `gorm:"index"`
	Text     string `gorm:"type:text"`

	Author User
}

// OwnerID implements policy.Ownable for both mutable entity kinds.

func (p Post) OwnerID() uint { return p.AuthorID }

func (c Comment) OwnerID() uint { return c.AuthorID }
