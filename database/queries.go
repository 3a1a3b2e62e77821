package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ListFilter narrows a post listing to one category or one author.
// IncludeHidden keeps unpublished and future posts in the result; it is
// only set when an author is browsing their own profile.
type ListFilter struct {
	CategoryID    uint
	AuthorID      uint
	IncludeHidden bool
}

// Visible is the publication scope shared by every public read path:
// the post and its category are published and the publish date is not
// in the future. The comparison is inclusive so a post whose pub date
// equals the request clock is already visible.
func Visible(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN categories ON categories.id = posts.category_id").
			Where("posts.published = ?", true).
			Where("categories.published = ?", true).
			Where("posts.pub_date <= ?", now)
	}
}

// ListPosts returns posts for a listing surface: filtered, annotated with
// their comment count, ordered by pub date descending with ascending id as
// the tie-break so page boundaries stay put between requests.
func ListPosts(db *gorm.DB, filter ListFilter, now time.Time) ([]Post, error) {
	q := db.Model(&Post{}).
		Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count").
		Preload("Author").
		Preload("Category")

	if filter.CategoryID != 0 {
		q = q.Where("posts.category_id = ?", filter.CategoryID)
	}
	if filter.AuthorID != 0 {
		q = q.Where("posts.author_id = ?", filter.AuthorID)
	}
	if !filter.IncludeHidden {
		q = q.Scopes(Visible(now))
	}

	var posts []Post
	err := q.Order("posts.pub_date DESC, posts.id ASC").Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func PostByID(db *gorm.DB, id uint) (*Post, bool, error) {
	var post Post
	err := db.Preload("Author").Preload("Category").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get post %d: %w", id, err)
	}
	return &post, true, nil
}

func CommentByID(db *gorm.DB, id uint) (*Comment, bool, error) {
	var comment Comment
	err := db.First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get comment %d: %w", id, err)
	}
	return &comment, true, nil
}

func CommentsForPost(db *gorm.DB, postID uint) ([]Comment, error) {
	var comments []Comment
	err := db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments for post %d: %w", postID, err)
	}
	return comments, nil
}

func UserByUsername(db *gorm.DB, username string) (*User, bool, error) {
	var user User
	err := db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get user %q: %w", username, err)
	}
	return &user, true, nil
}

func UserBySessionToken(db *gorm.DB, token string) (*User, bool, error) {
	var user User
	err := db.Where("session_token = ?", token).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get user by session token: %w", err)
	}
	return &user, true, nil
}

// PublishedCategoryBySlug hides unpublished categories the same way an
// unknown slug is hidden: callers cannot tell the two cases apart.
func PublishedCategoryBySlug(db *gorm.DB, categorySlug string) (*Category, bool, error) {
	var category Category
	err := db.Where("slug = ? AND published = ?", categorySlug, true).
		First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get category %q: %w", categorySlug, err)
	}
	return &category, true, nil
}

func PublishedCategories(db *gorm.DB) ([]Category, error) {
	var categories []Category
	err := db.Where("published = ?", true).Order("title ASC").Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// DeletePost removes a post together with its comments. The referential
// cleanup lives here rather than relying on sqlite foreign_keys being on.
func DeletePost(db *gorm.DB, post *Post) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments of post %d: %w", post.ID, err)
		}
		if err := tx.Delete(post).Error; err != nil {
			return fmt.Errorf("delete post %d: %w", post.ID, err)
		}
		return nil
	})
}
