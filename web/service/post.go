package service

import (
	"time"

	"quill/database"
	"quill/database/model"

	"gorm.io/gorm"
)

// dateLayout matches the human-readable creation date shown on post pages.
const dateLayout = "January 2, 2006"

// PostService is the content repository for blog posts.
type PostService struct{}

// CreatePost stores a new post authored by the given identity. The title
// carries a unique index; a conflict surfaces as ErrDuplicateTitle.
func (s *PostService) CreatePost(title, subtitle, body, imgURL string, author *model.User) (*model.Post, error) {
	db := database.GetDB()

	post := &model.Post{
		Title:        title,
		Subtitle:     subtitle,
		Body:         body,
		ImgURL:       imgURL,
		CreationDate: time.Now().Format(dateLayout),
		AuthorId:     author.Id,
	}
	if err := db.Create(post).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateTitle
		}
		return nil, err
	}
	return post, nil
}

// GetPost returns a post with its author preloaded.
func (s *PostService) GetPost(id int) (*model.Post, error) {
	db := database.GetDB()

	post := &model.Post{}
	err := db.Model(model.Post{}).
		Preload("Author").
		Where("id = ?", id).
		First(post).
		Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost applies edits to an existing post and restamps its author.
func (s *PostService) UpdatePost(id int, title, subtitle, body, imgURL string, editor *model.User) error {
	db := database.GetDB()

	result := db.Model(model.Post{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"title":     title,
			"subtitle":  subtitle,
			"body":      body,
			"img_url":   imgURL,
			"author_id": editor.Id,
		})
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return ErrDuplicateTitle
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes a post and its comments in one transaction so a
// failure rolls back cleanly with no orphaned comments.
func (s *PostService) DeletePost(id int) error {
	db := database.GetDB()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(model.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(model.Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AllPosts lists every post, newest first, with authors preloaded.
func (s *PostService) AllPosts() ([]model.Post, error) {
	db := database.GetDB()

	posts := make([]model.Post, 0)
	err := db.Model(model.Post{}).
		Preload("Author").
		Order("id desc").
		Find(&posts).
		Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// PostsPage lists one page of posts, newest first, along with the total
// post count. Pages are 1-based; out-of-range pages return an empty slice.
func (s *PostService) PostsPage(page, size int) ([]model.Post, int64, error) {
	db := database.GetDB()

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	var count int64
	if err := db.Model(model.Post{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	posts := make([]model.Post, 0, size)
	err := db.Model(model.Post{}).
		Preload("Author").
		Order("id desc").
		Offset((page - 1) * size).
		Limit(size).
		Find(&posts).
		Error
	if err != nil {
		return nil, 0, err
	}
	return posts, count, nil
}

// RecentPosts lists up to limit posts, newest first.
func (s *PostService) RecentPosts(limit int) ([]model.Post, error) {
	db := database.GetDB()

	posts := make([]model.Post, 0, limit)
	err := db.Model(model.Post{}).
		Preload("Author").
		Order("id desc").
		Limit(limit).
		Find(&posts).
		Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// CountPosts returns the total number of posts.
func (s *PostService) CountPosts() (int64, error) {
	db := database.GetDB()

	var count int64
	err := db.Model(model.Post{}).Count(&count).Error
	return count, err
}
