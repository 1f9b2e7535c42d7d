package service

import (
	"quill/database"
	"quill/database/model"
)

// CommentService is the content repository for comments.
type CommentService struct{}

// CreateComment attaches a comment to a post, stamped with the acting
// identity as its author. The parent post must exist.
func (s *CommentService) CreateComment(text string, author *model.User, postId int) (*model.Comment, error) {
	db := database.GetDB()

	var count int64
	if err := db.Model(model.Post{}).Where("id = ?", postId).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	comment := &model.Comment{
		Text:     text,
		AuthorId: author.Id,
		PostId:   postId,
	}
	if err := db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// GetComment returns a single comment.
func (s *CommentService) GetComment(id int) (*model.Comment, error) {
	db := database.GetDB()

	comment := &model.Comment{}
	err := db.Model(model.Comment{}).
		Where("id = ?", id).
		First(comment).
		Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. The comment must belong to the given
// post, so a mismatched pair reads as not found.
func (s *CommentService) DeleteComment(id, postId int) error {
	db := database.GetDB()

	result := db.Where("id = ? AND post_id = ?", id, postId).Delete(model.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CommentsForPost lists a post's comments in posting order with authors
// preloaded.
func (s *CommentService) CommentsForPost(postId int) ([]model.Comment, error) {
	db := database.GetDB()

	comments := make([]model.Comment, 0)
	err := db.Model(model.Comment{}).
		Preload("Author").
		Where("post_id = ?", postId).
		Order("id").
		Find(&comments).
		Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CountComments returns the total number of comments.
func (s *CommentService) CountComments() (int64, error) {
	db := database.GetDB()

	var count int64
	err := db.Model(model.Comment{}).Count(&count).Error
	return count, err
}
