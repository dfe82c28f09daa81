package service

import (
	"context"

	"carmarket/internal/auth"
	"carmarket/internal/models"
	"carmarket/internal/repository"
	"carmarket/internal/validation"
)

const (
	maxPostTitleLen   = 300
	maxPostContentLen = 50000
	maxCommentLen     = 10000
)

type CommunityService struct {
	repo repository.CommunityRepository
}

type CreatePostInput struct {
	Title    string              `json:"title"`
	Content  string              `json:"content"`
	Category models.PostCategory `json:"category"`
	Images   []string            `json:"images"`
}

type UpdatePostInput struct {
	PostID string
	Patch  repository.PostPatch
}

type CreateCommentInput struct {
	PostID  string
	Content string
}

type UpdateCommentInput struct {
	CommentID string
	Content   string
}

// PostDetail is a post with its comments.
type PostDetail struct {
	models.Post
	Comments []models.Comment `json:"comments"`
}

func NewCommunityService(repo repository.CommunityRepository) *CommunityService {
	return &CommunityService{repo: repo}
}

func validatePost(title, content string, category models.PostCategory) error {
	if err := validation.ValidateText("title", title, maxPostTitleLen); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateText("content", content, maxPostContentLen); err != nil {
		return models.NewValidationError(err.Error())
	}
	if !category.Valid() {
		return models.NewValidationError("invalid category")
	}
	return nil
}

func validateComment(content string) error {
	if err := validation.ValidateText("comment", content, maxCommentLen); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}

func (s *CommunityService) CreatePost(ctx context.Context, author auth.Identity, in CreatePostInput) (*models.Post, error) {
	if in.Category == "" {
		in.Category = models.CategoryGeneral
	}
	if err := validatePost(in.Title, in.Content, in.Category); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:      in.Title,
		Content:    in.Content,
		Category:   in.Category,
		AuthorID:   author.UserID,
		AuthorName: author.Name,
		Images:     cleanImages(in.Images),
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *CommunityService) ListPosts(ctx context.Context, q repository.PostQuery) ([]models.Post, error) {
	if q.Category != "" && !q.Category.Valid() {
		return nil, models.NewValidationError("invalid category")
	}
	return s.repo.ListPosts(ctx, q)
}

// ViewPost counts a view and returns the post with its comments.
func (s *CommunityService) ViewPost(ctx context.Context, postID string) (*PostDetail, error) {
	post, err := s.repo.IncrementViews(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.CommentsForPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: *post, Comments: comments}, nil
}

func (s *CommunityService) ownPost(ctx context.Context, caller auth.Identity, postID, action string) (*models.Post, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != caller.UserID {
		return nil, models.NewForbiddenError("You can only " + action + " your own posts")
	}
	return post, nil
}

func (s *CommunityService) UpdatePost(ctx context.Context, caller auth.Identity, in UpdatePostInput) (*models.Post, error) {
	post, err := s.ownPost(ctx, caller, in.PostID, "update")
	if err != nil {
		return nil, err
	}

	title, content, category := post.Title, post.Content, post.Category
	if in.Patch.Title != nil {
		title = *in.Patch.Title
	}
	if in.Patch.Content != nil {
		content = *in.Patch.Content
	}
	if in.Patch.Category != nil {
		category = *in.Patch.Category
	}
	if err := validatePost(title, content, category); err != nil {
		return nil, err
	}
	if in.Patch.Images != nil {
		imgs := cleanImages(*in.Patch.Images)
		in.Patch.Images = &imgs
	}
	return s.repo.UpdatePost(ctx, in.PostID, in.Patch)
}

// DeletePost removes the caller's post together with its comments.
func (s *CommunityService) DeletePost(ctx context.Context, caller auth.Identity, postID string) error {
	if _, err := s.ownPost(ctx, caller, postID, "delete"); err != nil {
		return err
	}
	return s.repo.DeletePost(ctx, postID)
}

func (s *CommunityService) TogglePostLike(ctx context.Context, caller auth.Identity, postID string) (*models.Post, error) {
	return s.repo.TogglePostLike(ctx, postID, caller.UserID)
}

// CreateComment adds a comment. Commenting on a missing post is not found.
func (s *CommunityService) CreateComment(ctx context.Context, author auth.Identity, in CreateCommentInput) (*models.Comment, error) {
	if err := validateComment(in.Content); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetPost(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:     in.PostID,
		AuthorID:   author.UserID,
		AuthorName: author.Name,
		Content:    in.Content,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommunityService) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.repo.CommentsForPost(ctx, postID)
}

func (s *CommunityService) ownComment(ctx context.Context, caller auth.Identity, commentID, action string) error {
	comment, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != caller.UserID {
		return models.NewForbiddenError("You can only " + action + " your own comments")
	}
	return nil
}

func (s *CommunityService) UpdateComment(ctx context.Context, caller auth.Identity, in UpdateCommentInput) (*models.Comment, error) {
	if err := validateComment(in.Content); err != nil {
		return nil, err
	}
	if err := s.ownComment(ctx, caller, in.CommentID, "update"); err != nil {
		return nil, err
	}
	return s.repo.UpdateComment(ctx, in.CommentID, in.Content)
}

func (s *CommunityService) DeleteComment(ctx context.Context, caller auth.Identity, commentID string) error {
	if err := s.ownComment(ctx, caller, commentID, "delete"); err != nil {
		return err
	}
	return s.repo.DeleteComment(ctx, commentID)
}

func (s *CommunityService) ToggleCommentLike(ctx context.Context, caller auth.Identity, commentID string) (*models.Comment, error) {
	return s.repo.ToggleCommentLike(ctx, commentID, caller.UserID)
}
