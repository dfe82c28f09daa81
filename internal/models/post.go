package models

import (
	"slices"
	"time"
)

// PostCategory groups board posts.
type PostCategory string

const (
	CategoryReview   PostCategory = "review"
	CategoryQuestion PostCategory = "question"
	CategoryTip      PostCategory = "tip"
	CategoryGeneral  PostCategory = "general"
)

// Valid reports whether c is one of the board categories.
func (c PostCategory) Valid() bool {
	switch c {
	case CategoryReview, CategoryQuestion, CategoryTip, CategoryGeneral:
		return true
	}
	return false
}

// Post represents a community board post.
// Likes always equals len(LikedBy).
type Post struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	Category   PostCategory `json:"category"`
	AuthorID   string       `json:"authorId"`
	AuthorName string       `json:"authorName"`
	Likes      int          `json:"likes"`
	LikedBy    []string     `json:"likedBy"`
	Views      int          `json:"views"`
	Images     []string     `json:"images,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// ToggleLike adds userID to the likers, or removes it when already present.
// It returns whether the user likes the post afterwards.
func (p *Post) ToggleLike(userID string) bool {
	var liked bool
	p.LikedBy, liked = toggleLiker(p.LikedBy, userID)
	p.Likes = len(p.LikedBy)
	return liked
}

// Comment represents a comment on a board post.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	Likes      int       `json:"likes"`
	LikedBy    []string  `json:"likedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ToggleLike behaves like Post.ToggleLike.
func (c *Comment) ToggleLike(userID string) bool {
	var liked bool
	c.LikedBy, liked = toggleLiker(c.LikedBy, userID)
	c.Likes = len(c.LikedBy)
	return liked
}

func toggleLiker(likedBy []string, userID string) ([]string, bool) {
	if i := slices.Index(likedBy, userID); i >= 0 {
		return slices.Delete(slices.Clone(likedBy), i, i+1), false
	}
	out := make([]string, 0, len(likedBy)+1)
	out = append(out, likedBy...)
	return append(out, userID), true
}
