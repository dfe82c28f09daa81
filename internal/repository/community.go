package repository

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"carmarket/internal/models"
	"carmarket/internal/observability"
	"carmarket/internal/store"
)

// PostQuery narrows ListPosts. Empty fields impose no constraint.
type PostQuery struct {
	Category models.PostCategory
	// Search matches title or content, case-insensitively.
	Search string
}

// PostPatch carries the author-editable fields of a post.
type PostPatch struct {
	Title    *string
	Content  *string
	Category *models.PostCategory
	Images   *[]string
}

// CommunityRepository owns posts and comments.
type CommunityRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	// ListPosts returns matching posts newest first.
	ListPosts(ctx context.Context, q PostQuery) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, patch PostPatch) (*models.Post, error)
	// DeletePost also deletes every comment on the post.
	DeletePost(ctx context.Context, id string) error
	TogglePostLike(ctx context.Context, postID, userID string) (*models.Post, error)
	IncrementViews(ctx context.Context, postID string) (*models.Post, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	UpdateComment(ctx context.Context, id, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	ToggleCommentLike(ctx context.Context, commentID, userID string) (*models.Comment, error)
	// CommentsForPost returns the post's comments oldest first.
	CommentsForPost(ctx context.Context, postID string) ([]models.Comment, error)
}

type communityRepository struct {
	mu       sync.Mutex
	posts    collection[models.Post]
	comments collection[models.Comment]
	now      clock
	postLog  *observability.RepoLogger
	cmntLog  *observability.RepoLogger
}

// NewCommunityRepository returns a new CommunityRepository implementation.
func NewCommunityRepository(s store.Store) CommunityRepository {
	return &communityRepository{
		posts:    collection[models.Post]{store: s, key: store.KeyCommunityPosts},
		comments: collection[models.Comment]{store: s, key: store.KeyCommunityComments},
		now:      systemClock,
		postLog:  observability.NewRepoLogger(store.KeyCommunityPosts),
		cmntLog:  observability.NewRepoLogger(store.KeyCommunityComments),
	}
}

func (r *communityRepository) CreatePost(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.posts.load(ctx)
	if err != nil {
		return err
	}

	now := r.now()
	post.ID = newID()
	post.Likes = 0
	post.LikedBy = []string{}
	post.Views = 0
	post.CreatedAt = now
	post.UpdatedAt = now

	if err := r.posts.save(ctx, append(posts, *post)); err != nil {
		r.postLog.LogError(ctx, err, "create")
		return err
	}
	r.postLog.LogCreate(ctx, post.ID, slog.String("category", string(post.Category)))
	return nil
}

func (r *communityRepository) GetPost(ctx context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.posts.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(posts, func(p *models.Post) bool { return p.ID == id })
	if i < 0 {
		return nil, models.NewNotFoundError("Post", id)
	}
	return &posts[i], nil
}

func (r *communityRepository) ListPosts(ctx context.Context, q PostQuery) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.posts.load(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(q.Search)
	out := []models.Post{}
	for _, p := range posts {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Content), search) {
			continue
		}
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b models.Post) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r *communityRepository) UpdatePost(ctx context.Context, id string, patch PostPatch) (*models.Post, error) {
	return r.mutatePost(ctx, id, "update", func(p *models.Post) {
		setIf(&p.Title, patch.Title)
		setIf(&p.Content, patch.Content)
		setIf(&p.Category, patch.Category)
		if patch.Images != nil {
			p.Images = *patch.Images
		}
		p.UpdatedAt = r.now()
	})
}

func (r *communityRepository) TogglePostLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	return r.mutatePost(ctx, postID, "like", func(p *models.Post) { p.ToggleLike(userID) })
}

func (r *communityRepository) IncrementViews(ctx context.Context, postID string) (*models.Post, error) {
	return r.mutatePost(ctx, postID, "view", func(p *models.Post) { p.Views++ })
}

func (r *communityRepository) mutatePost(ctx context.Context, id, op string, fn func(*models.Post)) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.posts.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(posts, func(p *models.Post) bool { return p.ID == id })
	if i < 0 {
		return nil, models.NewNotFoundError("Post", id)
	}

	fn(&posts[i])
	if err := r.posts.save(ctx, posts); err != nil {
		r.postLog.LogError(ctx, err, op)
		return nil, err
	}
	if op != "view" {
		r.postLog.LogUpdate(ctx, id, slog.String("change", op))
	}
	updated := posts[i]
	return &updated, nil
}

func (r *communityRepository) DeletePost(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.posts.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(posts, func(p *models.Post) bool { return p.ID == id })
	if i < 0 {
		return models.NewNotFoundError("Post", id)
	}

	comments, err := r.comments.load(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(comments, func(c models.Comment) bool { return c.PostID == id })

	if err := r.posts.save(ctx, slices.Delete(posts, i, i+1)); err != nil {
		r.postLog.LogError(ctx, err, "delete")
		return err
	}
	if err := r.comments.save(ctx, kept); err != nil {
		r.cmntLog.LogError(ctx, err, "delete")
		return err
	}
	r.postLog.LogDelete(ctx, id)
	return nil
}

func (r *communityRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	comments, err := r.comments.load(ctx)
	if err != nil {
		return err
	}

	now := r.now()
	comment.ID = newID()
	comment.Likes = 0
	comment.LikedBy = []string{}
	comment.CreatedAt = now
	comment.UpdatedAt = now

	if err := r.comments.save(ctx, append(comments, *comment)); err != nil {
		r.cmntLog.LogError(ctx, err, "create")
		return err
	}
	r.cmntLog.LogCreate(ctx, comment.ID, slog.String("post_id", comment.PostID))
	return nil
}

func (r *communityRepository) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comments, err := r.comments.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(comments, func(c *models.Comment) bool { return c.ID == id })
	if i < 0 {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return &comments[i], nil
}

func (r *communityRepository) UpdateComment(ctx context.Context, id, content string) (*models.Comment, error) {
	return r.mutateComment(ctx, id, "update", func(c *models.Comment) {
		c.Content = content
		c.UpdatedAt = r.now()
	})
}

func (r *communityRepository) ToggleCommentLike(ctx context.Context, commentID, userID string) (*models.Comment, error) {
	return r.mutateComment(ctx, commentID, "like", func(c *models.Comment) { c.ToggleLike(userID) })
}

func (r *communityRepository) mutateComment(ctx context.Context, id, op string, fn func(*models.Comment)) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comments, err := r.comments.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(comments, func(c *models.Comment) bool { return c.ID == id })
	if i < 0 {
		return nil, models.NewNotFoundError("Comment", id)
	}

	fn(&comments[i])
	if err := r.comments.save(ctx, comments); err != nil {
		r.cmntLog.LogError(ctx, err, op)
		return nil, err
	}
	r.cmntLog.LogUpdate(ctx, id, slog.String("change", op))
	updated := comments[i]
	return &updated, nil
}

func (r *communityRepository) DeleteComment(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	comments, err := r.comments.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(comments, func(c *models.Comment) bool { return c.ID == id })
	if i < 0 {
		return models.NewNotFoundError("Comment", id)
	}
	if err := r.comments.save(ctx, slices.Delete(comments, i, i+1)); err != nil {
		r.cmntLog.LogError(ctx, err, "delete")
		return err
	}
	r.cmntLog.LogDelete(ctx, id)
	return nil
}

func (r *communityRepository) CommentsForPost(ctx context.Context, postID string) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comments, err := r.comments.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Comment{}
	for _, c := range comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Comment) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}
