// Package seed installs the demo data set: the sample members, the sample
// board posts and comments, and a batch of generated listings. It is meant
// for development and demos only.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"carmarket/internal/auth"
	"carmarket/internal/models"
	"carmarket/internal/observability"
	"carmarket/internal/repository"
	"carmarket/internal/store"
)

// DemoPassword is the password of every sample member.
const DemoPassword = "password"

// Options controls a seeding run.
type Options struct {
	// Listings is the number of generated listings. Zero skips listings.
	Listings int
	// Featured is how many of the generated listings are featured.
	Featured int
	// RandSeed makes listing generation reproducible. Zero uses the clock.
	RandSeed int64
	// Clean drops the existing collections first.
	Clean bool
}

// Summary counts what a run wrote.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Listings int
}

// Seeder writes demo data through the repositories and the store.
type Seeder struct {
	store    store.Store
	users    repository.UserRepository
	listings repository.ListingRepository
	auth     *auth.Service
}

// NewSeeder creates a Seeder writing to s.
func NewSeeder(s store.Store, users repository.UserRepository, listings repository.ListingRepository, a *auth.Service) *Seeder {
	return &Seeder{store: s, users: users, listings: listings, auth: a}
}

// Run installs the whole demo data set.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary
	if opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return sum, err
		}
	}

	users, err := s.Users(ctx)
	if err != nil {
		return sum, fmt.Errorf("seed users: %w", err)
	}
	sum.Users = len(users)

	if sum.Posts, sum.Comments, err = s.Community(ctx); err != nil {
		return sum, fmt.Errorf("seed community: %w", err)
	}

	if opts.Listings > 0 {
		cars, err := s.Listings(ctx, users, opts)
		if err != nil {
			return sum, fmt.Errorf("seed listings: %w", err)
		}
		sum.Listings = len(cars)
	}

	observability.Logger.InfoContext(ctx, "demo data installed",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("listings", sum.Listings),
	)
	return sum, nil
}

// ClearAll removes every collection the seeder writes to, plus chats.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, key := range []string{
		store.KeyUsers, store.KeyCars, store.KeyChatRooms, store.KeyChatMessages,
		store.KeyCommunityPosts, store.KeyCommunityComments,
	} {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

// Users registers the sample members that are not registered yet and
// returns all of them as stored.
func (s *Seeder) Users(ctx context.Context) ([]models.User, error) {
	hash, err := s.auth.HashPassword(DemoPassword)
	if err != nil {
		return nil, err
	}

	out := make([]models.User, 0, len(sampleUsers))
	for _, u := range sampleUsers {
		if existing, err := s.users.GetByEmail(ctx, u.Email); err == nil {
			out = append(out, *existing)
			continue
		} else if !models.IsNotFound(err) {
			return nil, err
		}

		u.Password = hash
		if err := s.users.Create(ctx, &u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// Community writes the sample posts and comments, but only onto an empty
// board so a rerun never duplicates them.
func (s *Seeder) Community(ctx context.Context) (posts, comments int, err error) {
	existing, err := store.LoadCollection[models.Post](ctx, s.store, store.KeyCommunityPosts)
	if err != nil {
		return 0, 0, err
	}
	if len(existing) > 0 {
		return 0, 0, nil
	}

	p, c := samplePosts(), sampleComments()
	if err := store.SaveCollection(ctx, s.store, store.KeyCommunityPosts, p); err != nil {
		return 0, 0, err
	}
	if err := store.SaveCollection(ctx, s.store, store.KeyCommunityComments, c); err != nil {
		return 0, 0, err
	}
	return len(p), len(c), nil
}

// Listings generates opts.Listings cars spread over sellers and features
// the first opts.Featured of them.
func (s *Seeder) Listings(ctx context.Context, sellers []models.User, opts Options) ([]models.Car, error) {
	if len(sellers) == 0 {
		return nil, fmt.Errorf("no sellers to attach listings to")
	}

	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := NewFactory(seed)

	cars := make([]models.Car, 0, opts.Listings)
	for i := 0; i < opts.Listings; i++ {
		car := f.Car(sellers[i%len(sellers)])
		if err := s.listings.Create(ctx, car); err != nil {
			return cars, err
		}
		if i < opts.Featured {
			featured, err := s.listings.SetFeatured(ctx, car.ID, true)
			if err != nil {
				return cars, err
			}
			car = featured
		}
		cars = append(cars, *car)
	}
	return cars, nil
}

// Sample members keep fixed ids so the sample posts can refer to them.
var sampleUsers = []models.User{
	{ID: "1", Name: "김철수", Email: "kim@example.com", Phone: "010-1234-5678"},
	{ID: "2", Name: "박영희", Email: "park@example.com", Phone: "010-2345-6789"},
	{ID: "3", Name: "이민준", Email: "lee@example.com", Phone: "010-3456-7890"},
	{ID: "4", Name: "최지영", Email: "choi@example.com", Phone: "010-4567-8901"},
	{ID: "5", Name: "정우진", Email: "jung@example.com", Phone: "010-5678-9012"},
	{ID: "6", Name: "윤지훈", Email: "yoon@example.com", Phone: "010-6789-0123"},
	{ID: "7", Name: "한선우", Email: "han@example.com", Phone: "010-7890-1234"},
}

func stamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func samplePosts() []models.Post {
	post := func(id, title, content string, cat models.PostCategory, author, name string, views int, likedBy []string, at string) models.Post {
		return models.Post{
			ID: id, Title: title, Content: content, Category: cat,
			AuthorID: author, AuthorName: name,
			Likes: len(likedBy), LikedBy: likedBy, Views: views,
			CreatedAt: stamp(at), UpdatedAt: stamp(at),
		}
	}
	return []models.Post{
		post("1", "현대 아반떼 구매 후기",
			"현대 아반떼를 구매한 지 3개월이 되었습니다. 연비가 정말 좋고 주차도 편해서 만족스럽습니다. 특히 도심 주행에서의 편의성이 뛰어나네요.",
			models.CategoryReview, "1", "김철수", 156, []string{"2", "3"}, "2024-01-15T10:00:00Z"),
		post("2", "중고차 구매 시 주의사항",
			"중고차 구매할 때 꼭 확인해야 할 사항들을 정리해봤습니다. 사고 이력, 정비 기록, 실제 주행거리 등을 꼼꼼히 체크하세요.",
			models.CategoryTip, "2", "박영희", 89, []string{"1"}, "2024-01-14T14:30:00Z"),
		post("3", "전기차 충전소 추천",
			"서울 지역 전기차 충전소 중에서 이용하기 편한 곳들을 추천합니다. 특히 야간 충전이 가능한 곳들을 중심으로 정리했습니다.",
			models.CategoryTip, "3", "이민준", 234, []string{"1", "2", "4"}, "2024-01-13T09:15:00Z"),
		post("4", "차량 보험 비교 후기",
			"다양한 보험사들의 차량보험을 비교해봤습니다. 보험료, 보장 범위, 사고 처리 속도 등을 종합적으로 평가했습니다.",
			models.CategoryReview, "4", "최지영", 67, []string{"1", "3"}, "2024-01-12T11:00:00Z"),
		post("5", "자동차 세금 절약 방법",
			"자동차 관련 세금을 절약할 수 있는 방법들을 알려드립니다. 환경친화적 차량 구매, 연료 효율성 등을 고려해보세요.",
			models.CategoryTip, "5", "정우진", 123, []string{"2", "4"}, "2024-01-11T16:45:00Z"),
	}
}

func sampleComments() []models.Comment {
	comment := func(id, postID, author, name, content string, likedBy []string, at string) models.Comment {
		return models.Comment{
			ID: id, PostID: postID, AuthorID: author, AuthorName: name, Content: content,
			Likes: len(likedBy), LikedBy: likedBy,
			CreatedAt: stamp(at), UpdatedAt: stamp(at),
		}
	}
	return []models.Comment{
		comment("1", "1", "2", "박영희", "정말 좋은 후기네요! 저도 아반떼를 고려하고 있었는데 도움이 많이 되었습니다.",
			[]string{"1"}, "2024-01-15T11:00:00Z"),
		comment("2", "1", "3", "이민준", "연비가 정말 좋다고 하시네요. 혹시 주행거리는 얼마나 되나요?",
			[]string{"1"}, "2024-01-15T12:00:00Z"),
		comment("3", "2", "1", "김철수", "정말 유용한 정보입니다. 특히 사고 이력 확인 방법이 도움이 되었어요.",
			[]string{"2"}, "2024-01-14T15:00:00Z"),
	}
}
