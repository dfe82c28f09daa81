package cli

import (
	"bytes"
	"context"
	"testing"

	"carmarket/internal/app"
	"carmarket/internal/config"
	"carmarket/internal/repository"
	"carmarket/internal/session"
	"carmarket/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv(t *testing.T) *Env {
	t.Helper()
	cfg := &config.Config{
		Env:                     "test",
		JWTSecret:               "test-secret-test-secret-test-secret",
		StoreDriver:             config.DriverMemory,
		AssistantTimeoutSeconds: 1,
		SellerSimulation:        true,
	}
	a, err := app.NewWithStore(cfg, store.NewMemoryStore())
	require.NoError(t, err)
	return &Env{App: a, Session: session.NewManager(store.NewMemoryStore(), a.Auth)}
}

func run(t *testing.T, env *Env, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCommand(env, &buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func mustRun(t *testing.T, env *Env, args ...string) string {
	t.Helper()
	out, err := run(t, env, args...)
	require.NoError(t, err, out)
	return out
}

func register(t *testing.T, env *Env, name, email string) {
	t.Helper()
	out := mustRun(t, env, "register", "--name", name, "--email", email,
		"--phone", "010-1234-5678", "--password", "password123")
	assert.Contains(t, out, "Welcome, "+name)
}

func TestAccountCommands(t *testing.T) {
	t.Parallel()
	env := newEnv(t)

	assert.Contains(t, mustRun(t, env, "whoami"), "Not signed in")

	_, err := run(t, env, "cars", "sell", "--title", "x")
	assert.ErrorIs(t, err, errSignedOut)

	register(t, env, "김철수", "kim@example.com")
	assert.Contains(t, mustRun(t, env, "whoami"), "김철수 <kim@example.com>")

	assert.Contains(t, mustRun(t, env, "logout"), "Signed out")
	assert.Contains(t, mustRun(t, env, "whoami"), "Not signed in")

	_, err = run(t, env, "login", "kim@example.com", "wrong-password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNAUTHORIZED")

	assert.Contains(t, mustRun(t, env, "login", "kim@example.com", "password123"), "Signed in as 김철수")
}

func TestCarAndChatCommands(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	ctx := context.Background()

	register(t, env, "김철수", "kim@example.com")
	out := mustRun(t, env, "cars", "sell", "--title", "쏘나타 DN8", "--brand", "현대", "--model", "쏘나타",
		"--year", "2021", "--price", "2350", "--mileage", "32000", "--location", "서울 강남구")
	assert.Contains(t, out, "Listed 쏘나타 DN8")

	_, err := run(t, env, "cars", "sell", "--title", "빈 매물")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VALIDATION_ERROR")

	cars, err := env.App.Listings.List(ctx)
	require.NoError(t, err)
	require.Len(t, cars, 1)
	carID := cars[0].ID

	out = mustRun(t, env, "cars", "search", "--max-price", "3000", "쏘나타")
	assert.Contains(t, out, "2350만원")
	assert.Contains(t, mustRun(t, env, "cars", "search", "--max-price", "2000"), "No cars found")

	assert.Contains(t, mustRun(t, env, "cars", "show", carID), "판매자 김철수")
	assert.Contains(t, mustRun(t, env, "cars", "recommend", "recent"), carID)
	assert.Contains(t, mustRun(t, env, "cars", "compare", carID), "2350만원 *")

	_, err = run(t, env, "cars", "recommend", "sports")
	assert.Error(t, err)

	mustRun(t, env, "logout")
	register(t, env, "이영희", "lee@example.com")

	assert.Contains(t, mustRun(t, env, "chat", "start", carID), "Room ")
	me, ok := env.Session.Identity()
	require.True(t, ok)
	rooms, err := env.App.Conversations.RoomsForUser(ctx, me.UserID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)

	out = mustRun(t, env, "chat", "send", rooms[0].ID, "시승", "가능한가요?")
	assert.Contains(t, out, "me: 시승 가능한가요?")
	assert.Contains(t, out, "them: ")

	assert.Contains(t, mustRun(t, env, "chat", "rooms"), "쏘나타 DN8")
	assert.Contains(t, mustRun(t, env, "chat", "read", rooms[0].ID), "me: 시승 가능한가요?")
}

func TestPostCommands(t *testing.T) {
	t.Parallel()
	env := newEnv(t)

	_, err := run(t, env, "posts", "new", "--title", "질문", "--content", "본문")
	assert.ErrorIs(t, err, errSignedOut)

	register(t, env, "김철수", "kim@example.com")
	out := mustRun(t, env, "posts", "new", "--title", "보험료 질문", "--content", "보험료가 궁금해요", "--category", "question")
	assert.Contains(t, out, `Posted "보험료 질문"`)

	out = mustRun(t, env, "posts", "list", "--category", "question")
	assert.Contains(t, out, "보험료 질문")
	assert.Contains(t, mustRun(t, env, "posts", "list", "-q", "없는글"), "No posts")

	posts, err := env.App.Community.ListPosts(context.Background(), repository.PostQuery{})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	postID := posts[0].ID

	assert.Contains(t, mustRun(t, env, "posts", "like", postID), "now has 1 likes")
	assert.Contains(t, mustRun(t, env, "posts", "comment", postID, "저도", "궁금해요"), "Comment added")

	out = mustRun(t, env, "posts", "show", postID)
	assert.Contains(t, out, "조회 1")
	assert.Contains(t, out, "김철수: 저도 궁금해요")

	mustRun(t, env, "logout")
	register(t, env, "이영희", "lee@example.com")
	_, err = run(t, env, "posts", "delete", postID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORBIDDEN")
}
