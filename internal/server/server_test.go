package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carmarket/internal/assistant"
	"carmarket/internal/auth"
	"carmarket/internal/config"
	"carmarket/internal/models"
	"carmarket/internal/repository"
	"carmarket/internal/service"
	"carmarket/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type askerStub func(ctx context.Context, message string) string

func (f askerStub) Ask(ctx context.Context, message string) string { return f(ctx, message) }

type testServer struct {
	*Server
	t     *testing.T
	store store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		Env:            "test",
		Port:           "0",
		JWTSecret:      "test-secret-key-12345678901234567890123456789012",
		AllowedOrigins: "http://localhost:5173",
	}
	s := store.NewMemoryStore()
	users := repository.NewUserRepository(s)
	listings := repository.NewListingRepository(s)
	responder := assistant.NewResponder(assistant.Disabled(), time.Second, nil)

	srv := NewServer(Deps{
		Config:    cfg,
		Store:     s,
		Auth:      auth.NewService(users),
		Tokens:    auth.NewTokens(cfg.JWTSecret),
		Listings:  service.NewListingService(listings, users),
		Chat:      service.NewChatService(repository.NewConversationRepository(s), listings, responder, true),
		Community: service.NewCommunityService(repository.NewCommunityRepository(s)),
		Assistant: askerStub(func(_ context.Context, message string) string { return "답변: " + message }),
	})
	return &testServer{Server: srv, t: t, store: s}
}

// do sends a JSON request and decodes the response body into out when non-nil.
func (ts *testServer) do(method, path, token string, body any, out any) int {
	ts.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.App().Test(req, -1)
	require.NoError(ts.t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		require.NoError(ts.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (ts *testServer) register(name, email string) (string, models.User) {
	ts.t.Helper()
	var res authResponse
	status := ts.do(http.MethodPost, "/api/auth/register", "", auth.RegisterInput{
		Name:     name,
		Email:    email,
		Phone:    "010-1234-5678",
		Password: "password",
	}, &res)
	require.Equal(ts.t, http.StatusCreated, status)
	return res.Token, res.User
}

func (ts *testServer) createCar(token, title string, price int) models.Car {
	ts.t.Helper()
	var car models.Car
	status := ts.do(http.MethodPost, "/api/cars", token, service.CreateListingInput{
		Title:        title,
		Brand:        "현대",
		Model:        title,
		Year:         2021,
		Price:        price,
		Mileage:      32000,
		FuelType:     models.FuelGasoline,
		Transmission: models.TransmissionAutomatic,
		Location:     "서울 강남구",
	}, &car)
	require.Equal(ts.t, http.StatusCreated, status)
	return car
}

func TestHealthChecks(t *testing.T) {
	ts := newTestServer(t)

	var live map[string]any
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health/live", "", nil, &live))
	assert.Equal(t, "up", live["status"])

	var ready struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "healthy", ready.Status)
	assert.Equal(t, "disabled", ready.Checks["redis"])
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	token, user := ts.register("김철수", "kim@example.com")
	assert.NotEmpty(t, token)
	assert.Empty(t, user.Password)

	var dup models.ErrorResponse
	status := ts.do(http.MethodPost, "/api/auth/register", "", auth.RegisterInput{
		Name: "김철수", Email: "kim@example.com", Password: "password",
	}, &dup)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, dup.Code)

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{"Success", "kim@example.com", "password", http.StatusOK},
		{"Wrong Password", "kim@example.com", "wrong-password", http.StatusUnauthorized},
		{"Unknown Email", "nobody@example.com", "password", http.StatusUnauthorized},
		{"Case Sensitive Email", "KIM@example.com", "password", http.StatusUnauthorized},
		{"Missing Fields", "", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := ts.do(http.MethodPost, "/api/auth/login", "",
				map[string]string{"email": tt.email, "password": tt.password}, nil)
			assert.Equal(t, tt.want, status)
		})
	}

	var me models.User
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/users/me", token, nil, &me))
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/users/me", "", nil, nil))
}

func TestCarRoutes(t *testing.T) {
	ts := newTestServer(t)
	kim, kimUser := ts.register("김철수", "kim@example.com")
	lee, _ := ts.register("이영희", "lee@example.com")

	sonata := ts.createCar(kim, "쏘나타 DN8", 2350)
	assert.Equal(t, kimUser.ID, sonata.SellerID)
	assert.Equal(t, "010-1234-5678", sonata.SellerPhone)
	k5 := ts.createCar(lee, "K5", 1900)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodPost, "/api/cars", "", map[string]any{}, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/cars", kim, map[string]any{"title": "x"}, nil))

	var cars []models.Car
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/cars?maxPrice=2000", "", nil, &cars))
	require.Len(t, cars, 1)
	assert.Equal(t, k5.ID, cars[0].ID)

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/cars?search=%EC%8F%98%EB%82%98%ED%83%80", "", nil, &cars))
	require.Len(t, cars, 1)
	assert.Equal(t, sonata.ID, cars[0].ID)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/cars?minYear=abc", "", nil, nil))

	var brands []string
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/cars/brands", "", nil, &brands))
	assert.Equal(t, []string{"현대"}, brands)

	var car models.Car
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/cars/"+sonata.ID, "", nil, &car))
	assert.Equal(t, "쏘나타 DN8", car.Title)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/cars/missing", "", nil, nil))

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPut, "/api/cars/"+sonata.ID, lee, map[string]int{"price": 1}, nil))
	assert.Equal(t, http.StatusOK, ts.do(http.MethodPut, "/api/cars/"+sonata.ID, kim, map[string]int{"price": 2200}, &car))
	assert.Equal(t, 2200, car.Price)
	assert.Equal(t, "쏘나타 DN8", car.Title)

	var cmp service.Comparison
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/cars/compare?ids="+sonata.ID+","+k5.ID, "", nil, &cmp))
	require.Len(t, cmp.Cars, 2)
	assert.Equal(t, 1, cmp.Rows[0].Best)

	var recs []models.Car
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/cars/recommendations?category=budget", "", nil, &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, k5.ID, recs[0].ID)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/cars/recommendations?category=sports", "", nil, nil))
}

func TestChatRoutes(t *testing.T) {
	ts := newTestServer(t)
	kim, _ := ts.register("김철수", "kim@example.com")
	lee, leeUser := ts.register("이영희", "lee@example.com")
	park, _ := ts.register("박민수", "park@example.com")
	car := ts.createCar(kim, "쏘나타 DN8", 2350)

	var room models.ChatRoom
	assert.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/chat/rooms", lee, map[string]string{"carId": car.ID}, &room))
	assert.Equal(t, leeUser.ID, room.BuyerID)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/chat/rooms", kim, map[string]string{"carId": car.ID}, nil))

	var sent []models.ChatMessage
	path := "/api/chat/rooms/" + room.ID + "/messages"
	assert.Equal(t, http.StatusCreated, ts.do(http.MethodPost, path, lee, map[string]string{"message": "가격 조정 되나요?"}, &sent))
	require.Len(t, sent, 2)
	assert.Equal(t, car.SellerID, sent[1].SenderID)
	assert.NotEmpty(t, sent[1].Message)

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, path, park, nil, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, path, lee, map[string]string{"message": ""}, nil))

	var rooms []service.RoomView
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/chat/rooms", kim, nil, &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, rooms[0].Unread)
	assert.Equal(t, "쏘나타 DN8", rooms[0].CarTitle)

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPost, "/api/chat/rooms/"+room.ID+"/read", kim, nil, nil))
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/chat/rooms", kim, nil, &rooms))
	assert.Zero(t, rooms[0].Unread)

	var transcript []models.ChatMessage
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, path, kim, nil, &transcript))
	assert.Len(t, transcript, 2)
}

func TestAssistantRoute(t *testing.T) {
	ts := newTestServer(t)

	var res map[string]string
	assert.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/assistant/ask", "", map[string]string{"message": "시세 알려주세요"}, &res))
	assert.Equal(t, "답변: 시세 알려주세요", res["reply"])

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/assistant/ask", "", map[string]string{"message": "  "}, nil))
}

func TestPostRoutes(t *testing.T) {
	ts := newTestServer(t)
	kim, _ := ts.register("김철수", "kim@example.com")
	lee, _ := ts.register("이영희", "lee@example.com")

	var post models.Post
	assert.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/posts", kim,
		service.CreatePostInput{Title: "첫 차 후기", Content: "만족합니다", Category: models.CategoryReview}, &post))
	assert.Equal(t, "김철수", post.AuthorName)

	var posts []models.Post
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/posts?category=review", "", nil, &posts))
	assert.Len(t, posts, 1)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/posts?category=tip", "", nil, &posts))
	assert.Empty(t, posts)

	var liked models.Post
	assert.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/posts/"+post.ID+"/like", lee, nil, &liked))
	assert.Equal(t, 1, liked.Likes)

	var comment models.Comment
	assert.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/posts/"+post.ID+"/comments", lee,
		map[string]string{"content": "축하드려요"}, &comment))
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/api/posts/missing/comments", lee,
		map[string]string{"content": "hi"}, nil))

	commentPath := "/api/posts/" + post.ID + "/comments/" + comment.ID
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPut, commentPath, kim, map[string]string{"content": "x"}, nil))
	assert.Equal(t, http.StatusOK, ts.do(http.MethodPost, commentPath+"/like", kim, nil, &comment))
	assert.Equal(t, 1, comment.Likes)

	var detail service.PostDetail
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/posts/"+post.ID, "", nil, &detail))
	assert.Equal(t, 1, detail.Views)
	assert.Len(t, detail.Comments, 1)

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodDelete, "/api/posts/"+post.ID, lee, nil, nil))
	assert.Equal(t, http.StatusOK, ts.do(http.MethodPut, "/api/posts/"+post.ID, kim, map[string]string{"title": "수정"}, &post))
	assert.Equal(t, "수정", post.Title)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/api/posts/"+post.ID, kim, nil, nil))

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/posts/"+post.ID+"/comments", "", nil, nil))
}
