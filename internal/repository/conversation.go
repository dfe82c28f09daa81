package repository

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"carmarket/internal/models"
	"carmarket/internal/observability"
	"carmarket/internal/store"
)

// ConversationRepository owns chat rooms and their messages.
type ConversationRepository interface {
	// GetOrCreateRoom is idempotent on the (carID, buyerID, sellerID) triple.
	GetOrCreateRoom(ctx context.Context, carID, buyerID, sellerID string) (*models.ChatRoom, error)
	GetRoom(ctx context.Context, roomID string) (*models.ChatRoom, error)
	// SendMessage appends an unread message and records it as the room's
	// last message. A missing room is a not-found error and nothing is appended.
	SendMessage(ctx context.Context, roomID, senderID, receiverID, text, carID string) (*models.ChatMessage, error)
	// Transcript is empty for a missing room.
	Transcript(ctx context.Context, roomID string) ([]models.ChatMessage, error)
	RoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error)
	// MarkRead is a no-op for a missing room.
	MarkRead(ctx context.Context, roomID, userID string) error
	UnreadCount(ctx context.Context, roomID, userID string) (int, error)
}

type conversationRepository struct {
	mu       sync.Mutex
	rooms    collection[models.ChatRoom]
	messages collection[models.ChatMessage]
	now      clock
	log      *observability.RepoLogger
}

// NewConversationRepository returns a new ConversationRepository implementation.
func NewConversationRepository(s store.Store) ConversationRepository {
	return &conversationRepository{
		rooms:    collection[models.ChatRoom]{store: s, key: store.KeyChatRooms},
		messages: collection[models.ChatMessage]{store: s, key: store.KeyChatMessages},
		now:      systemClock,
		log:      observability.NewRepoLogger(store.KeyChatRooms),
	}
}

func (r *conversationRepository) GetOrCreateRoom(ctx context.Context, carID, buyerID, sellerID string) (*models.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, err := r.rooms.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(rooms, func(room *models.ChatRoom) bool {
		return room.CarID == carID && room.BuyerID == buyerID && room.SellerID == sellerID
	}); i >= 0 {
		return &rooms[i], nil
	}

	room := models.ChatRoom{
		ID:        newID(),
		CarID:     carID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		CreatedAt: r.now(),
	}
	if err := r.rooms.save(ctx, append(rooms, room)); err != nil {
		r.log.LogError(ctx, err, "create")
		return nil, err
	}
	r.log.LogCreate(ctx, room.ID, slog.String("car_id", carID))
	return &room, nil
}

func (r *conversationRepository) GetRoom(ctx context.Context, roomID string) (*models.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, err := r.rooms.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(rooms, func(room *models.ChatRoom) bool { return room.ID == roomID })
	if i < 0 {
		return nil, models.NewNotFoundError("Chat room", roomID)
	}
	return &rooms[i], nil
}

func (r *conversationRepository) SendMessage(ctx context.Context, roomID, senderID, receiverID, text, carID string) (*models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, err := r.rooms.load(ctx)
	if err != nil {
		return nil, err
	}
	ri := indexOf(rooms, func(room *models.ChatRoom) bool { return room.ID == roomID })
	if ri < 0 {
		return nil, models.NewNotFoundError("Chat room", roomID)
	}

	messages, err := r.messages.load(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	msg := models.ChatMessage{
		ID:         newID(),
		CarID:      carID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    text,
		Timestamp:  now,
	}
	if err := r.messages.save(ctx, append(messages, msg)); err != nil {
		r.log.LogError(ctx, err, "send")
		return nil, err
	}

	rooms[ri].LastMessage = text
	rooms[ri].LastMessageTime = &now
	if err := r.rooms.save(ctx, rooms); err != nil {
		r.log.LogError(ctx, err, "send")
		return nil, err
	}
	return &msg, nil
}

func (r *conversationRepository) Transcript(ctx context.Context, roomID string) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, messages, err := r.roomMessages(ctx, roomID)
	if err != nil || room == nil {
		return []models.ChatMessage{}, err
	}

	out := []models.ChatMessage{}
	for _, m := range messages {
		if room.Includes(m) {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b models.ChatMessage) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out, nil
}

// roomMessages loads the room (nil when missing) and the full message list.
func (r *conversationRepository) roomMessages(ctx context.Context, roomID string) (*models.ChatRoom, []models.ChatMessage, error) {
	rooms, err := r.rooms.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	i := indexOf(rooms, func(room *models.ChatRoom) bool { return room.ID == roomID })
	if i < 0 {
		return nil, nil, nil
	}
	messages, err := r.messages.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return &rooms[i], messages, nil
}

// RoomsForUser orders by last activity, newest first.
func (r *conversationRepository) RoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, err := r.rooms.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.ChatRoom{}
	for _, room := range rooms {
		if room.HasParticipant(userID) {
			out = append(out, room)
		}
	}
	slices.SortStableFunc(out, func(a, b models.ChatRoom) int {
		return b.ActivityTime().Compare(a.ActivityTime())
	})
	return out, nil
}

func (r *conversationRepository) MarkRead(ctx context.Context, roomID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, messages, err := r.roomMessages(ctx, roomID)
	if err != nil || room == nil {
		return err
	}

	changed := 0
	for i := range messages {
		m := &messages[i]
		if !m.Read && m.ReceiverID == userID && room.Includes(*m) {
			m.Read = true
			changed++
		}
	}
	if changed == 0 {
		return nil
	}
	if err := r.messages.save(ctx, messages); err != nil {
		r.log.LogError(ctx, err, "mark_read")
		return err
	}
	r.log.LogUpdate(ctx, roomID, slog.Int("marked_read", changed))
	return nil
}

func (r *conversationRepository) UnreadCount(ctx context.Context, roomID, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, messages, err := r.roomMessages(ctx, roomID)
	if err != nil || room == nil {
		return 0, err
	}
	n := 0
	for _, m := range messages {
		if !m.Read && m.ReceiverID == userID && room.Includes(m) {
			n++
		}
	}
	return n, nil
}
