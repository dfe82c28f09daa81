package service

import (
	"context"
	"log/slog"

	"carmarket/internal/assistant"
	"carmarket/internal/auth"
	"carmarket/internal/models"
	"carmarket/internal/observability"
	"carmarket/internal/repository"
	"carmarket/internal/validation"
)

const maxChatMessageLen = 2000

// SellerReplier produces the simulated seller's answer. It never fails.
type SellerReplier interface {
	SellerReply(ctx context.Context, listing assistant.ListingSummary, text string, turns []assistant.Turn) string
}

type ChatService struct {
	conversations repository.ConversationRepository
	listings      repository.ListingRepository
	replier       SellerReplier
	simulate      bool
}

type SendMessageInput struct {
	RoomID string
	Text   string
}

// RoomView is a room as its participant sees it in the room list.
type RoomView struct {
	models.ChatRoom
	CarTitle string `json:"carTitle,omitempty"`
	Unread   int    `json:"unread"`
}

// NewChatService creates a ChatService. With simulate set, messages sent to
// a room's seller are answered by replier on the seller's behalf.
func NewChatService(
	conversations repository.ConversationRepository,
	listings repository.ListingRepository,
	replier SellerReplier,
	simulate bool,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		listings:      listings,
		replier:       replier,
		simulate:      simulate && replier != nil,
	}
}

// StartConversation opens (or reopens) the buyer's room for a listing.
func (s *ChatService) StartConversation(ctx context.Context, buyer auth.Identity, carID string) (*models.ChatRoom, error) {
	car, err := s.listings.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.SellerID == buyer.UserID {
		return nil, models.NewValidationError("You cannot start a chat about your own listing")
	}
	return s.conversations.GetOrCreateRoom(ctx, car.ID, buyer.UserID, car.SellerID)
}

func (s *ChatService) participantRoom(ctx context.Context, caller auth.Identity, roomID string) (*models.ChatRoom, error) {
	room, err := s.conversations.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(caller.UserID) {
		return nil, models.NewForbiddenError("You are not a participant of this chat")
	}
	return room, nil
}

// Send appends the caller's message and, when the seller is simulated, the
// seller's reply. It returns every message appended, in order.
func (s *ChatService) Send(ctx context.Context, sender auth.Identity, in SendMessageInput) ([]models.ChatMessage, error) {
	if err := validation.ValidateText("message", in.Text, maxChatMessageLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	room, err := s.participantRoom(ctx, sender, in.RoomID)
	if err != nil {
		return nil, err
	}

	receiver := room.Counterpart(sender.UserID)
	msg, err := s.conversations.SendMessage(ctx, room.ID, sender.UserID, receiver, in.Text, room.CarID)
	if err != nil {
		return nil, err
	}
	sent := []models.ChatMessage{*msg}

	if !s.simulate || receiver != room.SellerID {
		return sent, nil
	}
	if reply := s.simulateSeller(ctx, room, in.Text); reply != nil {
		sent = append(sent, *reply)
	}
	return sent, nil
}

// simulateSeller appends the seller's generated answer. Failures are logged
// and leave the buyer's message standing alone.
func (s *ChatService) simulateSeller(ctx context.Context, room *models.ChatRoom, text string) *models.ChatMessage {
	car, err := s.listings.GetByID(ctx, room.CarID)
	if err != nil {
		observability.Logger.WarnContext(ctx, "seller simulation skipped",
			slog.String("room_id", room.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	transcript, err := s.conversations.Transcript(ctx, room.ID)
	if err != nil {
		observability.Logger.WarnContext(ctx, "seller simulation skipped",
			slog.String("room_id", room.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	// The message being answered is already the last transcript entry.
	if n := len(transcript); n > 0 {
		transcript = transcript[:n-1]
	}

	reply := s.replier.SellerReply(ctx, assistant.SummaryOf(*car), text, assistant.RecentTurns(transcript, room.BuyerID))
	msg, err := s.conversations.SendMessage(ctx, room.ID, room.SellerID, room.BuyerID, reply, room.CarID)
	if err != nil {
		observability.Logger.ErrorContext(ctx, "failed to store seller reply",
			slog.String("room_id", room.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return msg
}

// Rooms lists the caller's rooms, most recently active first.
func (s *ChatService) Rooms(ctx context.Context, caller auth.Identity) ([]RoomView, error) {
	rooms, err := s.conversations.RoomsForUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	views := make([]RoomView, 0, len(rooms))
	for _, room := range rooms {
		unread, err := s.conversations.UnreadCount(ctx, room.ID, caller.UserID)
		if err != nil {
			return nil, err
		}
		view := RoomView{ChatRoom: room, Unread: unread}
		if car, err := s.listings.GetByID(ctx, room.CarID); err == nil {
			view.CarTitle = car.Title
		} else if !models.IsNotFound(err) {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Transcript returns the room's messages. Only participants may read them.
func (s *ChatService) Transcript(ctx context.Context, caller auth.Identity, roomID string) ([]models.ChatMessage, error) {
	room, err := s.participantRoom(ctx, caller, roomID)
	if err != nil {
		return nil, err
	}
	return s.conversations.Transcript(ctx, room.ID)
}

// MarkRead marks every message addressed to the caller in the room as read.
func (s *ChatService) MarkRead(ctx context.Context, caller auth.Identity, roomID string) error {
	room, err := s.participantRoom(ctx, caller, roomID)
	if err != nil {
		return err
	}
	return s.conversations.MarkRead(ctx, room.ID, caller.UserID)
}
