package models

import "time"

// ChatRoom is a conversation between one buyer and one seller about one listing.
type ChatRoom struct {
	ID              string     `json:"id"`
	CarID           string     `json:"carId"`
	BuyerID         string     `json:"buyerId"`
	SellerID        string     `json:"sellerId"`
	LastMessage     string     `json:"lastMessage,omitempty"`
	LastMessageTime *time.Time `json:"lastMessageTime,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ActivityTime is the time rooms are ordered by: the last message, or the
// creation time for rooms nobody has written in yet.
func (r ChatRoom) ActivityTime() time.Time {
	if r.LastMessageTime != nil {
		return *r.LastMessageTime
	}
	return r.CreatedAt
}

// Counterpart returns the other participant of the room, or "" when userID
// does not take part in it.
func (r ChatRoom) Counterpart(userID string) string {
	switch userID {
	case r.BuyerID:
		return r.SellerID
	case r.SellerID:
		return r.BuyerID
	}
	return ""
}

// HasParticipant reports whether userID is the buyer or the seller.
func (r ChatRoom) HasParticipant(userID string) bool {
	return userID != "" && (userID == r.BuyerID || userID == r.SellerID)
}

// Includes reports whether msg belongs to the room's transcript: it travels
// between the buyer and the seller (either direction) about the room's car.
func (r ChatRoom) Includes(msg ChatMessage) bool {
	pair := (msg.SenderID == r.BuyerID && msg.ReceiverID == r.SellerID) ||
		(msg.SenderID == r.SellerID && msg.ReceiverID == r.BuyerID)
	return pair && msg.CarID == r.CarID
}

// ChatMessage is a single appended message. Only Read ever changes.
type ChatMessage struct {
	ID         string    `json:"id"`
	CarID      string    `json:"carId,omitempty"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}
