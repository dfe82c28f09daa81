package service

import (
	"context"
	"strings"
	"testing"

	"carmarket/internal/assistant"
	"carmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatService_StartConversation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewChatService(f.conversations, f.listings, nil, false)
	ctx := context.Background()
	car := f.addCar(t, kim, "쏘나타", 2350)

	room, err := svc.StartConversation(ctx, lee, car.ID)
	require.NoError(t, err)
	assert.Equal(t, car.ID, room.CarID)
	assert.Equal(t, "u-lee", room.BuyerID)
	assert.Equal(t, "u-kim", room.SellerID)

	again, err := svc.StartConversation(ctx, lee, car.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, again.ID)

	_, err = svc.StartConversation(ctx, kim, car.ID)
	assertValidationError(t, err)

	_, err = svc.StartConversation(ctx, lee, "missing")
	assert.True(t, models.IsNotFound(err))
}

func TestChatService_SendWithoutSimulation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	replier := &replierStub{reply: "네"}
	svc := NewChatService(f.conversations, f.listings, replier, false)
	ctx := context.Background()
	car := f.addCar(t, kim, "쏘나타", 2350)
	room, err := svc.StartConversation(ctx, lee, car.ID)
	require.NoError(t, err)

	sent, err := svc.Send(ctx, lee, SendMessageInput{RoomID: room.ID, Text: "안녕하세요"})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "u-lee", sent[0].SenderID)
	assert.Equal(t, "u-kim", sent[0].ReceiverID)
	assert.Equal(t, car.ID, sent[0].CarID)
	assert.False(t, sent[0].Read)
	assert.Zero(t, replier.calls)

	reply, err := svc.Send(ctx, kim, SendMessageInput{RoomID: room.ID, Text: "반갑습니다"})
	require.NoError(t, err)
	assert.Equal(t, "u-lee", reply[0].ReceiverID)
}

func TestChatService_SendSimulatesSeller(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	replier := &replierStub{reply: "시승 가능합니다"}
	svc := NewChatService(f.conversations, f.listings, replier, true)
	ctx := context.Background()
	car := f.addCar(t, kim, "쏘나타", 2350)
	room, err := svc.StartConversation(ctx, lee, car.ID)
	require.NoError(t, err)

	_, err = svc.Send(ctx, lee, SendMessageInput{RoomID: room.ID, Text: "안녕하세요"})
	require.NoError(t, err)

	sent, err := svc.Send(ctx, lee, SendMessageInput{RoomID: room.ID, Text: "시승 되나요?"})
	require.NoError(t, err)
	require.Len(t, sent, 2)
	assert.Equal(t, "u-kim", sent[1].SenderID)
	assert.Equal(t, "u-lee", sent[1].ReceiverID)
	assert.Equal(t, "시승 가능합니다", sent[1].Message)

	assert.Equal(t, 2, replier.calls)
	assert.Equal(t, assistant.SummaryOf(car), replier.listing)
	assert.Equal(t, "시승 되나요?", replier.text)
	assert.Equal(t, []assistant.Turn{
		{FromBuyer: true, Text: "안녕하세요"},
		{FromBuyer: false, Text: "시승 가능합니다"},
	}, replier.turns)

	transcript, err := svc.Transcript(ctx, lee, room.ID)
	require.NoError(t, err)
	assert.Len(t, transcript, 4)

	// The seller writing back is never answered by the simulation.
	_, err = svc.Send(ctx, kim, SendMessageInput{RoomID: room.ID, Text: "언제 오세요?"})
	require.NoError(t, err)
	assert.Equal(t, 2, replier.calls)
}

func TestChatService_SendRejects(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewChatService(f.conversations, f.listings, nil, true)
	ctx := context.Background()
	car := f.addCar(t, kim, "쏘나타", 2350)
	room, err := svc.StartConversation(ctx, lee, car.ID)
	require.NoError(t, err)

	_, err = svc.Send(ctx, lee, SendMessageInput{RoomID: room.ID, Text: "   "})
	assertValidationError(t, err)

	_, err = svc.Send(ctx, lee, SendMessageInput{RoomID: room.ID, Text: strings.Repeat("가", 2001)})
	assertValidationError(t, err)

	_, err = svc.Send(ctx, park, SendMessageInput{RoomID: room.ID, Text: "hi"})
	assertCode(t, err, models.CodeForbidden)

	_, err = svc.Send(ctx, lee, SendMessageInput{RoomID: "missing", Text: "hi"})
	assert.True(t, models.IsNotFound(err))

	transcript, err := f.conversations.Transcript(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, transcript)
}

func TestChatService_RoomsAndRead(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewChatService(f.conversations, f.listings, nil, false)
	ctx := context.Background()
	car := f.addCar(t, kim, "쏘나타", 2350)
	room, err := svc.StartConversation(ctx, lee, car.ID)
	require.NoError(t, err)

	for _, text := range []string{"하나", "둘"} {
		_, err := svc.Send(ctx, lee, SendMessageInput{RoomID: room.ID, Text: text})
		require.NoError(t, err)
	}

	rooms, err := svc.Rooms(ctx, kim)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 2, rooms[0].Unread)
	assert.Equal(t, "쏘나타", rooms[0].CarTitle)
	assert.Equal(t, "둘", rooms[0].LastMessage)

	_, err = svc.Transcript(ctx, park, room.ID)
	assertCode(t, err, models.CodeForbidden)
	assertCode(t, svc.MarkRead(ctx, park, room.ID), models.CodeForbidden)

	require.NoError(t, svc.MarkRead(ctx, kim, room.ID))
	rooms, err = svc.Rooms(ctx, kim)
	require.NoError(t, err)
	assert.Zero(t, rooms[0].Unread)

	none, err := svc.Rooms(ctx, park)
	require.NoError(t, err)
	assert.Empty(t, none)
}
