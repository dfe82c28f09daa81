// Package assistant talks to the hosted text model and turns every failure
// into a canned, user-presentable reply.
package assistant

import (
	"context"

	"carmarket/internal/models"
)

// Gateway is the text-generation capability. Implementations return errors
// that Classify can place in the failure taxonomy.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateContextualReply(ctx context.Context, listing ListingSummary, userText string, turns []Turn) (string, error)
}

// ListingSummary is the listing context given to the seller persona.
type ListingSummary struct {
	Title    string
	Price    int
	Year     int
	Mileage  int
	Location string
}

// SummaryOf extracts the prompt context from a listing.
func SummaryOf(car models.Car) ListingSummary {
	return ListingSummary{
		Title:    car.Title,
		Price:    car.Price,
		Year:     car.Year,
		Mileage:  car.Mileage,
		Location: car.Location,
	}
}

// Turn is one prior message of a conversation.
type Turn struct {
	FromBuyer bool
	Text      string
}

// MaxTurns bounds the history forwarded to the model.
const MaxTurns = 10

// RecentTurns converts the tail of a transcript into turns seen from the room's buyer.
func RecentTurns(transcript []models.ChatMessage, buyerID string) []Turn {
	if len(transcript) > MaxTurns {
		transcript = transcript[len(transcript)-MaxTurns:]
	}
	turns := make([]Turn, 0, len(transcript))
	for _, m := range transcript {
		turns = append(turns, Turn{FromBuyer: m.SenderID == buyerID, Text: m.Message})
	}
	return turns
}

type disabledGateway struct{}

// Disabled returns a gateway that always fails with ErrUnavailable.
func Disabled() Gateway { return disabledGateway{} }

func (disabledGateway) Generate(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

func (disabledGateway) GenerateContextualReply(context.Context, ListingSummary, string, []Turn) (string, error) {
	return "", ErrUnavailable
}
