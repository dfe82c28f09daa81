package service

import (
	"context"
	"testing"
	"time"

	"carmarket/internal/assistant"
	"carmarket/internal/auth"
	"carmarket/internal/models"
	"carmarket/internal/repository"
	"carmarket/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listingRepoStub overrides selected repository.ListingRepository methods.
// Calling a method without a stub function panics through the nil interface.
type listingRepoStub struct {
	repository.ListingRepository
	listFn    func(context.Context) ([]models.Car, error)
	getByIDFn func(context.Context, string) (*models.Car, error)
}

func (s *listingRepoStub) List(ctx context.Context) ([]models.Car, error) {
	return s.listFn(ctx)
}

func (s *listingRepoStub) GetByID(ctx context.Context, id string) (*models.Car, error) {
	return s.getByIDFn(ctx, id)
}

func carsByID(cars ...models.Car) func(context.Context, string) (*models.Car, error) {
	return func(_ context.Context, id string) (*models.Car, error) {
		for i := range cars {
			if cars[i].ID == id {
				c := cars[i]
				return &c, nil
			}
		}
		return nil, models.NewNotFoundError("Car", id)
	}
}

// replierStub records the context handed to the simulated seller.
type replierStub struct {
	reply   string
	listing assistant.ListingSummary
	text    string
	turns   []assistant.Turn
	calls   int
}

func (r *replierStub) SellerReply(_ context.Context, listing assistant.ListingSummary, text string, turns []assistant.Turn) string {
	r.calls++
	r.listing, r.text, r.turns = listing, text, turns
	return r.reply
}

var (
	kim  = auth.Identity{UserID: "u-kim", Name: "김철수"}
	lee  = auth.Identity{UserID: "u-lee", Name: "이영희"}
	park = auth.Identity{UserID: "u-park", Name: "박민수"}
)

type fixture struct {
	store         store.Store
	users         repository.UserRepository
	listings      repository.ListingRepository
	conversations repository.ConversationRepository
	community     repository.CommunityRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	f := &fixture{
		store:         s,
		users:         repository.NewUserRepository(s),
		listings:      repository.NewListingRepository(s),
		conversations: repository.NewConversationRepository(s),
		community:     repository.NewCommunityRepository(s),
	}
	ctx := context.Background()
	for _, id := range []auth.Identity{kim, lee, park} {
		require.NoError(t, f.users.Create(ctx, &models.User{
			ID:    id.UserID,
			Name:  id.Name,
			Email: id.UserID + "@example.com",
			Phone: "010-0000-0000",
		}))
	}
	return f
}

// addCar stores a listing sold by seller and returns it.
func (f *fixture) addCar(t *testing.T, seller auth.Identity, title string, price int) models.Car {
	t.Helper()
	car := &models.Car{
		Title:        title,
		Brand:        "현대",
		Model:        title,
		Year:         2021,
		Price:        price,
		Mileage:      30000,
		FuelType:     models.FuelGasoline,
		Transmission: models.TransmissionAutomatic,
		Location:     "서울 강남구",
		SellerID:     seller.UserID,
		SellerName:   seller.Name,
	}
	require.NoError(t, f.listings.Create(context.Background(), car))
	return *car
}

func at(day int) time.Time {
	return time.Date(2024, 3, day, 9, 0, 0, 0, time.UTC)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}
