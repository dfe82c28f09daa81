package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"carmarket/internal/auth"
	"carmarket/internal/models"
	"carmarket/internal/repository"
	"carmarket/internal/validation"
)

const (
	minListingYear     = 1950
	maxListingTitleLen = 100
	budgetMaxPrice     = 2000
	luxuryMinPrice     = 3000
)

const (
	DefaultRecommendLimit = 6
	MaxCompare            = 3
)

// Recommendation categories.
const (
	RecommendAll      = "all"
	RecommendBudget   = "budget"
	RecommendLuxury   = "luxury"
	RecommendElectric = "electric"
	RecommendRecent   = "recent"
)

type ListingService struct {
	listings repository.ListingRepository
	users    repository.UserRepository
	now      func() time.Time
}

// CreateListingInput is the seller-supplied part of a new listing.
type CreateListingInput struct {
	Title        string              `json:"title"`
	Brand        string              `json:"brand"`
	Model        string              `json:"model"`
	Year         int                 `json:"year"`
	Price        int                 `json:"price"`
	Mileage      int                 `json:"mileage"`
	FuelType     models.FuelType     `json:"fuelType"`
	Transmission models.Transmission `json:"transmission"`
	Color        string              `json:"color"`
	Location     string              `json:"location"`
	Description  string              `json:"description"`
	Images       []string            `json:"images"`
}

type UpdateListingInput struct {
	CarID string
	Patch repository.ListingPatch
}

func NewListingService(listings repository.ListingRepository, users repository.UserRepository) *ListingService {
	return &ListingService{listings: listings, users: users, now: time.Now}
}

func (s *ListingService) validate(title, brand, model string, year, price, mileage int, fuel models.FuelType, trans models.Transmission) error {
	if err := validation.ValidateText("title", title, maxListingTitleLen); err != nil {
		return models.NewValidationError(err.Error())
	}
	if strings.TrimSpace(brand) == "" {
		return models.NewValidationError("brand is required")
	}
	if strings.TrimSpace(model) == "" {
		return models.NewValidationError("model is required")
	}
	if maxYear := s.now().Year() + 1; year < minListingYear || year > maxYear {
		return models.NewValidationError(fmt.Sprintf("year must be between %d and %d", minListingYear, maxYear))
	}
	if price <= 0 {
		return models.NewValidationError("price must be positive")
	}
	if mileage < 0 {
		return models.NewValidationError("mileage cannot be negative")
	}
	if !fuel.Valid() {
		return models.NewValidationError("invalid fuel type")
	}
	if !trans.Valid() {
		return models.NewValidationError("invalid transmission")
	}
	return nil
}

// CreateListing publishes a listing on behalf of seller.
func (s *ListingService) CreateListing(ctx context.Context, seller auth.Identity, in CreateListingInput) (*models.Car, error) {
	if err := s.validate(in.Title, in.Brand, in.Model, in.Year, in.Price, in.Mileage, in.FuelType, in.Transmission); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, seller.UserID)
	if err != nil {
		return nil, err
	}

	car := &models.Car{
		Title:        strings.TrimSpace(in.Title),
		Brand:        strings.TrimSpace(in.Brand),
		Model:        strings.TrimSpace(in.Model),
		Year:         in.Year,
		Price:        in.Price,
		Mileage:      in.Mileage,
		FuelType:     in.FuelType,
		Transmission: in.Transmission,
		Color:        in.Color,
		Location:     in.Location,
		Description:  in.Description,
		Images:       cleanImages(in.Images),
		SellerID:     user.ID,
		SellerName:   user.Name,
		SellerPhone:  user.Phone,
	}
	if err := s.listings.Create(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

// UpdateListing applies a seller's edit. Only the listing's seller may edit it.
func (s *ListingService) UpdateListing(ctx context.Context, seller auth.Identity, in UpdateListingInput) (*models.Car, error) {
	car, err := s.listings.GetByID(ctx, in.CarID)
	if err != nil {
		return nil, err
	}
	if car.SellerID != seller.UserID {
		return nil, models.NewForbiddenError("You can only edit your own listings")
	}

	next := *car
	in.Patch.Apply(&next)
	if err := s.validate(next.Title, next.Brand, next.Model, next.Year, next.Price, next.Mileage, next.FuelType, next.Transmission); err != nil {
		return nil, err
	}
	if in.Patch.Images != nil {
		imgs := cleanImages(*in.Patch.Images)
		in.Patch.Images = &imgs
	}
	return s.listings.Update(ctx, in.CarID, in.Patch)
}

func (s *ListingService) GetListing(ctx context.Context, id string) (*models.Car, error) {
	return s.listings.GetByID(ctx, id)
}

func (s *ListingService) Search(ctx context.Context, f repository.ListingFilter) ([]models.Car, error) {
	return s.listings.Filter(ctx, f)
}

func (s *ListingService) Brands(ctx context.Context) ([]string, error) {
	return s.listings.Brands(ctx)
}

func (s *ListingService) Featured(ctx context.Context) ([]models.Car, error) {
	return s.listings.Featured(ctx)
}

func cleanImages(in []string) []string {
	out := make([]string, 0, len(in))
	for _, img := range in {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}

// Recommend returns up to limit listings for category. An unknown category
// is a validation error; a non-positive limit means DefaultRecommendLimit.
func (s *ListingService) Recommend(ctx context.Context, category string, limit int) ([]models.Car, error) {
	if limit <= 0 {
		limit = DefaultRecommendLimit
	}
	cars, err := s.listings.List(ctx)
	if err != nil {
		return nil, err
	}

	var picked []models.Car
	switch category {
	case RecommendBudget:
		picked = keep(cars, func(c models.Car) bool { return c.Price <= budgetMaxPrice })
		slices.SortStableFunc(picked, func(a, b models.Car) int {
			va, vb := valueScore(a), valueScore(b)
			switch {
			case va < vb:
				return -1
			case va > vb:
				return 1
			}
			return 0
		})
	case RecommendLuxury:
		picked = keep(cars, func(c models.Car) bool { return c.Price >= luxuryMinPrice })
		slices.SortStableFunc(picked, func(a, b models.Car) int { return b.Price - a.Price })
	case RecommendElectric:
		picked = keep(cars, func(c models.Car) bool {
			return c.FuelType == models.FuelElectric || c.FuelType == models.FuelHybrid
		})
	case RecommendRecent:
		picked = slices.Clone(cars)
		slices.SortStableFunc(picked, newestFirst)
	case RecommendAll, "":
		picked = slices.Clone(cars)
		slices.SortStableFunc(picked, func(a, b models.Car) int {
			if a.Featured != b.Featured {
				if a.Featured {
					return -1
				}
				return 1
			}
			return newestFirst(a, b)
		})
	default:
		return nil, models.NewValidationError(fmt.Sprintf("unknown recommendation category %q", category))
	}

	if len(picked) > limit {
		picked = picked[:limit]
	}
	return picked, nil
}

// valueScore is price per ten thousand kilometres driven, lower is better value.
func valueScore(c models.Car) float64 {
	return float64(c.Price) / (float64(c.Mileage)/10000 + 1)
}

func newestFirst(a, b models.Car) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}

func keep(cars []models.Car, pred func(models.Car) bool) []models.Car {
	out := make([]models.Car, 0, len(cars))
	for _, c := range cars {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

// ComparisonRow is one attribute across the compared listings.
// Best is the index of the best value, or -1 for non-numeric rows.
type ComparisonRow struct {
	Label  string   `json:"label"`
	Values []string `json:"values"`
	Best   int      `json:"best"`
}

type Comparison struct {
	Cars []models.Car    `json:"cars"`
	Rows []ComparisonRow `json:"rows"`
}

// Compare lines up to MaxCompare distinct listings side by side.
func (s *ListingService) Compare(ctx context.Context, ids []string) (*Comparison, error) {
	var distinct []string
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(distinct, id) {
			distinct = append(distinct, id)
		}
	}
	if len(distinct) == 0 {
		return nil, models.NewValidationError("at least one listing id is required")
	}
	if len(distinct) > MaxCompare {
		return nil, models.NewValidationError(fmt.Sprintf("at most %d listings can be compared", MaxCompare))
	}

	cars := make([]models.Car, 0, len(distinct))
	for _, id := range distinct {
		car, err := s.listings.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		cars = append(cars, *car)
	}

	return &Comparison{
		Cars: cars,
		Rows: []ComparisonRow{
			numericRow("가격", cars, func(c models.Car) int { return c.Price }, "%d만원", false),
			numericRow("연식", cars, func(c models.Car) int { return c.Year }, "%d년", true),
			numericRow("주행거리", cars, func(c models.Car) int { return c.Mileage }, "%dkm", false),
			textRow("연료", cars, func(c models.Car) string { return c.FuelType.Label() }),
			textRow("변속기", cars, func(c models.Car) string { return c.Transmission.Label() }),
			textRow("색상", cars, func(c models.Car) string { return c.Color }),
			textRow("위치", cars, func(c models.Car) string { return c.Location }),
		},
	}, nil
}

func numericRow(label string, cars []models.Car, get func(models.Car) int, format string, higherIsBetter bool) ComparisonRow {
	row := ComparisonRow{Label: label, Values: make([]string, len(cars)), Best: 0}
	for i, c := range cars {
		row.Values[i] = fmt.Sprintf(format, get(c))
		v, best := get(c), get(cars[row.Best])
		if (higherIsBetter && v > best) || (!higherIsBetter && v < best) {
			row.Best = i
		}
	}
	return row
}

func textRow(label string, cars []models.Car, get func(models.Car) string) ComparisonRow {
	row := ComparisonRow{Label: label, Values: make([]string, len(cars)), Best: -1}
	for i, c := range cars {
		row.Values[i] = get(c)
	}
	return row
}
