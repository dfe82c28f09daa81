package repository

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"carmarket/internal/models"
	"carmarket/internal/observability"
	"carmarket/internal/store"
)

// ListingFilter holds independently optional, ANDed criteria.
// Nil bounds impose no constraint; zero is a real bound.
type ListingFilter struct {
	Search       string
	Brand        string
	MinPrice     *int
	MaxPrice     *int
	MinYear      *int
	MaxYear      *int
	MinMileage   *int
	MaxMileage   *int
	FuelType     models.FuelType
	Transmission models.Transmission
}

// Matches reports whether car satisfies every provided criterion.
func (f ListingFilter) Matches(car models.Car) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(car.Title), strings.ToLower(f.Search)) {
		return false
	}
	if f.Brand != "" && car.Brand != f.Brand {
		return false
	}
	if f.FuelType != "" && car.FuelType != f.FuelType {
		return false
	}
	if f.Transmission != "" && car.Transmission != f.Transmission {
		return false
	}
	return within(car.Price, f.MinPrice, f.MaxPrice) &&
		within(car.Year, f.MinYear, f.MaxYear) &&
		within(car.Mileage, f.MinMileage, f.MaxMileage)
}

func within(v int, lo, hi *int) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

// ListingPatch carries the seller-editable fields; nil leaves a field as is.
type ListingPatch struct {
	Title        *string
	Brand        *string
	Model        *string
	Year         *int
	Price        *int
	Mileage      *int
	FuelType     *models.FuelType
	Transmission *models.Transmission
	Color        *string
	Location     *string
	Description  *string
	Images       *[]string
}

// Apply copies the set fields onto car.
func (p ListingPatch) Apply(car *models.Car) {
	setIf(&car.Title, p.Title)
	setIf(&car.Brand, p.Brand)
	setIf(&car.Model, p.Model)
	setIf(&car.Year, p.Year)
	setIf(&car.Price, p.Price)
	setIf(&car.Mileage, p.Mileage)
	setIf(&car.FuelType, p.FuelType)
	setIf(&car.Transmission, p.Transmission)
	setIf(&car.Color, p.Color)
	setIf(&car.Location, p.Location)
	setIf(&car.Description, p.Description)
	if p.Images != nil {
		car.Images = emptyIfNil(*p.Images)
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// ListingRepository owns the car collection.
type ListingRepository interface {
	// List returns every listing in insertion order.
	List(ctx context.Context) ([]models.Car, error)
	Create(ctx context.Context, car *models.Car) error
	GetByID(ctx context.Context, id string) (*models.Car, error)
	Update(ctx context.Context, id string, patch ListingPatch) (*models.Car, error)
	SetFeatured(ctx context.Context, id string, featured bool) (*models.Car, error)
	Filter(ctx context.Context, f ListingFilter) ([]models.Car, error)
	Brands(ctx context.Context) ([]string, error)
	Featured(ctx context.Context) ([]models.Car, error)
}

type listingRepository struct {
	mu   sync.Mutex
	cars collection[models.Car]
	now  clock
	log  *observability.RepoLogger
}

// NewListingRepository returns a new ListingRepository implementation.
func NewListingRepository(s store.Store) ListingRepository {
	return &listingRepository{
		cars: collection[models.Car]{store: s, key: store.KeyCars},
		now:  systemClock,
		log:  observability.NewRepoLogger(store.KeyCars),
	}
}

func (r *listingRepository) List(ctx context.Context) ([]models.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cars.load(ctx)
}

// Create assigns id and timestamps; featured always starts false.
func (r *listingRepository) Create(ctx context.Context, car *models.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cars, err := r.cars.load(ctx)
	if err != nil {
		return err
	}

	now := r.now()
	car.ID = newID()
	car.CreatedAt = now
	car.UpdatedAt = now
	car.Featured = false
	car.Images = emptyIfNil(car.Images)

	if err := r.cars.save(ctx, append(cars, *car)); err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, car.ID, slog.String("seller_id", car.SellerID))
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*models.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cars, err := r.cars.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(cars, func(c *models.Car) bool { return c.ID == id })
	if i < 0 {
		return nil, models.NewNotFoundError("Car", id)
	}
	return &cars[i], nil
}

func (r *listingRepository) Update(ctx context.Context, id string, patch ListingPatch) (*models.Car, error) {
	return r.mutate(ctx, id, "update", func(c *models.Car) {
		patch.Apply(c)
		c.UpdatedAt = r.now()
	})
}

func (r *listingRepository) SetFeatured(ctx context.Context, id string, featured bool) (*models.Car, error) {
	return r.mutate(ctx, id, "feature", func(c *models.Car) {
		c.Featured = featured
		c.UpdatedAt = r.now()
	})
}

func (r *listingRepository) mutate(ctx context.Context, id, op string, fn func(*models.Car)) (*models.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cars, err := r.cars.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(cars, func(c *models.Car) bool { return c.ID == id })
	if i < 0 {
		return nil, models.NewNotFoundError("Car", id)
	}

	fn(&cars[i])
	if err := r.cars.save(ctx, cars); err != nil {
		r.log.LogError(ctx, err, op)
		return nil, err
	}
	r.log.LogUpdate(ctx, id, slog.String("change", op))
	updated := cars[i]
	return &updated, nil
}

// Filter keeps insertion order.
func (r *listingRepository) Filter(ctx context.Context, f ListingFilter) ([]models.Car, error) {
	cars, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Car, 0, len(cars))
	for _, c := range cars {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Brands returns distinct brands in first-seen order.
func (r *listingRepository) Brands(ctx context.Context) ([]string, error) {
	cars, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(cars))
	brands := []string{}
	for _, c := range cars {
		if _, ok := seen[c.Brand]; ok || c.Brand == "" {
			continue
		}
		seen[c.Brand] = struct{}{}
		brands = append(brands, c.Brand)
	}
	return brands, nil
}

func (r *listingRepository) Featured(ctx context.Context) ([]models.Car, error) {
	cars, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Car{}
	for _, c := range cars {
		if c.Featured {
			out = append(out, c)
		}
	}
	return out, nil
}
