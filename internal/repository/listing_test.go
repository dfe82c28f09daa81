package repository

import (
	"context"
	"testing"

	"carmarket/internal/models"
	"carmarket/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingRepository_CreateAssignsFields(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestListings()

	car := &models.Car{Title: "아반떼", Brand: "현대", Featured: true}
	require.NoError(t, repo.Create(ctx, car))

	assert.NotEmpty(t, car.ID)
	assert.Equal(t, testEpoch, car.CreatedAt)
	assert.Equal(t, car.CreatedAt, car.UpdatedAt)
	assert.False(t, car.Featured)
	assert.NotNil(t, car.Images)

	got, err := repo.GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "아반떼", got.Title)
}

func TestListingRepository_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestListings()

	for _, title := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Create(ctx, &models.Car{Title: title}))
	}

	cars, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, cars, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{cars[0].Title, cars[1].Title, cars[2].Title})
}

func TestListingRepository_FilterConjunction(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestListings()

	require.NoError(t, repo.Create(ctx, &models.Car{Title: "first", Price: 1500, Year: 2020, Brand: "A"}))
	require.NoError(t, repo.Create(ctx, &models.Car{Title: "second", Price: 2500, Year: 2019, Brand: "B"}))

	got, err := repo.Filter(ctx, ListingFilter{MinPrice: intPtr(2000), Brand: "B"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].Title)

	got, err = repo.Filter(ctx, ListingFilter{MaxPrice: intPtr(1000)})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.Filter(ctx, ListingFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListingFilter_Matches(t *testing.T) {
	car := models.Car{
		Title:        "Hyundai Sonata DN8",
		Brand:        "현대",
		Price:        2500,
		Year:         2021,
		Mileage:      0,
		FuelType:     models.FuelHybrid,
		Transmission: models.TransmissionAutomatic,
	}

	tests := []struct {
		name   string
		filter ListingFilter
		want   bool
	}{
		{"empty filter", ListingFilter{}, true},
		{"case-insensitive search", ListingFilter{Search: "sonata"}, true},
		{"search miss", ListingFilter{Search: "avante"}, false},
		{"brand exact", ListingFilter{Brand: "현대"}, true},
		{"brand mismatch", ListingFilter{Brand: "기아"}, false},
		{"inclusive price bounds", ListingFilter{MinPrice: intPtr(2500), MaxPrice: intPtr(2500)}, true},
		{"year below min", ListingFilter{MinYear: intPtr(2022)}, false},
		{"zero mileage bound is a real bound", ListingFilter{MaxMileage: intPtr(0)}, true},
		{"mileage above max", ListingFilter{MinMileage: intPtr(1)}, false},
		{"fuel type", ListingFilter{FuelType: models.FuelHybrid}, true},
		{"fuel type mismatch", ListingFilter{FuelType: models.FuelDiesel}, false},
		{"transmission mismatch", ListingFilter{Transmission: models.TransmissionManual}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(car))
		})
	}
}

func TestListingRepository_UpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestListings()

	car := &models.Car{Title: "old", Price: 1000, Images: []string{"a.jpg"}}
	require.NoError(t, repo.Create(ctx, car))

	price := 900
	images := []string{}
	updated, err := repo.Update(ctx, car.ID, ListingPatch{Title: strPtr("new"), Price: &price, Images: &images})
	require.NoError(t, err)

	assert.Equal(t, car.ID, updated.ID)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, 900, updated.Price)
	assert.Empty(t, updated.Images)
	assert.Equal(t, car.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(car.UpdatedAt))

	_, err = repo.Update(ctx, "missing", ListingPatch{})
	assert.True(t, models.IsNotFound(err))
}

func TestListingRepository_BrandsAndFeatured(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestListings()

	var ids []string
	for _, brand := range []string{"현대", "기아", "현대", "BMW"} {
		car := &models.Car{Brand: brand}
		require.NoError(t, repo.Create(ctx, car))
		ids = append(ids, car.ID)
	}

	brands, err := repo.Brands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"현대", "기아", "BMW"}, brands)

	_, err = repo.SetFeatured(ctx, ids[1], true)
	require.NoError(t, err)

	featured, err := repo.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, ids[1], featured[0].ID)
}

func TestListingRepository_CorruptCollectionResets(t *testing.T) {
	ctx := context.Background()
	repo, s := newTestListings()
	require.NoError(t, s.Set(ctx, store.KeyCars, []byte(`[{"id":`)))

	cars, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cars)

	require.NoError(t, repo.Create(ctx, &models.Car{Title: "after reset"}))
	cars, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cars, 1)
}
