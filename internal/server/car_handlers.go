package server

import (
	"carmarket/internal/models"
	"carmarket/internal/repository"
	"carmarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SearchCars handles GET /api/cars with optional filter query parameters.
func (s *Server) SearchCars(c *fiber.Ctx) error {
	f := repository.ListingFilter{
		Search:       c.Query("search"),
		Brand:        c.Query("brand"),
		FuelType:     models.FuelType(c.Query("fuelType")),
		Transmission: models.Transmission(c.Query("transmission")),
	}
	bounds := []struct {
		name string
		dst  **int
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
		{"minYear", &f.MinYear},
		{"maxYear", &f.MaxYear},
		{"minMileage", &f.MinMileage},
		{"maxMileage", &f.MaxMileage},
	}
	for _, b := range bounds {
		v, err := queryInt(c, b.name)
		if err != nil {
			return respondError(c, err)
		}
		*b.dst = v
	}

	cars, err := s.listings.Search(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cars)
}

// GetBrands handles GET /api/cars/brands
func (s *Server) GetBrands(c *fiber.Ctx) error {
	brands, err := s.listings.Brands(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(brands)
}

// GetFeatured handles GET /api/cars/featured
func (s *Server) GetFeatured(c *fiber.Ctx) error {
	cars, err := s.listings.Featured(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cars)
}

// GetRecommendations handles GET /api/cars/recommendations?category=&limit=
func (s *Server) GetRecommendations(c *fiber.Ctx) error {
	cars, err := s.listings.Recommend(c.UserContext(),
		c.Query("category", service.RecommendAll),
		c.QueryInt("limit", service.DefaultRecommendLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cars)
}

// CompareCars handles GET /api/cars/compare?ids=a,b,c
func (s *Server) CompareCars(c *fiber.Ctx) error {
	cmp, err := s.listings.Compare(c.UserContext(), splitList(c.Query("ids")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cmp)
}

// GetCar handles GET /api/cars/:id
func (s *Server) GetCar(c *fiber.Ctx) error {
	car, err := s.listings.GetListing(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(car)
}

// CreateCar handles POST /api/cars
func (s *Server) CreateCar(c *fiber.Ctx) error {
	var req service.CreateListingInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	car, err := s.listings.CreateListing(c.UserContext(), caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(car)
}

// UpdateCar handles PUT /api/cars/:id. Absent fields are left unchanged.
func (s *Server) UpdateCar(c *fiber.Ctx) error {
	var req struct {
		Title        *string              `json:"title"`
		Brand        *string              `json:"brand"`
		Model        *string              `json:"model"`
		Year         *int                 `json:"year"`
		Price        *int                 `json:"price"`
		Mileage      *int                 `json:"mileage"`
		FuelType     *models.FuelType     `json:"fuelType"`
		Transmission *models.Transmission `json:"transmission"`
		Color        *string              `json:"color"`
		Location     *string              `json:"location"`
		Description  *string              `json:"description"`
		Images       *[]string            `json:"images"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	car, err := s.listings.UpdateListing(c.UserContext(), caller(c), service.UpdateListingInput{
		CarID: c.Params("id"),
		Patch: repository.ListingPatch(req),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(car)
}
