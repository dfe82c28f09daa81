package models

import "time"

// FuelType is the powertrain of a listed car.
type FuelType string

const (
	FuelGasoline FuelType = "gasoline"
	FuelDiesel   FuelType = "diesel"
	FuelHybrid   FuelType = "hybrid"
	FuelElectric FuelType = "electric"
)

// Valid reports whether f is one of the known fuel types.
func (f FuelType) Valid() bool {
	switch f {
	case FuelGasoline, FuelDiesel, FuelHybrid, FuelElectric:
		return true
	}
	return false
}

// Label is the Korean display name used in comparisons.
func (f FuelType) Label() string {
	switch f {
	case FuelGasoline:
		return "가솔린"
	case FuelDiesel:
		return "디젤"
	case FuelHybrid:
		return "하이브리드"
	case FuelElectric:
		return "전기"
	}
	return string(f)
}

// Transmission is the gearbox type of a listed car.
type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)

// Valid reports whether t is one of the known transmissions.
func (t Transmission) Valid() bool {
	return t == TransmissionManual || t == TransmissionAutomatic
}

// Label is the Korean display name used in comparisons.
func (t Transmission) Label() string {
	switch t {
	case TransmissionManual:
		return "수동"
	case TransmissionAutomatic:
		return "자동"
	}
	return string(t)
}

// Car is a listing offered for sale. Price is in units of 10,000 KRW (만원),
// mileage in kilometres.
type Car struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Brand        string       `json:"brand"`
	Model        string       `json:"model"`
	Year         int          `json:"year"`
	Price        int          `json:"price"`
	Mileage      int          `json:"mileage"`
	FuelType     FuelType     `json:"fuelType"`
	Transmission Transmission `json:"transmission"`
	Color        string       `json:"color"`
	Location     string       `json:"location"`
	Description  string       `json:"description"`
	Images       []string     `json:"images"`
	SellerID     string       `json:"sellerId"`
	SellerName   string       `json:"sellerName"`
	SellerPhone  string       `json:"sellerPhone"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Featured     bool         `json:"featured"`
}
