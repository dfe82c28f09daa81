package seed

import (
	"fmt"
	"strings"

	"carmarket/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

type modelSpec struct {
	brand, model string
	basePrice    int
	fuels        []models.FuelType
}

var catalogue = []modelSpec{
	{"현대", "아반떼", 1900, []models.FuelType{models.FuelGasoline, models.FuelHybrid}},
	{"현대", "쏘나타", 2600, []models.FuelType{models.FuelGasoline, models.FuelHybrid}},
	{"현대", "그랜저", 3800, []models.FuelType{models.FuelGasoline, models.FuelHybrid}},
	{"현대", "아이오닉 5", 4500, []models.FuelType{models.FuelElectric}},
	{"기아", "K5", 2500, []models.FuelType{models.FuelGasoline, models.FuelHybrid}},
	{"기아", "쏘렌토", 3500, []models.FuelType{models.FuelDiesel, models.FuelHybrid}},
	{"기아", "모닝", 1100, []models.FuelType{models.FuelGasoline}},
	{"기아", "EV6", 4800, []models.FuelType{models.FuelElectric}},
	{"제네시스", "G80", 5800, []models.FuelType{models.FuelGasoline}},
	{"BMW", "520i", 5200, []models.FuelType{models.FuelGasoline}},
	{"벤츠", "E300", 6200, []models.FuelType{models.FuelGasoline}},
	{"테슬라", "모델 3", 4900, []models.FuelType{models.FuelElectric}},
	{"쉐보레", "트랙스", 1600, []models.FuelType{models.FuelGasoline}},
}

var (
	colors    = []string{"흰색", "검정", "회색", "은색", "파랑", "빨강"}
	locations = []string{"서울 강남구", "서울 마포구", "경기 성남시", "경기 수원시", "인천 연수구", "부산 해운대구", "대구 수성구", "대전 유성구"}
	notes     = []string{"무사고", "1인 신조", "정비 이력 완비", "실내 금연", "타이어 최근 교체", "보증 잔여"}
)

// Factory builds plausible listings from a seeded faker so a run can be
// reproduced.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory creates a Factory whose output is fixed by seed.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// Car builds an unsaved listing sold by seller. Older and more driven cars
// are cheaper than the model's base price.
func (f *Factory) Car(seller models.User) *models.Car {
	m := catalogue[f.faker.Number(0, len(catalogue)-1)]
	year := f.faker.Number(2012, 2024)
	age := 2024 - year
	mileage := age*f.faker.Number(8000, 18000) + f.faker.Number(0, 9999)

	price := m.basePrice - age*m.basePrice/15 - mileage/10000*20
	if floor := m.basePrice / 5; price < floor {
		price = floor
	}
	price = price / 10 * 10

	trans := models.TransmissionAutomatic
	if m.fuels[0] == models.FuelGasoline && f.faker.Number(0, 9) == 0 {
		trans = models.TransmissionManual
	}

	var desc []string
	for _, n := range notes {
		if f.faker.Bool() {
			desc = append(desc, n)
		}
	}

	return &models.Car{
		Title:        fmt.Sprintf("%d %s %s", year, m.brand, m.model),
		Brand:        m.brand,
		Model:        m.model,
		Year:         year,
		Price:        price,
		Mileage:      mileage,
		FuelType:     m.fuels[f.faker.Number(0, len(m.fuels)-1)],
		Transmission: trans,
		Color:        f.faker.RandomString(colors),
		Location:     f.faker.RandomString(locations),
		Description:  strings.Join(desc, ", "),
		Images:       []string{fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID())},
		SellerID:     seller.ID,
		SellerName:   seller.Name,
		SellerPhone:  seller.Phone,
	}
}
