// Package importer turns an HTML listing catalogue into listing drafts.
//
// Each listing is a `.car-listing` element. Values are read from data-*
// attributes first and from child elements second:
//
//	<div class="car-listing" data-brand="현대" data-year="2021" data-fuel="gasoline">
//	  <h3 class="title">쏘나타 DN8</h3>
//	  <span class="price">2,350만원</span>
//	  <span class="mileage">32,000km</span>
//	  ...
//	</div>
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"carmarket/internal/auth"
	"carmarket/internal/models"
	"carmarket/internal/observability"
	"carmarket/internal/service"

	"github.com/PuerkitoBio/goquery"
)

const cardSelector = ".car-listing"

var regexNumber = regexp.MustCompile(`\d[\d,]*`)

var fuelLabels = map[string]models.FuelType{
	"가솔린":   models.FuelGasoline,
	"휘발유":   models.FuelGasoline,
	"디젤":    models.FuelDiesel,
	"경유":    models.FuelDiesel,
	"하이브리드": models.FuelHybrid,
	"전기":    models.FuelElectric,
}

var transmissionLabels = map[string]models.Transmission{
	"자동": models.TransmissionAutomatic,
	"오토": models.TransmissionAutomatic,
	"수동": models.TransmissionManual,
}

// SkippedCard records a card that could not be turned into a draft.
type SkippedCard struct {
	Index  int
	Reason string
}

// Result is the outcome of parsing one catalogue.
type Result struct {
	Drafts  []service.CreateListingInput
	Skipped []SkippedCard
}

// Parse reads the catalogue in r. A document without any card is an error;
// individual malformed cards are skipped and reported.
func Parse(r io.Reader) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}

	cards := doc.Find(cardSelector)
	if cards.Length() == 0 {
		return nil, fmt.Errorf("catalogue contains no %s elements", cardSelector)
	}

	res := &Result{}
	cards.Each(func(i int, s *goquery.Selection) {
		draft, err := parseCard(s)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedCard{Index: i, Reason: err.Error()})
			return
		}
		res.Drafts = append(res.Drafts, draft)
	})
	return res, nil
}

func parseCard(s *goquery.Selection) (service.CreateListingInput, error) {
	d := service.CreateListingInput{
		Title:       field(s, "title", ".title"),
		Brand:       field(s, "brand", ".brand"),
		Model:       field(s, "model", ".model"),
		Color:       field(s, "color", ".color"),
		Location:    field(s, "location", ".location"),
		Description: field(s, "description", ".description"),
	}
	if d.Title == "" {
		return d, fmt.Errorf("missing title")
	}
	if d.Model == "" {
		d.Model = d.Title
	}

	var err error
	if d.Year, err = number(s, "year", ".year"); err != nil {
		return d, err
	}
	if d.Price, err = number(s, "price", ".price"); err != nil {
		return d, err
	}
	if d.Mileage, err = number(s, "mileage", ".mileage"); err != nil {
		return d, err
	}

	fuel := field(s, "fuel", ".fuel")
	d.FuelType = models.FuelType(strings.ToLower(fuel))
	if f, ok := fuelLabels[fuel]; ok {
		d.FuelType = f
	}
	trans := field(s, "transmission", ".transmission")
	d.Transmission = models.Transmission(strings.ToLower(trans))
	if t, ok := transmissionLabels[trans]; ok {
		d.Transmission = t
	}

	s.Find("img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			d.Images = append(d.Images, src)
		}
	})
	return d, nil
}

// field reads data-<name>, falling back to the text of the first child
// matching selector.
func field(s *goquery.Selection, name, selector string) string {
	if v, ok := s.Attr("data-" + name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(s.Find(selector).First().Text())
}

// number extracts the first integer of a field, ignoring thousands
// separators and units such as 만원 or km.
func number(s *goquery.Selection, name, selector string) (int, error) {
	raw := field(s, name, selector)
	m := regexNumber.FindString(raw)
	if m == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

// Import publishes every draft as a listing of seller. Drafts the listing
// service rejects are logged and counted, not fatal.
func Import(ctx context.Context, listings *service.ListingService, seller auth.Identity, drafts []service.CreateListingInput) (created int, rejected int) {
	for _, d := range drafts {
		if _, err := listings.CreateListing(ctx, seller, d); err != nil {
			observability.Logger.WarnContext(ctx, "imported listing rejected",
				slog.String("title", d.Title),
				slog.String("error", err.Error()),
			)
			rejected++
			continue
		}
		created++
	}
	return created, rejected
}
