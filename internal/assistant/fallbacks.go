package assistant

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fallbacks.yaml
var defaultCatalogue []byte

// Catalogue holds the canned replies.
type Catalogue struct {
	Consultant struct {
		Intents []ConsultantIntent `yaml:"intents"`
		Generic string             `yaml:"generic"`
	} `yaml:"consultant"`
	Seller struct {
		Intents []SellerIntent `yaml:"intents"`
		Generic []string       `yaml:"generic"`
	} `yaml:"seller"`
}

// ConsultantIntent maps keywords to one deterministic answer.
type ConsultantIntent struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Response string   `yaml:"response"`
}

// SellerIntent maps keywords to interchangeable seller replies.
type SellerIntent struct {
	Name      string   `yaml:"name"`
	Keywords  []string `yaml:"keywords"`
	Responses []string `yaml:"responses"`
}

// DefaultCatalogue parses the embedded catalogue.
func DefaultCatalogue() *Catalogue {
	c, err := ParseCatalogue(defaultCatalogue)
	if err != nil {
		panic(fmt.Sprintf("embedded fallback catalogue: %v", err))
	}
	return c
}

// LoadCatalogue reads the catalogue at path, or the embedded one when path is empty.
func LoadCatalogue(path string) (*Catalogue, error) {
	if path == "" {
		return DefaultCatalogue(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback catalogue: %w", err)
	}
	return ParseCatalogue(raw)
}

// ParseCatalogue decodes and checks a YAML catalogue.
func ParseCatalogue(raw []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse fallback catalogue: %w", err)
	}
	if strings.TrimSpace(c.Consultant.Generic) == "" {
		return nil, errors.New("fallback catalogue: consultant.generic is required")
	}
	if len(c.Seller.Generic) == 0 {
		return nil, errors.New("fallback catalogue: seller.generic needs at least one reply")
	}
	for _, in := range c.Seller.Intents {
		if len(in.Responses) == 0 {
			return nil, fmt.Errorf("fallback catalogue: seller intent %q has no responses", in.Name)
		}
	}
	return &c, nil
}

func matches(text string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// ConsultantReply returns the canned answer of the first matching intent.
// The same input always yields the same answer.
func (c *Catalogue) ConsultantReply(message string) string {
	lower := strings.ToLower(message)
	for _, in := range c.Consultant.Intents {
		if matches(lower, in.Keywords) {
			return in.Response
		}
	}
	return c.Consultant.Generic
}

// SellerReplies returns the candidate replies for text, placeholders filled.
func (c *Catalogue) SellerReplies(listing ListingSummary, text string) []string {
	lower := strings.ToLower(text)
	candidates := c.Seller.Generic
	for _, in := range c.Seller.Intents {
		if matches(lower, in.Keywords) {
			candidates = in.Responses
			break
		}
	}

	r := strings.NewReplacer(
		"{title}", listing.Title,
		"{price}", strconv.Itoa(listing.Price),
		"{year}", strconv.Itoa(listing.Year),
		"{mileage}", strconv.Itoa(listing.Mileage),
		"{location}", listing.Location,
	)
	out := make([]string, len(candidates))
	for i, s := range candidates {
		out[i] = r.Replace(s)
	}
	return out
}
