// Package normalize assembles canonical Advertisement records out of the
// best-available text fragments a collector scraped for one candidate.
package normalize

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"

	"oldtimerfinder/internal/advert"
	"oldtimerfinder/internal/classify"
	"oldtimerfinder/internal/extract"
)

// DefaultModelTags is the chassis-code precedence used to derive the coarse
// model label from a title: most specific code first. When no single code is
// identified the combined family label is used.
var DefaultModelTags = []string{"W123", "W124", "W201", "W115"}

// DefaultFamilyLabel is the fallback model label.
const DefaultFamilyLabel = "W123/W124"

// Normalizer turns RawFields from one site into Advertisements. A collector
// owns exactly one Normalizer carrying its site metadata.
type Normalizer struct {
	// Source is the human-readable site name, e.g. "Marktplaats".
	Source string
	// Tag prefixes every external ID so two sites reusing numeric IDs can
	// never collide, e.g. "mp_nl".
	Tag string
	// Country is the ISO code of the marketplace, e.g. "NL".
	Country string

	Profile     classify.Profile
	ModelTags   []string
	FamilyLabel string
}

// Normalize produces a canonical record from raw per-site fields. It returns
// ok=false when the candidate fails classification; a rejected candidate is
// not an error, just out of scope.
func (n *Normalizer) Normalize(raw advert.RawFields) (*advert.Advertisement, bool) {
	ad := &advert.Advertisement{
		Model:       n.modelTag(raw.Title),
		Currency:    "EUR",
		Location:    strings.TrimSpace(raw.Location),
		Country:     n.Country,
		Source:      n.Source,
		SourceURL:   strings.TrimSpace(raw.URL),
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		ImageURL:    strings.TrimSpace(raw.ImageURL),
		IsActive:    true,
	}

	if price, ok := firstPrice(raw.PriceText, raw.DetailText); ok {
		ad.Price = &price
	}
	year, hasYear := firstYear(raw.YearText, raw.Title, raw.DetailText, raw.Description)
	if hasYear {
		ad.Year = &year
	}
	if km, ok := firstMileage(raw.MileageText, raw.DetailText); ok {
		ad.Mileage = &km
	}

	ad.ExternalID = n.externalID(raw)

	text := strings.Join([]string{raw.Title, raw.Description, urlPath(raw.URL)}, " ")
	if !n.Profile.InScope(text, year, hasYear) {
		return nil, false
	}

	return ad, true
}

// externalID scopes the site's native identifier with the source tag. When a
// site exposes no usable identifier the listing URL is hashed instead, which
// keeps re-scrapes of the same URL stable.
func (n *Normalizer) externalID(raw advert.RawFields) string {
	native := strings.TrimSpace(raw.NativeID)
	if native == "" {
		u := strings.TrimSpace(raw.URL)
		if u == "" {
			return ""
		}
		h := fnv.New64a()
		h.Write([]byte(u))
		native = fmt.Sprintf("%016x", h.Sum64())
	}
	return n.Tag + "_" + native
}

func (n *Normalizer) modelTag(title string) string {
	t := strings.ToLower(title)
	tags := n.ModelTags
	if len(tags) == 0 {
		tags = DefaultModelTags
	}
	for _, tag := range tags {
		if strings.Contains(t, strings.ToLower(tag)) {
			return tag
		}
	}
	if n.FamilyLabel != "" {
		return n.FamilyLabel
	}
	return DefaultFamilyLabel
}

func firstPrice(fragments ...string) (float64, bool) {
	for _, f := range fragments {
		if v, ok := extract.Price(f); ok {
			return v, true
		}
	}
	return 0, false
}

func firstYear(fragments ...string) (int, bool) {
	for _, f := range fragments {
		if v, ok := extract.Year(f); ok {
			return v, true
		}
	}
	return 0, false
}

func firstMileage(fragments ...string) (int, bool) {
	for _, f := range fragments {
		if v, ok := extract.Mileage(f); ok {
			return v, true
		}
	}
	return 0, false
}

func urlPath(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}
