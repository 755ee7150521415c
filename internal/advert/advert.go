package advert

import "time"

// Advertisement is the canonical record for a single used-vehicle listing.
// ExternalID is unique per source and stable across re-scrapes; it is the
// upsert key of the store.
type Advertisement struct {
	ExternalID  string    `json:"external_id"`
	Model       string    `json:"model"`
	Year        *int      `json:"year,omitempty"`
	Mileage     *int      `json:"mileage,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	Location    string    `json:"location,omitempty"`
	Country     string    `json:"country"`
	Source      string    `json:"source"`
	SourceURL   string    `json:"source_url"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	DateAdded   time.Time `json:"date_added"`
	DateUpdated time.Time `json:"date_updated"`
}

// RawFields carries whatever text fragments a collector managed to pull out
// of a single candidate listing. Every field may be empty; each site exposes
// a different subset of the DOM.
type RawFields struct {
	Title       string
	Description string
	PriceText   string
	YearText    string
	MileageText string
	DetailText  string
	Location    string
	ImageURL    string
	NativeID    string
	URL         string
}
