package collector

import (
	"oldtimerfinder/internal/advert"
)

// Collector is the single polymorphic shape every marketplace hides behind:
// fetch candidate listings, normalize and classify them, hand back finished
// records. Site-specific selector knowledge never leaks past it.
type Collector interface {
	// FetchAds runs the site's search queries and returns the in-scope,
	// normalized advertisements found.
	FetchAds() ([]advert.Advertisement, error)

	// GetName returns the collector's name for logging and identification.
	GetName() string

	// GetSource returns the marketplace name records are attributed to.
	GetSource() string

	// GetCountry returns the ISO country code of the marketplace.
	GetCountry() string
}

// IDExtractorFunc extracts a site-native listing identifier from a link.
type IDExtractorFunc func(link string) (string, error)

// Selectors contains the CSS selectors for the fragments of one site's
// result page. Empty selectors mean the site does not expose that fragment;
// the normalizer degrades gracefully.
type Selectors struct {
	AdList   string
	Title    string
	Link     string
	Price    string
	Location string
	Detail   string
	Image    string
}

// Config describes one marketplace collector.
type Config struct {
	// Name identifies the collector in logs, e.g. "MarktplaatsCollector".
	Name string
	// Source and Tag feed the normalizer: record attribution and the
	// external-ID prefix.
	Source string
	Tag    string
	// Country is the ISO code of the marketplace.
	Country string

	// BaseURL resolves relative links; SearchPaths are the queries run in
	// order, each appended to BaseURL.
	BaseURL     string
	SearchPaths []string

	Selectors   Selectors
	IDExtractor IDExtractorFunc

	// CacheKey and BlockTime drive the rate-limit blocking cache: after the
	// site answers 429 no further request is sent for BlockTime seconds.
	CacheKey  string
	BlockTime int
}
