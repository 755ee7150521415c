package collector

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"oldtimerfinder/helpers"
	"oldtimerfinder/internal/advert"
	"oldtimerfinder/internal/normalize"
	"oldtimerfinder/logger"
	"oldtimerfinder/services/cache"
)

// ConfigurableCollector is the one collector implementation; per-site
// knowledge lives entirely in its Config. Queries run sequentially with a
// fixed inter-request delay to respect target-site load.
type ConfigurableCollector struct {
	cfg        Config
	cacheSvc   cache.CacheService
	blockTime  time.Duration
	delay      time.Duration
	normalizer *normalize.Normalizer

	// fetchFunc is swappable in tests.
	fetchFunc func(url string) (io.Reader, error)
}

// New creates a collector for one marketplace. The normalizer carries the
// classification profile shared by all collectors.
func New(cfg Config, nrm *normalize.Normalizer, cacheSvc cache.CacheService, delay time.Duration) *ConfigurableCollector {
	return &ConfigurableCollector{
		cfg:        cfg,
		cacheSvc:   cacheSvc,
		blockTime:  time.Duration(cfg.BlockTime) * time.Second,
		delay:      delay,
		normalizer: nrm,
		fetchFunc:  helpers.FetchWithRandomHeaders,
	}
}

// GetName returns the collector name.
func (c *ConfigurableCollector) GetName() string {
	return c.cfg.Name
}

// GetSource returns the marketplace name.
func (c *ConfigurableCollector) GetSource() string {
	return c.cfg.Source
}

// GetCountry returns the marketplace country code.
func (c *ConfigurableCollector) GetCountry() string {
	return c.cfg.Country
}

// FetchAds runs every configured search query in order. A failed query
// contributes zero records and the run continues with the next one; an error
// is returned only when no query produced a page at all.
func (c *ConfigurableCollector) FetchAds() ([]advert.Advertisement, error) {
	log := logger.ForCollector(c.cfg.Name)

	var ads []advert.Advertisement
	seen := make(map[string]bool)
	failures := 0
	var lastErr error

	for i, path := range c.cfg.SearchPaths {
		if i > 0 && c.delay > 0 {
			time.Sleep(c.delay)
		}

		body, err := c.fetchWithCache(c.cfg.BaseURL + path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Query failed")
			failures++
			lastErr = err
			continue
		}

		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("HTML parse failed")
			failures++
			lastErr = err
			continue
		}

		doc.Find(c.cfg.Selectors.AdList).Each(func(_ int, s *goquery.Selection) {
			raw := c.candidateFields(s)
			ad, ok := c.normalizer.Normalize(raw)
			if !ok || seen[ad.ExternalID] {
				return
			}
			seen[ad.ExternalID] = true
			ads = append(ads, *ad)
		})
	}

	if failures == len(c.cfg.SearchPaths) && len(c.cfg.SearchPaths) > 0 {
		return nil, fmt.Errorf("%s: all %d queries failed: %w", c.cfg.Source, failures, lastErr)
	}
	return ads, nil
}

// fetchWithCache fetches a URL unless the site is currently rate limited.
// A rate-limit response sets a blocking cache entry so no further request
// goes out until it expires.
func (c *ConfigurableCollector) fetchWithCache(url string) (io.Reader, error) {
	if c.cacheSvc != nil && c.cfg.CacheKey != "" {
		if _, err := c.cacheSvc.Get(c.cfg.CacheKey); err == nil {
			return nil, fmt.Errorf("%s: blocked for %d more seconds after rate limit", c.cfg.CacheKey, int(c.blockTime/time.Second))
		}
	}

	body, err := c.fetchFunc(url)
	if err != nil {
		if c.cacheSvc != nil && c.cfg.CacheKey != "" && strings.HasPrefix(err.Error(), "rate limited") {
			c.cacheSvc.Set(c.cfg.CacheKey, []byte(fmt.Sprintf("%d", int(c.blockTime/time.Second))), c.blockTime)
		}
		return nil, err
	}
	return body, nil
}

// candidateFields pulls the configured DOM fragments for one candidate into
// RawFields. Missing fragments stay empty; the normalizer treats absence as
// unknown.
func (c *ConfigurableCollector) candidateFields(s *goquery.Selection) advert.RawFields {
	raw := advert.RawFields{
		Title:     c.selectionText(s, c.cfg.Selectors.Title),
		PriceText: c.selectionText(s, c.cfg.Selectors.Price),
		Location:  c.selectionText(s, c.cfg.Selectors.Location),
	}

	if c.cfg.Selectors.Detail != "" {
		raw.DetailText = c.selectionText(s, c.cfg.Selectors.Detail)
	} else {
		// Whole-item text as a last resort for year/mileage sniffing.
		raw.DetailText = strings.Join(strings.Fields(s.Text()), " ")
	}

	if link := c.candidateLink(s); link != "" {
		raw.URL = link
		if c.cfg.IDExtractor != nil {
			if id, err := c.cfg.IDExtractor(link); err == nil {
				raw.NativeID = id
			}
		}
	}

	if c.cfg.Selectors.Image != "" {
		if src, ok := s.Find(c.cfg.Selectors.Image).Attr("src"); ok {
			raw.ImageURL = strings.TrimSpace(src)
		}
	}

	return raw
}

func (c *ConfigurableCollector) candidateLink(s *goquery.Selection) string {
	sel := s.Find(c.cfg.Selectors.Link)
	if sel.Length() == 0 {
		return ""
	}
	href, ok := sel.First().Attr("href")
	if !ok {
		return ""
	}
	return c.resolveURL(strings.TrimSpace(href))
}

func (c *ConfigurableCollector) resolveURL(link string) string {
	switch {
	case link == "":
		return ""
	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return link
	case strings.HasPrefix(link, "//"):
		return "https:" + link
	case strings.HasPrefix(link, "/"):
		return c.cfg.BaseURL + link
	default:
		return c.cfg.BaseURL + "/" + link
	}
}

// selectionText finds sel under s and returns its trimmed text, preferring a
// title attribute when one is set (several sites truncate the visible text).
func (c *ConfigurableCollector) selectionText(s *goquery.Selection, sel string) string {
	if sel == "" {
		return ""
	}
	found := s.Find(sel)
	if found.Length() == 0 {
		return ""
	}
	if attr, ok := found.First().Attr("title"); ok && strings.TrimSpace(attr) != "" {
		return strings.TrimSpace(attr)
	}
	return strings.TrimSpace(found.First().Text())
}
