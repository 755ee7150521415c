package collector

import (
	"regexp"
	"strings"

	"oldtimerfinder/config"
	"oldtimerfinder/helpers"
	"oldtimerfinder/internal/classify"
	"oldtimerfinder/internal/normalize"
	"oldtimerfinder/services/cache"
)

var (
	marktplaatsIDRe   = regexp.MustCompile(`/([am]\d+)`)
	kleinanzeigenIDRe = regexp.MustCompile(`/(\d+)(?:-|$)`)
	autoscoutIDRe     = regexp.MustCompile(`/([a-f0-9-]{20,})`)
	mobileIDRe        = regexp.MustCompile(`id=(\d+)`)
)

// CreateCollectors builds one collector per configured marketplace. All of
// them share the classification profile derived from the config's year bound.
func CreateCollectors(cfg *config.Config, cacheSvc cache.CacheService) []Collector {
	profile := classify.DefaultProfile()
	profile.YearFrom = cfg.YearFrom
	profile.YearTo = cfg.YearTo

	configurations := []Config{
		{
			Name:    "MarktplaatsCollector",
			Source:  "Marktplaats",
			Tag:     "mp_nl",
			Country: "NL",
			BaseURL: cfg.MarktplaatsURL,
			SearchPaths: []string{
				"/l/auto-s/mercedes-benz/q/w123+diesel/",
				"/l/auto-s/mercedes-benz/q/w124+diesel/",
				"/l/auto-s/mercedes-benz/q/mercedes+240d/",
				"/l/auto-s/mercedes-benz/q/mercedes+300d+oldtimer/",
			},
			Selectors: Selectors{
				AdList:   "li.hz-Listing",
				Title:    "h3.hz-Listing-title",
				Link:     "a.hz-Listing-coverLink",
				Price:    "p.hz-Listing-price",
				Location: "span.hz-Listing-distance-label",
				Detail:   "",
				Image:    "img.hz-Listing-image",
			},
			IDExtractor: regexID(marktplaatsIDRe),
			CacheKey:    "marktplaats_rate_limited",
			BlockTime:   600,
		},
		{
			Name:    "TweedehandsCollector",
			Source:  "2dehands",
			Tag:     "2dh_be",
			Country: "BE",
			BaseURL: cfg.TweedehandsURL,
			SearchPaths: []string{
				"/l/auto-s/mercedes-benz/q/w123+diesel/",
				"/l/auto-s/mercedes-benz/q/w124+diesel/",
				"/l/auto-s/mercedes-benz/q/mercedes+190d/",
			},
			Selectors: Selectors{
				AdList:   "li.hz-Listing",
				Title:    "h3.hz-Listing-title",
				Link:     "a.hz-Listing-coverLink",
				Price:    "p.hz-Listing-price",
				Location: "span.hz-Listing-distance-label",
				Image:    "img.hz-Listing-image",
			},
			IDExtractor: regexID(marktplaatsIDRe),
			CacheKey:    "tweedehands_rate_limited",
			BlockTime:   600,
		},
		{
			Name:    "KleinanzeigenCollector",
			Source:  "Kleinanzeigen.de",
			Tag:     "kleinanzeigen",
			Country: "DE",
			BaseURL: cfg.KleinanzeigenURL,
			SearchPaths: []string{
				"/s-autos/mercedes-w123/k0c216",
				"/s-autos/mercedes-w124/k0c216",
				"/s-autos/mercedes-240d/k0c216",
				"/s-autos/mercedes-300d/k0c216",
			},
			Selectors: Selectors{
				AdList:   "article.aditem",
				Title:    "h2.text-module-begin a",
				Link:     "h2.text-module-begin a",
				Price:    "p.aditem-main--middle--price-shipping--price",
				Location: "div.aditem-main--top--left",
				Image:    "div.imagebox img",
			},
			IDExtractor: regexID(kleinanzeigenIDRe),
			CacheKey:    "kleinanzeigen_rate_limited",
			BlockTime:   600,
		},
		{
			Name:        "AutoScout24NLCollector",
			Source:      "AutoScout24",
			Tag:         "as24_nl",
			Country:     "NL",
			BaseURL:     cfg.AutoScout24NLURL,
			SearchPaths: autoscoutSearchPaths(),
			Selectors:   autoscoutSelectors(),
			IDExtractor: regexID(autoscoutIDRe),
			CacheKey:    "as24_nl_rate_limited",
			BlockTime:   600,
		},
		{
			Name:        "AutoScout24DECollector",
			Source:      "AutoScout24",
			Tag:         "as24_de",
			Country:     "DE",
			BaseURL:     cfg.AutoScout24DEURL,
			SearchPaths: autoscoutSearchPaths(),
			Selectors:   autoscoutSelectors(),
			IDExtractor: regexID(autoscoutIDRe),
			CacheKey:    "as24_de_rate_limited",
			BlockTime:   600,
		},
		{
			Name:        "AutoScout24BECollector",
			Source:      "AutoScout24",
			Tag:         "as24_be",
			Country:     "BE",
			BaseURL:     cfg.AutoScout24BEURL,
			SearchPaths: autoscoutSearchPaths(),
			Selectors:   autoscoutSelectors(),
			IDExtractor: regexID(autoscoutIDRe),
			CacheKey:    "as24_be_rate_limited",
			BlockTime:   600,
		},
		{
			Name:    "MobileDeCollector",
			Source:  "Mobile.de",
			Tag:     "mobile_de",
			Country: "DE",
			BaseURL: cfg.MobileDeURL,
			SearchPaths: []string{
				"/fahrzeuge/search.html?damageUnrepaired=NO_DAMAGE_UNREPAIRED&fuels=DIESEL&isSearchRequest=true&makeModelVariant1.makeId=17200&maxFirstRegistrationDate=1996&minFirstRegistrationDate=1976&scopeId=C",
			},
			Selectors: Selectors{
				AdList: "div.cBox-body",
				Title:  "a.link--muted",
				Link:   "a[href*='fahrzeuge']",
				Price:  "span.h3.u-block",
			},
			IDExtractor: func(link string) (string, error) {
				if m := mobileIDRe.FindStringSubmatch(link); m != nil {
					return m[1], nil
				}
				return helpers.GetSplitPart(strings.Split(link, "?")[0], "/", -1)
			},
			CacheKey:  "mobile_de_rate_limited",
			BlockTime: 900,
		},
	}

	var collectors []Collector
	for _, cc := range configurations {
		if cc.BaseURL == "" {
			continue
		}
		nrm := &normalize.Normalizer{
			Source:      cc.Source,
			Tag:         cc.Tag,
			Country:     cc.Country,
			Profile:     profile,
			ModelTags:   normalize.DefaultModelTags,
			FamilyLabel: normalize.DefaultFamilyLabel,
		}
		collectors = append(collectors, New(cc, nrm, cacheSvc, cfg.RequestDelay))
	}
	return collectors
}

func regexID(re *regexp.Regexp) IDExtractorFunc {
	return func(link string) (string, error) {
		if m := re.FindStringSubmatch(link); m != nil {
			return m[1], nil
		}
		return "", nil
	}
}

func autoscoutSearchPaths() []string {
	// fuel=D constrains the search to diesels server-side; fregfrom keeps
	// obviously-modern cars out of the result page before classification.
	base := "/lst/mercedes-benz"
	query := "?fregfrom=1976&fregto=1996&fuel=D&sort=standard&desc=0&ustate=N%2CU"
	return []string{
		base + "/200-serie" + query,
		base + query,
	}
}

func autoscoutSelectors() Selectors {
	return Selectors{
		AdList: "article.cldt-summary-full-item",
		Title:  "a h2",
		Link:   "a[href*='/aanbod/'], a[href*='/angebot/'], a[href*='/offre/']",
		Price:  "p[data-testid='regular-price']",
		Detail: "",
	}
}
