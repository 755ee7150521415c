// Package extract turns noisy marketplace text fragments into typed values.
// Every function is total: malformed input yields the zero value and ok=false,
// never an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxMileage is the plausibility ceiling for an odometer reading. Anything
// above it is a misparsed concatenation of numbers, not a real value.
const MaxMileage = 2_000_000

var (
	priceStripRe = regexp.MustCompile(`[€$£\s.]`)
	priceRunRe   = regexp.MustCompile(`\d+(?:\.\d+)?`)

	mileageRe = regexp.MustCompile(`(?i)(\d[\d.]*)\s*km`)

	// Registration markers as they appear on German and Dutch marketplaces:
	// "EZ 03/1984", "Erstzulassung 1984", "Bj. 1984", "Bouwjaar 1984".
	regYearRe  = regexp.MustCompile(`(?i)(?:EZ|Erstzulassung|Bj\.?|Baujahr|Bouwjaar)\s*:?\s*(?:\d{1,2}\s*[/.-]\s*)?((?:19|20)\d{2})\b`)
	isoYearRe  = regexp.MustCompile(`\b((?:19|20)\d{2})[/-]\d{1,2}\b`)
	bareYearRe = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

// Price parses a locale-formatted price like "€ 12.500,00" into 12500.00.
// Periods are grouping separators and are dropped; a comma is the decimal
// point. The first maximal run of digits wins.
func Price(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	clean := priceStripRe.ReplaceAllString(text, "")
	clean = strings.ReplaceAll(clean, ",", ".")
	run := priceRunRe.FindString(clean)
	if run == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(run, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Mileage parses the first numeral sequence followed by a "km" marker, with
// grouping periods stripped: "210.000 km" -> 210000. Values above MaxMileage
// are treated as extraction noise.
func Mileage(text string) (int, bool) {
	m := mileageRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m[1], ".", ""))
	if err != nil || v > MaxMileage {
		return 0, false
	}
	return v, true
}

// Year finds a 4-digit year in text. Three shapes are recognized, most
// specific first, and the first shape that matches wins:
//
//  1. a registration marker (EZ, Erstzulassung, Bj., Baujahr, Bouwjaar)
//     with an optional month, e.g. "EZ 03/1984"
//  2. an ISO-like year-month ordering, e.g. "1984-03"
//  3. a bare 4-digit year anywhere in the text
//
// Whether the year is plausible for the searched vehicle is the classifier's
// call, not this function's.
func Year(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	if m := regYearRe.FindStringSubmatch(text); m != nil {
		return atoiYear(m[1])
	}
	if m := isoYearRe.FindStringSubmatch(text); m != nil {
		return atoiYear(m[1])
	}
	if m := bareYearRe.FindString(text); m != "" {
		return atoiYear(m)
	}
	return 0, false
}

func atoiYear(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
