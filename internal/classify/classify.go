// Package classify decides whether a candidate listing is in scope for the
// searched vehicle profile. Free-text titles are the only discriminant
// available at scrape time, so the filter trades recall for precision: a
// wrong car surfaced to the user is worse than a real match silently dropped.
package classify

import "strings"

// Profile holds the keyword sets and year bound for one vehicle search.
// All matching is case-insensitive substring containment.
type Profile struct {
	// Classic are positive identifiers of the target family: chassis codes
	// and period-correct trim names. At least one must match.
	Classic []string
	// Diesel are positive powertrain identifiers. When the set is empty the
	// check is skipped; marketplace search URLs usually constrain the fuel
	// type already.
	Diesel []string
	// Modern identifies newer model lines that exclude a match even when a
	// classic keyword also appears.
	Modern []string
	// Petrol identifies the out-of-scope powertrain variants whose trim
	// codes lexically collide with the diesel ones (230E vs 240D).
	Petrol []string

	// Inclusive model-year bound. An unknown year passes.
	YearFrom int
	YearTo   int
}

// DefaultProfile is the Mercedes W123/W124/W201 diesel search the finder was
// built for: 200/190-series diesels, road-tax-exempt years only.
func DefaultProfile() Profile {
	return Profile{
		Classic: []string{
			"w123", "w124", "w201", "w115",
			"200d", "240d", "250d", "300d", "300td", "190d",
			"200 d", "240 d", "250 d", "300 d", "190 d",
			"240-d", "300-d", "240-td", "300-td",
			"200-serie", "190-serie",
		},
		Modern: []string{
			"glc", "gle", "gla", "glb", "gls", "cls", "cla",
			"eqc", "eqa", "eqb", "eqe", "eqs",
			"a-klasse", "b-klasse", "c-klasse", "e-klasse", "s-klasse",
			"g-klasse", "v-klasse", "sl-klasse",
			"a klasse", "b klasse", "c klasse", "v klasse", "g klasse",
			"vito", "sprinter", "citan", "marco polo",
			"4matic", "amg line", "amg paket", "7g-tronic", "9g-tronic",
			"hybrid", "plug-in",
		},
		Petrol: []string{
			"200e", "230e", "260e", "280e", "300e", "320e",
			"200 e", "230 e", "260 e", "280 e", "300 e", "320 e",
			"benzine", "petrol", "gasoline",
		},
		YearFrom: 1979,
		YearTo:   1986,
	}
}

// InScope reports whether a candidate with the given concatenated text
// (title, description, URL path) and optionally extracted year belongs to
// the profile. The three exclusion checks are independent; all must pass.
func (p Profile) InScope(text string, year int, hasYear bool) bool {
	t := strings.ToLower(text)
	if strings.TrimSpace(t) == "" {
		return false
	}
	if !containsAny(t, p.Classic) {
		return false
	}
	if len(p.Diesel) > 0 && !containsAny(t, p.Diesel) {
		return false
	}
	if containsAny(t, p.Modern) || containsAny(t, p.Petrol) {
		return false
	}
	if hasYear && (year < p.YearFrom || year > p.YearTo) {
		return false
	}
	return true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
