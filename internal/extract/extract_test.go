package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  float64
		found bool
	}{
		{"grouped euro price", "€ 12.500,00", 12500.00, true},
		{"dash cents", "€ 4.500,-", 4500, true},
		{"plain number", "7250", 7250, true},
		{"comma decimal", "3.999,50", 3999.50, true},
		{"currency suffix", "12500 EUR", 12500, true},
		{"no digits", "Prijs op aanvraag", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Price(tt.text)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestMileage(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  int
		found bool
	}{
		{"grouped km", "210.000 km", 210000, true},
		{"no space", "150000km", 150000, true},
		{"uppercase unit", "123.456 KM", 123456, true},
		{"within larger text", "EZ 03/1984, 210.000 km, handgeschakeld", 210000, true},
		{"above ceiling is noise", "3.000.000 km", 0, false},
		{"no unit marker", "210.000", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Mileage(tt.text)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestYear(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  int
		found bool
	}{
		{"registration marker with month", "EZ 03/1984", 1984, true},
		{"erstzulassung long form", "Erstzulassung 02/1986", 1986, true},
		{"baujahr", "Baujahr 1983", 1983, true},
		{"bouwjaar", "Bouwjaar: 1982", 1982, true},
		{"iso ordering", "gebaut 1984-03, guter Zustand", 1984, true},
		{"bare year", "Mercedes 240D uit 1985", 1985, true},
		{"out-of-scope years still extract", "EZ 03/1998", 1998, true},
		{"no year", "Mercedes 240D, goede staat", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Year(tt.text)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// The registration-marker year must win over a bare year appearing earlier
// in the text.
func TestYearPrefersRegistrationMarker(t *testing.T) {
	year, ok := Year("Geimporteerd in 1995, EZ 03/1984")
	assert.True(t, ok)
	assert.Equal(t, 1984, year)

	year, ok = Year("Mercedes 240D uit 1984, EZ 03/1985")
	assert.True(t, ok)
	assert.Equal(t, 1985, year)
}

func TestMileageDoesNotLeakIntoYear(t *testing.T) {
	// A grouped odometer reading must not be mistaken for a year.
	_, ok := Year("210.000 km")
	assert.False(t, ok)
}
