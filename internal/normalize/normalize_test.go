package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oldtimerfinder/internal/advert"
	"oldtimerfinder/internal/classify"
)

func testNormalizer() *Normalizer {
	return &Normalizer{
		Source:  "Kleinanzeigen.de",
		Tag:     "kleinanzeigen",
		Country: "DE",
		Profile: classify.DefaultProfile(),
	}
}

func TestNormalizeAcceptsClassicDiesel(t *testing.T) {
	n := testNormalizer()

	ad, ok := n.Normalize(advert.RawFields{
		Title:       "Mercedes-Benz W123 240D",
		YearText:    "EZ 03/1984",
		PriceText:   "€ 4.500,-",
		MileageText: "210.000 km",
		Location:    "Bremen",
		NativeID:    "2345678901",
		URL:         "https://www.kleinanzeigen.de/s-anzeige/mercedes-benz-w123-240d/2345678901-216-1",
		ImageURL:    "https://img.kleinanzeigen.de/1.jpg",
	})
	require.True(t, ok)

	assert.Equal(t, "kleinanzeigen_2345678901", ad.ExternalID)
	assert.Equal(t, "W123", ad.Model)
	require.NotNil(t, ad.Year)
	assert.Equal(t, 1984, *ad.Year)
	require.NotNil(t, ad.Price)
	assert.InDelta(t, 4500.00, *ad.Price, 0.001)
	require.NotNil(t, ad.Mileage)
	assert.Equal(t, 210000, *ad.Mileage)
	assert.Equal(t, "EUR", ad.Currency)
	assert.Equal(t, "DE", ad.Country)
	assert.Equal(t, "Kleinanzeigen.de", ad.Source)
	assert.Equal(t, "Bremen", ad.Location)
	assert.True(t, ad.IsActive)
}

func TestNormalizeRejectsYearOutOfBound(t *testing.T) {
	n := testNormalizer()

	// Same car, registration year past the bound: keywords match, the year
	// does not.
	_, ok := n.Normalize(advert.RawFields{
		Title:     "Mercedes-Benz W123 240D",
		YearText:  "EZ 03/1998",
		PriceText: "€ 4.500,-",
		NativeID:  "1",
		URL:       "https://www.kleinanzeigen.de/s-anzeige/1",
	})
	assert.False(t, ok)
}

func TestNormalizeRejectsModernModel(t *testing.T) {
	n := testNormalizer()

	_, ok := n.Normalize(advert.RawFields{
		Title:    "Mercedes-Benz C300e Hybrid",
		NativeID: "2",
		URL:      "https://www.kleinanzeigen.de/s-anzeige/2",
	})
	assert.False(t, ok)
}

func TestNormalizeRejectsEmptyText(t *testing.T) {
	n := testNormalizer()

	_, ok := n.Normalize(advert.RawFields{
		NativeID: "3",
		URL:      "https://www.kleinanzeigen.de/s-anzeige/3",
	})
	assert.False(t, ok)
}

func TestNormalizeDegradesOnMissingFragments(t *testing.T) {
	n := testNormalizer()

	ad, ok := n.Normalize(advert.RawFields{
		Title:    "Mercedes-Benz W124 250D",
		NativeID: "4",
		URL:      "https://www.kleinanzeigen.de/s-anzeige/4",
	})
	require.True(t, ok)

	assert.Nil(t, ad.Year)
	assert.Nil(t, ad.Price)
	assert.Nil(t, ad.Mileage)
	assert.Equal(t, "W124", ad.Model)
}

func TestNormalizeFallsBackToDetailText(t *testing.T) {
	n := testNormalizer()

	ad, ok := n.Normalize(advert.RawFields{
		Title:      "Mercedes-Benz W123 300D",
		DetailText: "EZ 05/1983, 185.000 km, Automatik",
		NativeID:   "5",
		URL:        "https://www.kleinanzeigen.de/s-anzeige/5",
	})
	require.True(t, ok)

	require.NotNil(t, ad.Year)
	assert.Equal(t, 1983, *ad.Year)
	require.NotNil(t, ad.Mileage)
	assert.Equal(t, 185000, *ad.Mileage)
}

func TestNormalizeModelTagPrecedence(t *testing.T) {
	n := testNormalizer()

	// Most specific chassis code wins when two appear in one title.
	ad, ok := n.Normalize(advert.RawFields{
		Title:    "Mercedes-Benz W123 (niet W124) 240D",
		NativeID: "6",
		URL:      "https://www.kleinanzeigen.de/s-anzeige/6",
	})
	require.True(t, ok)
	assert.Equal(t, "W123", ad.Model)

	// No chassis code in the title falls back to the family label.
	ad, ok = n.Normalize(advert.RawFields{
		Title:    "Mercedes-Benz 240D oldtimer",
		YearText: "1984",
		NativeID: "7",
		URL:      "https://www.kleinanzeigen.de/s-anzeige/7",
	})
	require.True(t, ok)
	assert.Equal(t, DefaultFamilyLabel, ad.Model)
}

func TestNormalizeHashesURLWithoutNativeID(t *testing.T) {
	n := testNormalizer()
	raw := advert.RawFields{
		Title: "Mercedes-Benz W123 240D",
		URL:   "https://www.kleinanzeigen.de/s-anzeige/mercedes/zonder-id",
	}

	ad1, ok := n.Normalize(raw)
	require.True(t, ok)
	ad2, ok := n.Normalize(raw)
	require.True(t, ok)

	assert.Regexp(t, `^kleinanzeigen_[0-9a-f]{16}$`, ad1.ExternalID)
	// Hash-derived IDs are stable across re-scrapes of the same URL.
	assert.Equal(t, ad1.ExternalID, ad2.ExternalID)
}

func TestNormalizeEmptyIdentityStaysEmpty(t *testing.T) {
	n := testNormalizer()

	// Nothing to build an ID from; the store refuses such records later.
	ad, ok := n.Normalize(advert.RawFields{Title: "Mercedes-Benz W123 240D"})
	require.True(t, ok)
	assert.Empty(t, ad.ExternalID)
	assert.Empty(t, ad.SourceURL)
}
