// Package store persists advertisements in SQLite with at most one row per
// external ID. Re-observations merge volatile fields only; descriptive
// fields are captured at first sight and never refreshed.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"oldtimerfinder/internal/advert"
	"oldtimerfinder/logger"
)

// Filter bounds the "top listings" queries: placeholder search redirects are
// always excluded, the year bound drops misparsed outliers, and the price
// floor drops parts listings. NULL year and NULL price pass.
type Filter struct {
	YearFrom int
	YearTo   int
	MinPrice float64
}

// Stats is the aggregate view the API serves.
type Stats struct {
	TotalActive int            `json:"total_active"`
	ByCountry   map[string]int `json:"by_country"`
	LastScrape  string         `json:"last_scrape"`
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and initializes the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logger.ForStore().Debug().Str("path", path).Msg("Schema ready")
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS advertisements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		external_id TEXT UNIQUE,
		model TEXT NOT NULL,
		year INTEGER,
		mileage INTEGER,
		price REAL,
		currency TEXT DEFAULT 'EUR',
		location TEXT,
		country TEXT,
		source TEXT,
		source_url TEXT,
		title TEXT,
		description TEXT,
		image_url TEXT,
		date_added TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		date_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		is_active BOOLEAN DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_ads_country ON advertisements(country);
	CREATE INDEX IF NOT EXISTS idx_ads_year ON advertisements(year);
	CREATE INDEX IF NOT EXISTS idx_ads_updated ON advertisements(date_updated);

	CREATE TABLE IF NOT EXISTS scrape_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scrape_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		country TEXT,
		source TEXT,
		ads_found INTEGER,
		ads_new INTEGER,
		status TEXT
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Upsert inserts a new advertisement or, when the external ID already
// exists, merges the volatile fields (price, mileage, date_updated,
// is_active) into the existing row. The first-seen title, description and
// date_added are never touched.
//
// It returns false without error when the record is missing its identity
// fields; the caller may log and continue.
func (s *Store) Upsert(ad *advert.Advertisement) (bool, error) {
	if ad == nil || strings.TrimSpace(ad.ExternalID) == "" || strings.TrimSpace(ad.SourceURL) == "" {
		return false, nil
	}

	_, err := s.db.Exec(`
		INSERT INTO advertisements
		(external_id, model, year, mileage, price, currency, location,
		 country, source, source_url, title, description, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			price = excluded.price,
			mileage = excluded.mileage,
			date_updated = CURRENT_TIMESTAMP,
			is_active = 1
	`,
		ad.ExternalID, ad.Model, ad.Year, ad.Mileage, ad.Price,
		currencyOrDefault(ad.Currency), ad.Location, ad.Country, ad.Source,
		ad.SourceURL, ad.Title, ad.Description, ad.ImageURL,
	)
	if err != nil {
		return false, fmt.Errorf("upsert %s: %w", ad.ExternalID, err)
	}
	return true, nil
}

// ActiveAdvertisements returns active records ordered by most recent update,
// optionally filtered by country. A limit of 0 means no limit.
func (s *Store) ActiveAdvertisements(country string, limit int) ([]advert.Advertisement, error) {
	query := selectColumns + ` WHERE is_active = 1`
	var args []any
	if country != "" {
		query += ` AND country = ?`
		args = append(args, country)
	}
	query += ` ORDER BY date_updated DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryAds(query, args...)
}

// TopListings returns the best listings overall: real listing pages only
// (no search-redirect placeholders), year within the filter bound or
// unknown, price above the parts floor or unknown. Newest model year first,
// most recently updated first within a year.
func (s *Store) TopListings(limit int, f Filter) ([]advert.Advertisement, error) {
	query := selectColumns + businessFilter + `
		ORDER BY year DESC, date_updated DESC
		LIMIT ?`
	return s.queryAds(query, f.YearFrom, f.YearTo, f.MinPrice, limit)
}

// CountryTopListings is TopListings restricted to one country.
func (s *Store) CountryTopListings(country string, limit int, f Filter) ([]advert.Advertisement, error) {
	query := selectColumns + businessFilter + `
		AND country = ?
		ORDER BY year DESC, date_updated DESC
		LIMIT ?`
	return s.queryAds(query, f.YearFrom, f.YearTo, f.MinPrice, country, limit)
}

// Statistics returns the filtered active total, per-country counts and the
// most recent update timestamp.
func (s *Store) Statistics(f Filter) (Stats, error) {
	stats := Stats{ByCountry: make(map[string]int)}

	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM advertisements`+businessFilter,
		f.YearFrom, f.YearTo, f.MinPrice,
	).Scan(&stats.TotalActive)
	if err != nil {
		return stats, fmt.Errorf("count active: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT country, COUNT(*) FROM advertisements`+businessFilter+` GROUP BY country`,
		f.YearFrom, f.YearTo, f.MinPrice,
	)
	if err != nil {
		return stats, fmt.Errorf("count by country: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var country sql.NullString
		var count int
		if err := rows.Scan(&country, &count); err != nil {
			return stats, err
		}
		stats.ByCountry[country.String] = count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	var last sql.NullString
	err = s.db.QueryRow(
		`SELECT MAX(date_updated) FROM advertisements WHERE is_active = 1`,
	).Scan(&last)
	if err != nil {
		return stats, fmt.Errorf("last update: %w", err)
	}
	stats.LastScrape = last.String

	return stats, nil
}

// MarkInactive flips every record whose external ID is not in activeIDs to
// inactive. The collection pipeline deliberately never calls this: records
// accumulate, and an operator wanting an accurate active set runs it from
// their own tooling.
func (s *Store) MarkInactive(activeIDs []string) error {
	if len(activeIDs) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(activeIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(activeIDs))
	for i, id := range activeIDs {
		args[i] = id
	}

	res, err := s.db.Exec(
		`UPDATE advertisements SET is_active = 0 WHERE external_id NOT IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		logger.ForStore().Info().Int64("deactivated", n).Msg("Marked stale records inactive")
	}
	return nil
}

// LogScrape records one per-source collection result in the history table.
func (s *Store) LogScrape(country, source string, found, added int, status string) error {
	_, err := s.db.Exec(`
		INSERT INTO scrape_history (country, source, ads_found, ads_new, status)
		VALUES (?, ?, ?, ?, ?)
	`, country, source, found, added, status)
	return err
}

const selectColumns = `
	SELECT external_id, model, year, mileage, price, currency, location,
	       country, source, source_url, title, description, image_url,
	       is_active, date_added, date_updated
	FROM advertisements`

const businessFilter = `
	WHERE is_active = 1
	AND external_id NOT LIKE 'search_%'
	AND (year IS NULL OR (year >= ? AND year <= ?))
	AND (price IS NULL OR price > ?)`

func (s *Store) queryAds(query string, args ...any) ([]advert.Advertisement, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ads []advert.Advertisement
	for rows.Next() {
		var ad advert.Advertisement
		var year, mileage sql.NullInt64
		var price sql.NullFloat64
		var currency, location, country, source, sourceURL sql.NullString
		var title, description, imageURL sql.NullString
		var added, updated time.Time

		err := rows.Scan(
			&ad.ExternalID, &ad.Model, &year, &mileage, &price, &currency,
			&location, &country, &source, &sourceURL, &title, &description,
			&imageURL, &ad.IsActive, &added, &updated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		if year.Valid {
			y := int(year.Int64)
			ad.Year = &y
		}
		if mileage.Valid {
			m := int(mileage.Int64)
			ad.Mileage = &m
		}
		if price.Valid {
			p := price.Float64
			ad.Price = &p
		}
		ad.Currency = currency.String
		ad.Location = location.String
		ad.Country = country.String
		ad.Source = source.String
		ad.SourceURL = sourceURL.String
		ad.Title = title.String
		ad.Description = description.String
		ad.ImageURL = imageURL.String
		ad.DateAdded = added
		ad.DateUpdated = updated

		ads = append(ads, ad)
	}
	return ads, rows.Err()
}

func currencyOrDefault(c string) string {
	if c == "" {
		return "EUR"
	}
	return c
}
