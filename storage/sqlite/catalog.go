// Package sqlite stores the residence catalog in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS residences (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  city TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  price_min REAL NOT NULL DEFAULT 0,
  price_max REAL NOT NULL DEFAULT 0,
  currency TEXT NOT NULL DEFAULT '',
  brand TEXT NOT NULL DEFAULT '',
  amenities_json TEXT NOT NULL DEFAULT '[]',
  lifestyles_json TEXT NOT NULL DEFAULT '[]',
  rankings_json TEXT NOT NULL DEFAULT '[]',
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_residences_city ON residences(city COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_residences_country ON residences(country COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_residences_price ON residences(price_min);
`

const selectColumns = `SELECT id, name, city, country, price_min, price_max, currency, brand,
amenities_json, lifestyles_json, rankings_json, updated_at FROM residences`

// CatalogRepository implements storage.CatalogRepository on SQLite.
// Location, brand and budget are filtered in SQL; list fields are checked in Go.
type CatalogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// Option configures a CatalogRepository.
type Option func(*CatalogRepository)

// WithLogger sets the repository logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *CatalogRepository) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// OpenCatalog opens (or creates) a catalog database at path.
// Use ":memory:" for a throwaway database.
func OpenCatalog(path string, opts ...Option) (*CatalogRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	r := &CatalogRepository{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close closes the database.
func (r *CatalogRepository) Close() error { return r.db.Close() }

// PutResidences inserts or replaces residences by Id.
func (r *CatalogRepository) PutResidences(ctx context.Context, residences ...*core.Residence) error {
	for _, res := range residences {
		if err := core.ValidateResidence(res); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO residences
(id, name, city, country, price_min, price_max, currency, brand, amenities_json, lifestyles_json, rankings_json, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, res := range residences {
		res.UpdatedAt = now
		am, err := encode(res.Amenities)
		if err != nil {
			return err
		}
		ls, err := encode(res.Lifestyles)
		if err != nil {
			return err
		}
		rk, err := encode(res.Rankings)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			res.Id, res.Name, res.City, res.Country, res.PriceMin, res.PriceMax, res.Currency, res.Brand,
			am, ls, rk, now.Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetResidence retrieves a residence by Id.
func (r *CatalogRepository) GetResidence(ctx context.Context, id string) (*core.Residence, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	res, err := scanResidence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return res, err
}

// DeleteResidence removes a residence.
func (r *CatalogRepository) DeleteResidence(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM residences WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// QueryResidences returns residences fully satisfying the canonical selections, ordered by Id.
func (r *CatalogRepository) QueryResidences(ctx context.Context, selections core.Selections) ([]*core.Residence, error) {
	canonical := selections.Canonical()
	if err := storage.CheckQuery(canonical); err != nil {
		return nil, err
	}
	where, args := buildWhere(canonical)

	query := selectColumns
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"

	r.logger.Debug("catalog query", "where", where, "args", len(args))
	all, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	out := all[:0]
	for _, res := range all {
		if core.Satisfies(res, canonical) {
			out = append(out, res)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// ListResidences returns every residence ordered by Id.
func (r *CatalogRepository) ListResidences(ctx context.Context) ([]*core.Residence, error) {
	return r.query(ctx, selectColumns+" ORDER BY id")
}

// CountResidences returns the number of stored residences.
func (r *CatalogRepository) CountResidences(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM residences`).Scan(&n)
	return n, err
}

func (r *CatalogRepository) query(ctx context.Context, query string, args ...any) ([]*core.Residence, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*core.Residence
	for rows.Next() {
		res, err := scanResidence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// buildWhere translates single-valued selections into SQL predicates.
func buildWhere(sel core.Selections) (string, []any) {
	var clauses []string
	var args []any

	if loc := sel.First(core.FieldLocation); loc != "" {
		clauses = append(clauses, "(city = ? COLLATE NOCASE OR country = ? COLLATE NOCASE)")
		args = append(args, loc, loc)
	}
	if brand := sel.First(core.FieldBrand); brand != "" {
		clauses = append(clauses, "brand = ? COLLATE NOCASE")
		args = append(args, brand)
	}
	if band, ok := core.ParseBudgetBand(sel.First(core.FieldBudget)); ok {
		clauses = append(clauses, "MAX(price_max, price_min) >= ?")
		args = append(args, band.Min)
		if band.Max > 0 {
			clauses = append(clauses, "price_min < ?")
			args = append(args, band.Max)
		}
	}
	return strings.Join(clauses, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResidence(row scanner) (*core.Residence, error) {
	var res core.Residence
	var am, ls, rk, updated string
	if err := row.Scan(
		&res.Id, &res.Name, &res.City, &res.Country, &res.PriceMin, &res.PriceMax, &res.Currency, &res.Brand,
		&am, &ls, &rk, &updated,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(am), &res.Amenities); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	if err := json.Unmarshal([]byte(ls), &res.Lifestyles); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	if err := json.Unmarshal([]byte(rk), &res.Rankings); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	res.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &res, nil
}

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return string(data), nil
}
