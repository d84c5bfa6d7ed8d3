package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"PopulationSnapshot/internal/domain"
	"PopulationSnapshot/internal/ports"
)

// NameSQL is the registry name of the database sink.
const NameSQL = "sql"

// DefaultTable receives the snapshot rows unless configured otherwise.
const DefaultTable = "country_population"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var snapshotColumns = []string{
	"m49", "iso3", "name", "population", "year", "iso2", "flag_emoji",
	"capital", "capital_lat", "capital_lng",
	"leader_name", "leader_role", "leader_image_url", "leader_source",
}

// SQLRepository persists snapshots into a relational table, one row per country.
type SQLRepository struct {
	db      *sql.DB
	table   string
	builder sq.StatementBuilderType
}

var _ ports.SnapshotSink = (*SQLRepository)(nil)

// NewSQLRepository wires a sql.DB opened with driver. An empty table selects DefaultTable.
func NewSQLRepository(db *sql.DB, driver, table string) (*SQLRepository, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	placeholder, err := placeholderFor(driver)
	if err != nil {
		return nil, err
	}
	return &SQLRepository{
		db:      db,
		table:   table,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}, nil
}

// Name identifies the sink inside the registry.
func (r *SQLRepository) Name() string {
	return NameSQL
}

// Write replaces the table contents with snapshot inside a single transaction.
func (r *SQLRepository) Write(ctx context.Context, snapshot domain.Snapshot) (err error) {
	if r.db == nil {
		return fmt.Errorf("sql sink: no database configured")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, r.schema()); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	for _, record := range snapshot.Records() {
		query, args, buildErr := r.upsert(record).ToSql()
		if buildErr != nil {
			return fmt.Errorf("build upsert %s: %w", record.M49, buildErr)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert %s: %w", record.M49, err)
		}
	}

	query, args, err := r.builder.Delete(r.table).Where(sq.NotEq{"m49": snapshot.Keys()}).ToSql()
	if err != nil {
		return fmt.Errorf("build prune: %w", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune stale rows: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// StoredCountry is a row read back from the snapshot table.
type StoredCountry struct {
	M49        string
	ISO3       string
	Name       string
	Population int64
	Year       sql.NullString
	ISO2       sql.NullString
	Capital    sql.NullString
	CapitalLat sql.NullFloat64
	CapitalLng sql.NullFloat64
	LeaderName sql.NullString
}

// List returns the stored rows ordered by M49.
func (r *SQLRepository) List(ctx context.Context) ([]StoredCountry, error) {
	query, args, err := r.builder.
		Select("m49", "iso3", "name", "population", "year", "iso2", "capital", "capital_lat", "capital_lng", "leader_name").
		From(r.table).
		OrderBy("m49").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stored: %w", err)
	}

	var result []StoredCountry
	for rows.Next() {
		var c StoredCountry
		if err := rows.Scan(&c.M49, &c.ISO3, &c.Name, &c.Population, &c.Year, &c.ISO2,
			&c.Capital, &c.CapitalLat, &c.CapitalLng, &c.LeaderName); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, c)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

func (r *SQLRepository) schema() string {
	return `CREATE TABLE IF NOT EXISTS ` + r.table + ` (
    m49              TEXT PRIMARY KEY,
    iso3             TEXT NOT NULL,
    name             TEXT NOT NULL,
    population       BIGINT NOT NULL,
    year             TEXT,
    iso2             TEXT,
    flag_emoji       TEXT,
    capital          TEXT,
    capital_lat      DOUBLE PRECISION,
    capital_lng      DOUBLE PRECISION,
    leader_name      TEXT,
    leader_role      TEXT,
    leader_image_url TEXT,
    leader_source    TEXT
)`
}

func (r *SQLRepository) upsert(record domain.CountryRecord) sq.InsertBuilder {
	var (
		capital, leaderName, leaderRole, leaderImage, leaderSource any
		lat, lng                                                   any
	)
	if c, ok := record.Capital.Get(); ok {
		capital = c.Name
		if coords, ok := c.Coordinates.Get(); ok {
			lat, lng = coords.Lat, coords.Lng
		}
	}
	if l, ok := record.Leader.Get(); ok {
		leaderName, leaderRole, leaderImage, leaderSource = l.Name, string(l.Role), l.ImageURL, l.Source
	}

	updates := make([]string, 0, len(snapshotColumns)-1)
	for _, column := range snapshotColumns[1:] {
		updates = append(updates, column+" = EXCLUDED."+column)
	}

	return r.builder.Insert(r.table).
		Columns(snapshotColumns...).
		Values(
			record.M49, record.ISO3, record.Name, record.Population, nullString(record.Year.String()),
			optionalString(record.ISO2), optionalString(record.FlagEmoji),
			capital, lat, lng,
			leaderName, leaderRole, leaderImage, leaderSource,
		).
		Suffix("ON CONFLICT (m49) DO UPDATE SET " + strings.Join(updates, ", "))
}

func optionalString(o domain.Optional[string]) any {
	if v, ok := o.Get(); ok {
		return v
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
