package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
	"options-lab/internal/payoff"
)

// SQLiteStore implements StrategyStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based strategy store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS strategies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		underlying TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		legs TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_strategies_underlying ON strategies(underlying);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return retryBusy(ctx, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, query, args...)
	})
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveStrategy saves a strategy, replacing any strategy with the same name.
func (s *SQLiteStore) SaveStrategy(ctx context.Context, st *models.OptionStrategy) error {
	st.Name = strings.TrimSpace(st.Name)
	st.Underlying = strings.ToUpper(strings.TrimSpace(st.Underlying))
	if st.Name == "" {
		return apperrors.NewValidationError("name", st.Name, "must not be empty")
	}
	if err := payoff.ValidateLegs(st.Legs); err != nil {
		return err
	}

	legs, err := json.Marshal(st.Legs)
	if err != nil {
		return fmt.Errorf("failed to encode legs: %w", err)
	}

	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	_, err = s.exec(ctx, `
		INSERT INTO strategies (id, name, underlying, description, legs, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			underlying = excluded.underlying,
			description = excluded.description,
			legs = excluded.legs,
			updated_at = excluded.updated_at
	`, st.ID, st.Name, st.Underlying, st.Description, string(legs), now, now)
	if err != nil {
		return fmt.Errorf("%w: failed to save strategy: %v", apperrors.ErrDatabaseError, err)
	}

	// The name may already have existed under another ID.
	saved, err := s.GetStrategy(ctx, st.Name)
	if err != nil {
		return err
	}
	st.ID, st.CreatedAt, st.UpdatedAt = saved.ID, saved.CreatedAt, saved.UpdatedAt
	return nil
}

// GetStrategy retrieves a strategy by ID or name.
func (s *SQLiteStore) GetStrategy(ctx context.Context, idOrName string) (*models.OptionStrategy, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, underlying, description, legs, created_at, updated_at
		FROM strategies WHERE id = ? OR name = ?
	`, idOrName, idOrName)

	st, err := scanStrategy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Wrapf(apperrors.ErrStrategyNotFound, "%q", idOrName)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get strategy: %v", apperrors.ErrDatabaseError, err)
	}
	return st, nil
}

// ListStrategies lists strategies ordered by name.
func (s *SQLiteStore) ListStrategies(ctx context.Context, filter StrategyFilter) ([]models.OptionStrategy, error) {
	query := "SELECT id, name, underlying, description, legs, created_at, updated_at FROM strategies WHERE 1=1"
	args := []interface{}{}

	if filter.Underlying != "" {
		query += " AND underlying = ?"
		args = append(args, strings.ToUpper(filter.Underlying))
	}

	query += " ORDER BY name ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query strategies: %v", apperrors.ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []models.OptionStrategy
	for rows.Next() {
		st, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan strategy: %v", apperrors.ErrDatabaseError, err)
		}
		out = append(out, *st)
	}

	return out, rows.Err()
}

// DeleteStrategy deletes a strategy by ID or name.
func (s *SQLiteStore) DeleteStrategy(ctx context.Context, idOrName string) error {
	res, err := s.exec(ctx, `DELETE FROM strategies WHERE id = ? OR name = ?`, idOrName, idOrName)
	if err != nil {
		return fmt.Errorf("%w: failed to delete strategy: %v", apperrors.ErrDatabaseError, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Wrapf(apperrors.ErrStrategyNotFound, "%q", idOrName)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStrategy(row scanner) (*models.OptionStrategy, error) {
	var st models.OptionStrategy
	var legs string
	if err := row.Scan(&st.ID, &st.Name, &st.Underlying, &st.Description, &legs, &st.CreatedAt, &st.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(legs), &st.Legs); err != nil {
		return nil, fmt.Errorf("decoding legs of %s: %w", st.Name, err)
	}
	return &st, nil
}
