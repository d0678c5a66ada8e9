package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fxledger/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ UserStore = (*SQLiteStore)(nil)
var _ OrderStore = (*SQLiteStore)(nil)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS balances (
		user_id  TEXT NOT NULL,
		currency TEXT NOT NULL,
		amount   REAL NOT NULL,
		PRIMARY KEY (user_id, currency)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		seq     INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		source  TEXT NOT NULL,
		target  TEXT NOT NULL,
		value   REAL NOT NULL,
		price   REAL NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS orders_by_user ON orders (user_id, seq)`,
}

// SQLiteStore implements UserStore and OrderStore on an in-memory SQLite
// database. Nothing outlives the process.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens a private in-memory database and creates the schema.
func NewSQLiteStore(ctx context.Context) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// UserStore implementation
// ---------------------------------------------------------------------------

// AddUser replaces the user row and its balances in one transaction.
func (s *SQLiteStore) AddUser(ctx context.Context, user domain.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO users (user_id) VALUES (?)`, user.ID); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM balances WHERE user_id = ?`, user.ID); err != nil {
		return fmt.Errorf("clearing balances: %w", err)
	}
	for cur, amt := range user.Balances {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO balances (user_id, currency, amount) VALUES (?, ?, ?)`,
			user.ID, cur, amt); err != nil {
			return fmt.Errorf("inserting balance %s: %w", cur, err)
		}
	}
	return tx.Commit()
}

// GetUser returns the user and its balances, or nil if absent.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM users WHERE user_id = ?`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT currency, amount FROM balances WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	u := domain.NewUser(id)
	for rows.Next() {
		var cur string
		var amt float64
		if err := rows.Scan(&cur, &amt); err != nil {
			return nil, err
		}
		u.Balances[cur] = amt
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns every user with its balances.
func (s *SQLiteStore) ListUsers(ctx context.Context) (map[string]domain.User, error) {
	out := make(map[string]domain.User)

	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM users`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		out[id] = domain.NewUser(id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT user_id, currency, amount FROM balances`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, cur string
		var amt float64
		if err := rows.Scan(&id, &cur, &amt); err != nil {
			return nil, err
		}
		if u, ok := out[id]; ok {
			u.Balances[cur] = amt
		}
	}
	return out, rows.Err()
}

// UserExists reports whether userID has a row in users.
func (s *SQLiteStore) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE user_id = ?)`, userID).Scan(&exists)
	return exists, err
}

// ---------------------------------------------------------------------------
// OrderStore implementation
// ---------------------------------------------------------------------------

// AddOrder inserts a new order row.
func (s *SQLiteStore) AddOrder(ctx context.Context, order domain.Order) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (user_id, source, target, value, price) VALUES (?, ?, ?, ?, ?)`,
		order.UserID, order.Pair.Source, order.Pair.Target, order.Value, order.Price)
	return err
}

// OrdersByUser returns the user's orders ordered by insertion sequence.
func (s *SQLiteStore) OrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, target, value, price FROM orders WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		o := domain.Order{UserID: userID}
		if err := rows.Scan(&o.Pair.Source, &o.Pair.Target, &o.Value, &o.Price); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
