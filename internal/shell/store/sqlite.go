package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/artpar/promoter/internal/core/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the journal at dsn and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	// Open database connection
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}
	// A ":memory:" database exists per connection.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	// Run migrations
	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Promotion Operations
// =============================================================================

// promotionRow represents a promotion row in the database.
type promotionRow struct {
	ID              string        `db:"id"`
	Command         string        `db:"command"`
	ApplicationName string        `db:"application_name"`
	GroupName       string        `db:"group_name"`
	BranchName      string        `db:"branch_name"`
	CommitID        string        `db:"commit_id"`
	RunNumber       sql.NullInt64 `db:"run_number"`
	DeploymentID    string        `db:"deployment_id"`
	GroupCreated    bool          `db:"group_created"`
	Outcome         string        `db:"outcome"`
	Message         string        `db:"message"`
	StartedAt       string        `db:"started_at"`
	FinishedAt      string        `db:"finished_at"`
}

// RecordPromotion inserts a finished promotion.
func (s *SQLiteStore) RecordPromotion(ctx context.Context, rec *domain.PromotionRecord) error {
	query := `
		INSERT INTO promotions (
			id, command, application_name, group_name, branch_name, commit_id,
			run_number, deployment_id, group_created, outcome, message,
			started_at, finished_at
		) VALUES (
			:id, :command, :application_name, :group_name, :branch_name, :commit_id,
			:run_number, :deployment_id, :group_created, :outcome, :message,
			:started_at, :finished_at
		)`

	row := map[string]any{
		"id":               rec.ID,
		"command":          rec.Command,
		"application_name": rec.ApplicationName,
		"group_name":       rec.GroupName,
		"branch_name":      rec.BranchName,
		"commit_id":        rec.CommitID,
		"run_number":       nullInt64(rec.RunNumber),
		"deployment_id":    rec.DeploymentID,
		"group_created":    rec.GroupCreated,
		"outcome":          string(rec.Outcome),
		"message":          rec.Message,
		"started_at":       rec.StartedAt.UTC().Format(timeLayout),
		"finished_at":      rec.FinishedAt.UTC().Format(timeLayout),
	}

	_, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: promotions.id") {
			return NewStoreError("RecordPromotion", "promotion", rec.ID, "promotion with this ID already exists", ErrDuplicateID)
		}
		return NewStoreError("RecordPromotion", "promotion", rec.ID, err.Error(), err)
	}

	return nil
}

// GetPromotion returns one promotion by id.
func (s *SQLiteStore) GetPromotion(ctx context.Context, id string) (*domain.PromotionRecord, error) {
	query := `SELECT * FROM promotions WHERE id = ?`

	var row promotionRow
	err := s.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetPromotion", "promotion", id, "promotion not found", ErrNotFound)
		}
		return nil, NewStoreError("GetPromotion", "promotion", id, err.Error(), err)
	}

	return rowToPromotion(&row)
}

// ListPromotions returns promotions, newest first.
func (s *SQLiteStore) ListPromotions(ctx context.Context, opts ListOptions) ([]domain.PromotionRecord, error) {
	opts = opts.Normalize()

	var (
		where []string
		args  []any
	)
	if opts.ApplicationName != "" {
		where = append(where, "application_name = ?")
		args = append(args, opts.ApplicationName)
	}
	if opts.GroupName != "" {
		where = append(where, "group_name = ?")
		args = append(args, opts.GroupName)
	}

	query := `SELECT * FROM promotions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	var rows []promotionRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError("ListPromotions", "promotion", "", err.Error(), err)
	}

	records := make([]domain.PromotionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := rowToPromotion(&row)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	return records, nil
}

// =============================================================================
// Row Conversion
// =============================================================================

func rowToPromotion(row *promotionRow) (*domain.PromotionRecord, error) {
	startedAt, err := time.Parse(timeLayout, row.StartedAt)
	if err != nil {
		return nil, NewStoreError("rowToPromotion", "promotion", row.ID, "invalid started_at", ErrInvalidData)
	}
	finishedAt, err := time.Parse(timeLayout, row.FinishedAt)
	if err != nil {
		return nil, NewStoreError("rowToPromotion", "promotion", row.ID, "invalid finished_at", ErrInvalidData)
	}

	rec := &domain.PromotionRecord{
		ID:              row.ID,
		Command:         row.Command,
		ApplicationName: row.ApplicationName,
		GroupName:       row.GroupName,
		BranchName:      row.BranchName,
		CommitID:        row.CommitID,
		DeploymentID:    row.DeploymentID,
		GroupCreated:    row.GroupCreated,
		Outcome:         domain.Outcome(row.Outcome),
		Message:         row.Message,
		StartedAt:       startedAt,
		FinishedAt:      finishedAt,
	}
	if row.RunNumber.Valid {
		n := row.RunNumber.Int64
		rec.RunNumber = &n
	}
	return rec, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
