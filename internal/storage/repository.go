package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Dialect names a SQL backend. Its value doubles as the database/sql driver name
// and the migrations directory.
type Dialect string

const (
	SQLite Dialect = "sqlite"
	MySQL  Dialect = "mysql"
)

func (d Dialect) DriverName() string { return string(d) }

func (d Dialect) insertUserIgnore() string {
	if d == MySQL {
		return "INSERT IGNORE INTO users (id, savings_goal_percentage, created_at) VALUES (?, ?, ?)"
	}
	return "INSERT INTO users (id, savings_goal_percentage, created_at) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING"
}

const transactionColumns = "id, user_id, type, amount, category, date_ms, notes, created_at, updated_at"

// SQLRepository implements Repository on database/sql for SQLite and MySQL.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ Repository = (*SQLRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	repo, err := openSQL(SQLite, dbPath)
	if err != nil {
		return nil, err
	}
	// One writer at a time avoids SQLITE_BUSY under concurrent requests.
	repo.db.SetMaxOpenConns(1)
	return repo, nil
}

func NewMySQLRepository(dsn string) (*SQLRepository, error) {
	repo, err := openSQL(MySQL, dsn)
	if err != nil {
		return nil, err
	}
	repo.db.SetConnMaxLifetime(3 * time.Minute)
	repo.db.SetMaxIdleConns(10)
	return repo, nil
}

func openSQL(dialect Dialect, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, dialect: dialect, now: time.Now}, nil
}

func (r *SQLRepository) Dialect() Dialect { return r.dialect }

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		t                         core.Transaction
		typ                       string
		dateMs, created, modified int64
	)
	if err := s.Scan(&t.ID, &t.UserID, &typ, &t.Amount, &t.Category, &dateMs, &t.Notes, &created, &modified); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Date = time.UnixMilli(dateMs).UTC()
	t.CreatedAt = time.UnixMilli(created).UTC()
	t.UpdatedAt = time.UnixMilli(modified).UTC()
	return t, nil
}

func (r *SQLRepository) FindTransactions(ctx context.Context, userID string, f core.TransactionFilter) ([]core.Transaction, error) {
	var q strings.Builder
	q.WriteString("SELECT " + transactionColumns + " FROM transactions WHERE user_id = ?")
	args := []any{userID}
	if f.Type != "" {
		q.WriteString(" AND type = ?")
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		q.WriteString(" AND category = ?")
		args = append(args, f.Category)
	}
	if !f.From.IsZero() {
		q.WriteString(" AND date_ms >= ?")
		args = append(args, f.From.UnixMilli())
	}
	if !f.To.IsZero() {
		q.WriteString(" AND date_ms <= ?")
		args = append(args, f.To.UnixMilli())
	}
	q.WriteString(" ORDER BY date_ms DESC, created_at DESC")

	rows, err := r.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.UserID, string(t.Type), t.Amount.String(), t.Category,
		t.Date.UnixMilli(), t.Notes, t.CreatedAt.UnixMilli(), t.UpdatedAt.UnixMilli())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"dialect", r.dialect,
		"id", t.ID,
		"type", t.Type,
		"amount", t.Amount.String(),
		"category", t.Category)

	return t, nil
}

func (r *SQLRepository) UpdateTransaction(ctx context.Context, userID, id string, p core.TransactionPatch) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}

	p.Apply(&t)
	t.UpdatedAt = r.now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE transactions SET type = ?, amount = ?, category = ?, date_ms = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		string(t.Type), t.Amount.String(), t.Category, t.Date.UnixMilli(), t.Notes, t.UpdatedAt.UnixMilli(),
		id, userID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit update: %w", err)
	}
	return t, nil
}

func (r *SQLRepository) DeleteTransaction(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) FindUser(ctx context.Context, id string) (core.User, error) {
	var (
		u       core.User
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, savings_goal_percentage, created_at FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.SavingsGoalPercentage, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(created).UTC()
	return u, nil
}

func (r *SQLRepository) UpdateSavingsGoal(ctx context.Context, id string, pct decimal.Decimal) (core.User, error) {
	// MySQL reports zero affected rows for an unchanged value, so existence is
	// decided by the read that follows.
	if _, err := r.db.ExecContext(ctx,
		"UPDATE users SET savings_goal_percentage = ? WHERE id = ?", pct.String(), id); err != nil {
		return core.User{}, fmt.Errorf("update savings goal: %w", err)
	}
	return r.FindUser(ctx, id)
}

func (r *SQLRepository) EnsureUser(ctx context.Context, id string) (core.User, error) {
	if _, err := r.db.ExecContext(ctx, r.dialect.insertUserIgnore(),
		id, core.DefaultSavingsGoal().String(), r.now().UnixMilli()); err != nil {
		return core.User{}, fmt.Errorf("ensure user: %w", err)
	}
	return r.FindUser(ctx, id)
}
