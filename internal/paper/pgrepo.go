package paper

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepo is the PostgreSQL-backed Repository.
type PGRepo struct {
	pool *pgxpool.Pool
}

func NewPGRepo(ctx context.Context, connString string) (*PGRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	r := &PGRepo{pool: pool}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *PGRepo) Close() {
	r.pool.Close()
}

func (r *PGRepo) migrate(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS paper_accounts (
			name          text PRIMARY KEY,
			password_hash text NOT NULL,
			cash          double precision NOT NULL,
			created_at    timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS paper_positions (
			account   text NOT NULL REFERENCES paper_accounts(name) ON DELETE CASCADE,
			ticker    text NOT NULL,
			shares    double precision NOT NULL,
			avg_price double precision NOT NULL,
			PRIMARY KEY (account, ticker)
		)`,
		`CREATE TABLE IF NOT EXISTS paper_orders (
			id         uuid PRIMARY KEY,
			account    text NOT NULL REFERENCES paper_accounts(name) ON DELETE CASCADE,
			ticker     text NOT NULL,
			side       text NOT NULL,
			shares     double precision NOT NULL,
			price      double precision NOT NULL,
			total      double precision NOT NULL,
			created_at timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS paper_orders_account_created_at_idx
			ON paper_orders (account, created_at DESC)`,
	}
	for _, q := range ddl {
		if _, err := r.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (r *PGRepo) CreateAccount(ctx context.Context, a *Account) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO paper_accounts (name, password_hash, cash, created_at) VALUES ($1, $2, $3, $4)`,
		a.Name, a.PasswordHash, a.Cash, a.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAccountExists
	}
	return err
}

func (r *PGRepo) GetAccount(ctx context.Context, name string) (*Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx,
		`SELECT name, password_hash, cash, created_at FROM paper_accounts WHERE name = $1`, name,
	).Scan(&a.Name, &a.PasswordHash, &a.Cash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGRepo) UpdateCash(ctx context.Context, name string, cash float64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE paper_accounts SET cash = $2 WHERE name = $1`, name, cash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *PGRepo) UpsertPosition(ctx context.Context, account string, p Position) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO paper_positions (account, ticker, shares, avg_price)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (account, ticker)
		 DO UPDATE SET shares = EXCLUDED.shares, avg_price = EXCLUDED.avg_price`,
		account, p.Ticker, p.Shares, p.AvgPrice,
	)
	return err
}

func (r *PGRepo) DeletePosition(ctx context.Context, account, ticker string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM paper_positions WHERE account = $1 AND ticker = $2`, account, ticker)
	return err
}

func (r *PGRepo) Positions(ctx context.Context, account string) ([]Position, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ticker, shares, avg_price FROM paper_positions WHERE account = $1 ORDER BY ticker`,
		account,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.Ticker, &p.Shares, &p.AvgPrice); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) InsertOrder(ctx context.Context, o *Order) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO paper_orders (id, account, ticker, side, shares, price, total, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.Account, o.Ticker, o.Side, o.Shares, o.Price, o.Total, o.CreatedAt,
	)
	return err
}

func (r *PGRepo) Orders(ctx context.Context, account string, limit int) ([]Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, account, ticker, side, shares, price, total, created_at
		 FROM paper_orders WHERE account = $1
		 ORDER BY created_at DESC LIMIT $2`,
		account, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Account, &o.Ticker, &o.Side, &o.Shares, &o.Price, &o.Total, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepo) Reset(ctx context.Context, account string, cash float64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM paper_positions WHERE account = $1`, account); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM paper_orders WHERE account = $1`, account); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE paper_accounts SET cash = $2 WHERE name = $1`, account, cash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return tx.Commit(ctx)
}
