package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/repository"
)

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

var migrate = func(ctx context.Context, cfg *pgxpool.Config) error {
	return applyMigrations(ctx, cfg.ConnConfig.Copy())
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

// New connects to the database and applies pending migrations.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := migrate(ctx, cfg); err != nil {
		pool.Close()
		return nil, err
	}

	return &Storage{pool: pool, logger: logger}, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories bound to the pool.
func (s *Storage) Products() repository.ProductRepository { return &productRepository{q: s.pool} }

func (s *Storage) Keys() repository.KeyRepository { return &keyRepository{q: s.pool} }

func (s *Storage) Orders() repository.OrderRepository { return &orderRepository{q: s.pool} }

func (s *Storage) Tokens() repository.TokenRepository { return &tokenRepository{q: s.pool} }

func (s *Storage) Audit() repository.AuditRepository { return &auditRepository{q: s.pool} }

func (s *Storage) Admins() repository.AdminRepository { return &adminRepository{q: s.pool} }

// txRepositories exposes repositories bound to one transaction.
type txRepositories struct {
	tx pgx.Tx
}

func (r txRepositories) Products() repository.ProductRepository { return &productRepository{q: r.tx} }

func (r txRepositories) Keys() repository.KeyRepository { return &keyRepository{q: r.tx} }

func (r txRepositories) Orders() repository.OrderRepository { return &orderRepository{q: r.tx} }

func (r txRepositories) Tokens() repository.TokenRepository { return &tokenRepository{q: r.tx} }

func (r txRepositories) Audit() repository.AuditRepository { return &auditRepository{q: r.tx} }

func (r txRepositories) Admins() repository.AdminRepository { return &adminRepository{q: r.tx} }

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Factory) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Warn("rollback failed", slog.String("error", rbErr.Error()))
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(ctx, txRepositories{tx: tx})
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("storage is not connected")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ repository.Store = (*Storage)(nil)
	_ repository.Factory = txRepositories{}
)
