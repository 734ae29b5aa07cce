package storage

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schema string

type Storage struct {
	ctx    context.Context
	logger *zap.Logger
	pool   *pgxpool.Pool
}

func NewStorage(ctx context.Context, l *zap.Logger) *Storage {
	return &Storage{ctx: ctx, logger: l.Named("storage")}
}

func (s *Storage) Connect(dsn string) error {
	var err error
	s.pool, err = pgxpool.Connect(s.ctx, dsn)
	return err
}

// Migrate creates the tables if they do not exist yet.
func (s *Storage) Migrate() error {
	if _, err := s.pool.Exec(s.ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Storage) Begin(ctx context.Context, fn func(pgx.Tx) error) error {
	return s.pool.BeginFunc(ctx, fn)
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func queryRowFuncNoOp(pgx.QueryFuncRow) error { return nil }

func query(ctx context.Context, tx pgx.Tx, sql string, args []interface{}, scans []interface{}) error {
	_, err := tx.QueryFunc(ctx, sql, args, scans, queryRowFuncNoOp)
	return err
}

func exec(ctx context.Context, tx pgx.Tx, sql string, args ...interface{}) (int64, error) {
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
